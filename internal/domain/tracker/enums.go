package tracker

// Severity is the urgency tier of an issue.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Status is the lifecycle stage of an issue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusArchived   Status = "archived"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

var severities = map[Severity]struct{}{
	SeverityLow:      {},
	SeverityMedium:   {},
	SeverityHigh:     {},
	SeverityCritical: {},
}

var statuses = map[Status]struct{}{
	StatusOpen:       {},
	StatusInProgress: {},
	StatusResolved:   {},
	StatusArchived:   {},
}

func ValidSeverity(s Severity) bool {
	_, ok := severities[s]
	return ok
}

func ValidStatus(s Status) bool {
	_, ok := statuses[s]
	return ok
}

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleUser
}

// Severities lists all severity tiers in ascending urgency, the order the
// dashboard breakdown reports them in.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}
