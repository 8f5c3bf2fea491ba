// Package tracker implements the consistency engine: the business rules
// that keep issue status, solution effectiveness, and accident records
// mutually consistent.
package tracker

import (
	"time"

	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/ports"
)

// DefaultListLimit caps unpaginated issue listings.
const DefaultListLimit = 20

type Service struct {
	issues     ports.IssueRepository
	solutions  ports.SolutionRepository
	categories ports.CategoryRepository
	accidents  ports.AccidentRepository
	uow        ports.UnitOfWork

	// now is swappable for tests; defaults to UTC wall clock.
	now func() time.Time
}

func NewService(
	issues ports.IssueRepository,
	solutions ports.SolutionRepository,
	categories ports.CategoryRepository,
	accidents ports.AccidentRepository,
	uow ports.UnitOfWork,
) *Service {
	return &Service{
		issues:     issues,
		solutions:  solutions,
		categories: categories,
		accidents:  accidents,
		uow:        uow,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type CreateIssueInput struct {
	Title       string
	Description string
	CategoryID  *uint64
	Severity    domain.Severity
	Status      domain.Status
	Tags        *string
	Attachments *string
}

type UpdateIssueInput struct {
	Title       *string
	Description *string
	CategoryID  *uint64
	// ClearCategory detaches the issue from its category. A nil CategoryID
	// alone means "leave the category alone".
	ClearCategory bool
	Severity      *domain.Severity
	Status        *domain.Status
	Tags          *string
	Attachments   *string
}

type CreateSolutionInput struct {
	IssueID       uint64
	Description   string
	Steps         string
	Effectiveness float64
	Verified      bool
}

type UpdateSolutionInput struct {
	Description   *string
	Steps         *string
	Effectiveness *float64
	Verified      *bool
}

type CreateCategoryInput struct {
	Name          string
	Description   *string
	Color         string
	AccidentReset *bool
}

type UpdateCategoryInput struct {
	Name          *string
	Description   *string
	Color         *string
	AccidentReset *bool
}

type RecordAccidentInput struct {
	IssueID      uint64
	CategoryID   *uint64
	OccurredAt   *string
	ResetCounter *bool
}

type IssueWithSolutions struct {
	ports.Issue
	Solutions []ports.Solution `json:"solutions"`
}

type CategoryStats struct {
	TotalIssues           int  `json:"totalIssues"`
	ResolvedIssues        int  `json:"resolvedIssues"`
	UnresolvedIssues      int  `json:"unresolvedIssues"`
	DaysSinceLastAccident *int `json:"daysSinceLastAccident"`
}

type CategoryWithStats struct {
	ports.Category
	Stats CategoryStats `json:"stats"`
}

type SeverityBreakdown struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

type DashboardOverview struct {
	TotalIssues           int  `json:"totalIssues"`
	ResolvedIssues        int  `json:"resolvedIssues"`
	OpenIssues            int  `json:"openIssues"`
	InProgressIssues      int  `json:"inProgressIssues"`
	DaysSinceLastAccident *int `json:"daysSinceLastAccident"`
}

type DashboardStats struct {
	Overview          DashboardOverview   `json:"overview"`
	RecentIssues      []ports.Issue       `json:"recentIssues"`
	Categories        []CategoryWithStats `json:"categories"`
	SeverityBreakdown SeverityBreakdown   `json:"severityBreakdown"`
}

func (s *Service) nowString() string {
	return s.now().Format(time.RFC3339Nano)
}

func parseTimestamp(value string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, value)
}
