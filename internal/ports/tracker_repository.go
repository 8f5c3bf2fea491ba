package ports

import (
	"context"

	"sincelast/internal/domain/tracker"
)

// Port structs carry rows across the persistence boundary. Timestamps are
// RFC3339Nano UTC strings; nullable columns are pointers. The json tags
// follow the camelCase wire casing the handlers expose.

type User struct {
	UserID       uint64       `json:"id"`
	Username     string       `json:"username"`
	Email        string       `json:"email"`
	PasswordHash string       `json:"-"`
	Role         tracker.Role `json:"role"`
	CreatedAt    string       `json:"createdAt"`
	LastLoginAt  *string      `json:"lastLoginAt"`
}

type Category struct {
	CategoryID    uint64  `json:"id"`
	Name          string  `json:"name"`
	Description   *string `json:"description"`
	Color         string  `json:"color"`
	AccidentReset bool    `json:"accidentResetTrigger"`
	CreatedAt     string  `json:"createdAt"`
}

type Issue struct {
	IssueID     uint64           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	CategoryID  *uint64          `json:"categoryId"`
	Severity    tracker.Severity `json:"severity"`
	Status      tracker.Status   `json:"status"`
	Tags        *string          `json:"tags"`
	Attachments *string          `json:"attachments"`
	CreatedBy   uint64           `json:"createdBy"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	ResolvedAt  *string          `json:"resolvedAt"`
}

type Solution struct {
	SolutionID    uint64  `json:"id"`
	IssueID       uint64  `json:"issueId"`
	Description   string  `json:"description"`
	Steps         string  `json:"steps"`
	Effectiveness float64 `json:"effectivenessRating"`
	Verified      bool    `json:"verified"`
	CreatedBy     uint64  `json:"createdBy"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

type Accident struct {
	AccidentID   uint64  `json:"id"`
	CategoryID   *uint64 `json:"categoryId"`
	IssueID      uint64  `json:"issueId"`
	OccurredAt   string  `json:"occurredAt"`
	ResetCounter bool    `json:"resetCounter"`
}

// IssueFilter composes conjunctively: every present field narrows the
// result. Query is a substring match against title OR description.
type IssueFilter struct {
	Query      string
	CategoryID *uint64
	Status     tracker.Status
	Severity   tracker.Severity
	Limit      int
	Offset     int
}

// Partial updates. Nil fields are left untouched.

type IssueUpdate struct {
	Title       *string
	Description *string
	CategoryID  *uint64
	// ClearCategory nulls category_id; it wins over CategoryID when both
	// are set.
	ClearCategory bool
	Severity      *tracker.Severity
	Status        *tracker.Status
	Tags          *string
	Attachments   *string
	ResolvedAt    *string
	UpdatedAt     string
}

type SolutionUpdate struct {
	Description   *string
	Steps         *string
	Effectiveness *float64
	Verified      *bool
	UpdatedAt     string
}

type CategoryUpdate struct {
	Name          *string
	Description   *string
	Color         *string
	AccidentReset *bool
}

// Repositories translate calls into storage queries and own no business
// rules. GetBy* misses return (nil, nil): absence is a value, not an error.
// Storage failures surface as apperr.Database.

type UserRepository interface {
	List(ctx context.Context) ([]User, error)
	GetByID(ctx context.Context, id uint64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, user User) (User, error)
	UpdateLastLogin(ctx context.Context, id uint64, lastLoginAt string) error
}

type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id uint64) (*Category, error)
	GetByName(ctx context.Context, name string) (*Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id uint64, update CategoryUpdate) (*Category, error)
	Delete(ctx context.Context, id uint64) error
}

type IssueRepository interface {
	List(ctx context.Context, filter IssueFilter) ([]Issue, error)
	GetByID(ctx context.Context, id uint64) (*Issue, error)
	Create(ctx context.Context, issue Issue) (Issue, error)
	Update(ctx context.Context, id uint64, update IssueUpdate) (*Issue, error)
	Delete(ctx context.Context, id uint64) error
	// DetachCategory clears the category ref on every issue in the
	// category, used when the category itself is removed.
	DetachCategory(ctx context.Context, categoryID uint64, updatedAt string) error
}

type SolutionRepository interface {
	List(ctx context.Context) ([]Solution, error)
	ListByIssue(ctx context.Context, issueID uint64) ([]Solution, error)
	GetByID(ctx context.Context, id uint64) (*Solution, error)
	Create(ctx context.Context, solution Solution) (Solution, error)
	Update(ctx context.Context, id uint64, update SolutionUpdate) (*Solution, error)
	Delete(ctx context.Context, id uint64) error
}

// AccidentRepository is append-only from the engine's perspective: no
// update or delete in normal flow.
type AccidentRepository interface {
	List(ctx context.Context) ([]Accident, error)
	Create(ctx context.Context, accident Accident) (Accident, error)
	FindLast(ctx context.Context, categoryID *uint64) (*Accident, error)
}
