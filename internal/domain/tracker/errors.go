package tracker

import "errors"

var (
	ErrActingUserRequired = errors.New("acting user is required")
	ErrIssueRefRequired   = errors.New("solution requires an issue ref")

	// ErrParentIssueMissing marks a broken referential invariant: a stored
	// solution points at an issue id that resolves to no row. Callers must
	// fail loudly on it, never fall back to an absent value.
	ErrParentIssueMissing = errors.New("solution parent issue does not exist")
)
