package tracker

import (
	"context"
	"errors"
	"strings"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
)

// CreateIssue inserts a new issue and, when the issue is critical and
// scoped to a category, appends an accident record stamped at the issue's
// creation time.
//
// The accident write runs after the issue write in the same request. When
// it fails the created issue is returned together with the error, so
// callers can tell partial completion (issue non-nil, err non-nil) from
// full failure (issue nil).
func (s *Service) CreateIssue(ctx context.Context, input CreateIssueInput, actingUserID uint64) (*ports.Issue, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if actingUserID == 0 {
		return nil, domain.ErrActingUserRequired
	}

	severity := input.Severity
	if severity == "" {
		severity = domain.SeverityMedium
	}
	status := input.Status
	if status == "" {
		status = domain.StatusOpen
	}

	now := s.nowString()
	created, err := s.issues.Create(ctx, ports.Issue{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Severity:    severity,
		Status:      status,
		Tags:        input.Tags,
		Attachments: input.Attachments,
		CreatedBy:   actingUserID,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return nil, err
	}

	if domain.ShouldRecordAccident(severity, input.CategoryID) {
		if _, err := s.accidents.Create(ctx, ports.Accident{
			CategoryID:   input.CategoryID,
			IssueID:      created.IssueID,
			OccurredAt:   now,
			ResetCounter: true,
		}); err != nil {
			return &created, errs.Wrap(err, "record accident for critical issue")
		}
	}

	return &created, nil
}

// UpdateIssue applies a partial update. Transitioning into resolved stamps
// resolved_at exactly once per transition; moving away later never clears
// it. The repeated resolve write is idempotent, which is what makes the
// solution-triggered resolve path safe to race.
func (s *Service) UpdateIssue(ctx context.Context, id uint64, input UpdateIssueInput, actingUserID uint64) (*ports.Issue, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	existing, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Issue")
	}

	update := ports.IssueUpdate{
		Title:         input.Title,
		Description:   input.Description,
		CategoryID:    input.CategoryID,
		ClearCategory: input.ClearCategory,
		Severity:      input.Severity,
		Status:        input.Status,
		Tags:          input.Tags,
		Attachments:   input.Attachments,
		UpdatedAt:     s.nowString(),
	}

	if input.Status != nil && domain.ShouldStampResolved(existing.Status, *input.Status) {
		resolvedAt := update.UpdatedAt
		update.ResolvedAt = &resolvedAt
	}

	return s.issues.Update(ctx, id, update)
}

// SearchIssues composes the free-text query with the structured filters
// conjunctively. A blank query degrades to a plain filtered listing.
func (s *Service) SearchIssues(ctx context.Context, query string, filter ports.IssueFilter) ([]ports.Issue, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	filter.Query = strings.TrimSpace(query)
	if filter.Limit <= 0 {
		filter.Limit = DefaultListLimit
	}
	return s.issues.List(ctx, filter)
}

// GetIssueWithSolutions returns the issue and its solutions newest-first,
// or nil when the issue does not exist.
func (s *Service) GetIssueWithSolutions(ctx context.Context, id uint64) (*IssueWithSolutions, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	issue, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, nil
	}

	solutions, err := s.solutions.ListByIssue(ctx, id)
	if err != nil {
		return nil, err
	}

	return &IssueWithSolutions{Issue: *issue, Solutions: solutions}, nil
}

// DeleteIssue hard-deletes an issue. Solutions pointing at it are kept
// (no cascade); accident history referencing the issue is kept as well.
func (s *Service) DeleteIssue(ctx context.Context, id uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	existing, err := s.issues.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("Issue")
	}

	return s.issues.Delete(ctx, id)
}
