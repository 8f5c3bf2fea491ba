package tracker

import (
	"context"
	"errors"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
)

// CreateSolution inserts a solution and, when its effectiveness rating
// crosses the threshold, routes the parent issue through the resolved
// transition. The parent's live status is checked immediately before the
// write, and the write itself is a no-op against an already resolved
// issue, so concurrent high-rating submissions stay harmless.
func (s *Service) CreateSolution(ctx context.Context, input CreateSolutionInput, actingUserID uint64) (*ports.Solution, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	if actingUserID == 0 {
		return nil, domain.ErrActingUserRequired
	}
	if input.IssueID == 0 {
		return nil, domain.ErrIssueRefRequired
	}

	now := s.nowString()
	created, err := s.solutions.Create(ctx, ports.Solution{
		IssueID:       input.IssueID,
		Description:   input.Description,
		Steps:         input.Steps,
		Effectiveness: input.Effectiveness,
		Verified:      input.Verified,
		CreatedBy:     actingUserID,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
	if err != nil {
		return nil, err
	}

	if err := s.maybeResolveParent(ctx, created.IssueID, created.Effectiveness, actingUserID); err != nil {
		return &created, err
	}
	return &created, nil
}

// UpdateSolution applies a partial update and re-evaluates the
// auto-resolve rule when the effectiveness rating changed.
func (s *Service) UpdateSolution(ctx context.Context, id uint64, input UpdateSolutionInput, actingUserID uint64) (*ports.Solution, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	existing, err := s.solutions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Solution")
	}

	updated, err := s.solutions.Update(ctx, id, ports.SolutionUpdate{
		Description:   input.Description,
		Steps:         input.Steps,
		Effectiveness: input.Effectiveness,
		Verified:      input.Verified,
		UpdatedAt:     s.nowString(),
	})
	if err != nil {
		return nil, err
	}

	if input.Effectiveness != nil {
		if err := s.maybeResolveParent(ctx, updated.IssueID, *input.Effectiveness, actingUserID); err != nil {
			return updated, err
		}
	}
	return updated, nil
}

func (s *Service) DeleteSolution(ctx context.Context, id uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	existing, err := s.solutions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("Solution")
	}

	return s.solutions.Delete(ctx, id)
}

// VerifySolution marks a solution verified through the regular update
// path, so the auto-resolve rule keeps applying.
func (s *Service) VerifySolution(ctx context.Context, id uint64, actingUserID uint64) (*ports.Solution, error) {
	verified := true
	return s.UpdateSolution(ctx, id, UpdateSolutionInput{Verified: &verified}, actingUserID)
}

func (s *Service) ListSolutions(ctx context.Context, issueID *uint64) ([]ports.Solution, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	if issueID != nil {
		return s.solutions.ListByIssue(ctx, *issueID)
	}
	return s.solutions.List(ctx)
}

// maybeResolveParent looks up the parent issue's live state and resolves
// it when the rating crosses the threshold. A solution whose parent is
// gone is a broken referential invariant and fails loudly; it is never
// collapsed into an absent-value result.
func (s *Service) maybeResolveParent(ctx context.Context, issueID uint64, rating float64, actingUserID uint64) error {
	if rating < domain.EffectiveSolutionThreshold {
		return nil
	}

	issue, err := s.issues.GetByID(ctx, issueID)
	if err != nil {
		return err
	}
	if issue == nil {
		return errs.Wrapf(domain.ErrParentIssueMissing, "issue %d", issueID)
	}

	if !domain.ShouldAutoResolve(rating, issue.Status) {
		return nil
	}

	resolved := domain.StatusResolved
	_, err = s.UpdateIssue(ctx, issueID, UpdateIssueInput{Status: &resolved}, actingUserID)
	return err
}
