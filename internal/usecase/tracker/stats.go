package tracker

import (
	"context"
	"errors"
	"time"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
)

// DaysSinceLastAccident returns the whole days elapsed since the most
// recent accident in scope, or nil when no accident was ever recorded.
// Zero means an accident occurred within the last 24 hours; it never
// stands in for "none". Callers must keep that distinction.
func (s *Service) DaysSinceLastAccident(ctx context.Context, categoryID *uint64) (*int, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	last, err := s.accidents.FindLast(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, nil
	}

	occurredAt, err := parseTimestamp(last.OccurredAt)
	if err != nil {
		return nil, errs.Wrapf(err, "parse accident %d occurred_at", last.AccidentID)
	}

	days := domain.DaysBetween(occurredAt, s.now())
	return &days, nil
}

// RecordAccident appends an accident record directly, outside the
// critical-issue path. The referenced issue must exist, and a supplied
// occurred-at must parse: accidents are append-only, so a malformed
// timestamp admitted here would break every later days-since read with
// no way to repair the data.
func (s *Service) RecordAccident(ctx context.Context, input RecordAccidentInput) (*ports.Accident, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	issue, err := s.issues.GetByID(ctx, input.IssueID)
	if err != nil {
		return nil, err
	}
	if issue == nil {
		return nil, apperr.NotFound("Issue")
	}

	occurredAt := s.nowString()
	if input.OccurredAt != nil {
		parsed, err := parseTimestamp(*input.OccurredAt)
		if err != nil {
			return nil, apperr.Validation("occurredAt", "Occurred-at must be a valid RFC 3339 timestamp")
		}
		occurredAt = parsed.UTC().Format(time.RFC3339Nano)
	}
	resetCounter := true
	if input.ResetCounter != nil {
		resetCounter = *input.ResetCounter
	}

	created, err := s.accidents.Create(ctx, ports.Accident{
		CategoryID:   input.CategoryID,
		IssueID:      input.IssueID,
		OccurredAt:   occurredAt,
		ResetCounter: resetCounter,
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) ListAccidents(ctx context.Context) ([]ports.Accident, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.accidents.List(ctx)
}

// GetDashboardStats recomputes every dashboard figure from storage on
// each call. No caching, no incremental maintenance: the data volumes
// this tracker targets make a fresh read the simpler correct choice.
func (s *Service) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	allIssues, err := s.issues.List(ctx, ports.IssueFilter{})
	if err != nil {
		return nil, err
	}

	overview := DashboardOverview{TotalIssues: len(allIssues)}
	var breakdown SeverityBreakdown
	for _, issue := range allIssues {
		switch issue.Status {
		case domain.StatusResolved:
			overview.ResolvedIssues++
		case domain.StatusOpen:
			overview.OpenIssues++
		case domain.StatusInProgress:
			overview.InProgressIssues++
		}

		switch issue.Severity {
		case domain.SeverityCritical:
			breakdown.Critical++
		case domain.SeverityHigh:
			breakdown.High++
		case domain.SeverityMedium:
			breakdown.Medium++
		case domain.SeverityLow:
			breakdown.Low++
		}
	}

	days, err := s.DaysSinceLastAccident(ctx, nil)
	if err != nil {
		return nil, err
	}
	overview.DaysSinceLastAccident = days

	recent, err := s.issues.List(ctx, ports.IssueFilter{Limit: 10})
	if err != nil {
		return nil, err
	}

	categories, err := s.GetAllCategoriesWithStats(ctx)
	if err != nil {
		return nil, err
	}

	return &DashboardStats{
		Overview:          overview,
		RecentIssues:      recent,
		Categories:        categories,
		SeverityBreakdown: breakdown,
	}, nil
}
