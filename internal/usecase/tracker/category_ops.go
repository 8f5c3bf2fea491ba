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

func (s *Service) CreateCategory(ctx context.Context, input CreateCategoryInput) (*ports.Category, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	color := input.Color
	if color == "" {
		color = domain.DefaultColor
	}
	accidentReset := true
	if input.AccidentReset != nil {
		accidentReset = *input.AccidentReset
	}

	created, err := s.categories.Create(ctx, ports.Category{
		Name:          strings.TrimSpace(input.Name),
		Description:   input.Description,
		Color:         color,
		AccidentReset: accidentReset,
		CreatedAt:     s.nowString(),
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Service) UpdateCategory(ctx context.Context, id uint64, input UpdateCategoryInput) (*ports.Category, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperr.NotFound("Category")
	}

	return s.categories.Update(ctx, id, ports.CategoryUpdate{
		Name:          input.Name,
		Description:   input.Description,
		Color:         input.Color,
		AccidentReset: input.AccidentReset,
	})
}

func (s *Service) DeleteCategory(ctx context.Context, id uint64) error {
	if ctx == nil {
		return errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return errs.Wrap(err, "check context")
	}

	existing, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return apperr.NotFound("Category")
	}

	// Detach and delete atomically so no issue is left pointing at a
	// category row that is gone.
	now := s.nowString()
	return s.uow.WithTx(ctx, func(txCtx context.Context) error {
		if err := s.issues.DetachCategory(txCtx, id, now); err != nil {
			return err
		}
		return s.categories.Delete(txCtx, id)
	})
}

func (s *Service) ListCategories(ctx context.Context) ([]ports.Category, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}
	return s.categories.List(ctx)
}

// GetCategoryWithStats returns the category together with recomputed
// issue counts and the days-since-last-accident value, or nil when the
// category does not exist.
func (s *Service) GetCategoryWithStats(ctx context.Context, id uint64) (*CategoryWithStats, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, nil
	}

	stats, err := s.categoryStats(ctx, category.CategoryID)
	if err != nil {
		return nil, err
	}

	return &CategoryWithStats{Category: *category, Stats: stats}, nil
}

func (s *Service) GetAllCategoriesWithStats(ctx context.Context) ([]CategoryWithStats, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]CategoryWithStats, 0, len(categories))
	for _, category := range categories {
		stats, err := s.categoryStats(ctx, category.CategoryID)
		if err != nil {
			return nil, err
		}
		out = append(out, CategoryWithStats{Category: category, Stats: stats})
	}
	return out, nil
}

func (s *Service) categoryStats(ctx context.Context, categoryID uint64) (CategoryStats, error) {
	issues, err := s.issues.List(ctx, ports.IssueFilter{CategoryID: &categoryID})
	if err != nil {
		return CategoryStats{}, err
	}

	resolved := 0
	for _, issue := range issues {
		if issue.Status == domain.StatusResolved {
			resolved++
		}
	}

	days, err := s.DaysSinceLastAccident(ctx, &categoryID)
	if err != nil {
		return CategoryStats{}, err
	}

	return CategoryStats{
		TotalIssues:           len(issues),
		ResolvedIssues:        resolved,
		UnresolvedIssues:      len(issues) - resolved,
		DaysSinceLastAccident: days,
	}, nil
}
