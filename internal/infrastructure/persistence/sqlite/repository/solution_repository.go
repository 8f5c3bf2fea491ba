package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/ports"
)

type SolutionRepository struct {
	db *gorm.DB
}

func NewSolutionRepository(db *gorm.DB) *SolutionRepository {
	return &SolutionRepository{db: db}
}

func (r *SolutionRepository) List(ctx context.Context) ([]ports.Solution, error) {
	return r.list(ctx, nil)
}

func (r *SolutionRepository) ListByIssue(ctx context.Context, issueID uint64) ([]ports.Solution, error) {
	return r.list(ctx, &issueID)
}

func (r *SolutionRepository) list(ctx context.Context, issueID *uint64) ([]ports.Solution, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Solution{}).Order("solution_id desc")
	if issueID != nil {
		query = query.Where("issue_id = ?", *issueID)
	}

	var rows []model.Solution
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr(err, "query solutions")
	}

	items := make([]ports.Solution, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapSolution(row))
	}
	return items, nil
}

func (r *SolutionRepository) GetByID(ctx context.Context, id uint64) (*ports.Solution, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row model.Solution
	if err := db.Where("solution_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "query solution")
	}

	solution := mapSolution(row)
	return &solution, nil
}

func (r *SolutionRepository) Create(ctx context.Context, solution ports.Solution) (ports.Solution, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Solution{}, err
	}

	row := model.Solution{
		IssueID:       solution.IssueID,
		Description:   solution.Description,
		Steps:         solution.Steps,
		Effectiveness: solution.Effectiveness,
		Verified:      solution.Verified,
		CreatedBy:     solution.CreatedBy,
		CreatedAt:     solution.CreatedAt,
		UpdatedAt:     solution.UpdatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Solution{}, storeErr(err, "insert solution")
	}
	return mapSolution(row), nil
}

func (r *SolutionRepository) Update(ctx context.Context, id uint64, update ports.SolutionUpdate) (*ports.Solution, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"updated_at": update.UpdatedAt,
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Steps != nil {
		fields["steps"] = *update.Steps
	}
	if update.Effectiveness != nil {
		fields["effectiveness_rating"] = *update.Effectiveness
	}
	if update.Verified != nil {
		fields["verified"] = *update.Verified
	}

	if err := db.Model(&model.Solution{}).
		Where("solution_id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, storeErr(err, "update solution")
	}
	return r.GetByID(ctx, id)
}

func (r *SolutionRepository) Delete(ctx context.Context, id uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Where("solution_id = ?", id).Delete(&model.Solution{}).Error; err != nil {
		return storeErr(err, "delete solution")
	}
	return nil
}

func mapSolution(row model.Solution) ports.Solution {
	return ports.Solution{
		SolutionID:    row.SolutionID,
		IssueID:       row.IssueID,
		Description:   row.Description,
		Steps:         row.Steps,
		Effectiveness: row.Effectiveness,
		Verified:      row.Verified,
		CreatedBy:     row.CreatedBy,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}
}
