package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"sincelast/internal/domain/tracker"
	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/ports"
)

type IssueRepository struct {
	db *gorm.DB
}

func NewIssueRepository(db *gorm.DB) *IssueRepository {
	return &IssueRepository{db: db}
}

// List applies every present filter conjunctively. The free-text query is
// a substring match against title OR description; SQLite LIKE is
// case-insensitive for ASCII, which the search tests pin down. Newest
// first: ordering by primary key matches creation order for an
// autoincrement key.
func (r *IssueRepository) List(ctx context.Context, filter ports.IssueFilter) ([]ports.Issue, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Issue{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		pattern := "%" + q + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Severity != "" {
		query = query.Where("severity = ?", string(filter.Severity))
	}

	query = query.Order("issue_id desc")
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var rows []model.Issue
	if err := query.Find(&rows).Error; err != nil {
		return nil, storeErr(err, "query issues")
	}

	items := make([]ports.Issue, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapIssue(row))
	}
	return items, nil
}

func (r *IssueRepository) GetByID(ctx context.Context, id uint64) (*ports.Issue, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row model.Issue
	if err := db.Where("issue_id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "query issue")
	}

	issue := mapIssue(row)
	return &issue, nil
}

func (r *IssueRepository) Create(ctx context.Context, issue ports.Issue) (ports.Issue, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Issue{}, err
	}

	row := model.Issue{
		Title:       issue.Title,
		Description: issue.Description,
		CategoryID:  issue.CategoryID,
		Severity:    string(issue.Severity),
		Status:      string(issue.Status),
		Tags:        issue.Tags,
		Attachments: issue.Attachments,
		CreatedBy:   issue.CreatedBy,
		CreatedAt:   issue.CreatedAt,
		UpdatedAt:   issue.UpdatedAt,
		ResolvedAt:  issue.ResolvedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Issue{}, storeErr(err, "insert issue")
	}
	return mapIssue(row), nil
}

func (r *IssueRepository) Update(ctx context.Context, id uint64, update ports.IssueUpdate) (*ports.Issue, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{
		"updated_at": update.UpdatedAt,
	}
	if update.Title != nil {
		fields["title"] = *update.Title
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.ClearCategory {
		fields["category_id"] = nil
	} else if update.CategoryID != nil {
		fields["category_id"] = *update.CategoryID
	}
	if update.Severity != nil {
		fields["severity"] = string(*update.Severity)
	}
	if update.Status != nil {
		fields["status"] = string(*update.Status)
	}
	if update.Tags != nil {
		fields["tags"] = *update.Tags
	}
	if update.Attachments != nil {
		fields["attachments"] = *update.Attachments
	}
	if update.ResolvedAt != nil {
		fields["resolved_at"] = *update.ResolvedAt
	}

	if err := db.Model(&model.Issue{}).
		Where("issue_id = ?", id).
		Updates(fields).Error; err != nil {
		return nil, storeErr(err, "update issue")
	}
	return r.GetByID(ctx, id)
}

func (r *IssueRepository) Delete(ctx context.Context, id uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Where("issue_id = ?", id).Delete(&model.Issue{}).Error; err != nil {
		return storeErr(err, "delete issue")
	}
	return nil
}

func (r *IssueRepository) DetachCategory(ctx context.Context, categoryID uint64, updatedAt string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Model(&model.Issue{}).
		Where("category_id = ?", categoryID).
		Updates(map[string]any{
			"category_id": nil,
			"updated_at":  updatedAt,
		}).Error; err != nil {
		return storeErr(err, "detach issues from category")
	}
	return nil
}

func mapIssue(row model.Issue) ports.Issue {
	return ports.Issue{
		IssueID:     row.IssueID,
		Title:       row.Title,
		Description: row.Description,
		CategoryID:  row.CategoryID,
		Severity:    tracker.Severity(row.Severity),
		Status:      tracker.Status(row.Status),
		Tags:        row.Tags,
		Attachments: row.Attachments,
		CreatedBy:   row.CreatedBy,
		CreatedAt:   row.CreatedAt,
		UpdatedAt:   row.UpdatedAt,
		ResolvedAt:  row.ResolvedAt,
	}
}
