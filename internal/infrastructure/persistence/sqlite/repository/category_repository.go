package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/ports"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) List(ctx context.Context) ([]ports.Category, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Category
	if err := db.Order("name asc").Find(&rows).Error; err != nil {
		return nil, storeErr(err, "query categories")
	}

	items := make([]ports.Category, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapCategory(row))
	}
	return items, nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id uint64) (*ports.Category, error) {
	return r.getOne(ctx, "category_id = ?", id)
}

func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*ports.Category, error) {
	return r.getOne(ctx, "name = ?", name)
}

func (r *CategoryRepository) getOne(ctx context.Context, query string, arg any) (*ports.Category, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row model.Category
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "query category")
	}

	category := mapCategory(row)
	return &category, nil
}

func (r *CategoryRepository) Create(ctx context.Context, category ports.Category) (ports.Category, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Category{}, err
	}

	row := model.Category{
		Name:          category.Name,
		Description:   category.Description,
		Color:         category.Color,
		AccidentReset: category.AccidentReset,
		CreatedAt:     category.CreatedAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Category{}, storeErr(err, "insert category")
	}
	return mapCategory(row), nil
}

func (r *CategoryRepository) Update(ctx context.Context, id uint64, update ports.CategoryUpdate) (*ports.Category, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Description != nil {
		fields["description"] = *update.Description
	}
	if update.Color != nil {
		fields["color"] = *update.Color
	}
	if update.AccidentReset != nil {
		fields["accident_reset_trigger"] = *update.AccidentReset
	}

	if len(fields) > 0 {
		if err := db.Model(&model.Category{}).
			Where("category_id = ?", id).
			Updates(fields).Error; err != nil {
			return nil, storeErr(err, "update category")
		}
	}
	return r.GetByID(ctx, id)
}

func (r *CategoryRepository) Delete(ctx context.Context, id uint64) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Where("category_id = ?", id).Delete(&model.Category{}).Error; err != nil {
		return storeErr(err, "delete category")
	}
	return nil
}

func mapCategory(row model.Category) ports.Category {
	return ports.Category{
		CategoryID:    row.CategoryID,
		Name:          row.Name,
		Description:   row.Description,
		Color:         row.Color,
		AccidentReset: row.AccidentReset,
		CreatedAt:     row.CreatedAt,
	}
}
