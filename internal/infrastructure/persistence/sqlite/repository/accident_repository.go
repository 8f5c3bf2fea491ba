package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/ports"
)

// accidentOrder sorts newest-first by instant, not by string: RFC 3339
// text with trimmed fractional seconds does not sort lexicographically
// (".5Z" compares above ".51Z"). The id breaks ties between equal
// instants.
const accidentOrder = "julianday(occurred_at) desc, accident_id desc"

type AccidentRepository struct {
	db *gorm.DB
}

func NewAccidentRepository(db *gorm.DB) *AccidentRepository {
	return &AccidentRepository{db: db}
}

func (r *AccidentRepository) List(ctx context.Context) ([]ports.Accident, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.Accident
	if err := db.Order(accidentOrder).Find(&rows).Error; err != nil {
		return nil, storeErr(err, "query accidents")
	}

	items := make([]ports.Accident, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapAccident(row))
	}
	return items, nil
}

func (r *AccidentRepository) Create(ctx context.Context, accident ports.Accident) (ports.Accident, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.Accident{}, err
	}

	row := model.Accident{
		CategoryID:   accident.CategoryID,
		IssueID:      accident.IssueID,
		OccurredAt:   accident.OccurredAt,
		ResetCounter: accident.ResetCounter,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Accident{}, storeErr(err, "insert accident")
	}
	return mapAccident(row), nil
}

// FindLast returns the most recent accident in scope, or nil when none
// was ever recorded. The nil is load-bearing: it is how "never" stays
// distinct from "today" further up.
func (r *AccidentRepository) FindLast(ctx context.Context, categoryID *uint64) (*ports.Accident, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	query := db.Model(&model.Accident{}).Order(accidentOrder)
	if categoryID != nil {
		query = query.Where("category_id = ?", *categoryID)
	}

	var row model.Accident
	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "query last accident")
	}

	accident := mapAccident(row)
	return &accident, nil
}

func mapAccident(row model.Accident) ports.Accident {
	return ports.Accident{
		AccidentID:   row.AccidentID,
		CategoryID:   row.CategoryID,
		IssueID:      row.IssueID,
		OccurredAt:   row.OccurredAt,
		ResetCounter: row.ResetCounter,
	}
}
