package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"sincelast/internal/domain/tracker"
	"sincelast/internal/infrastructure/persistence/sqlite/model"
	"sincelast/internal/ports"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var rows []model.User
	if err := db.Order("username asc").Find(&rows).Error; err != nil {
		return nil, storeErr(err, "query users")
	}

	items := make([]ports.User, 0, len(rows))
	for _, row := range rows {
		items = append(items, mapUser(row))
	}
	return items, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*ports.User, error) {
	return r.getOne(ctx, "user_id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*ports.User, error) {
	return r.getOne(ctx, "username = ?", username)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*ports.User, error) {
	return r.getOne(ctx, "email = ?", email)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return nil, err
	}

	var row model.User
	if err := db.Where(query, arg).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, storeErr(err, "query user")
	}

	user := mapUser(row)
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user ports.User) (ports.User, error) {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return ports.User{}, err
	}

	row := model.User{
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		CreatedAt:    user.CreatedAt,
		LastLoginAt:  user.LastLoginAt,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.User{}, storeErr(err, "insert user")
	}
	return mapUser(row), nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uint64, lastLoginAt string) error {
	db, err := dbFromContext(ctx, r.db)
	if err != nil {
		return err
	}

	if err := db.Model(&model.User{}).
		Where("user_id = ?", id).
		Update("last_login_at", lastLoginAt).Error; err != nil {
		return storeErr(err, "update user last_login_at")
	}
	return nil
}

func mapUser(row model.User) ports.User {
	return ports.User{
		UserID:       row.UserID,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         tracker.Role(row.Role),
		CreatedAt:    row.CreatedAt,
		LastLoginAt:  row.LastLoginAt,
	}
}
