package auth

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	gormsqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/infrastructure/persistence/sqlite/model"
	sqliterepo "sincelast/internal/infrastructure/persistence/sqlite/repository"
	"sincelast/internal/ports"
)

// Low cost keeps the hashing fast; production cost comes from config.
const testBcryptCost = 4

func setupService(t *testing.T) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "auth.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.User{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	return NewService(sqliterepo.NewUserRepository(db), NewSessionCodec("test-secret"), testBcryptCost)
}

func mustRegister(t *testing.T, svc *Service, username, email, password string, role domain.Role) *ports.User {
	t.Helper()
	user, err := svc.Register(context.Background(), RegisterInput{
		Username: username,
		Email:    email,
		Password: password,
		Role:     role,
	})
	if err != nil {
		t.Fatalf("register %s: %v", username, err)
	}
	return user
}

func TestLoginSuccessStampsLastLogin(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := mustRegister(t, svc, "admin", "admin@example.com", "admin123", domain.RoleAdmin)
	if created.LastLoginAt != nil {
		t.Fatalf("fresh user already has last_login_at %q", *created.LastLoginAt)
	}

	user, err := svc.Login(ctx, "admin", "admin123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if user.UserID != created.UserID {
		t.Fatalf("Login() user_id = %d, want %d", user.UserID, created.UserID)
	}
	if user.LastLoginAt == nil {
		t.Fatal("Login() did not stamp last_login_at")
	}
	if _, err := time.Parse(time.RFC3339Nano, *user.LastLoginAt); err != nil {
		t.Fatalf("last_login_at %q not RFC3339Nano: %v", *user.LastLoginAt, err)
	}
}

func TestLoginFailureHasNoSideEffects(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := mustRegister(t, svc, "admin", "admin@example.com", "admin123", domain.RoleAdmin)

	_, err := svc.Login(ctx, "admin", "wrong-password")
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("Login() error = %v, want unauthorized", err)
	}

	// Unknown user fails with the same message as a bad password.
	_, missErr := svc.Login(ctx, "nobody", "admin123")
	var missAppErr *apperr.Error
	if !errors.As(missErr, &missAppErr) || missAppErr.Message != appErr.Message {
		t.Fatalf("miss error = %v, bad-password error = %v, want identical messages", missErr, err)
	}

	// No last-login stamp on failure.
	users, err := svc.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0].UserID != created.UserID {
		t.Fatalf("users = %+v", users)
	}
	if users[0].LastLoginAt != nil {
		t.Fatalf("failed login stamped last_login_at %q", *users[0].LastLoginAt)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	created := mustRegister(t, svc, "john.doe", "john@example.com", "user123", domain.RoleUser)

	value, err := svc.CreateSession(created.UserID)
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	user, err := svc.UserFromSession(ctx, value)
	if err != nil {
		t.Fatalf("UserFromSession() error = %v", err)
	}
	if user == nil || user.UserID != created.UserID {
		t.Fatalf("UserFromSession() = %+v, want user %d", user, created.UserID)
	}
}

func TestUserFromSessionStaleOrTamperedIsNil(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	// Empty value: anonymous, not an error.
	user, err := svc.UserFromSession(ctx, "")
	if err != nil || user != nil {
		t.Fatalf("UserFromSession(empty) = %+v, %v, want nil, nil", user, err)
	}

	// Garbage value: tampered cookie, silently anonymous.
	user, err = svc.UserFromSession(ctx, "not-a-valid-cookie")
	if err != nil || user != nil {
		t.Fatalf("UserFromSession(garbage) = %+v, %v, want nil, nil", user, err)
	}

	// Valid signature over a user that no longer exists.
	value, err := svc.Sessions().Encode(999)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	user, err = svc.UserFromSession(ctx, value)
	if err != nil {
		t.Fatalf("UserFromSession(ghost) error = %v", err)
	}
	if user != nil {
		t.Fatalf("UserFromSession(ghost) = %+v, want nil", user)
	}
}

func TestRequireAdmin(t *testing.T) {
	svc := setupService(t)

	admin := mustRegister(t, svc, "admin", "admin@example.com", "admin123", domain.RoleAdmin)
	regular := mustRegister(t, svc, "john.doe", "john@example.com", "user123", domain.RoleUser)

	if _, err := svc.RequireAdmin(admin); err != nil {
		t.Fatalf("RequireAdmin(admin) error = %v", err)
	}

	_, err := svc.RequireAdmin(regular)
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindForbidden {
		t.Fatalf("RequireAdmin(user) error = %v, want forbidden", err)
	}

	_, err = svc.RequireAdmin(nil)
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindUnauthorized {
		t.Fatalf("RequireAdmin(nil) error = %v, want unauthorized", err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	mustRegister(t, svc, "admin", "admin@example.com", "admin123", domain.RoleAdmin)

	_, err := svc.Register(ctx, RegisterInput{
		Username: "admin",
		Email:    "other@example.com",
		Password: "pw",
	})
	var appErr *apperr.Error
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Field != "username" {
		t.Fatalf("duplicate username error = %v, want username validation", err)
	}

	_, err = svc.Register(ctx, RegisterInput{
		Username: "admin2",
		Email:    "admin@example.com",
		Password: "pw",
	})
	if !errors.As(err, &appErr) || appErr.Kind != apperr.KindValidation || appErr.Field != "email" {
		t.Fatalf("duplicate email error = %v, want email validation", err)
	}
}

func TestListUsersBlanksPasswordHashes(t *testing.T) {
	svc := setupService(t)

	mustRegister(t, svc, "admin", "admin@example.com", "admin123", domain.RoleAdmin)

	users, err := svc.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
	if users[0].PasswordHash != "" {
		t.Fatal("ListUsers() leaked a password hash")
	}
}
