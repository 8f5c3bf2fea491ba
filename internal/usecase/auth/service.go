// Package auth implements the authentication gate: credential
// verification, session issuance and resolution, and role checks. Every
// protected operation in the tracker goes through it before any mutation
// runs; there is no partial authentication.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/errs"
	"sincelast/internal/ports"
)

// DefaultBcryptCost mirrors the hashing cost the original deployment ran
// with; configurable through auth.bcrypt_cost.
const DefaultBcryptCost = 12

type Service struct {
	users      ports.UserRepository
	sessions   *SessionCodec
	bcryptCost int

	now func() time.Time
}

func NewService(users ports.UserRepository, sessions *SessionCodec, bcryptCost int) *Service {
	if bcryptCost < bcrypt.MinCost {
		bcryptCost = DefaultBcryptCost
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Sessions() *SessionCodec { return s.sessions }

// Login verifies a username/password pair. On success it stamps the
// user's last login and returns the user; the caller issues the session
// cookie. A failed login has no side effects: no session, no last-login
// update, and the same error whether the username or the password was
// wrong.
func (s *Service) Login(ctx context.Context, username, password string) (*ports.User, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperr.Unauthorized("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Unauthorized("Invalid username or password")
	}

	lastLogin := s.now().Format(time.RFC3339Nano)
	if err := s.users.UpdateLastLogin(ctx, user.UserID, lastLogin); err != nil {
		return nil, err
	}
	user.LastLoginAt = &lastLogin

	return user, nil
}

// CreateSession encodes a signed session value for the user.
func (s *Service) CreateSession(userID uint64) (string, error) {
	return s.sessions.Encode(userID)
}

// UserFromSession resolves a session cookie value to a live user. The
// lookup re-runs on every request; a stale session (tampered, expired,
// or pointing at a deleted user) yields nil so the caller forces logout
// instead of proceeding with a ghost identity.
func (s *Service) UserFromSession(ctx context.Context, cookieValue string) (*ports.User, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if cookieValue == "" {
		return nil, nil
	}

	userID, err := s.sessions.Decode(cookieValue)
	if err != nil {
		return nil, nil
	}

	return s.users.GetByID(ctx, userID)
}

// RequireUser gates user-level resources: anonymous callers get the
// unauthorized signal (the presentation layer redirects it to login).
func (s *Service) RequireUser(user *ports.User) (*ports.User, error) {
	if user == nil {
		return nil, apperr.Unauthorized("")
	}
	return user, nil
}

// RequireAdmin gates admin-only resources. A valid session without the
// admin role fails with the forbidden signal, not a redirect.
func (s *Service) RequireAdmin(user *ports.User) (*ports.User, error) {
	user, err := s.RequireUser(user)
	if err != nil {
		return nil, err
	}
	if user.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("")
	}
	return user, nil
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// Register creates a user with a freshly hashed password. Uniqueness of
// username and email is checked here so the caller gets a field-qualified
// validation error instead of an opaque constraint failure.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*ports.User, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)

	if existing, err := s.users.GetByUsername(ctx, username); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("username", "Username is already taken")
	}

	if existing, err := s.users.GetByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, apperr.Validation("email", "Email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.bcryptCost)
	if err != nil {
		return nil, errs.Wrap(err, "hash password")
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	created, err := s.users.Create(ctx, ports.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    s.now().Format(time.RFC3339Nano),
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// ListUsers returns all users with password hashes blanked for callers
// that render user management pages.
func (s *Service) ListUsers(ctx context.Context) ([]ports.User, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(err, "check context")
	}

	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i].PasswordHash = ""
	}
	return users, nil
}
