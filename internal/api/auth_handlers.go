package api

import (
	"encoding/json"
	"net/http"

	"sincelast/internal/apperr"
	domain "sincelast/internal/domain/tracker"
	"sincelast/internal/ports"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/validate"
)

// userView strips the password hash from responses.
type userView struct {
	UserID      uint64  `json:"id"`
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	CreatedAt   string  `json:"createdAt"`
	LastLoginAt *string `json:"lastLoginAt"`
}

func toUserView(u ports.User) userView {
	return userView{
		UserID:      u.UserID,
		Username:    u.Username,
		Email:       u.Email,
		Role:        string(u.Role),
		CreatedAt:   u.CreatedAt,
		LastLoginAt: u.LastLoginAt,
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, apperr.Validation("", "Invalid request body"))
		return
	}

	user, err := s.auth.Login(r.Context(), body.Username, body.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}

	value, err := s.auth.CreateSession(user.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	http.SetCookie(w, s.auth.Sessions().Cookie(value, s.secureCookies))
	writeJSON(w, http.StatusOK, toUserView(*user))
}

// handleLogout clears the session cookie unconditionally, valid session
// or not.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, s.auth.Sessions().ClearCookie())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, r, apperr.Validation("", "Invalid request body"))
		return
	}

	if result := validate.User(validate.UserInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
	}); !result.Valid {
		writeValidation(w, result)
		return
	}

	user, err := s.auth.Register(r.Context(), auth.RegisterInput{
		Username: body.Username,
		Email:    body.Email,
		Password: body.Password,
		Role:     domain.Role(body.Role),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserView(*user))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.auth.ListUsers(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	views := make([]userView, 0, len(users))
	for _, u := range users {
		views = append(views, toUserView(u))
	}
	writeJSON(w, http.StatusOK, views)
}
