package api

import (
	"context"
	"net/http"

	"sincelast/internal/ports"
	"sincelast/internal/usecase/auth"
)

type ctxUserKey struct{}

// sessionUser resolves the session cookie to a live user on every
// request. A cookie that fails to resolve (tampered, expired, or the
// user was deleted after issuance) is cleared immediately instead of
// letting a ghost identity through.
func (s *Server) sessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(auth.CookieName)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := s.auth.UserFromSession(r.Context(), cookie.Value)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if user == nil {
			http.SetCookie(w, s.auth.Sessions().ClearCookie())
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserKey{}, user)))
	})
}

func userFrom(r *http.Request) *ports.User {
	user, _ := r.Context().Value(ctxUserKey{}).(*ports.User)
	return user
}

// requireUser gates user-level routes; anonymous requests get 401 and
// the client is expected to send the user to the login page.
func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.RequireUser(userFrom(r)); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireAdmin gates admin-only routes; a valid non-admin session gets
// 403, never a redirect.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.auth.RequireAdmin(userFrom(r)); err != nil {
			writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}
