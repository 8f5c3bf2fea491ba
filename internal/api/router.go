// Package api is the HTTP presentation layer: route wiring, session
// middleware, and JSON handlers that call into the tracker and auth
// services. No business rule lives here.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sincelast/internal/bootstrap/config"
	"sincelast/internal/usecase/auth"
	"sincelast/internal/usecase/tracker"
)

type Server struct {
	tracker       *tracker.Service
	auth          *auth.Service
	pagination    config.PaginationConfig
	secureCookies bool
}

func NewServer(trackerSvc *tracker.Service, authSvc *auth.Service, cfg config.Config) *Server {
	return &Server{
		tracker:       trackerSvc,
		auth:          authSvc,
		pagination:    cfg.Pagination,
		secureCookies: cfg.App.Env == "production",
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(s.sessionUser)

	r.Post("/login", s.handleLogin)
	r.Post("/logout", s.handleLogout)

	r.Group(func(r chi.Router) {
		r.Use(s.requireUser)

		r.Get("/dashboard", s.handleDashboard)

		r.Route("/issues", func(r chi.Router) {
			r.Get("/", s.handleListIssues)
			r.Post("/", s.handleCreateIssue)
			r.Get("/{id}", s.handleGetIssue)
			r.Put("/{id}", s.handleUpdateIssue)
			r.With(s.requireAdmin).Delete("/{id}", s.handleDeleteIssue)
		})

		r.Route("/solutions", func(r chi.Router) {
			r.Get("/", s.handleListSolutions)
			r.Post("/", s.handleCreateSolution)
			r.Put("/{id}", s.handleUpdateSolution)
			r.Delete("/{id}", s.handleDeleteSolution)
			r.Post("/{id}/verify", s.handleVerifySolution)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", s.handleListCategories)
			r.Post("/", s.handleCreateCategory)
			r.Get("/{id}", s.handleGetCategory)
			r.Put("/{id}", s.handleUpdateCategory)
			r.With(s.requireAdmin).Delete("/{id}", s.handleDeleteCategory)
		})

		r.Route("/accidents", func(r chi.Router) {
			r.Get("/", s.handleListAccidents)
			r.Post("/", s.handleRecordAccident)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/register", s.handleRegister)
			r.Get("/users", s.handleListUsers)
		})
	})

	return r
}
