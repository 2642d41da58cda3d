package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/crossbank/refunder/internal/engine"
	"github.com/crossbank/refunder/internal/repository"
)

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(
	eng *engine.Engine,
	caseRepo *repository.CaseRepo,
	accountRepo *repository.AccountRepo,
	statementRepo *repository.StatementRepo,
) http.Handler {
	h := &Handlers{
		engine:        eng,
		caseRepo:      caseRepo,
		accountRepo:   accountRepo,
		statementRepo: statementRepo,
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.SetHeader("Content-Type", "application/json"))

	r.Route("/api/v1", func(r chi.Router) {
		// Case processing.
		r.Post("/cases/process", h.ProcessCase)
		r.Post("/cases/batch", h.ProcessBatch)

		// Case reports.
		r.Get("/cases", h.ListCases)
		r.Get("/cases/{id}", h.GetCase)

		// Reference data.
		r.Get("/accounts", h.ListAccounts)
		r.Get("/statements", h.ListStatements)

		// Dashboard.
		r.Get("/dashboard", h.GetDashboard)
	})

	return r
}
