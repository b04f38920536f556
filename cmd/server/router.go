package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/scry-adaptive/internal/api"
	apiMiddleware "github.com/phrazzld/scry-adaptive/internal/api/middleware"
	"github.com/phrazzld/scry-adaptive/internal/platform/metrics"
)

// setupRouter builds the router with every route and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))
	r.Use(apiMiddleware.NewRequestMetrics(app.metrics))
	r.Use(middleware.Recoverer)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService)
	reviewHandler := api.NewReviewHandler(app.cardReviewService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		r.Get("/documents/{id}/next-card", reviewHandler.GetNextCard)
		r.Get("/documents/{id}/progress", reviewHandler.GetDocumentProgress)
		r.Post("/cards/{id}/answer", reviewHandler.SubmitAnswer)
		r.Post("/cards/{id}/postpone", reviewHandler.PostponeCard)
		r.Get("/topics/{id}/state", reviewHandler.GetTopicState)
	})

	r.Get("/health", app.handleHealth)
	if app.config.Server.MetricsEnabled {
		r.Handle("/metrics", metrics.Handler(app.registry))
	}

	return r
}

// handleHealth reports OK, checking the database when one is configured.
func (app *application) handleHealth(w http.ResponseWriter, r *http.Request) {
	if app.db != nil {
		if err := app.db.PingContext(r.Context()); err != nil {
			app.logger.Error("health check failed", "error", err)
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte("OK")); err != nil {
		app.logger.Error("failed to write health check response", "error", err)
	}
}
