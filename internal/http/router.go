package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/nba-fantasy-ranker/internal/http/handlers"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/http/middleware"
	"github.com/preston-bernstein/nba-fantasy-ranker/internal/metrics"
)

// NewRouter registers the public routes and, when admin is non-nil, the admin ones.
func NewRouter(h *handlers.Handler, admin *handlers.AdminHandler, logger *slog.Logger, recorder *metrics.Recorder) nethttp.Handler {
	r := chi.NewRouter()
	r.Use(func(next nethttp.Handler) nethttp.Handler {
		return middleware.LoggingMiddleware(logger, recorder, next)
	})

	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)
	r.Get("/rankings", h.Rankings)
	r.Get("/candidates", h.Candidates)
	r.Get("/history", h.History)
	if admin != nil {
		r.Post("/admin/refresh", admin.Refresh)
	}

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)
	return r
}
