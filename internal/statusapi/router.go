// Package statusapi serves the timer state over a small loopback HTTP API for
// status bars and other local integrations.
package statusapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"pomotaro/internal/service"
)

// Deps groups what the API reads from.
type Deps struct {
	Sessions *service.SessionService
	Stats    *service.StatsService
	Metrics  http.Handler
	Logger   *slog.Logger
}

// NewRouter creates the Chi router with all routes and middleware.
func NewRouter(deps Deps) *chi.Mux {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recovery(logger))

	h := &handler{sessions: deps.Sessions, stats: deps.Stats}

	r.Get("/healthz", h.Health)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.Status)
		r.Get("/presence", h.Presence)
		r.Route("/stats", func(r chi.Router) {
			r.Get("/summary", h.Summary)
			r.Get("/series", h.Series)
		})
		r.Post("/timer/{action}", h.TimerAction)
	})

	return r
}
