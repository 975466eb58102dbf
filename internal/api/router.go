// Package api exposes the operational HTTP surface consumed by the
// supervisor dashboard.
package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iconidentify/sharegrab/internal/api/handler"
	mw "github.com/iconidentify/sharegrab/internal/api/middleware"
)

// NewRouter creates the HTTP router with all routes configured. When
// apiKey is empty the stats route is left open (local-only deployments).
func NewRouter(healthHandler *handler.HealthHandler, apiKey string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.CleanPath)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(middleware.Timeout(30 * time.Second))

	// Health endpoints (no auth)
	r.Get("/health", healthHandler.Live)
	r.Get("/ready", healthHandler.Ready)

	r.Route("/api/v1", func(r chi.Router) {
		if apiKey != "" {
			r.Use(mw.APIKeyAuth(apiKey))
		}
		r.Get("/stats", healthHandler.Stats)
	})

	return r
}
