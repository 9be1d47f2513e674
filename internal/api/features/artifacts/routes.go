// Package artifacts serves the session's artifact history and training runs.
package artifacts

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapml/internal/engine"
)

// SetupRoutes configures routes for the artifacts feature.
func SetupRoutes(router chi.Router, eng *engine.Engine, sessionStore sessions.Store, logger *slog.Logger) error {
	handlers := NewHandlers(eng, sessionStore, logger)

	router.Get("/artifacts", handlers.List)
	router.Get("/artifacts/{id}/lineage", handlers.Lineage)
	router.Get("/runs", handlers.Runs)

	return nil
}
