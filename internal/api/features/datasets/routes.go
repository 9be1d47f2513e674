// Package datasets serves upload, preprocessing and splitting.
package datasets

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapml/internal/engine"
)

// SetupRoutes configures routes for the datasets feature.
func SetupRoutes(router chi.Router, eng *engine.Engine, sessionStore sessions.Store, maxUploadBytes int64, logger *slog.Logger) error {
	handlers := NewHandlers(eng, sessionStore, maxUploadBytes, logger)

	router.Post("/upload", handlers.Upload)
	router.Post("/preprocess", handlers.Preprocess)
	router.Post("/split", handlers.Split)

	return nil
}
