// Package training serves model training and the model catalogue.
package training

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/leapstack-labs/leapml/internal/engine"
)

// SetupRoutes configures routes for the training feature.
func SetupRoutes(router chi.Router, eng *engine.Engine, logger *slog.Logger) error {
	handlers := NewHandlers(eng, logger)

	router.Post("/train", handlers.Train)
	router.Get("/models", handlers.Models)

	return nil
}
