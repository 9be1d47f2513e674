// Package router sets up HTTP routes for the API server.
package router

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	artifactsFeature "github.com/leapstack-labs/leapml/internal/api/features/artifacts"
	datasetsFeature "github.com/leapstack-labs/leapml/internal/api/features/datasets"
	homeFeature "github.com/leapstack-labs/leapml/internal/api/features/home"
	trainingFeature "github.com/leapstack-labs/leapml/internal/api/features/training"
	"github.com/leapstack-labs/leapml/internal/engine"
)

// SetupRoutes configures all routes for the API server.
func SetupRoutes(
	router chi.Router,
	eng *engine.Engine,
	sessionStore sessions.Store,
	maxUploadBytes int64,
	logger *slog.Logger,
) error {
	if err := homeFeature.SetupRoutes(router); err != nil {
		return err
	}

	if err := datasetsFeature.SetupRoutes(router, eng, sessionStore, maxUploadBytes, logger); err != nil {
		return err
	}

	if err := trainingFeature.SetupRoutes(router, eng, logger); err != nil {
		return err
	}

	if err := artifactsFeature.SetupRoutes(router, eng, sessionStore, logger); err != nil {
		return err
	}

	return nil
}
