// Package home serves the health endpoint.
package home

import (
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures routes for the home feature.
func SetupRoutes(router chi.Router) error {
	handlers := NewHandlers()
	router.Get("/", handlers.Health)
	return nil
}
