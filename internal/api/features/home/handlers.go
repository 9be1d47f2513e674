package home

import (
	"net/http"

	"github.com/leapstack-labs/leapml/internal/api/features/common"
)

// Handlers provides HTTP handlers for the home feature.
type Handlers struct{}

// NewHandlers creates a new Handlers instance.
func NewHandlers() *Handlers {
	return &Handlers{}
}

// HealthResponse reports that the backend is up.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Message: "Backend is running"})
}
