package artifacts

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/pkg/core"
)

// Handlers provides HTTP handlers for the artifacts feature.
type Handlers struct {
	engine       *engine.Engine
	sessionStore sessions.Store
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, sessionStore sessions.Store, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{engine: eng, sessionStore: sessionStore, logger: logger}
}

// List returns the caller's artifacts, oldest first.
func (h *Handlers) List(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	artifacts, err := h.engine.ListArtifacts(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if artifacts == nil {
		artifacts = []*core.Artifact{}
	}

	common.WriteJSON(w, http.StatusOK, ListResponse{Artifacts: artifacts})
}

// Lineage returns an artifact and its ancestors. Artifacts of other
// sessions are reported as missing.
func (h *Handlers) Lineage(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	id := chi.URLParam(r, "id")
	lineage, err := h.engine.Lineage(r.Context(), id)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	leaf := lineage[len(lineage)-1]
	if leaf.SessionID != sessionID {
		common.WriteError(w, h.logger, core.Errorf(core.KindNotFound, "api.Lineage", "artifact %q not found", id))
		return
	}

	common.WriteJSON(w, http.StatusOK, LineageResponse{Lineage: lineage})
}

// Runs returns the caller's training runs, newest first.
func (h *Handlers) Runs(w http.ResponseWriter, r *http.Request) {
	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	runs, err := h.engine.ListRuns(r.Context(), sessionID)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if runs == nil {
		runs = []*core.Run{}
	}

	common.WriteJSON(w, http.StatusOK, RunsResponse{Runs: runs})
}
