package training

import (
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/pkg/core"
)

// Handlers provides HTTP handlers for the training feature.
type Handlers struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{engine: eng, logger: logger}
}

// Train fits the requested model and evaluates it on the test file.
func (h *Handlers) Train(w http.ResponseWriter, r *http.Request) {
	var req TrainRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if req.TrainPath == "" || req.TestPath == "" || req.TargetColumn == "" {
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, "api.Train",
			"train_path, test_path and target_column are required"))
		return
	}

	results, err := h.engine.Train(r.Context(), engine.TrainRequest{
		ModelName:    req.ModelName,
		TrainPath:    req.TrainPath,
		TestPath:     req.TestPath,
		TargetColumn: req.TargetColumn,
	})
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, TrainResponse{Success: true, Results: results})
}

// Models lists the model tags and preprocessing methods.
func (h *Handlers) Models(w http.ResponseWriter, _ *http.Request) {
	common.WriteJSON(w, http.StatusOK, ModelsResponse{
		Models:  h.engine.Models(),
		Methods: h.engine.Methods(),
	})
}
