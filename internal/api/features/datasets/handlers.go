package datasets

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"
	"github.com/leapstack-labs/leapml/internal/api/features/common"
	"github.com/leapstack-labs/leapml/internal/engine"
	"github.com/leapstack-labs/leapml/pkg/core"
	"github.com/leapstack-labs/leapml/pkg/split"
)

// DefaultMaxUploadBytes caps upload bodies when no limit is configured.
const DefaultMaxUploadBytes = 32 << 20

// Handlers provides HTTP handlers for the datasets feature.
type Handlers struct {
	engine         *engine.Engine
	sessionStore   sessions.Store
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(eng *engine.Engine, sessionStore sessions.Store, maxUploadBytes int64, logger *slog.Logger) *Handlers {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		engine:         eng,
		sessionStore:   sessionStore,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Upload stores the multipart field "file" in the caller's session and
// returns its shape and preview.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	const op = "api.Upload"

	sessionID, err := common.SessionID(h.sessionStore, w, r)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			common.WriteJSON(w, http.StatusRequestEntityTooLarge, common.ErrorResponse{
				Error: "file exceeds the upload limit",
				Kind:  core.KindValidation.String(),
			})
			return
		}
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, op, "invalid multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		// A part sent with an empty filename is parsed as a plain form value.
		msg := "no file part"
		if _, ok := r.MultipartForm.Value["file"]; ok {
			msg = "no selected file"
		}
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, op, "%s", msg))
		return
	}
	defer func() { _ = file.Close() }()

	res, err := h.engine.Upload(r.Context(), sessionID, header.Filename, file)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, UploadResponse{Success: true, Data: res.Info, FilePath: res.Path})
}

// Preprocess rescales the requested columns of a stored file.
func (h *Handlers) Preprocess(w http.ResponseWriter, r *http.Request) {
	var req PreprocessRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if req.FilePath == "" {
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, "api.Preprocess", "filepath is required"))
		return
	}

	res, err := h.engine.Preprocess(r.Context(), req.FilePath, req.Method, req.Columns)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, PreprocessResponse{
		Success:       true,
		ProcessedPath: res.ProcessedPath,
		Preview:       res.Preview,
	})
}

// Split writes train and test partitions of a stored file.
func (h *Handlers) Split(w http.ResponseWriter, r *http.Request) {
	const op = "api.Split"

	var req SplitRequest
	if err := common.DecodeJSON(r, &req); err != nil {
		common.WriteError(w, h.logger, err)
		return
	}
	if req.FilePath == "" {
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, op, "filepath is required"))
		return
	}
	if req.TargetColumn == "" {
		common.WriteError(w, h.logger, core.Errorf(core.KindValidation, op, "target_column is required"))
		return
	}

	testSize := split.DefaultTestSize
	if req.TestSize != nil {
		testSize = *req.TestSize
	}

	res, err := h.engine.Split(r.Context(), req.FilePath, req.TargetColumn, testSize)
	if err != nil {
		common.WriteError(w, h.logger, err)
		return
	}

	common.WriteJSON(w, http.StatusOK, SplitResponse{Success: true, Split: res})
}
