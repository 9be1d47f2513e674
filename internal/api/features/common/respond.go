package common

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapml/pkg/core"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind core.Kind) int {
	switch kind {
	case core.KindValidation, core.KindUnknownModel, core.KindUnknownMethod:
		return http.StatusBadRequest
	case core.KindUnsupportedFormat:
		return http.StatusUnsupportedMediaType
	case core.KindParse, core.KindColumn:
		return http.StatusUnprocessableEntity
	case core.KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON encodes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes err as an ErrorResponse with the status of its kind.
// Internal errors are logged and their details withheld.
func WriteError(w http.ResponseWriter, logger *slog.Logger, err error) {
	kind := core.KindOf(err)
	msg := err.Error()
	var e *core.Error
	if errors.As(err, &e) && e.Err != nil {
		msg = e.Err.Error()
	}

	if kind == core.KindInternal {
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		msg = "internal server error"
	}

	WriteJSON(w, StatusFor(kind), ErrorResponse{Error: msg, Kind: kind.String()})
}

// DecodeJSON decodes the request body into v. Malformed bodies are
// validation errors.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return core.Errorf(core.KindValidation, "api.DecodeJSON", "request body is empty")
		}
		return core.Errorf(core.KindValidation, "api.DecodeJSON", "invalid JSON body: %v", err)
	}
	return nil
}
