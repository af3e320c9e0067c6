package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"anemo-backend/internal/agent"
	"anemo-backend/internal/schema"

	"github.com/rs/zerolog"
)

// Error kinds reported to clients.
const (
	KindInvalidInput     = "invalid_input"
	KindModelUnavailable = "model_unavailable"
	KindSchemaViolation  = "schema_violation"
	KindConflict         = "conflict"
	KindNotFound         = "not_found"
	KindInternal         = "internal"
)

const msgServerSide = "Something went wrong on our side. Please try again."

// ErrConflict and ErrNotFound let domain packages mark their errors for
// the HTTP layer without importing net/http.
var (
	ErrConflict = errors.New("conflict")
	ErrNotFound = errors.New("not found")
)

type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

// Decode reads a JSON body, ignoring unknown fields.
func Decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: malformed JSON body", schema.ErrInvalidInput)
	}
	return nil
}

// Error maps err to a status code and a non-technical message.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	status, body := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("kind", body.Kind).Msg("request failed")
	} else {
		logger.Info().Err(err).Str("kind", body.Kind).Msg("request rejected")
	}
	JSON(w, r, status, body)
}

func classify(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, schema.ErrInvalidInput):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Kind: KindInvalidInput}
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: err.Error(), Kind: KindConflict}
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Kind: KindNotFound}
	case errors.Is(err, agent.ErrUnavailable):
		return http.StatusBadGateway, ErrorResponse{Error: msgServerSide, Kind: KindModelUnavailable}
	case errors.Is(err, schema.ErrViolation):
		return http.StatusBadGateway, ErrorResponse{Error: msgServerSide, Kind: KindSchemaViolation}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: msgServerSide, Kind: KindInternal}
}
