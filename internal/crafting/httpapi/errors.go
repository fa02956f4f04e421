package httpapi

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/rsned/crafting-macro-server/internal/crafting/search"
	"github.com/rsned/crafting-macro-server/internal/crafting/sim"
	"github.com/rsned/crafting-macro-server/internal/crafting/validate"
)

// Error kinds reported in APIError.Kind.
const (
	KindBadRequest      = "bad_request"
	KindValidation      = "validation"
	KindUnknownStrategy = "unknown_strategy"
	KindUnknownSkill    = "unknown_skill"
	KindIllegalAction   = "illegal_action"
	KindNotFound        = "not_found"
	KindInternal        = "internal"
)

// APIError is the body of every error response.
type APIError struct {
	Timestamp     time.Time `json:"timestamp"`
	Status        int       `json:"status"`
	Error         string    `json:"error"`
	Kind          string    `json:"kind"`
	Message       string    `json:"message"`
	Path          string    `json:"path"`
	CorrelationID string    `json:"correlation_id"`
	Details       []string  `json:"details,omitempty"`
}

// classify maps an error onto a status code, kind and client-safe message.
func classify(err error) (int, string, string, []string) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest, KindValidation, "request validation failed", verr.Problems
	case errors.Is(err, search.ErrUnknownStrategy):
		return http.StatusBadRequest, KindUnknownStrategy, err.Error(), nil
	case errors.Is(err, sim.ErrUnknownAction):
		return http.StatusUnprocessableEntity, KindUnknownSkill, err.Error(), nil
	case errors.Is(err, sim.ErrIllegalAction):
		return http.StatusUnprocessableEntity, KindIllegalAction, err.Error(), nil
	default:
		return http.StatusInternalServerError, KindInternal, "an unexpected error occurred", nil
	}
}

// writeError classifies err and writes it as an APIError. Server errors are
// logged with the correlation ID that the client sees.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind, message, details := classify(err)
	s.writeAPIError(w, r, status, kind, message, details, err)
}

func (s *Server) writeAPIError(w http.ResponseWriter, r *http.Request, status int, kind, message string, details []string, cause error) {
	apiErr := APIError{
		Timestamp:     time.Now().UTC(),
		Status:        status,
		Error:         http.StatusText(status),
		Kind:          kind,
		Message:       message,
		Path:          r.URL.Path,
		CorrelationID: correlationID(r.Context()),
		Details:       details,
	}

	level := slog.LevelDebug
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.Log(r.Context(), level, "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"kind", kind,
		"correlation_id", apiErr.CorrelationID,
		"error", cause)

	writeJSON(w, status, apiErr)
}
