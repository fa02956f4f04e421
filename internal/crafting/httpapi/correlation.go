package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// CorrelationHeader carries the request's correlation ID in both directions.
const CorrelationHeader = "X-Correlation-ID"

type correlationKey struct{}

// correlationID returns the ID assigned by logRequests, or a fresh one for
// requests that did not pass through it.
func correlationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// requestCorrelationID keeps a caller-supplied UUID so client and server logs
// line up. Anything else is replaced.
func requestCorrelationID(r *http.Request) string {
	if id := r.Header.Get(CorrelationHeader); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

// statusRecorder remembers the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// logRequests tags every request with a correlation ID, echoes it in the
// response and logs the outcome under it.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestCorrelationID(r)
		w.Header().Set(CorrelationHeader, id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), correlationKey{}, id)))

		s.logger.Debug("handled request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"correlation_id", id,
			"elapsed", time.Since(start))
	})
}
