package recserver

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type contextKey string

const requestIDKey contextKey = "request_id"

// statusWriter captures the status code written by a handler so the
// access log and metrics see the real outcome.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wrote {
		w.status = status
		w.wrote = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wrote {
		w.status = http.StatusOK
		w.wrote = true
	}
	return w.ResponseWriter.Write(b)
}

// quietPath reports whether a path is probe traffic that should stay
// out of the access log and request metrics.
func quietPath(path string) bool {
	switch path {
	case "/health", "/api/health", "/metrics":
		return true
	}
	return false
}

// withMiddleware wraps a handler with request ID propagation, panic
// recovery, Prometheus instrumentation and structured access logging.
func withMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if quietPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)

		start := time.Now()
		httpRequestsInFlight.Inc()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if rec := recover(); rec != nil {
				slog.Error("handler panic",
					slog.Any("panic", rec),
					slog.String("path", r.URL.Path),
					slog.String("request_id", requestID))
				if !sw.wrote {
					writeJSON(sw, http.StatusInternalServerError, map[string]any{
						"success": false,
						"error":   "internal server error",
					})
				}
			}

			elapsed := time.Since(start)
			status := strconv.Itoa(sw.status)
			httpRequestsInFlight.Dec()
			httpRequestsTotal.WithLabelValues(r.Method, r.URL.Path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, r.URL.Path, status).Observe(elapsed.Seconds())

			slog.Info("request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", elapsed),
				slog.String("request_id", requestID))
		}()

		next.ServeHTTP(sw, r.WithContext(ctx))
	})
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}
