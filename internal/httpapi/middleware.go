package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"bikerental-server/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// requestLogger logs every request and records it under the matched route
// pattern. r.Pattern is set by the mux, so it is read after next returns.
func requestLogger(next http.Handler, m *metrics.Metrics) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)
		elapsed := time.Since(start)

		if m != nil {
			m.ObserveRequest(r.Pattern, r.Method, sr.status, elapsed)
		}
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", r.Pattern,
			"status", sr.status,
			"duration_ms", elapsed.Milliseconds(),
		)
	})
}
