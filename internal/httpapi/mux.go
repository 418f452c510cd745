package httpapi

import (
	"net/http"

	"bikerental-server/internal/metrics"
)

func NewMux(dataset readinessChecker, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, dataset)
	mux.Handle("GET /metrics", m.Handler())
	return mux
}
