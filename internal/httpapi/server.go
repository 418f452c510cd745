package httpapi

import (
	"net/http"
	"time"

	"bikerental-server/internal/config"
	"bikerental-server/internal/metrics"
)

func NewServer(cfg config.Config, mux *http.ServeMux, m *metrics.Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
