package httpapi

import (
	"log/slog"
	"net/http"

	"bikerental-server/internal/utils"
)

// readinessChecker reports whether the rental tables are in memory.
type readinessChecker interface {
	Loaded() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	dataset readinessChecker
}

func NewHealthchecker(dataset readinessChecker) healthchecker {
	return &healthcheckerImpl{dataset: dataset}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if !h.dataset.Loaded() {
		slog.Warn("healthz: rental dataset not loaded")
		utils.WriteError(w, http.StatusServiceUnavailable, "rental dataset not loaded")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, dataset readinessChecker) {
	healthchecker := NewHealthchecker(dataset)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
