package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"bikerental-server/internal/config"
	"bikerental-server/internal/metrics"
)

type fakeDataset struct{ loaded bool }

func (f fakeDataset) Loaded() bool { return f.loaded }

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		loaded     bool
		wantStatus int
		wantBody   string
	}{
		{name: "ok when dataset loaded", loaded: true, wantStatus: http.StatusOK, wantBody: `"status":"ok"`},
		{name: "503 before load", loaded: false, wantStatus: http.StatusServiceUnavailable, wantBody: "rental dataset not loaded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := NewMux(fakeDataset{loaded: tt.loaded}, metrics.New())
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d; want %d", rec.Code, tt.wantStatus)
			}
			if !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q; want to contain %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHealthz_methodNotAllowed(t *testing.T) {
	mux := NewMux(fakeDataset{loaded: true}, metrics.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.SetDatasetRows("hour", 24)
	mux := NewMux(fakeDataset{loaded: true}, m)
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
	}
	if !strings.Contains(rec.Body.String(), `bikerental_dataset_rows{table="hour"} 24`) {
		t.Error("metrics body missing dataset gauge")
	}
}

func TestRequestLogger_recordsRoute(t *testing.T) {
	m := metrics.New()
	mux := NewMux(fakeDataset{loaded: true}, m)
	srv := NewServer(config.Config{HTTPAddr: ":0"}, mux, m)

	for _, path := range []string{"/healthz", "/healthz", "/nope"} {
		rec := httptest.NewRecorder()
		srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("GET /healthz", "GET", "200")); got != 2 {
		t.Errorf("healthz count = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("unmatched", "GET", "404")); got != 1 {
		t.Errorf("unmatched count = %v; want 1", got)
	}
}

func TestStatusRecorder(t *testing.T) {
	rec := httptest.NewRecorder()
	sr := &statusRecorder{ResponseWriter: rec, status: http.StatusOK}

	sr.WriteHeader(http.StatusTeapot)

	if sr.status != http.StatusTeapot || rec.Code != http.StatusTeapot {
		t.Errorf("status = %d/%d; want %d", sr.status, rec.Code, http.StatusTeapot)
	}
}

func TestNewServer(t *testing.T) {
	srv := NewServer(config.Config{HTTPAddr: "127.0.0.1:9999"}, http.NewServeMux(), nil)
	if srv.Addr != "127.0.0.1:9999" {
		t.Errorf("Addr = %q", srv.Addr)
	}
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
	}
}
