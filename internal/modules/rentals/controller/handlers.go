package controller

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"

	"bikerental-server/internal/modules/rentals/charts"
	"bikerental-server/internal/modules/rentals/export"
	"bikerental-server/internal/modules/rentals/service"
	"bikerental-server/internal/modules/rentals/types"
	"bikerental-server/internal/modules/rentals/views"
	"bikerental-server/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// chartViews maps each chart to the only view it draws.
var chartViews = map[string]service.View{
	"daily.svg":       service.ViewDaily,
	"seasons.svg":     service.ViewSeasons,
	"weather.svg":     service.ViewWeather,
	"correlation.svg": service.ViewCorrelation,
	"windspeed.svg":   service.ViewWindspeed,
}

// loadDashboard resolves the request range and computes the selected views. On
// failure it writes the error response and returns nil.
func (c *rentalControllerImpl) loadDashboard(w http.ResponseWriter, r *http.Request, op string, views service.View) *types.Dashboard {
	bounds, err := c.service.Bounds(r.Context())
	if err != nil {
		slog.Error(op+": load bounds failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load rentals")
		return nil
	}
	rng, err := parseRangeQuery(r, bounds)
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	d, err := c.service.DashboardViews(r.Context(), rng, views)
	if err != nil {
		slog.Error(op+": compute dashboard failed", "start", rng.Start, "end", rng.End, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to compute dashboard")
		return nil
	}
	return d
}

func (c *rentalControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	d := c.loadDashboard(w, r, "dashboard", service.ViewAll)
	if d == nil {
		return
	}

	var buf bytes.Buffer
	if err := views.RenderDashboard(&buf, views.NewDashboardPage(d, c.sidebarImageURL)); err != nil {
		slog.Error("dashboard template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (c *rentalControllerImpl) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	d := c.loadDashboard(w, r, "dashboard partial", service.ViewAll)
	if d == nil {
		return
	}
	// hx-push-url would otherwise record the fragment URL in history.
	w.Header().Set("HX-Push-Url", pageURL(d.Range))

	content := views.NewDashboardContent(d)
	var buf bytes.Buffer
	if err := views.RenderDashboardPartial(&buf, &content); err != nil {
		slog.Error("dashboard partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (c *rentalControllerImpl) handleBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := c.service.Bounds(r.Context())
	if err != nil {
		slog.Error("bounds: load failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load rentals")
		return
	}
	utils.WriteJSON(w, http.StatusOK, bounds)
}

func (c *rentalControllerImpl) handleSummary(w http.ResponseWriter, r *http.Request) {
	d := c.loadDashboard(w, r, "summary", service.ViewAll)
	if d == nil {
		return
	}
	utils.WriteJSON(w, http.StatusOK, d)
}

func (c *rentalControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	view, ok := chartViews[name]
	if !ok {
		utils.WriteError(w, http.StatusNotFound, "unknown chart "+name)
		return
	}
	d := c.loadDashboard(w, r, "chart", view)
	if d == nil {
		return
	}
	if d.Summary.Empty {
		utils.WriteError(w, http.StatusNotFound, charts.ErrNoData.Error())
		return
	}

	var buf bytes.Buffer
	if err := charts.Render(&buf, name, d); err != nil {
		if errors.Is(err, charts.ErrNoData) {
			utils.WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		slog.Error("chart render failed", "chart", name, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render chart")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	utils.WriteBody(w, "image/svg+xml", buf.Bytes())
}

func (c *rentalControllerImpl) handleExport(w http.ResponseWriter, r *http.Request) {
	d := c.loadDashboard(w, r, "export", service.ViewAll)
	if d == nil {
		return
	}

	var buf bytes.Buffer
	if err := export.Workbook(&buf, d); err != nil {
		slog.Error("export: build workbook failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to build export")
		return
	}
	w.Header().Set("Content-Disposition", utils.AttachmentDisposition(exportFilename(d.Range)))
	utils.WriteBody(w, xlsxContentType, buf.Bytes())
}
