package controller

import (
	"context"
	"net/http"

	"bikerental-server/internal/modules/rentals/service"
	"bikerental-server/internal/modules/rentals/types"
)

// DashboardService computes the dashboard views for a date range.
type DashboardService interface {
	Bounds(ctx context.Context) (types.Bounds, error)
	DashboardViews(ctx context.Context, r types.DateRange, views service.View) (*types.Dashboard, error)
}

type RentalController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type rentalControllerImpl struct {
	service         DashboardService
	sidebarImageURL string
}

func NewRentalController(service DashboardService, sidebarImageURL string) RentalController {
	return &rentalControllerImpl{service: service, sidebarImageURL: sidebarImageURL}
}

func (c *rentalControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/dashboard", c.handleDashboardPartial)
	mux.HandleFunc("GET /api/v1/bounds", c.handleBounds)
	mux.HandleFunc("GET /api/v1/summary", c.handleSummary)
	mux.HandleFunc("GET /charts/{name}", c.handleChart)
	mux.HandleFunc("GET /export.xlsx", c.handleExport)
}
