package service

import (
	"context"
	"fmt"
	"sync"

	"bikerental-server/internal/modules/rentals/repository"
	"bikerental-server/internal/modules/rentals/types"
)

// View selects which aggregates Compute builds. Daily totals and the summary
// are always computed.
type View uint8

const (
	ViewDaily View = 1 << iota
	ViewSeasons
	ViewWeather
	ViewCorrelation
	ViewWindspeed

	ViewAll = ViewDaily | ViewSeasons | ViewWeather | ViewCorrelation | ViewWindspeed
)

func (v View) has(o View) bool { return v&o != 0 }

type Service struct {
	repository repository.RentalRepository

	mu         sync.Mutex
	boundsFrom *types.Tables
	bounds     types.Bounds
}

func NewService(repository repository.RentalRepository) *Service {
	return &Service{repository: repository}
}

// Bounds returns the date bounds of the loaded daily table.
func (s *Service) Bounds(ctx context.Context) (types.Bounds, error) {
	tables, err := s.repository.Load(ctx)
	if err != nil {
		return types.Bounds{}, err
	}
	return s.boundsOf(tables)
}

// boundsOf computes the bounds once per loaded table set.
func (s *Service) boundsOf(tables *types.Tables) (types.Bounds, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.boundsFrom == tables {
		return s.bounds, nil
	}
	b, err := DateBounds(tables.Day)
	if err != nil {
		return types.Bounds{}, err
	}
	s.boundsFrom, s.bounds = tables, b
	return b, nil
}

// Dashboard filters both tables to r and computes every view.
func (s *Service) Dashboard(ctx context.Context, r types.DateRange) (*types.Dashboard, error) {
	return s.DashboardViews(ctx, r, ViewAll)
}

// DashboardViews is Dashboard limited to the selected views; the others are
// left empty.
func (s *Service) DashboardViews(ctx context.Context, r types.DateRange, views View) (*types.Dashboard, error) {
	tables, err := s.repository.Load(ctx)
	if err != nil {
		return nil, err
	}
	bounds, err := s.boundsOf(tables)
	if err != nil {
		return nil, err
	}
	d, err := ComputeViews(tables, r, views)
	if err != nil {
		return nil, err
	}
	d.Bounds = bounds
	return d, nil
}

// Compute filters tables to r and builds the five views.
func Compute(tables *types.Tables, r types.DateRange) (*types.Dashboard, error) {
	return ComputeViews(tables, r, ViewAll)
}

// ComputeViews filters tables to r and builds the summary plus the selected
// views. The hourly table is only filtered when an hourly view is selected.
func ComputeViews(tables *types.Tables, r types.DateRange, views View) (*types.Dashboard, error) {
	day, err := FilterByDate(tables.Day, r)
	if err != nil {
		return nil, fmt.Errorf("daily table: %w", err)
	}

	daily, err := DailyTotals(day)
	if err != nil {
		return nil, fmt.Errorf("daily totals: %w", err)
	}
	d := &types.Dashboard{
		Range:   r,
		Summary: Summarize(daily),
		Daily:   daily,
	}

	if views.has(ViewSeasons) {
		if d.Seasons, err = SeasonBreakdown(day); err != nil {
			return nil, fmt.Errorf("season breakdown: %w", err)
		}
	}
	if views.has(ViewCorrelation) {
		d.Correlation = Correlation(day)
	}
	if !views.has(ViewWeather | ViewWindspeed) {
		return d, nil
	}

	hour, err := FilterByDate(tables.Hour, r)
	if err != nil {
		return nil, fmt.Errorf("hourly table: %w", err)
	}
	if views.has(ViewWeather) {
		if d.Weather, err = WeatherTotals(hour); err != nil {
			return nil, fmt.Errorf("weather totals: %w", err)
		}
	}
	if views.has(ViewWindspeed) {
		if d.Windspeed, err = WindspeedTotals(hour); err != nil {
			return nil, fmt.Errorf("windspeed totals: %w", err)
		}
	}
	return d, nil
}
