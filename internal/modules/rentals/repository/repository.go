package repository

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"bikerental-server/internal/modules/rentals/types"
)

// Source produces the raw daily and hourly tables.
type Source interface {
	LoadDay(ctx context.Context) (dataframe.DataFrame, error)
	LoadHour(ctx context.Context) (dataframe.DataFrame, error)
}

type RentalRepository interface {
	// Load returns the tables, reading the source only on the first successful call.
	Load(ctx context.Context) (*types.Tables, error)
	// Loaded reports whether the tables are cached.
	Loaded() bool
}

type repositoryImpl struct {
	source Source
	group  singleflight.Group

	mu     sync.RWMutex
	tables *types.Tables
}

func NewRepository(source Source) RentalRepository {
	return &repositoryImpl{source: source}
}

func (r *repositoryImpl) Load(ctx context.Context) (*types.Tables, error) {
	if t := r.cached(); t != nil {
		return t, nil
	}

	v, err, _ := r.group.Do("tables", func() (any, error) {
		if t := r.cached(); t != nil {
			return t, nil
		}
		start := time.Now()
		t, err := loadTables(ctx, r.source)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.tables = t
		r.mu.Unlock()
		slog.Info("rental tables loaded",
			"day_rows", t.Day.Nrow(),
			"hour_rows", t.Hour.Nrow(),
			"elapsed", time.Since(start),
		)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.Tables), nil
}

func (r *repositoryImpl) Loaded() bool {
	return r.cached() != nil
}

func (r *repositoryImpl) cached() *types.Tables {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables
}

func loadTables(ctx context.Context, source Source) (*types.Tables, error) {
	var day, hour dataframe.DataFrame
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		df, err := source.LoadDay(gctx)
		if err != nil {
			return fmt.Errorf("load daily table: %w", err)
		}
		day = df
		return nil
	})
	g.Go(func() error {
		df, err := source.LoadHour(gctx)
		if err != nil {
			return fmt.Errorf("load hourly table: %w", err)
		}
		hour = df
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &types.Tables{Day: day, Hour: hour}, nil
}
