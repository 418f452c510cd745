package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"bikerental-server/internal/config"
	"bikerental-server/internal/db"
	"bikerental-server/internal/httpapi"
	"bikerental-server/internal/metrics"
	"bikerental-server/internal/migrate"
	"bikerental-server/internal/modules/rentals"
	"bikerental-server/internal/modules/rentals/repository"
	rentalviews "bikerental-server/internal/modules/rentals/views"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"dataSource", cfg.DataSource,
		"dayCSVPath", cfg.DayCSVPath,
		"hourCSVPath", cfg.HourCSVPath,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
	)

	source, closeSource, err := openSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSource()

	rentalRepository := repository.NewRepository(source)
	tables, err := rentalRepository.Load(ctx)
	if err != nil {
		return fmt.Errorf("load rentals: %w", err)
	}

	m := metrics.New()
	m.SetDatasetRows("day", tables.Day.Nrow())
	m.SetDatasetRows("hour", tables.Hour.Nrow())

	if err := rentalviews.LoadTemplates(); err != nil {
		return err
	}
	mux := httpapi.NewMux(rentalRepository, m)
	rentals.RegisterFeature(mux, rentalRepository, cfg)

	srv := httpapi.NewServer(cfg, mux, m)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}

// openSource picks the table source from cfg.DataSource. The returned close
// func is always safe to call.
func openSource(ctx context.Context, cfg config.Config) (repository.Source, func(), error) {
	if cfg.DataSource != config.DataSourceSQLite {
		return repository.NewCSVSource(cfg.DayCSVPath, cfg.HourCSVPath), func() {}, nil
	}

	dbConn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if closeErr := db.Close(dbConn); closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}

	if err := migrate.Run(ctx, dbConn); err != nil {
		closeDB()
		return nil, nil, err
	}
	if err := checkConnection(ctx, dbConn); err != nil {
		closeDB()
		return nil, nil, err
	}
	slog.Info("database connection successful")

	return repository.NewSQLiteSource(dbConn), closeDB, nil
}

func checkConnection(ctx context.Context, dbConn *sql.DB) error {
	var ok int
	if err := dbConn.QueryRowContext(ctx, `SELECT 1`).Scan(&ok); err != nil {
		return err
	}
	if ok != 1 {
		return errors.New("database connection failed")
	}
	return nil
}
