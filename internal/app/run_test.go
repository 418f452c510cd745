package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bikerental-server/internal/config"
	"bikerental-server/internal/modules/rentals/repository"
)

const (
	dayCSV = `instant,date,season,weather_condition,temperature,feels_temperature,casual,registered,count
1,2011-01-01,Spring,Mist,0.34,0.36,331,654,985
2,2011-01-02,Spring,Mist,0.36,0.35,131,670,801
`
	hourCSV = `date,hour,weather_condition,windspeed,count
2011-01-01,0,Clear,0.0,16
2011-01-01,1,Clear,0.3,40
2011-01-02,0,Mist,0.5,17
`
)

func writeCSVs(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	day := filepath.Join(dir, "day.csv")
	hour := filepath.Join(dir, "hour.csv")
	if err := os.WriteFile(day, []byte(dayCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(hour, []byte(hourCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	return day, hour
}

func baseConfig() config.Config {
	return config.Config{
		AppEnv:             "dev",
		HTTPAddr:           "127.0.0.1:0",
		DataSource:         config.DataSourceCSV,
		SQLiteDriver:       "sqlite3",
		SQLiteMaxOpenConns: 1,
		SQLiteMaxIdleConns: 1,
	}
}

func TestOpenSource_csv(t *testing.T) {
	cfg := baseConfig()
	cfg.DayCSVPath, cfg.HourCSVPath = writeCSVs(t)

	src, closeSource, err := openSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer closeSource()

	if _, ok := src.(*repository.CSVSource); !ok {
		t.Fatalf("openSource() = %T; want *repository.CSVSource", src)
	}
}

func TestOpenSource_sqlite(t *testing.T) {
	cfg := baseConfig()
	cfg.DataSource = config.DataSourceSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "rentals.db")

	src, closeSource, err := openSource(context.Background(), cfg)
	if err != nil {
		t.Fatalf("openSource() error = %v", err)
	}
	defer closeSource()

	if _, ok := src.(*repository.SQLiteSource); !ok {
		t.Fatalf("openSource() = %T; want *repository.SQLiteSource", src)
	}
	// freshly migrated database: tables exist but are empty
	day, err := src.LoadDay(context.Background())
	if err != nil {
		t.Fatalf("LoadDay() error = %v", err)
	}
	if day.Nrow() != 0 {
		t.Errorf("LoadDay() rows = %d; want 0", day.Nrow())
	}
}

func TestRun_missingDataset(t *testing.T) {
	cfg := baseConfig()
	cfg.DayCSVPath = filepath.Join(t.TempDir(), "missing-day.csv")
	cfg.HourCSVPath = filepath.Join(t.TempDir(), "missing-hour.csv")

	err := Run(context.Background(), cfg)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Run() error = %v; want os.ErrNotExist", err)
	}
}

func TestRun_shutsDownOnCancel(t *testing.T) {
	cfg := baseConfig()
	cfg.DayCSVPath, cfg.HourCSVPath = writeCSVs(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Run(ctx, cfg) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run() error = %v; want context.Canceled", err)
		}
	case <-time.After(15 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}
