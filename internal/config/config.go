package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DataSourceCSV    = "csv"
	DataSourceSQLite = "sqlite"

	defaultSidebarImageURL = "https://img.freepik.com/free-vector/commuting-by-bike-concept-illustration_114360-28232.jpg?w=826"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// DataSource selects where the daily and hourly tables are loaded from: "csv" or "sqlite".
	DataSource  string
	DayCSVPath  string
	HourCSVPath string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	SidebarImageURL string
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := envOrDefault("HTTP_ADDR", ":8080")

	dataSource := strings.ToLower(envOrDefault("DATA_SOURCE", DataSourceCSV))
	switch dataSource {
	case DataSourceCSV, DataSourceSQLite:
	default:
		return Config{}, fmt.Errorf("invalid DATA_SOURCE %q (allowed: csv, sqlite)", dataSource)
	}

	maxOpenConns, err := envInt("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := envInt("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}

	connMaxLifetimeStr := envOrDefault("DB_CONN_MAX_LIFETIME", "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		DataSource:            dataSource,
		DayCSVPath:            envOrDefault("DAY_CSV_PATH", "dashboard/day.csv"),
		HourCSVPath:           envOrDefault("HOUR_CSV_PATH", "dashboard/hour.csv"),
		SQLiteDriver:          envOrDefault("DB_DRIVER", "sqlite3"),
		SQLiteDSN:             strings.TrimSpace(os.Getenv("DB_DSN")),
		SQLitePath:            envOrDefault("SQLITE_PATH", "data/rentals.db"),
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		SidebarImageURL:       envOrDefault("SIDEBAR_IMAGE_URL", defaultSidebarImageURL),
	}, nil
}

func envOrDefault(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, s, err)
	}
	return n, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
