package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikerental-server/internal/modules/rentals/types"
)

//go:embed sql/select-day-rentals.sql
var selectDayRentalsSQL string

//go:embed sql/select-hour-rentals.sql
var selectHourRentalsSQL string

//go:embed sql/insert-day-rental.sql
var insertDayRentalSQL string

//go:embed sql/insert-hour-rental.sql
var insertHourRentalSQL string

// SQLiteSource reads the tables from day_rentals and hour_rentals.
type SQLiteSource struct {
	db *sql.DB
}

func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func (s *SQLiteSource) LoadDay(ctx context.Context) (dataframe.DataFrame, error) {
	rows, err := s.db.QueryContext(ctx, selectDayRentalsSQL)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("query day_rentals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close day rentals rows", "error", err)
		}
	}()

	var (
		dates, seasons, conditions []string
		temps, feels               []float64
		casual, registered, counts []int
	)
	for rows.Next() {
		var (
			date, season, condition string
			temp, feel              float64
			c, r, n                 int
		)
		if err := rows.Scan(&date, &season, &condition, &temp, &feel, &c, &r, &n); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("scan day_rentals: %w", err)
		}
		dates = append(dates, date)
		seasons = append(seasons, season)
		conditions = append(conditions, condition)
		temps = append(temps, temp)
		feels = append(feels, feel)
		casual = append(casual, c)
		registered = append(registered, r)
		counts = append(counts, n)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("iterate day_rentals: %w", err)
	}

	df := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(seasons, series.String, "season"),
		series.New(conditions, series.String, "weather_condition"),
		series.New(temps, series.Float, "temperature"),
		series.New(feels, series.Float, "feels_temperature"),
		series.New(casual, series.Int, "casual"),
		series.New(registered, series.Int, "registered"),
		series.New(counts, series.Int, "count"),
	)
	df, err = shapeTable(df, dayColumns)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("day_rentals: %w", err)
	}
	return df, nil
}

func (s *SQLiteSource) LoadHour(ctx context.Context) (dataframe.DataFrame, error) {
	rows, err := s.db.QueryContext(ctx, selectHourRentalsSQL)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("query hour_rentals: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close hour rentals rows", "error", err)
		}
	}()

	var (
		dates, conditions []string
		hours, counts     []int
		windspeeds        []float64
	)
	for rows.Next() {
		var (
			date, condition string
			hour, n         int
			wind            float64
		)
		if err := rows.Scan(&date, &hour, &condition, &wind, &n); err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("scan hour_rentals: %w", err)
		}
		dates = append(dates, date)
		hours = append(hours, hour)
		conditions = append(conditions, condition)
		windspeeds = append(windspeeds, wind)
		counts = append(counts, n)
	}
	if err := rows.Err(); err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("iterate hour_rentals: %w", err)
	}

	df := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(hours, series.Int, "hour"),
		series.New(conditions, series.String, "weather_condition"),
		series.New(windspeeds, series.Float, "windspeed"),
		series.New(counts, series.Int, "count"),
	)
	df, err = shapeTable(df, hourColumns)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("hour_rentals: %w", err)
	}
	return df, nil
}

// Save upserts both tables in a single transaction. Hourly rows without an
// hour column are numbered in file order within each date.
func (s *SQLiteSource) Save(ctx context.Context, tables *types.Tables) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := saveDay(ctx, tx, tables.Day); err != nil {
		return err
	}
	if err := saveHour(ctx, tx, tables.Hour); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	slog.Info("rentals imported", "day_rows", tables.Day.Nrow(), "hour_rows", tables.Hour.Nrow())
	return nil
}

func saveDay(ctx context.Context, tx *sql.Tx, df dataframe.DataFrame) error {
	stmt, err := tx.PrepareContext(ctx, insertDayRentalSQL)
	if err != nil {
		return fmt.Errorf("prepare day insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	dates := df.Col("date").Records()
	seasons := df.Col("season").Records()
	conditions := df.Col("weather_condition").Records()
	temps := df.Col("temperature").Float()
	feels := df.Col("feels_temperature").Float()
	casual, err := df.Col("casual").Int()
	if err != nil {
		return fmt.Errorf("day casual: %w", err)
	}
	registered, err := df.Col("registered").Int()
	if err != nil {
		return fmt.Errorf("day registered: %w", err)
	}
	counts, err := df.Col("count").Int()
	if err != nil {
		return fmt.Errorf("day count: %w", err)
	}

	for i := range dates {
		if _, err := stmt.ExecContext(ctx,
			dates[i], seasons[i], conditions[i], temps[i], feels[i], casual[i], registered[i], counts[i],
		); err != nil {
			return fmt.Errorf("insert day %s: %w", dates[i], err)
		}
	}
	return nil
}

func saveHour(ctx context.Context, tx *sql.Tx, df dataframe.DataFrame) error {
	stmt, err := tx.PrepareContext(ctx, insertHourRentalSQL)
	if err != nil {
		return fmt.Errorf("prepare hour insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	dates := df.Col("date").Records()
	conditions := df.Col("weather_condition").Records()
	windspeeds := df.Col("windspeed").Float()
	counts, err := df.Col("count").Int()
	if err != nil {
		return fmt.Errorf("hour count: %w", err)
	}

	hours := make([]int, len(dates))
	if hasColumn(df, "hour") {
		hours, err = df.Col("hour").Int()
		if err != nil {
			return fmt.Errorf("hour hour: %w", err)
		}
	} else {
		seen := make(map[string]int)
		for i, d := range dates {
			hours[i] = seen[d]
			seen[d]++
		}
	}

	for i := range dates {
		if _, err := stmt.ExecContext(ctx, dates[i], hours[i], conditions[i], windspeeds[i], counts[i]); err != nil {
			return fmt.Errorf("insert hour %s %d: %w", dates[i], hours[i], err)
		}
	}
	return nil
}

func hasColumn(df dataframe.DataFrame, name string) bool {
	for _, n := range df.Names() {
		if n == name {
			return true
		}
	}
	return false
}
