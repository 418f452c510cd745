package repository

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-gota/gota/dataframe"
)

// CSVSource reads the daily and hourly tables from two CSV files.
type CSVSource struct {
	DayPath  string
	HourPath string
}

func NewCSVSource(dayPath, hourPath string) *CSVSource {
	return &CSVSource{DayPath: dayPath, HourPath: hourPath}
}

func (s *CSVSource) LoadDay(ctx context.Context) (dataframe.DataFrame, error) {
	return readCSVFile(ctx, s.DayPath, dayColumns)
}

func (s *CSVSource) LoadHour(ctx context.Context) (dataframe.DataFrame, error) {
	return readCSVFile(ctx, s.HourPath, hourColumns)
}

func readCSVFile(ctx context.Context, path string, cols []column) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close csv", "path", path, "error", err)
		}
	}()

	df, err := decodeCSV(f, cols)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, err)
	}
	slog.Debug("csv loaded", "path", path, "rows", df.Nrow())
	return df, nil
}

func decodeCSV(r io.Reader, cols []column) (dataframe.DataFrame, error) {
	df := dataframe.ReadCSV(r, dataframe.WithTypes(columnTypes(cols)))
	return shapeTable(df, cols)
}
