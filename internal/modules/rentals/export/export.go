// Package export writes the dashboard views to an Excel workbook.
package export

import (
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/xuri/excelize/v2"

	"bikerental-server/internal/modules/rentals/types"
)

const (
	SheetSummary     = "Summary"
	SheetDaily       = "Daily"
	SheetSeasons     = "Seasons"
	SheetWeather     = "Weather"
	SheetCorrelation = "Correlation"
	SheetWindspeed   = "Windspeed"
)

// Workbook writes one sheet per view of d to w.
func Workbook(w io.Writer, d *types.Dashboard) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("export: close workbook failed", "error", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetDaily, SheetSeasons, SheetWeather, SheetCorrelation, SheetWindspeed} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("new sheet %s: %w", name, err)
		}
	}

	if err := writeRows(f, SheetSummary, summaryRows(d)); err != nil {
		return err
	}
	if err := writeRows(f, SheetDaily, dailyRows(d.Daily)); err != nil {
		return err
	}
	if err := writeRows(f, SheetSeasons, seasonRows(d.Seasons)); err != nil {
		return err
	}
	if err := writeRows(f, SheetWeather, weatherRows(d.Weather)); err != nil {
		return err
	}
	if err := writeRows(f, SheetCorrelation, correlationRows(d.Correlation)); err != nil {
		return err
	}
	if err := writeRows(f, SheetWindspeed, windspeedRows(d.Windspeed)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

func summaryRows(d *types.Dashboard) [][]any {
	return [][]any{
		{"Metric", "Value"},
		{"Start Date", d.Range.Start},
		{"End Date", d.Range.End},
		{"Days", d.Summary.Days},
		{"Total Rentals", d.Summary.TotalRentals},
		{"Average Daily Rentals", d.Summary.AverageLabel()},
	}
}

func dailyRows(totals []types.DailyTotal) [][]any {
	rows := [][]any{{"Date", "Total Rentals"}}
	for _, t := range totals {
		rows = append(rows, []any{t.Date, t.Total})
	}
	return rows
}

func seasonRows(seasons []types.SeasonUserTotal) [][]any {
	rows := [][]any{{"Season", "User Type", "Rentals"}}
	for _, s := range seasons {
		rows = append(rows, []any{s.Season, s.UserType, s.Rentals})
	}
	return rows
}

func weatherRows(weather []types.WeatherTotal) [][]any {
	rows := [][]any{{"Weather Condition", "Total Rentals"}}
	for _, w := range weather {
		rows = append(rows, []any{w.Condition, w.Count})
	}
	return rows
}

// correlationRows writes the full matrix; undefined coefficients are left blank.
func correlationRows(m types.CorrelationMatrix) [][]any {
	header := []any{""}
	for _, l := range m.Labels {
		header = append(header, l)
	}
	rows := [][]any{header}
	for i, l := range m.Labels {
		row := []any{l}
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				row = append(row, nil)
				continue
			}
			row = append(row, math.Round(v*10000)/10000)
		}
		rows = append(rows, row)
	}
	return rows
}

func windspeedRows(buckets []types.WindspeedTotal) [][]any {
	rows := [][]any{{"Windspeed Category", "Total Rentals"}}
	for _, b := range buckets {
		rows = append(rows, []any{b.Category, b.Count})
	}
	return rows
}
