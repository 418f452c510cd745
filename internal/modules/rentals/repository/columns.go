package repository

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikerental-server/internal/modules/rentals/types"
)

type column struct {
	name     string
	typ      series.Type
	optional bool
}

var dayColumns = []column{
	{name: "date", typ: series.String},
	{name: "season", typ: series.String},
	{name: "weather_condition", typ: series.String},
	{name: "temperature", typ: series.Float},
	{name: "feels_temperature", typ: series.Float},
	{name: "casual", typ: series.Int},
	{name: "registered", typ: series.Int},
	{name: "count", typ: series.Int},
}

var hourColumns = []column{
	{name: "date", typ: series.String},
	{name: "hour", typ: series.Int, optional: true},
	{name: "weather_condition", typ: series.String},
	{name: "windspeed", typ: series.Float},
	{name: "count", typ: series.Int},
}

var dateLayouts = []string{
	types.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func columnTypes(cols []column) map[string]series.Type {
	out := make(map[string]series.Type, len(cols))
	for _, c := range cols {
		out[c.name] = c.typ
	}
	return out
}

// shapeTable keeps the known columns in schema order, rejects frames missing a
// required one and rewrites the date column to YYYY-MM-DD.
func shapeTable(df dataframe.DataFrame, cols []column) (dataframe.DataFrame, error) {
	if df.Err != nil {
		return df, df.Err
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	keep := make([]string, 0, len(cols))
	for _, c := range cols {
		if present[c.name] {
			keep = append(keep, c.name)
			continue
		}
		if !c.optional {
			return dataframe.DataFrame{}, fmt.Errorf("missing column %q", c.name)
		}
	}

	df = df.Select(keep)
	if df.Err != nil {
		return df, df.Err
	}

	dates, err := normalizeDates(df.Col("date").Records())
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	df = df.Mutate(series.New(dates, series.String, "date"))
	return df, df.Err
}

func normalizeDates(values []string) ([]string, error) {
	out := make([]string, len(values))
	for i, v := range values {
		d, err := parseDate(v)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		out[i] = d
	}
	return out, nil
}

func parseDate(v string) (string, error) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t.Format(types.DateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", v)
}
