package service

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"bikerental-server/internal/modules/rentals/types"
)

var ErrEmptyTable = errors.New("daily table has no rows")

// DateBounds returns the earliest and latest date of the daily table.
func DateBounds(day dataframe.DataFrame) (types.Bounds, error) {
	if day.Nrow() == 0 {
		return types.Bounds{}, ErrEmptyTable
	}
	dates := day.Col("date").Records()
	sort.Strings(dates)
	return types.Bounds{Min: dates[0], Max: dates[len(dates)-1]}, nil
}

// ResolveRange fills absent endpoints from the bounds: a missing start becomes
// the first date and a missing end becomes the last, so a lone start date
// selects through the end of the dataset.
func ResolveRange(b types.Bounds, start, end string) types.DateRange {
	if start == "" {
		start = b.Min
	}
	if end == "" {
		end = b.Max
	}
	return types.DateRange{Start: start, End: end}
}

// FilterByDate keeps the rows whose date lies in the inclusive range.
func FilterByDate(df dataframe.DataFrame, r types.DateRange) (dataframe.DataFrame, error) {
	if df.Nrow() == 0 {
		return df, nil
	}
	out := df.FilterAggregation(dataframe.And,
		dataframe.F{Colname: "date", Comparator: series.GreaterEq, Comparando: r.Start},
		dataframe.F{Colname: "date", Comparator: series.LessEq, Comparando: r.End},
	)
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("filter %s..%s: %w", r.Start, r.End, out.Err)
	}
	return out, nil
}
