package service

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"

	"bikerental-server/internal/modules/rentals/types"
)

var (
	SeasonOrder     = []string{"Spring", "Summer", "Fall", "Winter"}
	UserTypes       = []string{"casual", "registered"}
	CorrelationCols = []string{"temperature", "feels_temperature", "count"}
	WindspeedOrder  = []string{"Low", "Medium", "High"}
)

var weatherLabels = map[string]string{
	"Light_precipitation": "Light Weather",
	"Heavy_precipitation": "Heavy Weather",
}

// windspeedBins are right-closed: (-0.1, 0.2], (0.2, 0.4], (0.4, 1.1].
var windspeedBins = []float64{-0.1, 0.2, 0.4, 1.1}

func sumColumn(col string) string {
	return fmt.Sprintf("%s_%s", col, dataframe.Aggregation_SUM)
}

// groupSums sums the value columns per distinct key and returns them keyed by
// the key column's value. NA cells are skipped per column, so one missing value
// does not blank out its whole group.
func groupSums(df dataframe.DataFrame, key string, values ...string) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for i, v := range values {
		present := df
		if df.Nrow() > 0 {
			present = df.Filter(dataframe.F{Colname: v, Comparator: series.CompFunc, Comparando: notNA})
			if present.Err != nil {
				return nil, fmt.Errorf("drop missing %s: %w", v, present.Err)
			}
		}
		if present.Nrow() == 0 {
			continue
		}

		grouped := present.GroupBy(key)
		if grouped.Err != nil {
			return nil, fmt.Errorf("group by %s: %w", key, grouped.Err)
		}
		agg := grouped.Aggregation([]dataframe.AggregationType{dataframe.Aggregation_SUM}, []string{v})
		if agg.Err != nil {
			return nil, fmt.Errorf("sum %s by %s: %w", v, key, agg.Err)
		}

		keys := agg.Col(key).Records()
		sums := agg.Col(sumColumn(v)).Float()
		for row, k := range keys {
			if _, ok := out[k]; !ok {
				out[k] = make([]float64, len(values))
			}
			out[k][i] = sums[row]
		}
	}
	return out, nil
}

func notNA(el series.Element) bool {
	return !el.IsNA()
}

// DailyTotals sums count per date in ascending date order.
func DailyTotals(day dataframe.DataFrame) ([]types.DailyTotal, error) {
	sums, err := groupSums(day, "date", "count")
	if err != nil {
		return nil, err
	}
	out := make([]types.DailyTotal, 0, len(sums))
	for date, v := range sums {
		out = append(out, types.DailyTotal{Date: date, Total: toCount(v[0])})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// Summarize returns the total and the mean of the per-date totals.
func Summarize(totals []types.DailyTotal) types.DailySummary {
	if len(totals) == 0 {
		return types.DailySummary{Empty: true}
	}
	values := make([]float64, len(totals))
	var total int64
	for i, d := range totals {
		values[i] = float64(d.Total)
		total += d.Total
	}
	return types.DailySummary{
		Days:         len(totals),
		TotalRentals: total,
		AverageDaily: stat.Mean(values, nil),
	}
}

// SeasonBreakdown sums casual and registered rentals per season. The result
// always has one row per season and user type, in season order with casual
// first; seasons outside SeasonOrder are dropped.
func SeasonBreakdown(day dataframe.DataFrame) ([]types.SeasonUserTotal, error) {
	sums, err := groupSums(day, "season", UserTypes...)
	if err != nil {
		return nil, err
	}
	out := make([]types.SeasonUserTotal, 0, len(SeasonOrder)*len(UserTypes))
	for _, season := range SeasonOrder {
		v := sums[season]
		for i, user := range UserTypes {
			var rentals int64
			if v != nil {
				rentals = toCount(v[i])
			}
			out = append(out, types.SeasonUserTotal{Season: season, UserType: user, Rentals: rentals})
		}
	}
	return out, nil
}

// WeatherTotals sums hourly count per weather condition, largest first.
func WeatherTotals(hour dataframe.DataFrame) ([]types.WeatherTotal, error) {
	sums, err := groupSums(hour, "weather_condition", "count")
	if err != nil {
		return nil, err
	}
	out := make([]types.WeatherTotal, 0, len(sums))
	for cond, v := range sums {
		out = append(out, types.WeatherTotal{Condition: WeatherLabel(cond), Count: toCount(v[0])})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Condition < out[j].Condition
	})
	return out, nil
}

// WeatherLabel returns the display name of a weather condition.
func WeatherLabel(cond string) string {
	if l, ok := weatherLabels[cond]; ok {
		return l
	}
	return cond
}

// Correlation computes the Pearson matrix of temperature, feels_temperature
// and count. The diagonal is 1; pairs with fewer than two rows or no
// variance are NaN.
func Correlation(day dataframe.DataFrame) types.CorrelationMatrix {
	n := len(CorrelationCols)
	cols := make([][]float64, n)
	for i, c := range CorrelationCols {
		if day.Nrow() > 0 {
			cols[i] = day.Col(c).Float()
		}
	}

	values := make([][]float64, n)
	for i := range values {
		values[i] = make([]float64, n)
		values[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			r := pearson(cols[i], cols[j])
			values[i][j] = r
			values[j][i] = r
		}
	}
	labels := make([]string, n)
	copy(labels, CorrelationCols)
	return types.CorrelationMatrix{Labels: labels, Values: values}
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsInf(r, 0) {
		return math.NaN()
	}
	return r
}

// WindspeedCategory returns the bucket of a windspeed, or "" when it falls
// outside every bucket.
func WindspeedCategory(w float64) string {
	for i := 1; i < len(windspeedBins); i++ {
		if w > windspeedBins[i-1] && w <= windspeedBins[i] {
			return WindspeedOrder[i-1]
		}
	}
	return ""
}

// WindspeedTotals sums hourly count per windspeed bucket, always returning
// Low, Medium and High in that order.
func WindspeedTotals(hour dataframe.DataFrame) ([]types.WindspeedTotal, error) {
	binned, err := withWindspeedCategory(hour)
	if err != nil {
		return nil, err
	}
	sums, err := groupSums(binned, "windspeed_category", "count")
	if err != nil {
		return nil, err
	}
	out := make([]types.WindspeedTotal, len(WindspeedOrder))
	for i, cat := range WindspeedOrder {
		out[i] = types.WindspeedTotal{Category: cat}
		if v, ok := sums[cat]; ok {
			out[i].Count = toCount(v[0])
		}
	}
	return out, nil
}

// withWindspeedCategory drops rows outside the buckets and labels the rest.
func withWindspeedCategory(hour dataframe.DataFrame) (dataframe.DataFrame, error) {
	if hour.Nrow() == 0 {
		return hour, nil
	}
	inRange := hour.FilterAggregation(dataframe.And,
		dataframe.F{Colname: "windspeed", Comparator: series.Greater, Comparando: windspeedBins[0]},
		dataframe.F{Colname: "windspeed", Comparator: series.LessEq, Comparando: windspeedBins[len(windspeedBins)-1]},
	)
	if inRange.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("windspeed range: %w", inRange.Err)
	}
	if inRange.Nrow() == 0 {
		return inRange, nil
	}

	speeds := inRange.Col("windspeed").Float()
	cats := make([]string, len(speeds))
	for i, w := range speeds {
		cats[i] = WindspeedCategory(w)
	}
	out := inRange.Mutate(series.New(cats, series.String, "windspeed_category"))
	if out.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("windspeed category: %w", out.Err)
	}
	return out, nil
}

func toCount(v float64) int64 {
	if math.IsNaN(v) {
		return 0
	}
	return int64(math.Round(v))
}
