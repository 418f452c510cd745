package types

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/go-gota/gota/dataframe"
)

// DateLayout is the normalized form of every date value in the rental tables.
const DateLayout = "2006-01-02"

// Tables holds the two source datasets after loading and date normalization.
type Tables struct {
	Day  dataframe.DataFrame
	Hour dataframe.DataFrame
}

type Bounds struct {
	Min string `json:"min"`
	Max string `json:"max"`
}

// DateRange is an inclusive range of YYYY-MM-DD dates.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type DailyTotal struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

type DailySummary struct {
	Days         int     `json:"days"`
	TotalRentals int64   `json:"totalRentals"`
	AverageDaily float64 `json:"averageDaily"`
	// Empty is set when the range contains no daily rows.
	Empty bool `json:"empty"`
}

// AverageLabel formats the average the way the metrics row shows it.
func (s DailySummary) AverageLabel() string {
	return fmt.Sprintf("%.2f", s.AverageDaily)
}

type SeasonUserTotal struct {
	Season   string `json:"season"`
	UserType string `json:"userType"`
	Rentals  int64  `json:"rentals"`
}

type WeatherTotal struct {
	Condition string `json:"condition"`
	Count     int64  `json:"count"`
}

// CorrelationMatrix is a square Pearson matrix. Undefined coefficients are NaN.
type CorrelationMatrix struct {
	Labels []string    `json:"labels"`
	Values [][]float64 `json:"values"`
}

// MarshalJSON encodes NaN coefficients as null.
func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	values := make([][]*float64, len(m.Values))
	for i, row := range m.Values {
		values[i] = make([]*float64, len(row))
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			v := v
			values[i][j] = &v
		}
	}
	return json.Marshal(struct {
		Labels []string     `json:"labels"`
		Values [][]*float64 `json:"values"`
	}{Labels: m.Labels, Values: values})
}

type WindspeedTotal struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// Dashboard is every view computed for one date range.
type Dashboard struct {
	Bounds      Bounds            `json:"bounds"`
	Range       DateRange         `json:"range"`
	Summary     DailySummary      `json:"summary"`
	Daily       []DailyTotal      `json:"daily"`
	Seasons     []SeasonUserTotal `json:"seasons"`
	Weather     []WeatherTotal    `json:"weather"`
	Correlation CorrelationMatrix `json:"correlation"`
	Windspeed   []WindspeedTotal  `json:"windspeed"`
}
