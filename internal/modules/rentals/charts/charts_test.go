package charts

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"bikerental-server/internal/modules/rentals/types"
)

func sampleDashboard() *types.Dashboard {
	return &types.Dashboard{
		Daily: []types.DailyTotal{
			{Date: "2024-01-01", Total: 10},
			{Date: "2024-01-02", Total: 20},
			{Date: "2024-01-03", Total: 15},
		},
		Seasons: []types.SeasonUserTotal{
			{Season: "Spring", UserType: "casual", Rentals: 15},
			{Season: "Spring", UserType: "registered", Rentals: 100},
			{Season: "Summer", UserType: "casual", Rentals: 30},
			{Season: "Summer", UserType: "registered", Rentals: 120},
			{Season: "Fall", UserType: "casual", Rentals: 0},
			{Season: "Fall", UserType: "registered", Rentals: 0},
			{Season: "Winter", UserType: "casual", Rentals: 8},
			{Season: "Winter", UserType: "registered", Rentals: 90},
		},
		Weather: []types.WeatherTotal{
			{Condition: "Clear", Count: 278},
			{Condition: "Mist", Count: 65},
			{Condition: "Light Weather", Count: 20},
		},
		Correlation: types.CorrelationMatrix{
			Labels: []string{"temperature", "feels_temperature", "count"},
			Values: [][]float64{
				{1, 0.99, 0.63},
				{0.99, 1, 0.61},
				{0.63, 0.61, 1},
			},
		},
		Windspeed: []types.WindspeedTotal{
			{Category: "Low", Count: 180},
			{Category: "Medium", Count: 42},
			{Category: "High", Count: 163},
		},
	}
}

func TestRender_allCharts(t *testing.T) {
	d := sampleDashboard()
	for _, name := range Names {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Render(&buf, name, d); err != nil {
				t.Fatalf("Render(%s) = %v; want nil", name, err)
			}
			if !strings.Contains(buf.String(), "<svg") {
				t.Errorf("Render(%s) output is not SVG: %.80q", name, buf.String())
			}
		})
	}
}

func TestRender_unknown(t *testing.T) {
	err := Render(&bytes.Buffer{}, "pie.svg", sampleDashboard())
	if !errors.Is(err, ErrUnknownChart) {
		t.Errorf("Render(pie.svg) = %v; want ErrUnknownChart", err)
	}
}

func TestDaily(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		if err := Daily(&bytes.Buffer{}, nil); !errors.Is(err, ErrNoData) {
			t.Errorf("Daily(nil) = %v; want ErrNoData", err)
		}
	})

	t.Run("single day", func(t *testing.T) {
		var buf bytes.Buffer
		if err := Daily(&buf, []types.DailyTotal{{Date: "2024-01-01", Total: 10}}); err != nil {
			t.Fatalf("Daily(single) = %v; want nil", err)
		}
		if !strings.Contains(buf.String(), "Total Rentals per Day") {
			t.Error("output missing chart title")
		}
	})

	t.Run("all zero", func(t *testing.T) {
		totals := []types.DailyTotal{{Date: "2024-01-01"}, {Date: "2024-01-02"}}
		if err := Daily(&bytes.Buffer{}, totals); err != nil {
			t.Fatalf("Daily(zeros) = %v; want nil", err)
		}
	})

	t.Run("bad date", func(t *testing.T) {
		if err := Daily(&bytes.Buffer{}, []types.DailyTotal{{Date: "yesterday"}}); err == nil {
			t.Error("Daily(bad date) = nil; want error")
		}
	})
}

func TestBarCharts_empty(t *testing.T) {
	if err := Seasons(&bytes.Buffer{}, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Seasons(nil) = %v; want ErrNoData", err)
	}
	if err := Weather(&bytes.Buffer{}, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Weather(nil) = %v; want ErrNoData", err)
	}
	if err := Windspeed(&bytes.Buffer{}, nil); !errors.Is(err, ErrNoData) {
		t.Errorf("Windspeed(nil) = %v; want ErrNoData", err)
	}
	if err := Correlation(&bytes.Buffer{}, types.CorrelationMatrix{}); !errors.Is(err, ErrNoData) {
		t.Errorf("Correlation(empty) = %v; want ErrNoData", err)
	}
}

func TestCorrelation_allUndefined(t *testing.T) {
	nan := math.NaN()
	m := types.CorrelationMatrix{
		Labels: []string{"temperature", "feels_temperature", "count"},
		Values: [][]float64{{1, nan, nan}, {nan, 1, nan}, {nan, nan, 1}},
	}
	var buf bytes.Buffer
	if err := Correlation(&buf, m); err != nil {
		t.Fatalf("Correlation(all NaN) = %v; want nil", err)
	}
}

func TestMaskedGrid_hidesUpperTriangle(t *testing.T) {
	g := maskedGrid{values: sampleDashboard().Correlation.Values}
	visible := 0
	c, r := g.Dims()
	for i := 0; i < c; i++ {
		for j := 0; j < r; j++ {
			if !math.IsNaN(g.Z(i, j)) {
				visible++
			}
		}
	}
	if visible != 3 {
		t.Errorf("visible cells = %d; want 3", visible)
	}
	// Bottom row (r=0) is the last matrix row: count vs temperature.
	if got := g.Z(0, 0); got != 0.63 {
		t.Errorf("Z(0,0) = %v; want 0.63", got)
	}
}

func TestCoolWarm(t *testing.T) {
	cols := coolWarm(3)
	if len(cols) != 3 {
		t.Fatalf("len(coolWarm(3)) = %d; want 3", len(cols))
	}
	r0, _, b0, _ := cols[0].RGBA()
	r2, _, b2, _ := cols[2].RGBA()
	if !(b0 > r0 && r2 > b2) {
		t.Errorf("coolWarm(3) does not run blue to red: %v", cols)
	}
}
