package charts

import (
	"fmt"
	"io"
	"time"

	"github.com/wcharczuk/go-chart/v2"

	"bikerental-server/internal/modules/rentals/types"
)

// Daily draws total rentals per day as a line with point markers.
func Daily(w io.Writer, totals []types.DailyTotal) error {
	if len(totals) == 0 {
		return ErrNoData
	}

	xs := make([]time.Time, 0, len(totals)+1)
	ys := make([]float64, 0, len(totals)+1)
	var maxY float64
	for _, d := range totals {
		t, err := time.Parse(types.DateLayout, d.Date)
		if err != nil {
			return fmt.Errorf("daily chart: %w", err)
		}
		xs = append(xs, t)
		ys = append(ys, float64(d.Total))
		maxY = max(maxY, float64(d.Total))
	}
	// A single point has no x range; repeat it one day later.
	if len(xs) == 1 {
		xs = append(xs, xs[0].Add(24*time.Hour))
		ys = append(ys, ys[0])
	}
	if maxY == 0 {
		maxY = 1
	}

	line := hexColor(colorDaily)
	graph := chart.Chart{
		Title:  "Total Rentals per Day",
		Width:  1280,
		Height: 640,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat(types.DateLayout),
		},
		YAxis: chart.YAxis{
			Name:  "Total Rentals",
			Range: &chart.ContinuousRange{Min: 0, Max: maxY * 1.1},
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Total Rentals",
				XValues: xs,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: line,
					StrokeWidth: 2,
					DotColor:    line,
					DotWidth:    4,
				},
			},
		},
	}
	if err := graph.Render(chart.SVG, w); err != nil {
		return fmt.Errorf("daily chart: %w", err)
	}
	return nil
}
