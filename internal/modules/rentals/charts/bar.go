package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"bikerental-server/internal/modules/rentals/types"
)

const barWidth = vg.Length(28)

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(15)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

func writeSVG(w io.Writer, p *plot.Plot, width, height vg.Length) error {
	wt, err := p.WriterTo(width, height, "svg")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// coolWarm returns n colours from the blue-to-red diverging map.
func coolWarm(n int) []color.Color {
	cm := moreland.SmoothBlueRed()
	cm.SetMin(0)
	cm.SetMax(1)
	return cm.Palette(n).Colors()
}

// Seasons draws casual and registered rentals side by side for each season.
func Seasons(w io.Writer, rows []types.SeasonUserTotal) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	var seasons []string
	bySeason := make(map[string]map[string]float64)
	for _, r := range rows {
		if _, ok := bySeason[r.Season]; !ok {
			seasons = append(seasons, r.Season)
			bySeason[r.Season] = make(map[string]float64)
		}
		bySeason[r.Season][r.UserType] = float64(r.Rentals)
	}

	p := newPlot("Number of Rentals by User Type and Season", "Season", "Total Rentals")
	groups := []struct {
		user  string
		color color.Color
	}{
		{user: "casual", color: hexColor(colorCasual)},
		{user: "registered", color: hexColor(colorRegistered)},
	}
	for i, g := range groups {
		values := make(plotter.Values, len(seasons))
		for j, s := range seasons {
			values[j] = bySeason[s][g.user]
		}
		bars, err := plotter.NewBarChart(values, barWidth)
		if err != nil {
			return fmt.Errorf("seasons chart: %w", err)
		}
		bars.Color = g.color
		bars.LineStyle.Width = 0
		bars.Offset = barWidth * vg.Length(float64(i)-0.5)
		p.Add(bars)
		p.Legend.Add(g.user, bars)
	}
	p.Legend.Top = true
	p.NominalX(seasons...)

	if err := writeSVG(w, p, 10*vg.Inch, 4*vg.Inch); err != nil {
		return fmt.Errorf("seasons chart: %w", err)
	}
	return nil
}

// Weather draws rentals per weather condition; the leading bar is highlighted.
func Weather(w io.Writer, rows []types.WeatherTotal) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	labels := make([]string, len(rows))
	colors := make([]color.Color, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Condition
		values[i] = float64(r.Count)
		colors[i] = hexColor(colorWeather)
	}
	colors[0] = hexColor(colorTopWeather)

	p := newPlot("Number of Rentals by Weather Condition", "Weather Condition", "Total Rentals")
	if err := addColoredBars(p, values, colors); err != nil {
		return fmt.Errorf("weather chart: %w", err)
	}
	p.NominalX(labels...)

	if err := writeSVG(w, p, 8*vg.Inch, 6*vg.Inch); err != nil {
		return fmt.Errorf("weather chart: %w", err)
	}
	return nil
}

// Windspeed draws rentals per windspeed bucket on the cool-warm palette.
func Windspeed(w io.Writer, rows []types.WindspeedTotal) error {
	if len(rows) == 0 {
		return ErrNoData
	}

	labels := make([]string, len(rows))
	values := make([]float64, len(rows))
	for i, r := range rows {
		labels[i] = r.Category
		values[i] = float64(r.Count)
	}

	p := newPlot("Total Rentals by Windspeed Category", "Windspeed Category", "Total Rentals")
	if err := addColoredBars(p, values, coolWarm(len(rows))); err != nil {
		return fmt.Errorf("windspeed chart: %w", err)
	}
	p.NominalX(labels...)

	if err := writeSVG(w, p, 8*vg.Inch, 6*vg.Inch); err != nil {
		return fmt.Errorf("windspeed chart: %w", err)
	}
	return nil
}

// addColoredBars adds one single-value bar chart per value so each bar can
// carry its own colour.
func addColoredBars(p *plot.Plot, values []float64, colors []color.Color) error {
	for i, v := range values {
		bar, err := plotter.NewBarChart(plotter.Values{v}, barWidth)
		if err != nil {
			return err
		}
		bar.XMin = float64(i)
		bar.Color = colors[i%len(colors)]
		bar.LineStyle.Width = 0
		p.Add(bar)
	}
	return nil
}
