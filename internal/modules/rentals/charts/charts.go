// Package charts renders the dashboard views as SVG documents.
package charts

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"bikerental-server/internal/modules/rentals/types"
)

var (
	ErrNoData       = errors.New("no rentals in selected range")
	ErrUnknownChart = errors.New("unknown chart")
)

const (
	colorDaily      = "#90CAF9"
	colorCasual     = "#FF9999"
	colorRegistered = "#66B2FF"
	colorTopWeather = "#72BCD4"
	colorWeather    = "#D3D3D3"
)

// Names lists the charts served under /charts/{name}.
var Names = []string{"daily.svg", "seasons.svg", "weather.svg", "correlation.svg", "windspeed.svg"}

// Render writes the named chart for d.
func Render(w io.Writer, name string, d *types.Dashboard) error {
	switch name {
	case "daily.svg":
		return Daily(w, d.Daily)
	case "seasons.svg":
		return Seasons(w, d.Seasons)
	case "weather.svg":
		return Weather(w, d.Weather)
	case "correlation.svg":
		return Correlation(w, d.Correlation)
	case "windspeed.svg":
		return Windspeed(w, d.Windspeed)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
}

func hexColor(hex string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}
