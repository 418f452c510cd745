package charts

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"bikerental-server/internal/modules/rentals/types"
)

// maskedGrid exposes a correlation matrix to plotter.HeatMap with the upper
// triangle and diagonal hidden. Row 0 is drawn at the top.
type maskedGrid struct {
	values [][]float64
}

func (g maskedGrid) Dims() (c, r int) { return len(g.values), len(g.values) }

func (g maskedGrid) Z(c, r int) float64 {
	row := len(g.values) - 1 - r
	if c >= row {
		return math.NaN()
	}
	return g.values[row][c]
}

func (g maskedGrid) X(c int) float64 { return float64(c) }
func (g maskedGrid) Y(r int) float64 { return float64(r) }

// Min and Max pin the colour scale to [-1, 1] so 0 sits at the centre.
func (g maskedGrid) Min() float64 { return -1 }
func (g maskedGrid) Max() float64 { return 1 }

// Correlation draws the lower triangle of m as an annotated cool-warm heatmap.
func Correlation(w io.Writer, m types.CorrelationMatrix) error {
	n := len(m.Labels)
	if n == 0 || len(m.Values) != n {
		return ErrNoData
	}

	grid := maskedGrid{values: m.Values}
	cm := moreland.SmoothBlueRed()
	cm.SetMin(-1)
	cm.SetMax(1)
	hm := plotter.NewHeatMap(grid, cm.Palette(255))
	hm.Min, hm.Max = -1, 1
	hm.NaN = color.Transparent

	p := newPlot("Correlation of Temperature with Count", "", "")
	p.Add(hm)

	var xys []plotter.XY
	var labels []string
	for c := 0; c < n; c++ {
		for r := 0; r < n; r++ {
			v := grid.Z(c, r)
			if math.IsNaN(v) {
				continue
			}
			xys = append(xys, plotter.XY{X: grid.X(c), Y: grid.Y(r)})
			labels = append(labels, fmt.Sprintf("%.2f", v))
		}
	}
	if len(xys) > 0 {
		annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: labels})
		if err != nil {
			return fmt.Errorf("correlation chart: %w", err)
		}
		for i := range annotations.TextStyle {
			annotations.TextStyle[i].XAlign = draw.XCenter
			annotations.TextStyle[i].YAlign = draw.YCenter
		}
		p.Add(annotations)
	}

	rowLabels := make([]string, n)
	for r := 0; r < n; r++ {
		rowLabels[r] = m.Labels[n-1-r]
	}
	p.NominalX(m.Labels...)
	p.NominalY(rowLabels...)
	p.Y.Min, p.Y.Max = -0.5, float64(n)-0.5
	p.X.Min, p.X.Max = -0.5, float64(n)-0.5

	if err := writeSVG(w, p, 8*vg.Inch, 4*vg.Inch); err != nil {
		return fmt.Errorf("correlation chart: %w", err)
	}
	return nil
}
