package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/relic/internal/ncdm"
)

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Cyan, asciigraph.Magenta, asciigraph.Yellow, asciigraph.Green, asciigraph.Red, asciigraph.Blue,
}

// EquationOfState plots w = p/rho of every species against the row index
// of a redshift table. Rows must carry Energy and Pressure.
func EquationOfState(rows []ncdm.Row, width, height int) (string, error) {
	if len(rows) < 2 {
		return "", fmt.Errorf("need at least 2 rows to plot, got %d", len(rows))
	}
	nSpecies := len(rows[0].Moments)
	if nSpecies == 0 || !rows[0].Moments[0].Has(ncdm.Energy|ncdm.Pressure) {
		return "", fmt.Errorf("rows carry no equation of state")
	}

	series := make([][]float64, nSpecies)
	colors := make([]asciigraph.AnsiColor, nSpecies)
	for id := range series {
		series[id] = make([]float64, len(rows))
		for i, row := range rows {
			series[id][i] = row.Moments[id].W()
		}
		colors[id] = seriesColors[id%len(seriesColors)]
	}

	caption := fmt.Sprintf("w(z), z from %.3g to %.3g (log 1+z)", rows[0].Z, rows[len(rows)-1].Z)
	graph := asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1./3.),
		asciigraph.Precision(3),
		asciigraph.SeriesColors(colors...),
		asciigraph.Caption(caption),
	)

	legend := make([]string, nSpecies)
	for id := range legend {
		legend[id] = fmt.Sprintf("%s%d%s", colors[id], id, asciigraph.Default)
	}
	return graph + "\n" + Subtle.Render("species: ") + strings.Join(legend, " "), nil
}

// EquationOfStateSparklines renders one w(z) sparkline per species with the
// values at both ends of the grid. Rows need Energy and Pressure.
func EquationOfStateSparklines(rows []ncdm.Row, width int) string {
	if len(rows) == 0 || len(rows[0].Moments) == 0 {
		return ""
	}
	nSpecies := len(rows[0].Moments)
	lines := make([]string, nSpecies)
	for id := range lines {
		w := make([]float64, len(rows))
		for i, row := range rows {
			w[i] = row.Moments[id].W()
		}
		lines[id] = fmt.Sprintf("%s %s %s",
			MetricLabel.Render(fmt.Sprintf("w_%d", id)),
			Sparkline(w, width),
			Subtle.Render(fmt.Sprintf("%.3f .. %.3f", w[0], w[len(w)-1])))
	}
	return strings.Join(lines, "\n")
}

// Sparkline renders values as a one-line bar chart
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}

	step := max(len(values)/width, 1)
	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		b.WriteRune(chars[idx])
	}
	return b.String()
}
