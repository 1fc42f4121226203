package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/relic/internal/ncdm"
)

var svgStrokes = []string{"#00ffff", "#ff00ff", "#ffcc00", "#00ff88", "#ff4444", "#0088ff"}

// EquationOfStateSVG draws w against log10(1+z) with one path per species.
// The vertical axis spans [0, 1/3].
func EquationOfStateSVG(rows []ncdm.Row, width, height int) (string, error) {
	if len(rows) < 2 {
		return "", fmt.Errorf("need at least 2 rows to plot, got %d", len(rows))
	}
	if len(rows[0].Moments) == 0 || !rows[0].Moments[0].Has(ncdm.Energy|ncdm.Pressure) {
		return "", fmt.Errorf("rows carry no equation of state")
	}

	minX := math.Log10(1 + rows[0].Z)
	maxX := math.Log10(1 + rows[len(rows)-1].Z)
	rangeX := maxX - minX
	if rangeX == 0 {
		rangeX = 1
	}
	const pad = 0.05
	toX := func(z float64) float64 {
		return (pad + (1-2*pad)*(math.Log10(1+z)-minX)/rangeX) * float64(width)
	}
	toY := func(w float64) float64 {
		return float64(height) * (1 - pad - (1-2*pad)*w*3)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#444466" stroke-dasharray="4"/>
`, toX(rows[0].Z), toY(1./3.), toX(rows[len(rows)-1].Z), toY(1./3.))

	for id := range rows[0].Moments {
		fmt.Fprintf(&sb, `<path id="species-%d" fill="none" stroke="%s" stroke-width="1.5" d="`, id, svgStrokes[id%len(svgStrokes)])
		for i, row := range rows {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f", cmd, toX(row.Z), toY(row.Moments[id].W()))
		}
		sb.WriteString("\"/>\n")
	}
	sb.WriteString("</svg>")
	return sb.String(), nil
}
