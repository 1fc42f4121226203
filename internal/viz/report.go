package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/relic/internal/ncdm"
)

var speciesColumns = []string{"id", "type", "source", "m [eV]", "deg", "Omega0", "omega", "dNeff", "grid", "nodes bg/pt"}

// SpeciesTable lays out one row per species with aligned columns
func SpeciesTable(summaries []ncdm.Summary) string {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			fmt.Sprint(s.ID),
			s.Type.String(),
			s.Source,
			fmt.Sprintf("%.4g", s.MassEV),
			fmt.Sprintf("%.4g", s.Degeneracy),
			fmt.Sprintf("%.4e", s.Omega0),
			fmt.Sprintf("%.4e", s.OmegaH2),
			fmt.Sprintf("%.4f", s.DeltaNeff),
			s.Strategy.String(),
			fmt.Sprintf("%d/%d", s.BackgroundNodes, s.PerturbationNodes),
		})
	}

	widths := make([]int, len(speciesColumns))
	for i, h := range speciesColumns {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	pad := func(cells []string) string {
		out := make([]string, len(cells))
		for i, c := range cells {
			out[i] = c + strings.Repeat(" ", widths[i]-lipgloss.Width(c))
		}
		return strings.Join(out, "  ")
	}

	lines := []string{HeaderStyle.Render(pad(speciesColumns))}
	for _, row := range rows {
		lines = append(lines, pad(row))
	}
	return strings.Join(lines, "\n")
}

// Totals renders the registry-wide numbers in a panel
func Totals(r *ncdm.Registry) string {
	body := KeyValue(
		[2]string{"species", fmt.Sprint(r.Len())},
		[2]string{"decay bins", fmt.Sprint(r.DecayBins())},
		[2]string{"Omega0", fmt.Sprintf("%.6e", r.Omega0())},
		[2]string{"Neff", fmt.Sprintf("%.5f", r.Neff())},
	)
	return Panel.Render(Title.Render("ncdm") + "\n" + body)
}
