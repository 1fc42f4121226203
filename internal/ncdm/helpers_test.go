package ncdm

import (
	"math"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

func ptr(v float64) *float64 { return &v }

// laguerre30 is accurate enough for closed-form moment checks.
func laguerre30() SpeciesInput {
	in := DefaultSpecies(Standard)
	in.Strategy = quadrature.Laguerre
	in.Nodes = 30
	return in
}

func decaySpecies(nodes int, qmax float64) SpeciesInput {
	in := DefaultSpecies(DecaySourced)
	in.Nodes = nodes
	in.QMax = qmax
	in.Decay.Lifetime = ptr(1e9)
	return in
}

// nuMassOmega is the density fraction of one 0.06 eV neutrino at h=DefaultH.
var nuMassOmega = 0.06 / 93.14 / (relic.DefaultH * relic.DefaultH)

var zeta3 = 1.2020569031595942

func rel(a, b float64) float64 { return math.Abs(a-b) / math.Abs(b) }

type recordingObserver struct {
	grids  map[string]int
	solved []int
}

func (o *recordingObserver) GridBuilt(species int, grid string, nodes int) {
	if o.grids == nil {
		o.grids = make(map[string]int)
	}
	o.grids[grid]++
}

func (o *recordingObserver) MassSolved(species int, iterations int) {
	o.solved = append(o.solved, species)
}
