package ncdm

import (
	"math"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

const onsetScaleBack = 0.1

// overridden in tests
var onsetMaxIter = 100

// InitialScaleFactor walks a down by factors of ten from aStart until every
// species has |p/rho - 1/3| < tol. Species without density are skipped.
func (r *Registry) InitialScaleFactor(aStart, aToday, tol float64) (float64, error) {
	const op = "relativistic onset"
	switch {
	case aStart <= 0 || aToday <= 0:
		return 0, relic.Invalid(op, relic.NoSpecies, "scale factors must be positive, got a=%g a_today=%g", aStart, aToday)
	case tol <= 0:
		return 0, relic.Invalid(op, relic.NoSpecies, "tolerance must be positive, got %g", tol)
	}

	a := aStart
	var worst float64
	for iter := 0; iter < onsetMaxIter; iter++ {
		worst = 0
		for id, sp := range r.species {
			w, ok := equationOfState(sp.Background, sp.M, a/aToday)
			if !ok {
				continue
			}
			dev := math.Abs(w - 1./3.)
			if math.IsNaN(dev) {
				return 0, relic.Numerical(op, id, dev, "equation of state is not finite")
			}
			worst = math.Max(worst, dev)
		}
		if worst < tol {
			return a, nil
		}
		a *= onsetScaleBack
	}
	return 0, relic.NotConverged(op, relic.NoSpecies, worst, "no ultra-relativistic epoch reached")
}

// equationOfState is p/rho from the unnormalised sums, so it stays finite
// at any scale factor. ok is false for an empty species.
func equationOfState(set quadrature.Set, m, a float64) (float64, bool) {
	m2a2 := m * m * a * a
	var rho, p float64
	for i, q := range set.Q {
		w := set.W[i]
		if w == 0 {
			continue
		}
		q2 := q * q
		eps := math.Sqrt(q2 + m2a2)
		rho += q2 * eps * w
		p += q2 * q2 / 3 / eps * w
	}
	if rho == 0 {
		return 0, false
	}
	return p / rho, true
}
