package ncdm

import (
	"math"

	"github.com/san-kum/relic/internal/relic"
)

// overridden in tests
var massMaxIter = 50

// MassFromOmega returns the dimensionless mass m/T at which the species
// has density fraction omega0 today. The registry is not modified.
func (r *Registry) MassFromOmega(id int, omega0 float64) (float64, error) {
	sp, err := r.lookup("mass", id)
	if err != nil {
		return 0, err
	}
	m, iters, err := r.solveMass(sp, omega0)
	if err == nil {
		r.observer.MassSolved(id, iters)
	}
	return m, err
}

// solveMass runs Newton on rho(M) = H0^2 Omega0. The massless density is a
// lower bound on rho, so densities below it have no solution.
func (r *Registry) solveMass(sp *Species, omega0 float64) (float64, int, error) {
	const op = "mass"
	if omega0 <= 0 || math.IsNaN(omega0) || math.IsInf(omega0, 0) {
		return 0, 0, relic.Invalid(op, sp.ID, "Omega must be positive and finite, got %g", omega0)
	}

	rho0 := r.h0 * r.h0 * omega0
	massless := moments(sp.Background, sp.factor, sp.Deg, 0, 0, Number|Energy)
	if massless.Rho == 0 {
		return 0, 0, relic.Invalid(op, sp.ID, "distribution is empty, no mass reproduces Omega %g", omega0)
	}
	if rho0 < massless.Rho {
		return 0, 0, relic.Invalid(op, sp.ID, "Omega %g is below the massless value %g",
			omega0, massless.Rho/(r.h0*r.h0))
	}

	m := rho0 / massless.N
	var rel float64
	for iter := 1; iter <= massMaxIter; iter++ {
		mo := moments(sp.Background, sp.factor, sp.Deg, m, 0, Energy|EnergyMassDerivative)
		if mo.DRhoDM == 0 {
			return 0, iter, relic.Numerical(op, sp.ID, rel, "vanishing drho/dM")
		}
		dm := (rho0 - mo.Rho) / mo.DRhoDM
		if m+dm < 0 {
			dm = -m / 2
		}
		m += dm
		rel = math.Abs(dm / m)
		if rel < r.settings.TolMass {
			return m, iter, nil
		}
	}
	return 0, massMaxIter, relic.NotConverged(op, sp.ID, rel, "newton iteration did not settle")
}
