package ncdm

import (
	"math"

	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

// Quantity selects which moments to compute.
type Quantity uint8

const (
	Number Quantity = 1 << iota
	Energy
	Pressure
	EnergyMassDerivative
	PseudoPressure
	EnergyDegeneracyDerivative

	AllMoments = Number | Energy | Pressure | EnergyMassDerivative | PseudoPressure
)

// Moments holds the requested momentum integrals. Fields that were not
// requested are zero.
type Moments struct {
	Requested Quantity

	N        float64
	Rho      float64
	P        float64
	DRhoDM   float64
	PseudoP  float64
	DRhoDDeg float64
}

func (m Moments) Has(q Quantity) bool { return m.Requested&q == q }

// W is the equation of state p/rho, or 0 for an empty species.
func (m Moments) W() float64 {
	if m.Rho == 0 {
		return 0
	}
	return m.P / m.Rho
}

// Momenta integrates the background grid of a species at redshift z using
// its current mass and degeneracy.
func (r *Registry) Momenta(id int, z float64, want Quantity) (Moments, error) {
	sp, err := r.lookup("momenta", id)
	if err != nil {
		return Moments{}, err
	}
	if z <= -1 || math.IsNaN(z) {
		return Moments{}, relic.Invalid("momenta", id, "redshift must exceed -1, got %g", z)
	}
	return moments(sp.Background, sp.factor, sp.Deg, sp.M, z, want), nil
}

// MomentaDegeneracy is Momenta with the degeneracy given explicitly.
func (r *Registry) MomentaDegeneracy(id int, deg, z float64, want Quantity) (Moments, error) {
	sp, err := r.lookup("momenta", id)
	if err != nil {
		return Moments{}, err
	}
	if z <= -1 || math.IsNaN(z) {
		return Moments{}, relic.Invalid("momenta", id, "redshift must exceed -1, got %g", z)
	}
	if deg <= 0 && want&EnergyDegeneracyDerivative != 0 {
		return Moments{}, relic.Invalid("momenta", id, "drho/ddeg needs a positive degeneracy, got %g", deg)
	}
	factor := deg * relic.Normalization(r.settings.TCMB, sp.TRatio)
	return moments(sp.Background, factor, deg, sp.M, z, want), nil
}

func moments(set quadrature.Set, factor, deg, m, z float64, want Quantity) Moments {
	a := 1 / (1 + z)
	m2a2 := m * m * a * a

	var n, rho, p, drho, pseudo float64
	needRho := want&(Energy|EnergyDegeneracyDerivative) != 0
	for i, q := range set.Q {
		w := set.W[i]
		if w == 0 {
			continue
		}
		q2 := q * q
		eps := math.Sqrt(q2 + m2a2)

		if want&Number != 0 {
			n += q2 * w
		}
		if needRho {
			rho += q2 * eps * w
		}
		if want&Pressure != 0 {
			p += q2 * q2 / 3 / eps * w
		}
		if want&EnergyMassDerivative != 0 {
			drho += q2 * m * a * a / eps * w
		}
		if want&PseudoPressure != 0 {
			x := q2 / eps
			pseudo += x * x * x / 3 * w
		}
	}

	f2 := factor * math.Pow(1+z, 4)
	out := Moments{Requested: want}
	if want&Number != 0 {
		out.N = n * f2 / (1 + z)
	}
	if want&Energy != 0 {
		out.Rho = rho * f2
	}
	if want&Pressure != 0 {
		out.P = p * f2
	}
	if want&EnergyMassDerivative != 0 {
		out.DRhoDM = drho * f2
	}
	if want&PseudoPressure != 0 {
		out.PseudoP = pseudo * f2
	}
	if want&EnergyDegeneracyDerivative != 0 && deg > 0 {
		out.DRhoDDeg = rho * f2 / deg
	}
	return out
}
