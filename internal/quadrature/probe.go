package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mathext"

	"github.com/san-kum/relic/internal/relic"
)

var (
	zeta3 = mathext.Zeta(3, 1)
	zeta5 = mathext.Zeta(5, 1)
)

// Probe is the smooth function used to judge a quadrature rule: if f0*Probe
// integrates accurately, so do the density and pressure moments. Its
// integral against a zero chemical potential Fermi-Dirac density is -1/3.
//
// A constant or linear term would break distributions diverging as 1/q or
// 1/q^2 near the origin, so the polynomial starts at q^2.
func Probe(q float64) float64 {
	c := 2.0 / (3.0 * zeta3)
	d := 120.0 / (7.0 * math.Pow(math.Pi, 4))
	e := 2.0 / (45.0 * zeta5)
	q2 := q * q
	return math.Pow(2.0*math.Pi, 3) / 6.0 * (c*q2 - d*q2*q - e*q2*q2)
}

const (
	maxCutoff    = 1000.0
	panelWidth   = 1.0
	panelNodes   = 32
	tailFraction = 1e-16
)

// Cutoff returns the first integer momentum past which q^4 f0 has fallen
// below tailFraction of its running maximum.
func Cutoff(d relic.Distribution) float64 {
	peak := 0.0
	for q := 1.0; q < maxCutoff; q++ {
		v := math.Abs(q * q * q * q * d.F0(q))
		if v > peak {
			peak = v
		}
		if peak > 0 && v < tailFraction*peak {
			return q
		}
	}
	return maxCutoff
}

// Reference returns the exact Probe integral for distributions that know
// it, otherwise a panelled Gauss-Legendre estimate over [0, Cutoff].
func Reference(d relic.Distribution) float64 {
	if r, ok := d.(relic.Referencer); ok {
		if v, ok := r.TestReference(); ok {
			return v
		}
	}
	return numericReference(d, Cutoff(d))
}

func numericReference(d relic.Distribution, qcut float64) float64 {
	f := func(q float64) float64 { return Probe(q) * d.F0(q) }
	sum := 0.0
	for a := 0.0; a < qcut; a += panelWidth {
		sum += quad.Fixed(f, a, math.Min(a+panelWidth, qcut), panelNodes, quad.Legendre{}, 0)
	}
	return sum
}
