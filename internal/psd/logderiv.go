package psd

import (
	"math"

	"github.com/san-kum/relic/internal/relic"
)

// Step exponents searched from fine to coarse when estimating dln f/dln q.
const (
	StepExpMin = -30
	StepExpMax = 2
)

const machineEpsilon = 2.220446049250313e-16

// LogDerivative returns dln f0/dln q at each grid momentum.
//
// For every point the stencil step h is the finest candidate e^k times the
// local spacing for which |f(q+2h) - f(q-2h)|/f(q) exceeds sqrt(eps), so the
// difference resolves a real change rather than rounding noise. If no
// candidate qualifies the coarsest one is used. A point where f0 vanishes
// gets -q, the value for any exponential tail.
func LogDerivative(d relic.Distribution, q []float64) []float64 {
	out := make([]float64, len(q))
	threshold := math.Sqrt(machineEpsilon)

	for i, qi := range q {
		f0 := d.F0(qi)
		if f0 == 0 {
			out[i] = -qi
			continue
		}

		var h, fm2, fp2 float64
		for k := StepExpMin; k < StepExpMax; k++ {
			h = stencilStep(q, i, math.Exp(float64(k)))
			fm2 = d.F0(qi - 2*h)
			fp2 = d.F0(qi + 2*h)
			if math.Abs((fp2-fm2)/f0) > threshold {
				break
			}
		}

		fm1 := d.F0(qi - h)
		fp1 := d.F0(qi + h)
		df0dq := (fm2 - 8*fm1 + 8*fp1 - fp2) / 12.0 / h
		out[i] = qi / f0 * df0dq
	}
	return out
}

// stencilStep scales the local grid spacing around point i. The first
// point never steps further than half way to zero; the last point uses the
// one-sided spacing to its neighbour.
func stencilStep(q []float64, i int, scale float64) float64 {
	n := len(q)
	switch {
	case n == 1:
		return (0.5 - machineEpsilon) * q[0] * math.Min(1, 2*scale)
	case i == 0:
		spacing := 2 * scale * (q[1] - q[0])
		if q[0] <= 0 {
			return spacing
		}
		return math.Min((0.5-machineEpsilon)*q[0], spacing)
	case i == n-1:
		return scale * 2.0 * (q[i] - q[i-1])
	default:
		return scale * (q[i+1] - q[i-1])
	}
}
