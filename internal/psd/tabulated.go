package psd

import (
	"math"

	"gonum.org/v1/gonum/interp"

	"github.com/san-kum/relic/internal/relic"
)

// Tabulated interpolates a sampled distribution.
type Tabulated struct {
	q      []float64
	f0     []float64
	spline interp.NaturalCubic
}

// NewTabulated fits a natural cubic spline through the samples. The
// momenta must be non-negative and strictly increasing, and the last
// sample must be positive and below its neighbour so the tail falls off.
func NewTabulated(q, f0 []float64) (*Tabulated, error) {
	const op = "psd table"
	if len(q) != len(f0) {
		return nil, relic.Invalid(op, relic.NoSpecies, "%d momenta but %d densities", len(q), len(f0))
	}
	if len(q) < 3 {
		return nil, relic.Invalid(op, relic.NoSpecies, "need at least 3 samples, got %d", len(q))
	}
	if q[0] < 0 {
		return nil, relic.Invalid(op, relic.NoSpecies, "negative momentum %g", q[0])
	}
	for i := 1; i < len(q); i++ {
		if q[i] <= q[i-1] {
			return nil, relic.Invalid(op, relic.NoSpecies, "momenta not strictly increasing at row %d", i)
		}
	}
	if f0[len(f0)-1] <= 0 {
		return nil, relic.Invalid(op, relic.NoSpecies, "last density must be positive to extrapolate a tail")
	}
	if last := len(f0) - 1; f0[last] >= f0[last-1] {
		return nil, relic.Invalid(op, relic.NoSpecies, "density does not fall at the last sample (%g then %g)",
			f0[last-1], f0[last])
	}

	t := &Tabulated{
		q:  append([]float64(nil), q...),
		f0: append([]float64(nil), f0...),
	}
	if err := t.spline.Fit(t.q, t.f0); err != nil {
		return nil, relic.Invalid(op, relic.NoSpecies, "spline fit: %v", err)
	}
	return t, nil
}

func (t *Tabulated) F0(q float64) float64 {
	last := len(t.q) - 1
	switch {
	case q < t.q[0]:
		return t.f0[0]
	case q > t.q[last]:
		// Boltzmann-like tail, continuous with the last two samples.
		qLast, fLast := t.q[last], t.f0[last]
		dq := qLast - t.q[last-1]
		df := fLast - t.f0[last-1]
		return fLast * math.Exp(-(qLast-q)*df/fLast/dq)
	default:
		// the spline may undershoot between steep samples
		return math.Max(0, t.spline.Predict(q))
	}
}

// Len returns the number of samples.
func (t *Tabulated) Len() int { return len(t.q) }

// Range returns the first and last sampled momenta.
func (t *Tabulated) Range() (float64, float64) {
	return t.q[0], t.q[len(t.q)-1]
}
