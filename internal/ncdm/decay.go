package ncdm

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/relic/internal/relic"
)

// RescaleMargin keeps exp(lnN + ln f) far from underflow for the largest
// occupation while leaving headroom below overflow.
const RescaleMargin = 400.0

// RescaledMoments are moments multiplied by exp(LnN). Ratios are exact.
type RescaledMoments struct {
	LnN     float64
	Rho     float64
	P       float64
	PseudoP float64
}

// W is p/rho, or 0 for an empty species.
func (m RescaledMoments) W() float64 {
	if m.Rho == 0 {
		return 0
	}
	return m.P / m.Rho
}

// PseudoPOverP is 0 for an empty species.
func (m RescaledMoments) PseudoPOverP() float64 {
	if m.P == 0 {
		return 0
	}
	return m.PseudoP / m.P
}

// RescalingOffset returns lnN = -max(ln f) + RescaleMargin over the bins of
// a decay-sourced species. All bins at -Inf give +Inf.
func (r *Registry) RescalingOffset(id int, state []float64) (float64, error) {
	_, bins, err := r.decayBins("rescaling offset", id, state)
	if err != nil {
		return 0, err
	}
	return offset(bins), nil
}

func offset(bins []float64) float64 {
	return -floats.Max(bins) + RescaleMargin
}

// Rescaled integrates the log-amplitude occupation of a decay-sourced
// species at scale factor a. The result is scaled by exp(LnN) so that no
// term overflows or underflows.
func (r *Registry) Rescaled(id int, a float64, state []float64) (RescaledMoments, error) {
	const op = "rescaled moments"
	ch, bins, err := r.decayBins(op, id, state)
	if err != nil {
		return RescaledMoments{}, err
	}
	if a <= 0 || math.IsNaN(a) {
		return RescaledMoments{}, relic.Invalid(op, id, "scale factor must be positive, got %g", a)
	}

	lnN := offset(bins)
	if math.IsInf(lnN, 1) {
		return RescaledMoments{LnN: lnN}, nil
	}

	sp := r.species[id]
	m2a2 := sp.M * sp.M * a * a
	var out RescaledMoments
	out.LnN = lnN
	for i, q := range sp.Perturbation.Q {
		f := ch.DQ[i] * math.Exp(lnN+bins[i])
		if f == 0 {
			continue
		}
		q2 := q * q
		eps := math.Sqrt(q2 + m2a2)
		x := q2 / eps
		out.Rho += q2 * eps * f
		out.P += q2 * q2 / 3 / eps * f
		out.PseudoP += x * x * x / 3 * f
	}
	return out, nil
}

func (r *Registry) decayBins(op string, id int, state []float64) (*DecayChannel, []float64, error) {
	if _, err := r.lookup(op, id); err != nil {
		return nil, nil, err
	}
	ch, ok := r.channels[id]
	if !ok {
		return nil, nil, relic.Invalid(op, id, "species is not decay-sourced")
	}
	bins, err := ch.Bins(state)
	if err != nil {
		return nil, nil, err
	}
	if floats.HasNaN(bins) {
		return nil, nil, relic.Numerical(op, id, math.NaN(), "state vector contains NaN")
	}
	return ch, bins, nil
}
