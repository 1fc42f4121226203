package quadrature

import (
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/relic/internal/relic"
)

// Set is an ordered quadrature rule over comoving momentum.
type Set struct {
	Q  []float64
	W  []float64
	DQ []float64
}

func (s Set) Len() int { return len(s.Q) }

func (s Set) Clone() Set {
	return Set{
		Q:  append([]float64(nil), s.Q...),
		W:  append([]float64(nil), s.W...),
		DQ: append([]float64(nil), s.DQ...),
	}
}

// Integrate returns sum_i W_i fn(Q_i), i.e. the integral of fn*f0.
func (s Set) Integrate(fn func(q float64) float64) float64 {
	sum := 0.0
	for i, q := range s.Q {
		sum += s.W[i] * fn(q)
	}
	return sum
}

// Validate checks the ordering and sign invariants.
func (s Set) Validate() error {
	const op = "quadrature set"
	if len(s.W) != len(s.Q) || len(s.DQ) != len(s.Q) {
		return relic.Invalid(op, relic.NoSpecies, "mismatched lengths %d/%d/%d", len(s.Q), len(s.W), len(s.DQ))
	}
	for i := 1; i < len(s.Q); i++ {
		if s.Q[i] <= s.Q[i-1] {
			return relic.Invalid(op, relic.NoSpecies, "momenta not strictly increasing at node %d", i)
		}
	}
	if len(s.W) > 0 && floats.Min(s.W) < 0 {
		return relic.Invalid(op, relic.NoSpecies, "negative weight")
	}
	return nil
}

// weigh fills W from DQ and the distribution.
func weigh(d relic.Distribution, q, dq []float64) Set {
	w := make([]float64, len(q))
	for i := range q {
		w[i] = dq[i] * d.F0(q[i])
	}
	return Set{Q: q, W: w, DQ: dq}
}

type byMomentum struct{ q, dq []float64 }

func (b byMomentum) Len() int           { return len(b.q) }
func (b byMomentum) Less(i, j int) bool { return b.q[i] < b.q[j] }
func (b byMomentum) Swap(i, j int) {
	b.q[i], b.q[j] = b.q[j], b.q[i]
	b.dq[i], b.dq[j] = b.dq[j], b.dq[i]
}

func sortNodes(q, dq []float64) {
	sort.Sort(byMomentum{q, dq})
}
