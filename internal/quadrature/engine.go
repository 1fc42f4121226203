package quadrature

import (
	"fmt"
	"math"

	"github.com/san-kum/relic/internal/relic"
)

// AutoOptions controls the automatic convergence search.
type AutoOptions struct {
	Tolerance float64
	MaxNodes  int
	MinNodes  int
}

// Background and perturbation integrals have different accuracy needs.
func DefaultBackground() AutoOptions {
	return AutoOptions{Tolerance: 1e-4, MaxNodes: 150, MinNodes: 2}
}

func DefaultPerturbation() AutoOptions {
	return AutoOptions{Tolerance: 1e-5, MaxNodes: 250, MinNodes: 2}
}

func (o AutoOptions) validate() error {
	if o.Tolerance <= 0 {
		return relic.Invalid("quadrature", relic.NoSpecies, "tolerance must be positive, got %g", o.Tolerance)
	}
	if o.MinNodes < 1 || o.MaxNodes < o.MinNodes {
		return relic.Invalid("quadrature", relic.NoSpecies, "node range [%d, %d] is empty", o.MinNodes, o.MaxNodes)
	}
	return nil
}

// Automatic grows the node count from MinNodes until either a
// Gauss-Laguerre rule or a Gauss-Legendre rule truncated at the tail cutoff
// integrates Probe*f0 within Tolerance of the reference. It fails with
// relic.ErrNumerical once MaxNodes is exceeded.
func Automatic(d relic.Distribution, opts AutoOptions) (Set, error) {
	const op = "automatic quadrature"
	if err := opts.validate(); err != nil {
		return Set{}, err
	}

	ref := Reference(d)
	if ref == 0 || math.IsNaN(ref) || math.IsInf(ref, 0) {
		return Set{}, relic.Numerical(op, relic.NoSpecies, math.Inf(1),
			fmt.Sprintf("probe reference is %g; the distribution cannot be sampled automatically", ref))
	}
	qcut := Cutoff(d)

	residual := math.Inf(1)
	for n := opts.MinNodes; n <= opts.MaxNodes; n++ {
		x, dq, err := laguerreRule(n)
		if err != nil {
			return Set{}, err
		}
		candidates := [2]Set{weigh(d, x, dq), {}}
		x, dq = legendreRule(n, qcut)
		candidates[1] = weigh(d, x, dq)

		for _, set := range candidates {
			rel := math.Abs(set.Integrate(Probe)-ref) / math.Abs(ref)
			if rel < opts.Tolerance {
				return set, nil
			}
			residual = math.Min(residual, rel)
		}
	}
	return Set{}, relic.Numerical(op, relic.NoSpecies, residual,
		fmt.Sprintf("no rule with at most %d nodes reached tolerance %g", opts.MaxNodes, opts.Tolerance))
}

// Manual places n nodes with the given strategy. Laguerre ignores qmax;
// the equal-step rules cover (0, qmax].
func Manual(d relic.Distribution, n int, qmax float64, s Strategy) (Set, error) {
	const op = "manual quadrature"
	if n < 1 {
		return Set{}, relic.Invalid(op, relic.NoSpecies, "need at least one node, got %d", n)
	}

	var x, dq []float64
	switch s {
	case Laguerre:
		var err error
		if x, dq, err = laguerreRule(n); err != nil {
			return Set{}, err
		}
	case Trapezoid, Midpoint:
		if qmax <= 0 {
			return Set{}, relic.Invalid(op, relic.NoSpecies, "maximum momentum must be positive, got %g", qmax)
		}
		if s == Trapezoid {
			x, dq = trapezoidRule(n, qmax)
		} else {
			x, dq = midpointRule(n, qmax)
		}
	default:
		return Set{}, relic.Invalid(op, relic.NoSpecies, "%s has no fixed node placement", s)
	}
	return weigh(d, x, dq), nil
}
