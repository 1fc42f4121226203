package relic

// Distribution evaluates a phase-space density at comoving momentum q.
// Implementations must accept any q, including points outside a sampled
// range and small negative stencil offsets.
type Distribution interface {
	F0(q float64) float64
}

// DistributionFunc adapts an ordinary function to Distribution.
type DistributionFunc func(q float64) float64

func (f DistributionFunc) F0(q float64) float64 { return f(q) }

// Referencer is implemented by distributions that know the closed-form
// value of the quadrature test integral.
type Referencer interface {
	TestReference() (float64, bool)
}
