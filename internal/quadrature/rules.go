package quadrature

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/relic/internal/relic"
)

// laguerreRule returns Gauss-Laguerre nodes and the weights for integrals
// over [0, inf) of plain functions, i.e. w_i e^(x_i).
//
// Nodes come from the eigenvalues of the Jacobi matrix (Golub-Welsch) and
// are polished by Newton steps on L_n. Weights use 1/(x L_n'(x)^2) in log
// space; eigenvector weights lose all relative accuracy in the far tail.
func laguerreRule(n int) ([]float64, []float64, error) {
	j := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		j.SetSym(i, i, float64(2*i+1))
		if i+1 < n {
			j.SetSym(i, i+1, float64(i+1))
		}
	}

	var es mat.EigenSym
	if ok := es.Factorize(j, false); !ok {
		return nil, nil, relic.Numerical("laguerre nodes", relic.NoSpecies, math.NaN(), "eigen decomposition failed")
	}
	x := es.Values(nil)

	w := make([]float64, n)
	for i, xi := range x {
		for iter := 0; iter < 3; iter++ {
			l, dl := laguerre(n, xi)
			xi -= l / dl
		}
		_, dl := laguerre(n, xi)
		x[i] = xi
		w[i] = math.Exp(xi - math.Log(xi) - 2*math.Log(math.Abs(dl)))
	}
	return x, w, nil
}

// laguerre evaluates L_n and its derivative at x by the three-term
// recurrence.
func laguerre(n int, x float64) (float64, float64) {
	if n == 0 {
		return 1, 0
	}
	prev, cur := 1.0, 1.0-x
	for k := 1; k < n; k++ {
		fk := float64(k)
		prev, cur = cur, ((2*fk+1-x)*cur-fk*prev)/(fk+1)
	}
	return cur, float64(n) * (cur - prev) / x
}

// legendreRule places n Gauss-Legendre nodes on [0, qmax].
func legendreRule(n int, qmax float64) ([]float64, []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, 0, qmax)
	sortNodes(x, w)
	return x, w
}

// trapezoidRule uses q_i = qmax(i+1)/n. The q=0 endpoint is left out since
// every moment carries at least q^2; the last weight is halved.
func trapezoidRule(n int, qmax float64) ([]float64, []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	step := qmax / float64(n)
	for i := range x {
		x[i] = qmax * float64(i+1) / float64(n)
		w[i] = step
	}
	w[n-1] *= 0.5
	return x, w
}

// midpointRule uses cell centres q_i = qmax(i+1/2)/n with equal steps.
func midpointRule(n int, qmax float64) ([]float64, []float64) {
	x := make([]float64, n)
	w := make([]float64, n)
	step := qmax / float64(n)
	for i := range x {
		x[i] = (float64(i) + 0.5) * step
		w[i] = step
	}
	return x, w
}
