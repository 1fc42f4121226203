package psd

import "math"

var twoPiCubed = math.Pow(2*math.Pi, 3)

// FermiDirac is a relativistic fermion population with chemical potential
// Ksi, summed over particle and antiparticle.
type FermiDirac struct {
	Ksi float64
}

func (fd FermiDirac) F0(q float64) float64 {
	return (1./(math.Exp(q-fd.Ksi)+1.) + 1./(math.Exp(q+fd.Ksi)+1.)) / twoPiCubed
}

// TestReference reports the closed-form test integral, known only for a
// vanishing chemical potential.
func (fd FermiDirac) TestReference() (float64, bool) {
	if fd.Ksi != 0 {
		return 0, false
	}
	return -1. / 3., true
}
