package psd

// DecaySeed is the distribution of a decay daughter at the initial time.
// Without a pre-existing population it vanishes identically; otherwise it
// is a thermal Fermi-Dirac population with zero chemical potential.
type DecaySeed struct {
	Populated bool
}

func (s DecaySeed) F0(q float64) float64 {
	if !s.Populated {
		return 0
	}
	return FermiDirac{}.F0(q)
}

func (s DecaySeed) TestReference() (float64, bool) {
	if !s.Populated {
		return 0, true
	}
	return FermiDirac{}.TestReference()
}
