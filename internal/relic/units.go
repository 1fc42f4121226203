package relic

import "math"

// Physical constants in SI units.
const (
	KB       = 1.380649e-23      // Boltzmann constant, J/K
	HPlanck  = 6.62607015e-34    // Planck constant, J s
	C        = 2.99792458e8      // speed of light, m/s
	G        = 6.67428e-11       // Newton constant, m^3/kg/s^2
	MpcOverM = 3.085677581282e22 // metres per megaparsec
	EV       = 1.602176634e-19   // electron volt, J
	Year     = 365 * 24 * 60 * 60
)

// Reference defaults.
const (
	DefaultTCMB   = 2.7255
	DefaultH      = 0.67556
	DefaultTRatio = 0.71611 // gives m/omega = 93.14 eV
)

// HubbleMpc returns H0 in 1/Mpc for a dimensionless Hubble parameter h.
func HubbleMpc(h float64) float64 {
	return h * 1.e5 / C
}

// Normalization is the factor turning a dimensionless moment sum into a
// density in units where H^2 = sum(rho), for unit degeneracy.
//
// The expression follows the established convention and has not been
// independently re-derived; keep it as is.
func Normalization(tCMB, tRatio float64) float64 {
	hbar := HPlanck / 2. / math.Pi
	return 4 * math.Pi * math.Pow(tCMB*tRatio*KB, 4) * 8 * math.Pi * G /
		3. / math.Pow(hbar, 3) / math.Pow(C, 7) * MpcOverM * MpcOverM
}

// NeutrinoRelativisticDensity is the density of one instantaneously
// decoupled neutrino species with T = (4/11)^(1/3) T_cmb.
func NeutrinoRelativisticDensity(tCMB float64) float64 {
	return 56.0 / 45.0 * math.Pow(math.Pi, 6) * math.Pow(4.0/11.0, 4.0/3.0) * G /
		math.Pow(HPlanck, 3) / math.Pow(C, 7) * MpcOverM * MpcOverM * math.Pow(tCMB*KB, 4)
}

// MassToDimensionless converts a mass in eV to m/(k_B T) for a species at
// temperature tRatio*tCMB.
func MassToDimensionless(mEV, tRatio, tCMB float64) float64 {
	return mEV / KB * EV / tRatio / tCMB
}

// DimensionlessToMass is the inverse of MassToDimensionless.
func DimensionlessToMass(m, tRatio, tCMB float64) float64 {
	return KB / EV * tRatio * m * tCMB
}

// LifetimeToRate converts a lifetime in years to a decay rate in km/s/Mpc.
func LifetimeToRate(years float64) float64 {
	return 1. / years / Year * MpcOverM * 1e-3
}

// RateToMpc converts a decay rate in km/s/Mpc to 1/Mpc.
func RateToMpc(gamma float64) float64 {
	return gamma * 1.e3 / C
}
