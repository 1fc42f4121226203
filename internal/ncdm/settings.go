package ncdm

import (
	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

// Settings are the cosmology and precision inputs shared by all species.
type Settings struct {
	H            float64
	TCMB         float64
	Background   quadrature.AutoOptions
	Perturbation quadrature.AutoOptions
	TolMass      float64

	// HasDCDM shifts the dark radiation index of decay channels by one to
	// leave room for a decaying cold dark matter source.
	HasDCDM bool
}

func DefaultSettings() Settings {
	return Settings{
		H:            relic.DefaultH,
		TCMB:         relic.DefaultTCMB,
		Background:   quadrature.DefaultBackground(),
		Perturbation: quadrature.DefaultPerturbation(),
		TolMass:      1e-7,
	}
}

func (s Settings) validate() error {
	const op = "settings"
	switch {
	case s.H <= 0:
		return relic.Invalid(op, relic.NoSpecies, "h must be positive, got %g", s.H)
	case s.TCMB <= 0:
		return relic.Invalid(op, relic.NoSpecies, "T_cmb must be positive, got %g", s.TCMB)
	case s.TolMass <= 0:
		return relic.Invalid(op, relic.NoSpecies, "mass tolerance must be positive, got %g", s.TolMass)
	}
	return nil
}
