package ncdm

import (
	"fmt"
	"math"

	"github.com/san-kum/relic/internal/psd"
	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

// Type distinguishes thermal relics from decay-produced daughters.
type Type int

const (
	Standard Type = iota
	DecaySourced
)

func (t Type) String() string {
	switch t {
	case Standard:
		return "standard"
	case DecaySourced:
		return "decay_dr"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Defaults for unset species parameters.
const (
	DefaultDegeneracy    = 1.0
	DefaultNodes         = 5
	DefaultQMax          = 15.0
	DefaultMassEV        = 1e-5 // ultra-relativistic when neither mass nor density is given
	DefaultDecayMassEV   = 1.0
	DefaultDecayStrategy = quadrature.Midpoint
)

// DecayInput carries the decay rate in exactly one of four units.
type DecayInput struct {
	Gamma         *float64 // km/s/Mpc
	Log10Gamma    *float64
	Lifetime      *float64 // years
	Log10Lifetime *float64

	InitialPopulation bool
}

// rate returns the decay rate in km/s/Mpc.
func (d DecayInput) rate(id int) (float64, error) {
	const op = "decay rate"
	set := 0
	for _, v := range []*float64{d.Gamma, d.Log10Gamma, d.Lifetime, d.Log10Lifetime} {
		if v != nil {
			set++
		}
	}
	if set != 1 {
		return 0, relic.Invalid(op, id, "give exactly one of gamma, log10 gamma, lifetime, log10 lifetime (got %d)", set)
	}

	var gamma float64
	switch {
	case d.Gamma != nil:
		gamma = *d.Gamma
	case d.Log10Gamma != nil:
		gamma = math.Pow(10, *d.Log10Gamma)
	case d.Lifetime != nil:
		if *d.Lifetime <= 0 {
			return 0, relic.Invalid(op, id, "lifetime must be positive, got %g", *d.Lifetime)
		}
		gamma = relic.LifetimeToRate(*d.Lifetime)
	default:
		gamma = relic.LifetimeToRate(math.Pow(10, *d.Log10Lifetime))
	}
	if gamma <= 0 || math.IsInf(gamma, 0) || math.IsNaN(gamma) {
		return 0, relic.Invalid(op, id, "decay rate must be positive and finite, got %g", gamma)
	}
	return gamma, nil
}

// SpeciesInput is the typed per-species configuration.
type SpeciesInput struct {
	Type       Type
	Degeneracy float64
	MassEV     float64
	Omega0     float64 // density fraction today
	OmegaH2    float64 // Omega0*h^2; exclusive with Omega0
	TRatio     float64 // temperature over T_cmb
	Ksi        float64 // chemical potential
	Strategy   quadrature.Strategy
	Nodes      int
	QMax       float64

	Table     *psd.Tabulated
	TableName string

	Decay DecayInput
}

// DefaultSpecies returns the defaults for a species of the given type.
func DefaultSpecies(t Type) SpeciesInput {
	in := SpeciesInput{
		Type:       t,
		Degeneracy: DefaultDegeneracy,
		TRatio:     relic.DefaultTRatio,
		Strategy:   quadrature.Auto,
		Nodes:      DefaultNodes,
		QMax:       DefaultQMax,
	}
	if t == DecaySourced {
		in.MassEV = DefaultDecayMassEV
		in.Strategy = DefaultDecayStrategy
	}
	return in
}

func (in SpeciesInput) validate(id int) error {
	const op = "species"
	switch {
	case in.Type != Standard && in.Type != DecaySourced:
		return relic.Invalid(op, id, "unknown type %d", int(in.Type))
	case in.Degeneracy < 0:
		return relic.Invalid(op, id, "degeneracy must be non-negative, got %g", in.Degeneracy)
	case in.TRatio <= 0:
		return relic.Invalid(op, id, "temperature ratio must be positive, got %g", in.TRatio)
	case in.MassEV < 0 || in.Omega0 < 0 || in.OmegaH2 < 0:
		return relic.Invalid(op, id, "mass and density must be non-negative")
	case in.Omega0 != 0 && in.OmegaH2 != 0:
		return relic.Invalid(op, id, "both Omega and omega are set; choose one")
	}
	if _, err := quadrature.ParseStrategy(int(in.Strategy)); err != nil {
		return relic.Invalid(op, id, "unknown quadrature strategy %d", int(in.Strategy))
	}

	if in.Type == DecaySourced {
		switch {
		case in.Strategy != DefaultDecayStrategy:
			return relic.Invalid(op, id, "decay-sourced species only admit the %s strategy, got %s", DefaultDecayStrategy, in.Strategy)
		case in.Table != nil:
			return relic.Invalid(op, id, "decay-sourced species cannot use a tabulated distribution")
		case in.MassEV == 0:
			return relic.Invalid(op, id, "decay-sourced species need a mass")
		case in.Omega0 != 0 || in.OmegaH2 != 0:
			return relic.Invalid(op, id, "the density of a decay-sourced species follows from its mass and seed")
		}
		if _, err := in.Decay.rate(id); err != nil {
			return err
		}
	}
	return nil
}

// Species is a fully initialized relic species. Fields are read-only;
// change degeneracy or weights through the Registry setters.
type Species struct {
	ID     int
	Type   Type
	Deg    float64
	TRatio float64
	Ksi    float64

	M       float64 // mass over species temperature
	MassEV  float64
	Omega0  float64
	OmegaH2 float64

	Strategy quadrature.Strategy
	Nodes    int
	QMax     float64
	Source   string

	Background   quadrature.Set
	Perturbation quadrature.Set
	DLnF0DLnQ    []float64

	dist   relic.Distribution
	factor float64
}

// Distribution returns the phase-space density the grids were built from.
func (s *Species) Distribution() relic.Distribution { return s.dist }

// DecayChannel is the bookkeeping of one decay-sourced species inside the
// shared log-amplitude state vector.
type DecayChannel struct {
	Species           int
	Ordinal           int // position among decay-sourced species
	Offset            int // first bin in the state vector
	DQ                []float64
	Gamma             float64 // decay rate in 1/Mpc
	Source            int     // index of the sourced dark radiation species
	InitialPopulation bool
}

// Bins returns the channel's slice of a state vector.
func (c *DecayChannel) Bins(state []float64) ([]float64, error) {
	end := c.Offset + len(c.DQ)
	if end > len(state) {
		return nil, relic.Invalid("decay state", c.Species, "state vector has %d entries, channel needs [%d, %d)", len(state), c.Offset, end)
	}
	return state[c.Offset:end], nil
}
