package ncdm

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/relic/internal/psd"
	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

// Registry holds every initialized species and the decay channel layout.
type Registry struct {
	settings Settings
	h0       float64
	species  []*Species
	channels map[int]*DecayChannel
	order    []int // decay-sourced species ids in registration order
	bins     int

	logger   *slog.Logger
	observer Observer
}

type Option func(*Registry)

func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(r *Registry) {
		if o != nil {
			r.observer = o
		}
	}
}

// Create initializes all species. With no species it reports that the
// component is not configured and returns a nil registry.
func Create(in []SpeciesInput, settings Settings, opts ...Option) (*Registry, bool, error) {
	if len(in) == 0 {
		return nil, false, nil
	}
	if err := settings.validate(); err != nil {
		return nil, false, err
	}

	r := &Registry{
		settings: settings,
		h0:       relic.HubbleMpc(settings.H),
		channels: make(map[int]*DecayChannel),
		logger:   slog.Default(),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(r)
	}

	for id, si := range in {
		if err := si.validate(id); err != nil {
			return nil, false, err
		}
		sp, err := r.build(id, si)
		if err != nil {
			return nil, false, err
		}
		r.species = append(r.species, sp)

		if si.Type == DecaySourced {
			r.register(sp, si.Decay)
		}
	}

	for id, si := range in {
		if err := r.fixMass(r.species[id], si); err != nil {
			return nil, false, err
		}
	}

	for _, s := range r.Summaries() {
		r.logger.Debug("ncdm species ready",
			"species", s.ID,
			"type", s.Type.String(),
			"mass_ev", s.MassEV,
			"omega0", s.Omega0,
			"deg", s.Degeneracy,
			"background_nodes", s.BackgroundNodes,
			"perturbation_nodes", s.PerturbationNodes,
		)
	}
	return r, true, nil
}

func (r *Registry) build(id int, in SpeciesInput) (*Species, error) {
	sp := &Species{
		ID:       id,
		Type:     in.Type,
		Deg:      in.Degeneracy,
		TRatio:   in.TRatio,
		Ksi:      in.Ksi,
		MassEV:   in.MassEV,
		Omega0:   in.Omega0,
		Strategy: in.Strategy,
		Nodes:    in.Nodes,
		QMax:     in.QMax,
	}
	if in.OmegaH2 != 0 {
		sp.Omega0 = in.OmegaH2 / (r.settings.H * r.settings.H)
	}

	switch {
	case in.Type == DecaySourced:
		sp.dist = psd.DecaySeed{Populated: in.Decay.InitialPopulation}
		sp.Source = "decay seed"
	case in.Table != nil:
		sp.dist = in.Table
		sp.Source = in.TableName
		if sp.Source == "" {
			sp.Source = "table"
		}
	default:
		sp.dist = psd.FermiDirac{Ksi: in.Ksi}
		sp.Source = "fermi-dirac"
	}

	if err := r.buildGrids(sp); err != nil {
		return nil, err
	}
	sp.DLnF0DLnQ = psd.LogDerivative(sp.dist, sp.Perturbation.Q)
	sp.factor = sp.Deg * relic.Normalization(r.settings.TCMB, sp.TRatio)
	return sp, nil
}

func (r *Registry) buildGrids(sp *Species) error {
	var err error
	if sp.Strategy.Manual() {
		sp.Perturbation, err = quadrature.Manual(sp.dist, sp.Nodes, sp.QMax, sp.Strategy)
		if err != nil {
			return withSpecies(err, sp.ID)
		}
		sp.Background = sp.Perturbation.Clone()
	} else {
		sp.Perturbation, err = quadrature.Automatic(sp.dist, r.settings.Perturbation)
		if err != nil {
			return withSpecies(err, sp.ID)
		}
		sp.Background, err = quadrature.Automatic(sp.dist, r.settings.Background)
		if err != nil {
			return withSpecies(err, sp.ID)
		}
	}
	r.observer.GridBuilt(sp.ID, GridPerturbation, sp.Perturbation.Len())
	r.observer.GridBuilt(sp.ID, GridBackground, sp.Background.Len())
	return nil
}

func (r *Registry) register(sp *Species, in DecayInput) {
	gamma, _ := in.rate(sp.ID) // validated
	ordinal := len(r.order)
	source := ordinal
	if r.settings.HasDCDM {
		source++
	}
	r.channels[sp.ID] = &DecayChannel{
		Species:           sp.ID,
		Ordinal:           ordinal,
		Offset:            r.bins,
		DQ:                append([]float64(nil), sp.Perturbation.DQ...),
		Gamma:             relic.RateToMpc(gamma),
		Source:            source,
		InitialPopulation: in.InitialPopulation,
	}
	r.order = append(r.order, sp.ID)
	r.bins += sp.Perturbation.Len()
}

// fixMass derives whichever of mass and density is not given. A given mass
// with a given density rescales the degeneracy to hit the density.
func (r *Registry) fixMass(sp *Species, in SpeciesInput) error {
	if sp.MassEV == 0 && sp.Omega0 == 0 {
		sp.MassEV = DefaultMassEV
	}

	if sp.MassEV != 0 {
		sp.M = relic.MassToDimensionless(sp.MassEV, sp.TRatio, r.settings.TCMB)
		rho := moments(sp.Background, sp.factor, sp.Deg, sp.M, 0, Energy).Rho
		if sp.Omega0 == 0 || sp.Type == DecaySourced {
			sp.Omega0 = rho / (r.h0 * r.h0)
		} else {
			if rho == 0 {
				return relic.Invalid("mass", sp.ID, "cannot rescale an empty distribution to Omega %g", sp.Omega0)
			}
			fnu := r.h0 * r.h0 * sp.Omega0 / rho
			sp.factor *= fnu
			sp.Deg *= fnu
		}
	} else {
		m, iters, err := r.solveMass(sp, sp.Omega0)
		if err != nil {
			return err
		}
		r.observer.MassSolved(sp.ID, iters)
		sp.M = m
		sp.MassEV = relic.DimensionlessToMass(m, sp.TRatio, r.settings.TCMB)
	}
	sp.OmegaH2 = sp.Omega0 * r.settings.H * r.settings.H
	return nil
}

func withSpecies(err error, id int) error {
	var re *relic.Error
	if errors.As(err, &re) && re.Species == relic.NoSpecies {
		cp := *re
		cp.Species = id
		return &cp
	}
	return fmt.Errorf("species %d: %w", id, err)
}

func (r *Registry) lookup(op string, id int) (*Species, error) {
	if r == nil || id < 0 || id >= len(r.species) {
		return nil, relic.Invalid(op, id, "unknown species")
	}
	return r.species[id], nil
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.species)
}

func (r *Registry) Settings() Settings { return r.settings }

// Species returns the initialized species with the given index.
func (r *Registry) Species(id int) (*Species, bool) {
	sp, err := r.lookup("species", id)
	return sp, err == nil
}

// Channel returns the decay bookkeeping of a decay-sourced species.
func (r *Registry) Channel(id int) (*DecayChannel, bool) {
	if r == nil {
		return nil, false
	}
	ch, ok := r.channels[id]
	return ch, ok
}

// DecaySpecies lists decay-sourced species in state vector order.
func (r *Registry) DecaySpecies() []int {
	return append([]int(nil), r.order...)
}

// DecayBins is the length of the log-amplitude state vector.
func (r *Registry) DecayBins() int { return r.bins }

// Degeneracy returns 0 for an unknown species.
func (r *Registry) Degeneracy(id int) float64 {
	if sp, ok := r.Species(id); ok {
		return sp.Deg
	}
	return 0
}

// MassEV returns 0 for an unknown species.
func (r *Registry) MassEV(id int) float64 {
	if sp, ok := r.Species(id); ok {
		return sp.MassEV
	}
	return 0
}

// Omega0 returns the summed density fraction today.
func (r *Registry) Omega0() float64 {
	var sum float64
	for _, sp := range r.species {
		sum += sp.Omega0
	}
	return sum
}

// DeltaNeff is the contribution of one species to the effective number of
// neutrinos, in the massless limit.
func (r *Registry) DeltaNeff(id int) (float64, error) {
	sp, err := r.lookup("delta neff", id)
	if err != nil {
		return 0, err
	}
	rho := moments(sp.Background, sp.factor, sp.Deg, 0, 0, Energy).Rho
	return rho / relic.NeutrinoRelativisticDensity(r.settings.TCMB), nil
}

// Neff sums DeltaNeff over all species.
func (r *Registry) Neff() float64 {
	var sum float64
	for id := range r.species {
		d, _ := r.DeltaNeff(id)
		sum += d
	}
	return sum
}

// SetOmega0 records a density fraction computed elsewhere. It does not
// touch the normalization.
func (r *Registry) SetOmega0(id int, omega0 float64) error {
	sp, err := r.lookup("set omega", id)
	if err != nil {
		return err
	}
	if omega0 < 0 || math.IsNaN(omega0) {
		return relic.Invalid("set omega", id, "Omega must be non-negative, got %g", omega0)
	}
	sp.Omega0 = omega0
	sp.OmegaH2 = omega0 * r.settings.H * r.settings.H
	return nil
}

// SetDegeneracy replaces the degeneracy and the normalization with it.
func (r *Registry) SetDegeneracy(id int, deg float64) error {
	sp, err := r.lookup("set degeneracy", id)
	if err != nil {
		return err
	}
	if deg < 0 || math.IsNaN(deg) || math.IsInf(deg, 0) {
		return relic.Invalid("set degeneracy", id, "degeneracy must be non-negative and finite, got %g", deg)
	}
	sp.Deg = deg
	sp.factor = deg * relic.Normalization(r.settings.TCMB, sp.TRatio)
	return nil
}

// SetDegeneracyFromInitialOmega picks the degeneracy so that the species
// has density fraction omegaIni, measured against (1+z)^4, at redshift zIni.
func (r *Registry) SetDegeneracyFromInitialOmega(id int, zIni, omegaIni float64) error {
	const op = "degeneracy from initial omega"
	if _, err := r.lookup(op, id); err != nil {
		return err
	}
	m, err := r.MomentaDegeneracy(id, 1, zIni, Energy)
	if err != nil {
		return err
	}
	unit := m.Rho * math.Pow(1+zIni, -4) / (r.h0 * r.h0)
	if unit == 0 {
		return relic.Invalid(op, id, "species has no density at z=%g", zIni)
	}
	return r.SetDegeneracy(id, omegaIni/unit)
}

// SetBackgroundWeight overwrites one background weight. Decay-sourced
// species start with zero weights and are filled this way.
func (r *Registry) SetBackgroundWeight(id, node int, w float64) error {
	sp, err := r.lookup("set weight", id)
	if err != nil {
		return err
	}
	if node < 0 || node >= sp.Background.Len() {
		return relic.Invalid("set weight", id, "node %d outside [0, %d)", node, sp.Background.Len())
	}
	sp.Background.W[node] = w
	return nil
}

// Summary is a printable digest of one species.
type Summary struct {
	ID                int
	Type              Type
	MassEV            float64
	Degeneracy        float64
	Omega0            float64
	OmegaH2           float64
	DeltaNeff         float64
	Strategy          quadrature.Strategy
	BackgroundNodes   int
	PerturbationNodes int
	Source            string
}

func (r *Registry) Summaries() []Summary {
	out := make([]Summary, 0, r.Len())
	for _, sp := range r.species {
		dn, _ := r.DeltaNeff(sp.ID)
		out = append(out, Summary{
			ID:                sp.ID,
			Type:              sp.Type,
			MassEV:            sp.MassEV,
			Degeneracy:        sp.Deg,
			Omega0:            sp.Omega0,
			OmegaH2:           sp.OmegaH2,
			DeltaNeff:         dn,
			Strategy:          sp.Strategy,
			BackgroundNodes:   sp.Background.Len(),
			PerturbationNodes: sp.Perturbation.Len(),
			Source:            sp.Source,
		})
	}
	return out
}
