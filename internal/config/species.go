package config

import (
	"fmt"
	"path/filepath"

	"github.com/san-kum/relic/internal/ncdm"
	"github.com/san-kum/relic/internal/psd"
	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

const op = "config"

// pick returns whichever of a key and its deprecated alias was given.
func pick[T any](key, legacy string, cur, old []T) ([]T, error) {
	if cur != nil && old != nil {
		return nil, relic.Invalid(op, relic.NoSpecies, "only one of %s and %s may be given", key, legacy)
	}
	if cur != nil {
		return cur, nil
	}
	return old, nil
}

// fill expands an absent list to n defaults and checks a present one.
func fill[T any](key string, vals []T, n int, def T) ([]T, error) {
	if vals == nil {
		out := make([]T, n)
		for i := range out {
			out[i] = def
		}
		return out, nil
	}
	if len(vals) != n {
		return nil, relic.Invalid(op, relic.NoSpecies, "%s has %d entries, expected %d", key, len(vals), n)
	}
	return vals, nil
}

func list[T any](key, legacy string, cur, old []T, n int, def T) ([]T, error) {
	vals, err := pick(key, legacy, cur, old)
	if err != nil {
		return nil, err
	}
	if old != nil {
		key = legacy
	}
	return fill(key, vals, n, def)
}

// Counts returns the number of standard and decay-sourced species.
func (c *Config) Counts() (int, int, error) {
	s := c.Standard
	if s.N != nil && s.NLegacy != nil {
		return 0, 0, relic.Invalid(op, relic.NoSpecies, "only one of N_ncdm_standard and N_ncdm may be given")
	}
	var n int
	switch {
	case s.N != nil:
		n = *s.N
	case s.NLegacy != nil:
		n = *s.NLegacy
	}
	if n < 0 || c.Decay.N < 0 {
		return 0, 0, relic.Invalid(op, relic.NoSpecies, "species counts must be non-negative, got %d and %d", n, c.Decay.N)
	}
	return n, c.Decay.N, nil
}

// Species builds the typed per-species input. An empty result means no
// species were requested.
func (c *Config) Species() ([]ncdm.SpeciesInput, error) {
	nStd, nDecay, err := c.Counts()
	if err != nil {
		return nil, err
	}
	if nStd+nDecay == 0 {
		return nil, nil
	}

	std, err := c.standard(nStd)
	if err != nil {
		return nil, err
	}
	dec, err := c.decay(nDecay)
	if err != nil {
		return nil, err
	}
	all := append(std, dec...)

	if err := c.attachTables(all); err != nil {
		return nil, err
	}
	return all, nil
}

func (c *Config) standard(n int) ([]ncdm.SpeciesInput, error) {
	if n == 0 {
		return nil, nil
	}
	s := c.Standard
	def := ncdm.DefaultSpecies(ncdm.Standard)

	strategy, err := list("quadrature_strategy_ncdm_standard", "quadrature_strategy", s.Strategy, s.StrategyLegacy, n, int(quadrature.Auto))
	if err != nil {
		return nil, err
	}
	bins, err := list("N_momentum_bins_ncdm_standard", "N_momentum_bins", s.Bins, s.BinsLegacy, n, def.Nodes)
	if err != nil {
		return nil, err
	}
	qmax, err := list("maximum_q_ncdm_standard", "maximum_q", s.QMax, s.QMaxLegacy, n, def.QMax)
	if err != nil {
		return nil, err
	}
	t, err := list("T_ncdm_standard", "T_ncdm", s.T, s.TLegacy, n, def.TRatio)
	if err != nil {
		return nil, err
	}
	ksi, err := list("ksi_ncdm_standard", "ksi_ncdm", s.Ksi, s.KsiLegacy, n, 0.0)
	if err != nil {
		return nil, err
	}
	deg, err := list("deg_ncdm_standard", "deg_ncdm", s.Deg, s.DegLegacy, n, def.Degeneracy)
	if err != nil {
		return nil, err
	}
	mass, err := list("m_ncdm_standard", "m_ncdm", s.Mass, s.MassLegacy, n, 0.0)
	if err != nil {
		return nil, err
	}
	omega, err := list("Omega_ncdm_standard", "Omega_ncdm", s.Omega, s.OmegaLegacy, n, 0.0)
	if err != nil {
		return nil, err
	}
	omegaH2, err := list("omega_ncdm_standard", "omega_ncdm", s.OmegaH2, s.OmegaH2Legacy, n, 0.0)
	if err != nil {
		return nil, err
	}

	out := make([]ncdm.SpeciesInput, n)
	for i := range out {
		st, err := quadrature.ParseStrategy(strategy[i])
		if err != nil {
			return nil, relic.Invalid(op, i, "unknown quadrature strategy %d", strategy[i])
		}
		in := def
		in.Strategy = st
		in.Nodes = bins[i]
		in.QMax = qmax[i]
		in.TRatio = t[i]
		in.Ksi = ksi[i]
		in.Degeneracy = deg[i]
		in.MassEV = mass[i]
		in.Omega0 = omega[i]
		in.OmegaH2 = omegaH2[i]
		out[i] = in
	}
	return out, nil
}

func (c *Config) decay(n int) ([]ncdm.SpeciesInput, error) {
	if n == 0 {
		return nil, nil
	}
	d := c.Decay
	def := ncdm.DefaultSpecies(ncdm.DecaySourced)

	strategy, err := fill("quadrature_strategy_ncdm_decay_dr", d.Strategy, n, int(def.Strategy))
	if err != nil {
		return nil, err
	}
	bins, err := fill("N_momentum_bins_ncdm_decay_dr", d.Bins, n, def.Nodes)
	if err != nil {
		return nil, err
	}
	qmax, err := fill("maximum_q_ncdm_decay_dr", d.QMax, n, def.QMax)
	if err != nil {
		return nil, err
	}
	t, err := fill("T_ncdm_decay_dr", d.T, n, def.TRatio)
	if err != nil {
		return nil, err
	}
	ksi, err := fill("ksi_ncdm_decay_dr", d.Ksi, n, 0.0)
	if err != nil {
		return nil, err
	}
	deg, err := fill("deg_ncdm_decay_dr", d.Deg, n, def.Degeneracy)
	if err != nil {
		return nil, err
	}
	mass, err := fill("m_ncdm_decay_dr", d.Mass, n, def.MassEV)
	if err != nil {
		return nil, err
	}
	seeded, err := fill("initial_population_ncdm_decay_dr", d.InitialPopulation, n, false)
	if err != nil {
		return nil, err
	}
	rates, err := d.rates(n)
	if err != nil {
		return nil, err
	}

	nStd, _, _ := c.Counts()
	out := make([]ncdm.SpeciesInput, n)
	for i := range out {
		st, err := quadrature.ParseStrategy(strategy[i])
		if err != nil {
			return nil, relic.Invalid(op, nStd+i, "unknown quadrature strategy %d", strategy[i])
		}
		in := def
		in.Strategy = st
		in.Nodes = bins[i]
		in.QMax = qmax[i]
		in.TRatio = t[i]
		in.Ksi = ksi[i]
		in.Degeneracy = deg[i]
		in.MassEV = mass[i]
		in.Decay = rates[i]
		in.Decay.InitialPopulation = seeded[i]
		out[i] = in
	}
	return out, nil
}

func (d Decay) rates(n int) ([]ncdm.DecayInput, error) {
	type unit struct {
		key  string
		vals []float64
		set  func(*ncdm.DecayInput, float64)
	}
	units := []unit{
		{"Gamma_ncdm_decay_dr", d.Gamma, func(in *ncdm.DecayInput, v float64) { in.Gamma = &v }},
		{"log10Gamma_ncdm_decay_dr", d.Log10Gamma, func(in *ncdm.DecayInput, v float64) { in.Log10Gamma = &v }},
		{"lifetime_ncdm_decay_dr", d.Lifetime, func(in *ncdm.DecayInput, v float64) { in.Lifetime = &v }},
		{"log10lifetime_ncdm_decay_dr", d.Log10Lifetime, func(in *ncdm.DecayInput, v float64) { in.Log10Lifetime = &v }},
	}

	var given *unit
	for i := range units {
		if units[i].vals == nil {
			continue
		}
		if given != nil {
			return nil, relic.Invalid(op, relic.NoSpecies, "only one of %s and %s may be given", given.key, units[i].key)
		}
		given = &units[i]
	}
	if given == nil {
		return nil, relic.Invalid(op, relic.NoSpecies, "decay species need one of Gamma, log10Gamma, lifetime or log10lifetime")
	}
	if len(given.vals) != n {
		return nil, relic.Invalid(op, relic.NoSpecies, "%s has %d entries, expected %d", given.key, len(given.vals), n)
	}

	out := make([]ncdm.DecayInput, n)
	for i, v := range given.vals {
		given.set(&out[i], v)
	}
	return out, nil
}

func (c *Config) attachTables(species []ncdm.SpeciesInput) error {
	use, err := fill("use_ncdm_psd_files", c.Files.UsePSD, len(species), false)
	if err != nil {
		return err
	}
	want := 0
	for _, u := range use {
		if u {
			want++
		}
	}
	if want == 0 {
		return nil
	}
	if len(c.Files.Filenames) != want {
		return relic.Invalid(op, relic.NoSpecies, "%d psd filenames given for %d use_ncdm_psd_files entries", len(c.Files.Filenames), want)
	}

	next := 0
	for i, u := range use {
		if !u {
			continue
		}
		name := c.Files.Filenames[next]
		next++
		path := name
		if !filepath.IsAbs(path) && c.dir != "" {
			path = filepath.Join(c.dir, path)
		}
		t, err := psd.ReadTableFile(path)
		if err != nil {
			return fmt.Errorf("species %d: %w", i, err)
		}
		species[i].Table = t
		species[i].TableName = name
	}
	return nil
}

// Build creates the registry described by the config.
func (c *Config) Build(opts ...ncdm.Option) (*ncdm.Registry, bool, error) {
	in, err := c.Species()
	if err != nil {
		return nil, false, err
	}
	return ncdm.Create(in, c.Settings(), opts...)
}
