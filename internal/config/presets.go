package config

import "sort"

func intp(v int) *int { return &v }

func preset(mutate func(*Config)) *Config {
	cfg := DefaultConfig()
	mutate(cfg)
	return cfg
}

// Presets groups ready-made inputs by physical scenario.
var Presets = map[string]map[string]*Config{
	"neutrino": {
		"massless": preset(func(c *Config) {
			c.Standard.N = intp(3)
		}),
		"minimal": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.Mass = []float64{0.06}
		}),
		"degenerate": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.Mass = []float64{0.1}
			c.Standard.Deg = []float64{3}
		}),
		"omega": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.OmegaH2 = []float64{0.0006442}
		}),
	},
	"warm": {
		"thermal": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.Mass = []float64{2000}
			c.Standard.Omega = []float64{0.26}
			c.Standard.T = []float64{0.1}
		}),
		"lepton-asymmetric": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.Mass = []float64{0.06}
			c.Standard.Ksi = []float64{0.5}
		}),
	},
	"decay": {
		"dark-radiation": preset(func(c *Config) {
			c.Standard.N = intp(1)
			c.Standard.Mass = []float64{0.06}
			c.Decay.N = 1
			c.Decay.Bins = []int{50}
			c.Decay.QMax = []float64{30}
			c.Decay.Lifetime = []float64{1e9}
		}),
		"seeded": preset(func(c *Config) {
			c.Decay.N = 2
			c.Decay.Mass = []float64{1, 0.5}
			c.Decay.Log10Gamma = []float64{3, 4}
			c.Decay.InitialPopulation = []bool{true, false}
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(group, name string) *Config {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	cfg, ok := groupPresets[name]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets(group string) []string {
	groupPresets, ok := Presets[group]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(groupPresets))
	for name := range groupPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListGroups() []string {
	groups := make([]string, 0, len(Presets))
	for g := range Presets {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	return groups
}
