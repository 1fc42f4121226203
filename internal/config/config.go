package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/relic/internal/ncdm"
	"github.com/san-kum/relic/internal/quadrature"
	"github.com/san-kum/relic/internal/relic"
)

const (
	DefaultTolPerturbation = 1e-5
	DefaultTolBackground   = 1e-4
	DefaultTolMass         = 1e-7
	DefaultTolInitialW     = 1e-3
	DefaultMaxNodes        = 250
	DefaultMaxNodesBg      = 150
	DefaultAStart          = 1e-2
	EnvPrefix              = "RELIC_"
)

// Config mirrors the input file. Per-species values are lists; standard
// species come first, decay-sourced ones after.
type Config struct {
	Cosmology Cosmology `yaml:",inline"`
	Precision Precision `yaml:",inline"`
	Standard  Standard  `yaml:",inline"`
	Decay     Decay     `yaml:",inline"`
	Files     Files     `yaml:",inline"`

	dir string
}

type Cosmology struct {
	H       float64 `yaml:"h" env:"H"`
	TCMB    float64 `yaml:"T_cmb" env:"T_CMB"`
	HasDCDM bool    `yaml:"has_dcdm,omitempty" env:"HAS_DCDM"`
}

type Precision struct {
	TolPerturbation float64 `yaml:"tol_ncdm" env:"TOL_NCDM"`
	TolBackground   float64 `yaml:"tol_ncdm_bg" env:"TOL_NCDM_BG"`
	TolMass         float64 `yaml:"tol_M_ncdm" env:"TOL_M_NCDM"`
	TolInitialW     float64 `yaml:"tol_ncdm_initial_w" env:"TOL_NCDM_INITIAL_W"`
	MaxNodes        int     `yaml:"max_nodes_ncdm" env:"MAX_NODES_NCDM"`
	MaxNodesBg      int     `yaml:"max_nodes_ncdm_bg" env:"MAX_NODES_NCDM_BG"`
	AStart          float64 `yaml:"a_ini_ncdm" env:"A_INI_NCDM"`
}

// Standard holds thermal species lists. Each key has a deprecated alias;
// giving both is an error.
type Standard struct {
	N       *int `yaml:"N_ncdm_standard,omitempty"`
	NLegacy *int `yaml:"N_ncdm,omitempty"`

	Strategy       []int     `yaml:"quadrature_strategy_ncdm_standard,omitempty"`
	StrategyLegacy []int     `yaml:"quadrature_strategy,omitempty"`
	Bins           []int     `yaml:"N_momentum_bins_ncdm_standard,omitempty"`
	BinsLegacy     []int     `yaml:"N_momentum_bins,omitempty"`
	QMax           []float64 `yaml:"maximum_q_ncdm_standard,omitempty"`
	QMaxLegacy     []float64 `yaml:"maximum_q,omitempty"`
	T              []float64 `yaml:"T_ncdm_standard,omitempty"`
	TLegacy        []float64 `yaml:"T_ncdm,omitempty"`
	Ksi            []float64 `yaml:"ksi_ncdm_standard,omitempty"`
	KsiLegacy      []float64 `yaml:"ksi_ncdm,omitempty"`
	Deg            []float64 `yaml:"deg_ncdm_standard,omitempty"`
	DegLegacy      []float64 `yaml:"deg_ncdm,omitempty"`
	Mass           []float64 `yaml:"m_ncdm_standard,omitempty"`
	MassLegacy     []float64 `yaml:"m_ncdm,omitempty"`
	Omega          []float64 `yaml:"Omega_ncdm_standard,omitempty"`
	OmegaLegacy    []float64 `yaml:"Omega_ncdm,omitempty"`
	OmegaH2        []float64 `yaml:"omega_ncdm_standard,omitempty"`
	OmegaH2Legacy  []float64 `yaml:"omega_ncdm,omitempty"`
}

// Decay holds decay-sourced species lists. The rate is given in exactly
// one of four units.
type Decay struct {
	N        int       `yaml:"N_ncdm_decay_dr,omitempty"`
	Strategy []int     `yaml:"quadrature_strategy_ncdm_decay_dr,omitempty"`
	Bins     []int     `yaml:"N_momentum_bins_ncdm_decay_dr,omitempty"`
	QMax     []float64 `yaml:"maximum_q_ncdm_decay_dr,omitempty"`
	T        []float64 `yaml:"T_ncdm_decay_dr,omitempty"`
	Ksi      []float64 `yaml:"ksi_ncdm_decay_dr,omitempty"`
	Deg      []float64 `yaml:"deg_ncdm_decay_dr,omitempty"`
	Mass     []float64 `yaml:"m_ncdm_decay_dr,omitempty"`

	Gamma         []float64 `yaml:"Gamma_ncdm_decay_dr,omitempty"`
	Log10Gamma    []float64 `yaml:"log10Gamma_ncdm_decay_dr,omitempty"`
	Lifetime      []float64 `yaml:"lifetime_ncdm_decay_dr,omitempty"`
	Log10Lifetime []float64 `yaml:"log10lifetime_ncdm_decay_dr,omitempty"`

	InitialPopulation []bool `yaml:"initial_population_ncdm_decay_dr,omitempty"`
}

// Files selects tabulated distributions. UsePSD covers all species; one
// filename is needed per true entry.
type Files struct {
	UsePSD    []bool   `yaml:"use_ncdm_psd_files,omitempty"`
	Filenames []string `yaml:"ncdm_psd_filenames,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Cosmology: Cosmology{
			H:    relic.DefaultH,
			TCMB: relic.DefaultTCMB,
		},
		Precision: Precision{
			TolPerturbation: DefaultTolPerturbation,
			TolBackground:   DefaultTolBackground,
			TolMass:         DefaultTolMass,
			TolInitialW:     DefaultTolInitialW,
			MaxNodes:        DefaultMaxNodes,
			MaxNodesBg:      DefaultMaxNodesBg,
			AStart:          DefaultAStart,
		},
	}
}

// Load reads a yaml file over the defaults and applies environment
// overrides. Relative psd filenames resolve against the file's directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.dir = filepath.Dir(path)
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ApplyEnv overrides cosmology and precision from RELIC_* variables.
func (c *Config) ApplyEnv() error {
	opts := env.Options{Prefix: EnvPrefix}
	if err := env.ParseWithOptions(&c.Cosmology, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	if err := env.ParseWithOptions(&c.Precision, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Settings converts the shared inputs.
func (c *Config) Settings() ncdm.Settings {
	return ncdm.Settings{
		H:    c.Cosmology.H,
		TCMB: c.Cosmology.TCMB,
		Background: quadrature.AutoOptions{
			Tolerance: c.Precision.TolBackground,
			MaxNodes:  c.Precision.MaxNodesBg,
			MinNodes:  2,
		},
		Perturbation: quadrature.AutoOptions{
			Tolerance: c.Precision.TolPerturbation,
			MaxNodes:  c.Precision.MaxNodes,
			MinNodes:  2,
		},
		TolMass: c.Precision.TolMass,
		HasDCDM: c.Cosmology.HasDCDM,
	}
}
