package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Default calibration. These are starting points, not physics constants:
// every value here can be overridden from a yaml file and should be refit
// against reference evolutionary tracks when better calibration data exists.
const (
	DefaultMinMass         = 0.08
	DefaultMaxMass         = 150.0
	DefaultLowMassLimit    = 0.8
	DefaultWhiteDwarfLimit = 8.0
	DefaultBlackHoleLimit  = 20.0
	DefaultMaxSteps        = 5000
	DefaultMaxAge          = 20000.0 // Myr
	DefaultWorkers         = 4
)

// Config is the full engine configuration: mass bands for fate selection,
// per-phase evolution parameters, run budgets, and infrastructure settings.
type Config struct {
	Mass    MassBands              `yaml:"mass"`
	Budget  Budget                 `yaml:"budget"`
	Phases  map[string]PhaseParams `yaml:"phases"`
	Workers int                    `yaml:"workers"`

	Store      string `yaml:"store"`       // memory | sqlite | redis
	DataDir    string `yaml:"data_dir"`    // sqlite database directory
	RedisAddr  string `yaml:"redis_addr"`  // host:port when store=redis
	ListenAddr string `yaml:"listen_addr"` // HTTP API address
}

// MassBands holds the supported mass range and the terminal-fate thresholds,
// all in solar masses.
type MassBands struct {
	Min             float64 `yaml:"min"`
	Max             float64 `yaml:"max"`
	LowMassLimit    float64 `yaml:"low_mass_limit"`    // below: the giant collapses straight to a white dwarf
	WhiteDwarfLimit float64 `yaml:"white_dwarf_limit"` // at/above: the giant goes supernova
	BlackHoleLimit  float64 `yaml:"black_hole_limit"`  // at/above: the collapse leaves a black hole
}

// Budget bounds a single run: whichever ceiling is hit first ends the run
// with a budget_exceeded outcome.
type Budget struct {
	MaxSteps int     `yaml:"max_steps"`
	MaxAge   float64 `yaml:"max_age"` // Myr
}

// PhaseParams calibrates one phase's evolution. The phase lasts DurationFrac
// of the star's nuclear lifetime unless DurationMyr is set, in which case the
// fixed duration wins. Over the phase, luminosity and radius relax
// exponentially to Ratio times their entry values and mass decays to
// MassRetention times its entry value. Steps fixes how many integration
// steps span the phase, so dt scales with phase length.
type PhaseParams struct {
	Steps           int     `yaml:"steps"`
	DurationFrac    float64 `yaml:"duration_frac"`
	DurationMyr     float64 `yaml:"duration_myr"`
	LuminosityRatio float64 `yaml:"luminosity_ratio"`
	RadiusRatio     float64 `yaml:"radius_ratio"`
	MassRetention   float64 `yaml:"mass_retention"`
}

// DefaultConfig returns the calibration used when no yaml file is supplied.
// Mass retentions follow the reference pipeline's per-stage scale (red giant
// keeps ~95%, nebula ejection leaves ~55-60% of the initial mass at the
// white dwarf, core collapse keeps roughly half).
func DefaultConfig() *Config {
	return &Config{
		Mass: MassBands{
			Min:             DefaultMinMass,
			Max:             DefaultMaxMass,
			LowMassLimit:    DefaultLowMassLimit,
			WhiteDwarfLimit: DefaultWhiteDwarfLimit,
			BlackHoleLimit:  DefaultBlackHoleLimit,
		},
		Budget: Budget{
			MaxSteps: DefaultMaxSteps,
			MaxAge:   DefaultMaxAge,
		},
		Phases: map[string]PhaseParams{
			"pre_main_sequence": {
				Steps: 20, DurationFrac: 0.01,
				LuminosityRatio: 0.5, RadiusRatio: 0.25, MassRetention: 1.0,
			},
			"main_sequence": {
				Steps: 50, DurationFrac: 1.0,
				LuminosityRatio: 1.8, RadiusRatio: 1.4, MassRetention: 0.999,
			},
			"red_giant": {
				Steps: 30, DurationFrac: 0.10,
				LuminosityRatio: 50, RadiusRatio: 30, MassRetention: 0.95,
			},
			"horizontal_branch": {
				Steps: 20, DurationFrac: 0.05,
				LuminosityRatio: 0.5, RadiusRatio: 0.4, MassRetention: 0.99,
			},
			"asymptotic_giant_branch": {
				Steps: 25, DurationFrac: 0.02,
				LuminosityRatio: 8, RadiusRatio: 10, MassRetention: 0.85,
			},
			"planetary_nebula": {
				Steps: 10, DurationMyr: 0.05,
				LuminosityRatio: 0.01, RadiusRatio: 0.004, MassRetention: 0.70,
			},
			"supernova": {
				Steps: 5, DurationMyr: 0.0005,
				LuminosityRatio: 1000, RadiusRatio: 1e-4, MassRetention: 0.55,
			},
		},
		Workers:    DefaultWorkers,
		Store:      "memory",
		DataDir:    ".stellarsim",
		ListenAddr: "127.0.0.1:8389",
	}
}

// Load reads a yaml config, layered over the defaults so partial files work.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg as yaml.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Phase returns the calibration for a phase name.
func (c *Config) Phase(name string) (PhaseParams, bool) {
	p, ok := c.Phases[name]
	return p, ok
}

// Validate rejects configurations the engine cannot run with.
func (c *Config) Validate() error {
	m := c.Mass
	if m.Min <= 0 || m.Max <= m.Min {
		return fmt.Errorf("config: mass range [%g, %g] invalid", m.Min, m.Max)
	}
	if !(m.Min < m.LowMassLimit && m.LowMassLimit < m.WhiteDwarfLimit &&
		m.WhiteDwarfLimit < m.BlackHoleLimit && m.BlackHoleLimit < m.Max) {
		return fmt.Errorf("config: mass thresholds must be ordered min < low < wd < bh < max")
	}
	if c.Budget.MaxSteps <= 0 {
		return fmt.Errorf("config: max_steps must be positive, got %d", c.Budget.MaxSteps)
	}
	if c.Budget.MaxAge <= 0 {
		return fmt.Errorf("config: max_age must be positive, got %g", c.Budget.MaxAge)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: workers must be positive, got %d", c.Workers)
	}
	switch c.Store {
	case "memory", "sqlite", "redis":
	default:
		return fmt.Errorf("config: unknown store %q (memory, sqlite, redis)", c.Store)
	}
	for name, p := range c.Phases {
		if p.Steps <= 0 {
			return fmt.Errorf("config: phase %s: steps must be positive", name)
		}
		if p.DurationFrac <= 0 && p.DurationMyr <= 0 {
			return fmt.Errorf("config: phase %s: needs duration_frac or duration_myr", name)
		}
		if p.LuminosityRatio <= 0 || p.RadiusRatio <= 0 {
			return fmt.Errorf("config: phase %s: endpoint ratios must be positive", name)
		}
		if p.MassRetention <= 0 || p.MassRetention > 1 {
			return fmt.Errorf("config: phase %s: mass_retention must be in (0, 1]", name)
		}
	}
	return nil
}
