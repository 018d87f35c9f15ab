package config

// Presets are named configurations for common survey workloads.
var Presets = map[string]func() *Config{
	// standard is the default calibration.
	"standard": DefaultConfig,

	// fast_survey trades track resolution for throughput: fewer steps per
	// phase and tighter budgets, for bulk catalog sweeps feeding the trainer.
	"fast_survey": func() *Config {
		cfg := DefaultConfig()
		for name, p := range cfg.Phases {
			p.Steps = max(2, p.Steps/5)
			cfg.Phases[name] = p
		}
		cfg.Budget.MaxSteps = 1000
		cfg.Workers = 8
		return cfg
	},

	// fine_tracks produces dense keyframes for the visualizer.
	"fine_tracks": func() *Config {
		cfg := DefaultConfig()
		for name, p := range cfg.Phases {
			p.Steps = p.Steps * 4
			cfg.Phases[name] = p
		}
		cfg.Budget.MaxSteps = 25000
		return cfg
	},
}

// GetPreset returns a fresh Config for a preset name, or nil when unknown.
func GetPreset(name string) *Config {
	mk, ok := Presets[name]
	if !ok {
		return nil
	}
	return mk()
}

// ListPresets returns the available preset names.
func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
