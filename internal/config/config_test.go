package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Mass.WhiteDwarfLimit != 8.0 {
		t.Errorf("expected white dwarf limit 8, got %g", cfg.Mass.WhiteDwarfLimit)
	}
	if _, ok := cfg.Phase("main_sequence"); !ok {
		t.Error("main_sequence params missing")
	}
	if _, ok := cfg.Phase("white_dwarf"); ok {
		t.Error("terminal phases must not carry evolution params")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"inverted range", func(c *Config) { c.Mass.Max = 0.01 }, "mass range"},
		{"unordered thresholds", func(c *Config) { c.Mass.BlackHoleLimit = 5 }, "ordered"},
		{"zero steps budget", func(c *Config) { c.Budget.MaxSteps = 0 }, "max_steps"},
		{"negative age budget", func(c *Config) { c.Budget.MaxAge = -1 }, "max_age"},
		{"zero workers", func(c *Config) { c.Workers = 0 }, "workers"},
		{"unknown store", func(c *Config) { c.Store = "postgres" }, "store"},
		{"zero phase steps", func(c *Config) {
			p := c.Phases["red_giant"]
			p.Steps = 0
			c.Phases["red_giant"] = p
		}, "steps"},
		{"no duration", func(c *Config) {
			p := c.Phases["red_giant"]
			p.DurationFrac = 0
			p.DurationMyr = 0
			c.Phases["red_giant"] = p
		}, "duration"},
		{"retention above one", func(c *Config) {
			p := c.Phases["main_sequence"]
			p.MassRetention = 1.5
			c.Phases["main_sequence"] = p
		}, "mass_retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stellarsim.yaml")

	cfg := DefaultConfig()
	cfg.Mass.BlackHoleLimit = 25.0
	cfg.Workers = 2

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Mass.BlackHoleLimit != 25.0 {
		t.Errorf("expected black hole limit 25, got %g", loaded.Mass.BlackHoleLimit)
	}
	if loaded.Workers != 2 {
		t.Errorf("expected 2 workers, got %d", loaded.Workers)
	}
	// Fields absent from the file keep their defaults.
	if loaded.Mass.WhiteDwarfLimit != DefaultWhiteDwarfLimit {
		t.Errorf("default not preserved: %g", loaded.Mass.WhiteDwarfLimit)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("fast_survey")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset should validate: %v", err)
	}
	if cfg.Budget.MaxSteps != 1000 {
		t.Errorf("expected max_steps 1000, got %d", cfg.Budget.MaxSteps)
	}

	if GetPreset("nonexistent") != nil {
		t.Error("expected nil for unknown preset")
	}

	// Presets hand out independent configs.
	a := GetPreset("standard")
	b := GetPreset("standard")
	a.Workers = 99
	if b.Workers == 99 {
		t.Error("presets must not share state")
	}
}

func TestListPresets(t *testing.T) {
	names := ListPresets()
	if len(names) < 3 {
		t.Errorf("expected at least 3 presets, got %v", names)
	}
}
