// Package config provides configuration loading and access for the nutrition engine.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all engine configuration parameters.
type Config struct {
	Nutrition   NutritionConfig   `yaml:"nutrition"`
	Ticks       TicksConfig       `yaml:"ticks"`
	Catalog     CatalogConfig     `yaml:"catalog"`
	Telemetry   TelemetryConfig   `yaml:"telemetry"`
	Persistence PersistenceConfig `yaml:"persistence"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// NutritionConfig holds the global food-value scalars and per-nutrient fallbacks.
type NutritionConfig struct {
	Multiplier      float64          `yaml:"multiplier"`        // Scales every default-distributed value
	LossPerNutrient float64          `yaml:"loss_per_nutrient"` // Percent lost per extra nutrient an item satisfies
	Defaults        NutrientDefaults `yaml:"defaults"`
}

// NutrientDefaults are used when a nutrient record omits the field.
type NutrientDefaults struct {
	Starting         int     `yaml:"starting"`
	Decay            float64 `yaml:"decay"`
	DeathPenaltyMin  int     `yaml:"death_penalty_min"`
	DeathPenaltyLoss int     `yaml:"death_penalty_loss"`
}

// TicksConfig holds simulation cadence parameters.
type TicksConfig struct {
	DT             float64 `yaml:"dt"`              // Seconds per simulation tick
	DecayInterval  int     `yaml:"decay_interval"`  // Ticks between decay passes
	EffectInterval int     `yaml:"effect_interval"` // Ticks between effect evaluations
}

// CatalogConfig holds catalog source locations and load diagnostics switches.
type CatalogConfig struct {
	NutrientDir         string `yaml:"nutrient_dir"`
	EffectDir           string `yaml:"effect_dir"`
	RegistryPath        string `yaml:"registry_path"`
	LogMissingFood      bool   `yaml:"log_missing_food"`      // Warn on item references the registry does not know
	LogMissingNutrients bool   `yaml:"log_missing_nutrients"` // Warn on registered foods no nutrient claims
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulation per stats window
}

// PersistenceConfig holds snapshot store parameters.
type PersistenceConfig struct {
	Path         string `yaml:"path"`          // SQLite file (empty = disabled)
	SaveInterval int    `yaml:"save_interval"` // Ticks between snapshots
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	LossFraction     float64 // Nutrition.LossPerNutrient / 100
	StatsWindowTicks int     // Telemetry.StatsWindow / Ticks.DT
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// validate rejects settings the engine cannot run with.
func (c *Config) validate() error {
	if math.IsNaN(c.Nutrition.Multiplier) || c.Nutrition.Multiplier < 0 {
		return fmt.Errorf("nutrition.multiplier must not be negative, got %v", c.Nutrition.Multiplier)
	}
	if math.IsNaN(c.Nutrition.LossPerNutrient) || c.Nutrition.LossPerNutrient < 0 || c.Nutrition.LossPerNutrient > 100 {
		return fmt.Errorf("nutrition.loss_per_nutrient must be between 0 and 100, got %v", c.Nutrition.LossPerNutrient)
	}
	d := c.Nutrition.Defaults
	if d.Starting < 0 || d.Starting > 100 {
		return fmt.Errorf("nutrition.defaults.starting must be between 0 and 100, got %d", d.Starting)
	}
	if math.IsNaN(d.Decay) || d.Decay < -100 || d.Decay > 100 {
		return fmt.Errorf("nutrition.defaults.decay must be between -100 and 100, got %v", d.Decay)
	}
	if d.DeathPenaltyMin < 0 || d.DeathPenaltyMin > 100 {
		return fmt.Errorf("nutrition.defaults.death_penalty_min must be between 0 and 100, got %d", d.DeathPenaltyMin)
	}
	if d.DeathPenaltyLoss < 0 || d.DeathPenaltyLoss > 100 {
		return fmt.Errorf("nutrition.defaults.death_penalty_loss must be between 0 and 100, got %d", d.DeathPenaltyLoss)
	}
	if !(c.Ticks.DT > 0) {
		return fmt.Errorf("ticks.dt must be positive, got %v", c.Ticks.DT)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	if c.Ticks.DecayInterval < 1 {
		c.Ticks.DecayInterval = 1
	}
	if c.Ticks.EffectInterval < 1 {
		c.Ticks.EffectInterval = 1
	}

	c.Derived.LossFraction = c.Nutrition.LossPerNutrient / 100

	ticks := int(math.Round(c.Telemetry.StatsWindow / c.Ticks.DT))
	if ticks < 1 {
		ticks = 1
	}
	c.Derived.StatsWindowTicks = ticks
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// Recompute validates c and refreshes derived values after fields were
// changed in code.
func (c *Config) Recompute() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}
