// Package main provides CMA-ES optimization for nutrition balance parameters.
package main

import (
	"math"

	"github.com/pthm-cable/nutrition/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Food value
			{Name: "multiplier", Path: "nutrition.multiplier", Min: 0.25, Max: 3.0, Default: 1.0},
			{Name: "loss_per_nutrient", Path: "nutrition.loss_per_nutrient", Min: 0, Max: 40, Default: 15},
			// Fallbacks for nutrient records that omit them
			{Name: "decay", Path: "nutrition.defaults.decay", Min: 0.01, Max: 0.3, Default: 0.075},
			{Name: "death_penalty_loss", Path: "nutrition.defaults.death_penalty_loss", Min: 0, Max: 50, Default: 15},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

func (s ParamSpec) normalize(v float64) float64   { return (v - s.Min) / (s.Max - s.Min) }
func (s ParamSpec) denormalize(v float64) float64 { return s.Min + v*(s.Max-s.Min) }
func (s ParamSpec) clamp(v float64) float64       { return math.Min(math.Max(v, s.Min), s.Max) }
func (s ParamSpec) initial(float64) float64       { return s.Default }

// each applies f per spec to v, which may be nil when f ignores it.
func (pv *ParamVector) each(v []float64, f func(ParamSpec, float64) float64) []float64 {
	out := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		var x float64
		if v != nil {
			x = v[i]
		}
		out[i] = f(spec, x)
	}
	return out
}

// DefaultVector returns the default parameter values.
func (pv *ParamVector) DefaultVector() []float64 { return pv.each(nil, ParamSpec.initial) }

// Normalize maps raw values into [0,1] per parameter range.
func (pv *ParamVector) Normalize(raw []float64) []float64 { return pv.each(raw, ParamSpec.normalize) }

// Denormalize maps [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(v []float64) []float64 { return pv.each(v, ParamSpec.denormalize) }

// Clamp bounds every value to its parameter range.
func (pv *ParamVector) Clamp(v []float64) []float64 { return pv.each(v, ParamSpec.clamp) }

// ApplyToConfig applies parameter values to a Config struct and refreshes
// its derived values. Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) error {
	clamped := pv.Clamp(values)

	cfg.Nutrition.Multiplier = clamped[0]
	cfg.Nutrition.LossPerNutrient = clamped[1]
	cfg.Nutrition.Defaults.Decay = clamped[2]
	cfg.Nutrition.Defaults.DeathPenaltyLoss = int(clamped[3] + 0.5)

	return cfg.Recompute()
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Nutrition.Multiplier,
		cfg.Nutrition.LossPerNutrient,
		cfg.Nutrition.Defaults.Decay,
		float64(cfg.Nutrition.Defaults.DeathPenaltyLoss),
	}
}
