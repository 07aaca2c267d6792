package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Actors tracked at window end
	Actors int `csv:"actors"`

	// Events during window
	Meals          int     `csv:"meals"`
	Specials       int     `csv:"specials"`
	ForeignChanges int     `csv:"foreign_changes"`
	NutrientGain   float64 `csv:"nutrient_gain"` // Summed over meals and specials
	Deaths         int     `csv:"deaths"`
	Joins          int     `csv:"joins"`
	Leaves         int     `csv:"leaves"`

	// Effect transitions
	EffectsStarted int `csv:"effects_started"`
	EffectsChanged int `csv:"effects_changed"`
	EffectsEnded   int `csv:"effects_ended"`
	ActiveEffects  int `csv:"active_effects"` // Sampled at window end

	// Level distribution over every actor and nutrient (sampled at window end)
	LevelMean float64 `csv:"level_mean"`
	LevelP10  float64 `csv:"level_p10"`
	LevelP50  float64 `csv:"level_p50"`
	LevelP90  float64 `csv:"level_p90"`
}

// NutrientStats is the level distribution of one nutrient at window end.
type NutrientStats struct {
	WindowEndTick int32   `csv:"window_end"`
	Nutrient      string  `csv:"nutrient"`
	Mean          float64 `csv:"mean"`
	P10           float64 `csv:"p10"`
	P50           float64 `csv:"p50"`
	P90           float64 `csv:"p90"`
	Depleted      int     `csv:"depleted"`  // Actors at 0
	Saturated     int     `csv:"saturated"` // Actors at 100
}

// ComputeLevelStats calculates the mean and empirical percentiles of levels.
func ComputeLevelStats(values []float64) (mean, p10, p50, p90 float64) {
	if len(values) == 0 {
		return 0, 0, 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean = stat.Mean(sorted, nil)
	p10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	p50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	p90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)
	return mean, p10, p50, p90
}

// ComputeNutrientStats summarizes one nutrient's levels across actors.
func ComputeNutrientStats(windowEnd int32, name string, levels []float64) NutrientStats {
	ns := NutrientStats{WindowEndTick: windowEnd, Nutrient: name}
	ns.Mean, ns.P10, ns.P50, ns.P90 = ComputeLevelStats(levels)
	for _, v := range levels {
		switch {
		case v <= 0:
			ns.Depleted++
		case v >= 100:
			ns.Saturated++
		}
	}
	return ns
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("actors", s.Actors),
		slog.Int("meals", s.Meals),
		slog.Int("specials", s.Specials),
		slog.Int("foreign_changes", s.ForeignChanges),
		slog.Float64("nutrient_gain", s.NutrientGain),
		slog.Int("deaths", s.Deaths),
		slog.Int("effects_started", s.EffectsStarted),
		slog.Int("effects_changed", s.EffectsChanged),
		slog.Int("effects_ended", s.EffectsEnded),
		slog.Int("active_effects", s.ActiveEffects),
		slog.Float64("level_mean", s.LevelMean),
		slog.Float64("level_p10", s.LevelP10),
		slog.Float64("level_p50", s.LevelP50),
		slog.Float64("level_p90", s.LevelP90),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndTick,
		"sim_time", s.SimTimeSec,
		"actors", s.Actors,
		"meals", s.Meals,
		"specials", s.Specials,
		"foreign_changes", s.ForeignChanges,
		"nutrient_gain", s.NutrientGain,
		"deaths", s.Deaths,
		"joins", s.Joins,
		"leaves", s.Leaves,
		"effects_started", s.EffectsStarted,
		"effects_changed", s.EffectsChanged,
		"effects_ended", s.EffectsEnded,
		"active_effects", s.ActiveEffects,
		"level_mean", s.LevelMean,
		"level_p10", s.LevelP10,
		"level_p50", s.LevelP50,
		"level_p90", s.LevelP90,
	)
}
