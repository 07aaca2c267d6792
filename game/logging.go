package game

import (
	"log/slog"

	"gonum.org/v1/gonum/stat"
)

// LogState logs the mean level of every nutrient and the effect counts.
func (g *Game) LogState() {
	samples, activeEffects := g.sampleLevels()

	attrs := []any{
		"tick", g.tick,
		"actors", len(g.actors),
		"active_effects", activeEffects,
	}
	for _, s := range samples {
		mean := 0.0
		if len(s.Levels) > 0 {
			mean = stat.Mean(s.Levels, nil)
		}
		attrs = append(attrs, s.Nutrient, mean)
	}
	slog.Info("nutrition state", attrs...)
}
