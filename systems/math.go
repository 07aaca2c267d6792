package systems

import "math"

// Level bounds shared by every nutrient.
const (
	MinLevel = 0.0
	MaxLevel = 100.0
)

// clampLevel clamps a nutrient level to [MinLevel, MaxLevel].
// NaN collapses to MinLevel so a bad input can never escape the range.
func clampLevel(v float64) float64 {
	if math.IsNaN(v) || v < MinLevel {
		return MinLevel
	}
	if v > MaxLevel {
		return MaxLevel
	}
	return v
}
