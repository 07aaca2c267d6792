package systems

import (
	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
)

// NewNutrition creates levels at each nutrient's starting value.
func NewNutrition(cat *catalog.Catalog) components.Nutrition {
	return components.Nutrition{Levels: cat.StartingLevels()}
}

// AddNutrient adds delta to the level at index i.
func AddNutrient(n *components.Nutrition, i int, delta float64) {
	if i < 0 || i >= len(n.Levels) {
		return
	}
	n.Levels[i] = clampLevel(n.Levels[i] + delta)
}

// ApplyContributions adds every contribution to the matching level.
func ApplyContributions(n *components.Nutrition, cs Contributions) {
	for _, c := range cs {
		AddNutrient(n, c.Nutrient.Index, c.Value)
	}
}

// DecayTick subtracts each nutrient's decay rate from its level.
// Negative rates grow the level.
func DecayTick(n *components.Nutrition, cat *catalog.Catalog) {
	for _, nut := range cat.Nutrients {
		AddNutrient(n, nut.Index, -nut.Decay)
	}
}

// ApplyDeathPenalty subtracts the death loss from every nutrient whose
// level has reached its penalty threshold.
func ApplyDeathPenalty(n *components.Nutrition, cat *catalog.Catalog) {
	for _, nut := range cat.Nutrients {
		if n.Level(nut.Index) >= float64(nut.DeathPenaltyMin) {
			AddNutrient(n, nut.Index, -float64(nut.DeathPenaltyLoss))
		}
	}
}

// SetLevels overwrites levels from an authoritative source, clamping each.
// Missing entries keep their current value.
func SetLevels(n *components.Nutrition, levels []float64) {
	for i := range n.Levels {
		if i < len(levels) {
			n.Levels[i] = clampLevel(levels[i])
		}
	}
}

// RemapLevels carries levels across a catalog swap by nutrient name.
// Nutrients new to the catalog start at their starting value.
func RemapLevels(n *components.Nutrition, from, to *catalog.Catalog) {
	levels := to.StartingLevels()
	if from != nil {
		for _, nut := range to.Nutrients {
			if old := from.Nutrient(nut.Name); old != nil && old.Index < len(n.Levels) {
				levels[nut.Index] = n.Levels[old.Index]
			}
		}
	}
	n.Levels = levels
}
