// Package systems implements the per-actor nutrition logic: food
// resolution, level mutation, feed reconciliation and effect evaluation.
package systems

import (
	"math"
	"sort"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
)

// Contribution is one nutrient's share of a consumed item.
type Contribution struct {
	Nutrient *catalog.Nutrient
	Value    float64
}

// Contributions lists an item's per-nutrient values in catalog order.
type Contributions []Contribution

// Value returns the contribution for the named nutrient.
func (cs Contributions) Value(name string) (float64, bool) {
	for _, c := range cs {
		if c.Nutrient.Name == name {
			return c.Value, true
		}
	}
	return 0, false
}

// Resolver turns consumed items into nutrient contributions.
type Resolver struct {
	Items        catalog.ItemRegistry
	Multiplier   float64
	LossFraction float64 // Per additional nutrient, in [0, 1]
}

// NewResolver creates a resolver from the nutrition config section.
func NewResolver(cfg *config.Config, items catalog.ItemRegistry) *Resolver {
	return &Resolver{
		Items:        items,
		Multiplier:   cfg.Nutrition.Multiplier,
		LossFraction: cfg.Derived.LossFraction,
	}
}

// DefaultValue is the shared per-nutrient value for an item with the given
// base value that satisfies n nutrients. More nutrients yield less each.
func (r *Resolver) DefaultValue(base float64, n int) float64 {
	if n < 1 {
		return 0
	}
	adjusted := base * 0.5 * r.Multiplier
	penalty := adjusted * r.LossFraction * float64(n-1)
	return math.Max(0, adjusted-penalty)
}

// Resolve computes the contributions of an item with the given base value.
// An item no nutrient claims resolves to nil.
func (r *Resolver) Resolve(cat *catalog.Catalog, item catalog.ItemID, base float64) Contributions {
	if cat == nil {
		return nil
	}

	var out Contributions
	needsDefault := false
	for _, n := range cat.Nutrients {
		v, ok := n.Match(item, r.Items)
		if !ok {
			continue
		}
		if v == 0 {
			needsDefault = true
		}
		out = append(out, Contribution{Nutrient: n, Value: v})
	}

	if needsDefault {
		dv := r.DefaultValue(base, len(out))
		for i := range out {
			if out[i].Value == 0 {
				out[i].Value = dv
			}
		}
	}
	return out
}

// BaseValue returns the value an item restores when consumed: its hunger
// for regular food, or the fixed base value for special consumables.
func (r *Resolver) BaseValue(item catalog.ItemID) (float64, bool) {
	if r.Items == nil {
		return 0, false
	}
	info, ok := r.Items.LookupItem(item)
	if !ok {
		return 0, false
	}
	if info.Special {
		return float64(info.BaseValue), true
	}
	return float64(info.Hunger), true
}

// ResolveItem resolves an item using the base value from the registry.
func (r *Resolver) ResolveItem(cat *catalog.Catalog, item catalog.ItemID) Contributions {
	base, ok := r.BaseValue(item)
	if !ok {
		return nil
	}
	return r.Resolve(cat, item, base)
}

// BreakdownGroup is a set of visible nutrients sharing one value.
type BreakdownGroup struct {
	Value     float64
	Nutrients []string
}

// Breakdown groups an item's visible contributions by value, highest first,
// for tooltip rendering. Nutrient names keep catalog order within a group.
func (r *Resolver) Breakdown(cat *catalog.Catalog, item catalog.ItemID) []BreakdownGroup {
	var groups []BreakdownGroup
	for _, c := range r.ResolveItem(cat, item) {
		if !c.Nutrient.Visible {
			continue
		}
		found := false
		for i := range groups {
			if groups[i].Value == c.Value {
				groups[i].Nutrients = append(groups[i].Nutrients, c.Nutrient.Name)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, BreakdownGroup{Value: c.Value, Nutrients: []string{c.Nutrient.Name}})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value > groups[j].Value
	})
	return groups
}
