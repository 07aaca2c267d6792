// Package catalog holds the validated nutrient and effect definitions and
// the loader that builds them from raw records.
package catalog

// Nutrient represents a dietary category tracked per actor.
// Immutable once part of a Catalog.
type Nutrient struct {
	Name  string
	Index int // Position in the owning catalog; actor levels are indexed by it
	Icon  ItemID
	Color uint32 // 0xAARRGGBB

	Starting         int
	Decay            float64 // Subtracted per decay pass; negative grows the level
	DeathPenaltyMin  int
	DeathPenaltyLoss int
	Visible          bool

	// Items maps explicit item associations to their contribution.
	// A zero value means the contribution is computed by default distribution.
	Items map[ItemID]float64
	Tags  []string
}

// Match reports whether the item satisfies this nutrient. Explicit item
// associations win over tags; a tag match never carries a value.
func (n *Nutrient) Match(id ItemID, items ItemRegistry) (value float64, matched bool) {
	if v, ok := n.Items[id]; ok {
		return v, true
	}
	if items == nil {
		return 0, false
	}
	for _, tag := range n.Tags {
		if items.HasTag(id, tag) {
			return 0, true
		}
	}
	return 0, false
}
