// Package components defines ECS components for tracked actors.
package components

import "github.com/pthm-cable/nutrition/catalog"

// Actor identifies a tracked actor by its host-assigned id.
type Actor struct {
	ID         string
	JoinedTick int32
}

// Nutrition holds an actor's nutrient levels, indexed by the nutrient's
// position in the current catalog. Every level stays within [0, 100].
type Nutrition struct {
	Levels []float64
}

// Level returns the level at index i, or 0 when the index is out of range.
func (n *Nutrition) Level(i int) float64 {
	if i < 0 || i >= len(n.Levels) {
		return 0
	}
	return n.Levels[i]
}

// ActiveEffect is the last applied state of one effect rule.
type ActiveEffect struct {
	Ref       catalog.EffectRef
	Amplifier int
}

// ActiveEffects maps effect names to what was last applied for them.
type ActiveEffects struct {
	Effects map[string]ActiveEffect
}

// FeedBuffer reconciles the two feed signals within a single tick.
type FeedBuffer struct {
	Pending []float64 // Stat increases awaiting their consumption (LIFO)
	Credits int       // Consumptions seen before their stat increase
}

// Empty reports whether nothing is waiting to be reconciled.
func (b *FeedBuffer) Empty() bool {
	return len(b.Pending) == 0 && b.Credits == 0
}

// Reset clears the buffer for the next tick.
func (b *FeedBuffer) Reset() {
	b.Pending = b.Pending[:0]
	b.Credits = 0
}
