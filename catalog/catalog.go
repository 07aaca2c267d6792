package catalog

import "sync/atomic"

// Catalog is a validated, read-only set of nutrients and effects.
type Catalog struct {
	Nutrients []*Nutrient
	Effects   []*Effect

	nutrientIndex map[string]int
	effectIndex   map[string]int
}

// New builds a catalog and assigns each nutrient its index.
// The nutrients must not be shared with another catalog.
func New(nutrients []*Nutrient, effects []*Effect) *Catalog {
	c := &Catalog{
		Nutrients:     nutrients,
		Effects:       effects,
		nutrientIndex: make(map[string]int, len(nutrients)),
		effectIndex:   make(map[string]int, len(effects)),
	}
	for i, n := range nutrients {
		n.Index = i
		c.nutrientIndex[n.Name] = i
	}
	for i, e := range effects {
		c.effectIndex[e.Name] = i
	}
	return c
}

// Len returns the number of nutrients.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Nutrients)
}

// NutrientIndex returns the position of the named nutrient.
func (c *Catalog) NutrientIndex(name string) (int, bool) {
	i, ok := c.nutrientIndex[name]
	return i, ok
}

// Nutrient returns the named nutrient, or nil.
func (c *Catalog) Nutrient(name string) *Nutrient {
	if i, ok := c.nutrientIndex[name]; ok {
		return c.Nutrients[i]
	}
	return nil
}

// Effect returns the named effect, or nil.
func (c *Catalog) Effect(name string) *Effect {
	if i, ok := c.effectIndex[name]; ok {
		return c.Effects[i]
	}
	return nil
}

// StartingLevels returns a fresh level slice for a new actor.
func (c *Catalog) StartingLevels() []float64 {
	levels := make([]float64, len(c.Nutrients))
	for i, n := range c.Nutrients {
		levels[i] = float64(n.Starting)
	}
	return levels
}

// Holder publishes the current catalog. Readers always see a complete
// catalog; Swap replaces it in one step.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder creates a holder with an initial catalog.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	h.current.Store(c)
	return h
}

// Load returns the current catalog.
func (h *Holder) Load() *Catalog {
	return h.current.Load()
}

// Swap installs a new catalog and returns the previous one.
func (h *Holder) Swap(c *Catalog) *Catalog {
	return h.current.Swap(c)
}
