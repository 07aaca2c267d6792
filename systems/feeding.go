package systems

import (
	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
)

// FeedDisambiguator reconciles the host's "stat increased" and "item
// consumed" signals for one actor within one tick. The host raises both for
// a normal meal, in either order, and only the first for a direct stat
// change. Increases left unpaired at the end of the tick are foreign and get
// spread evenly over every nutrient.
type FeedDisambiguator struct {
	resolver *Resolver
}

// NewFeedDisambiguator creates a disambiguator that resolves items with r.
func NewFeedDisambiguator(r *Resolver) *FeedDisambiguator {
	return &FeedDisambiguator{resolver: r}
}

// StatIncrease records a hunger increase. Non-positive amounts are ignored.
// If a consumption already arrived this tick, the increase pairs with it.
func (d *FeedDisambiguator) StatIncrease(buf *components.FeedBuffer, amount float64) {
	if !(amount > 0) {
		return
	}
	if buf.Credits > 0 {
		buf.Credits--
		return
	}
	buf.Pending = append(buf.Pending, amount)
}

// Consumption applies the item's contributions to n and pairs the meal with
// the most recent pending increase, whatever the item. With nothing pending
// only items that restore hunger leave a credit, so a non-food never claims
// a later foreign increase.
func (d *FeedDisambiguator) Consumption(buf *components.FeedBuffer, n *components.Nutrition, cat *catalog.Catalog, item catalog.ItemID) Contributions {
	base, known := d.resolver.BaseValue(item)
	cs := d.resolver.Resolve(cat, item, base)
	ApplyContributions(n, cs)

	if k := len(buf.Pending); k > 0 {
		buf.Pending = buf.Pending[:k-1]
	} else if known && base > 0 {
		buf.Credits++
	}
	return cs
}

// SpecialConsumption applies a special consumable, which restores no hunger
// and so bypasses the buffer. It reports whether the item clears the actor's
// status effects. Items not flagged special are ignored.
func (d *FeedDisambiguator) SpecialConsumption(n *components.Nutrition, cat *catalog.Catalog, item catalog.ItemID) (cs Contributions, clearsEffects bool) {
	if d.resolver.Items == nil {
		return nil, false
	}
	info, ok := d.resolver.Items.LookupItem(item)
	if !ok || !info.Special {
		return nil, false
	}
	cs = d.resolver.Resolve(cat, item, float64(info.BaseValue))
	ApplyContributions(n, cs)
	return cs, info.ClearsEffects
}

// EndTick treats every unpaired increase as a foreign stat change, applying
// its default share to every nutrient, then clears the buffer. It returns
// the number of foreign changes applied.
func (d *FeedDisambiguator) EndTick(buf *components.FeedBuffer, n *components.Nutrition, cat *catalog.Catalog) int {
	foreign := len(buf.Pending)
	if foreign > 0 && cat.Len() > 0 {
		for _, amount := range buf.Pending {
			dv := d.resolver.DefaultValue(amount, cat.Len())
			for _, nut := range cat.Nutrients {
				AddNutrient(n, nut.Index, dv)
			}
		}
	}
	buf.Reset()
	return foreign
}
