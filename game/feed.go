package game

import (
	"fmt"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/systems"
	"github.com/pthm-cable/nutrition/telemetry"
)

// StatIncrease forwards the host's "hunger increased" signal.
func (g *Game) StatIncrease(actor string, amount float64) error {
	e, ok := g.actors[actor]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, _, _, buf := g.actorMapper.Get(e)
	g.feed.StatIncrease(buf, amount)
	return nil
}

// Consume forwards the host's "item consumed" signal. Special consumables
// bypass the feed buffer, and those that clear effects trigger a reapply.
func (g *Game) Consume(actor string, item catalog.ItemID) (systems.Contributions, error) {
	e, ok := g.actors[actor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, n, _, buf := g.actorMapper.Get(e)
	cat := g.catalog.Load()

	var info catalog.ItemInfo
	if g.resolver.Items != nil {
		info, _ = g.resolver.Items.LookupItem(item)
	}

	if info.Special {
		cs, clears := g.feed.SpecialConsumption(n, cat, item)
		g.record(telemetry.NewSpecialEvent(g.tick, actor, item.String(), total(cs)))
		if clears {
			if err := g.ReapplyEffects(actor); err != nil {
				return cs, err
			}
		}
		return cs, nil
	}

	cs := g.feed.Consumption(buf, n, cat, item)
	if info.Edible {
		g.record(telemetry.NewMealEvent(g.tick, actor, item.String(), total(cs)))
	}
	return cs, nil
}

func total(cs systems.Contributions) float64 {
	var sum float64
	for _, c := range cs {
		sum += c.Value
	}
	return sum
}
