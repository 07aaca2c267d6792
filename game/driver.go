package game

import (
	"fmt"
	"math/rand"

	"github.com/pthm-cable/nutrition/catalog"
)

// DriverRates are per-actor, per-tick probabilities for simulated host signals.
type DriverRates struct {
	Meal    float64
	Special float64
	Foreign float64
	Death   float64
	Leave   float64
	Join    float64 // per tick, while below MaxActors
}

// DefaultDriverRates approximate a handful of players over a long session.
func DefaultDriverRates() DriverRates {
	return DriverRates{
		Meal:    0.004,
		Special: 0.0005,
		Foreign: 0.001,
		Death:   0.0002,
		Leave:   0.00005,
		Join:    0.001,
	}
}

// Driver stands in for a game host in headless runs: it joins actors and
// raises feed, death and leave signals at random, in either signal order.
type Driver struct {
	g     *Game
	rng   *rand.Rand
	rates DriverRates

	foods    []catalog.ItemID
	hunger   map[catalog.ItemID]int
	specials []catalog.ItemID

	actors    []string
	nextID    int
	maxActors int
}

// NewDriver creates a driver feeding from every consumable item in items.
func NewDriver(g *Game, items catalog.ItemRegistry, seed int64, maxActors int, rates DriverRates) *Driver {
	d := &Driver{
		g:         g,
		rng:       rand.New(rand.NewSource(seed)),
		rates:     rates,
		hunger:    make(map[catalog.ItemID]int),
		maxActors: maxActors,
	}
	if items != nil {
		for _, id := range items.Items() {
			info, _ := items.LookupItem(id)
			switch {
			case info.Special:
				d.specials = append(d.specials, id)
			case info.Edible && info.Hunger > 0:
				d.foods = append(d.foods, id)
				d.hunger[id] = info.Hunger
			}
		}
	}
	return d
}

// SpawnInitial joins n actors.
func (d *Driver) SpawnInitial(n int) {
	for i := 0; i < n; i++ {
		d.join()
	}
}

// Actors returns the ids of actors the driver has joined and not removed.
func (d *Driver) Actors() []string {
	return d.actors
}

// Adopt starts driving an actor that joined some other way.
func (d *Driver) Adopt(id string) {
	d.actors = append(d.actors, id)
}

func (d *Driver) join() {
	id := fmt.Sprintf("actor-%03d", d.nextID)
	d.nextID++
	if err := d.g.Join(id); err != nil {
		return
	}
	d.actors = append(d.actors, id)
}

// Step raises this tick's signals, then closes the tick.
func (d *Driver) Step() {
	if len(d.actors) < d.maxActors && d.rng.Float64() < d.rates.Join {
		d.join()
	}

	// Iterate backwards so leaving actors can be removed in place.
	for i := len(d.actors) - 1; i >= 0; i-- {
		id := d.actors[i]

		if d.rng.Float64() < d.rates.Leave {
			d.g.Leave(id)
			d.actors = append(d.actors[:i], d.actors[i+1:]...)
			continue
		}

		if len(d.foods) > 0 && d.rng.Float64() < d.rates.Meal {
			item := d.foods[d.rng.Intn(len(d.foods))]
			// Hosts raise the two signals in no guaranteed order.
			if d.rng.Intn(2) == 0 {
				d.g.StatIncrease(id, float64(d.hunger[item]))
				d.g.Consume(id, item)
			} else {
				d.g.Consume(id, item)
				d.g.StatIncrease(id, float64(d.hunger[item]))
			}
		}

		if len(d.specials) > 0 && d.rng.Float64() < d.rates.Special {
			d.g.Consume(id, d.specials[d.rng.Intn(len(d.specials))])
		}

		if d.rng.Float64() < d.rates.Foreign {
			d.g.StatIncrease(id, float64(1+d.rng.Intn(6)))
		}

		if d.rng.Float64() < d.rates.Death {
			d.g.Death(id)
		}
	}

	d.g.Step()
}
