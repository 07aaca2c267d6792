package game

import (
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nutrition/components"
	"github.com/pthm-cable/nutrition/systems"
	"github.com/pthm-cable/nutrition/telemetry"
)

// Join starts tracking an actor at every nutrient's starting level and
// applies whatever effects those levels trigger.
func (g *Game) Join(actor string) error {
	_, err := g.spawnActor(actor, nil)
	return err
}

// Restore rejoins an actor from saved state. Levels are matched by
// nutrient name; nutrients missing from the state start fresh.
func (g *Game) Restore(state telemetry.ActorState) error {
	_, err := g.spawnActor(state.ID, state.Levels)
	if err != nil {
		return err
	}
	if ls := state.Lifetime.FromJSON(); ls != nil {
		if cur := g.lifetimeTracker.Get(state.ID); cur != nil {
			joinTick := cur.JoinTick
			*cur = *ls
			cur.JoinTick = joinTick
		}
	}
	return nil
}

// spawnActor creates the actor entity. levels overrides starting values by
// nutrient name.
func (g *Game) spawnActor(id string, levels map[string]float64) (ecs.Entity, error) {
	if _, ok := g.actors[id]; ok {
		return ecs.Entity{}, fmt.Errorf("%w: %s", ErrDuplicateActor, id)
	}
	cat := g.catalog.Load()

	actor := components.Actor{ID: id, JoinedTick: g.tick}
	nutrition := systems.NewNutrition(cat)
	for name, v := range levels {
		if i, ok := cat.NutrientIndex(name); ok {
			nutrition.Levels[i] = v
		}
	}
	systems.SetLevels(&nutrition, nutrition.Levels)
	effects := components.ActiveEffects{Effects: make(map[string]components.ActiveEffect)}
	buf := components.FeedBuffer{}

	entity := g.actorMapper.NewEntity(&actor, &nutrition, &effects, &buf)
	g.actors[id] = entity

	g.lifetimeTracker.Register(id, g.tick)
	g.record(telemetry.NewJoinEvent(g.tick, id))

	_, n, fx, _ := g.actorMapper.Get(entity)
	g.updateActorEffects(id, n, fx)

	return entity, nil
}

// Leave stops tracking an actor. No effect removals are sent since the
// actor is gone from the host.
func (g *Game) Leave(actor string) error {
	e, ok := g.actors[actor]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}

	g.record(telemetry.NewLeaveEvent(g.tick, actor))
	g.lifetimeTracker.UpdateSurvivalTime(actor, g.tick, g.cfg.Ticks.DT)
	if ls := g.lifetimeTracker.Remove(actor); ls != nil {
		slog.Debug("actor left",
			"actor", actor,
			"survival_sec", ls.SurvivalTimeSec,
			"meals", ls.Meals,
			"deaths", ls.Deaths,
		)
	}

	delete(g.actors, actor)
	g.world.RemoveEntity(e)
	return nil
}

// Death applies the death penalty and reapplies effects, since the host
// clears status effects on death.
func (g *Game) Death(actor string) error {
	e, ok := g.actors[actor]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, n, _, buf := g.actorMapper.Get(e)
	systems.ApplyDeathPenalty(n, g.catalog.Load())
	buf.Reset()

	g.record(telemetry.NewDeathEvent(g.tick, actor))
	return g.ReapplyEffects(actor)
}

// Resync overwrites levels from an authoritative source, keyed by nutrient
// name. Unknown names are ignored and missing nutrients keep their level.
func (g *Game) Resync(actor string, levels map[string]float64) error {
	e, ok := g.actors[actor]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, n, _, _ := g.actorMapper.Get(e)
	cat := g.catalog.Load()

	next := make([]float64, len(n.Levels))
	copy(next, n.Levels)
	for name, v := range levels {
		if i, ok := cat.NutrientIndex(name); ok && i < len(next) {
			next[i] = v
		}
	}
	systems.SetLevels(n, next)
	return nil
}
