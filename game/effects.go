package game

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
	"github.com/pthm-cable/nutrition/systems"
	"github.com/pthm-cable/nutrition/telemetry"
)

// LogApplier is a StatusEffectApplier that only logs transitions.
type LogApplier struct {
	Logger *slog.Logger
}

func (a LogApplier) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// Apply logs an applied effect.
func (a LogApplier) Apply(actor string, ref catalog.EffectRef, amplifier int) {
	a.logger().Debug("apply effect", "actor", actor, "ref", string(ref), "amplifier", amplifier)
}

// Remove logs a removed effect.
func (a LogApplier) Remove(actor string, ref catalog.EffectRef) {
	a.logger().Debug("remove effect", "actor", actor, "ref", string(ref))
}

// updateEffects re-evaluates every actor and forwards the transitions.
func (g *Game) updateEffects() {
	query := g.actorFilter.Query()
	for query.Next() {
		actor, n, fx, _ := query.Get()
		g.updateActorEffects(actor.ID, n, fx)
	}
}

// updateActorEffects evaluates one actor and sends only what changed.
func (g *Game) updateActorEffects(actor string, n *components.Nutrition, fx *components.ActiveEffects) {
	next := systems.EvaluateEffects(n, g.catalog.Load())
	for _, edge := range systems.DiffEffects(fx.Effects, next) {
		g.emitEdge(actor, edge)
	}
	fx.Effects = next
}

func (g *Game) emitEdge(actor string, edge systems.EffectEdge) {
	if edge.Kind == systems.EffectEnded {
		g.applier.Remove(actor, edge.Ref)
	} else {
		g.applier.Apply(actor, edge.Ref, edge.Amplifier)
	}
	g.recordEdge(actor, edge)
}

func (g *Game) recordEdge(actor string, edge systems.EffectEdge) {
	t := telemetry.EventEffectEnded
	switch edge.Kind {
	case systems.EffectStarted:
		t = telemetry.EventEffectStarted
	case systems.EffectAmplifierChanged:
		t = telemetry.EventEffectChanged
	}
	g.record(telemetry.NewEffectEvent(t, g.tick, actor, edge.Name, string(edge.Ref), edge.Amplifier, edge.Previous))
}

// ReapplyEffects re-evaluates an actor and re-sends every triggered effect,
// for when the host has cleared them (death, milk-style items).
func (g *Game) ReapplyEffects(actor string) error {
	e, ok := g.actors[actor]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, n, fx, _ := g.actorMapper.Get(e)

	next := systems.EvaluateEffects(n, g.catalog.Load())
	for _, edge := range systems.DiffEffects(fx.Effects, next) {
		if edge.Kind == systems.EffectEnded {
			g.emitEdge(actor, edge)
		} else {
			g.recordEdge(actor, edge)
		}
	}

	names := make([]string, 0, len(next))
	for name := range next {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		g.applier.Apply(actor, next[name].Ref, next[name].Amplifier)
	}
	fx.Effects = next
	return nil
}

// endRemovedEffects ends effects whose definitions are gone from cat.
func (g *Game) endRemovedEffects(actor string, fx *components.ActiveEffects, cat *catalog.Catalog) {
	var gone []string
	for name, ae := range fx.Effects {
		if def := cat.Effect(name); def == nil || def.Ref != ae.Ref {
			gone = append(gone, name)
		}
	}
	sort.Strings(gone)
	for _, name := range gone {
		ae := fx.Effects[name]
		g.emitEdge(actor, systems.EffectEdge{
			Kind:     systems.EffectEnded,
			Name:     name,
			Ref:      ae.Ref,
			Previous: ae.Amplifier,
		})
		delete(fx.Effects, name)
	}
}
