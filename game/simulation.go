package game

import (
	"github.com/pthm-cable/nutrition/systems"
	"github.com/pthm-cable/nutrition/telemetry"
)

// Step closes the current tick: unpaired stat increases are settled, then
// decay and effect passes run on their intervals, then telemetry and
// persistence.
func (g *Game) Step() {
	g.perfCollector.StartTick()

	g.perfCollector.StartPhase(telemetry.PhaseFeed)
	g.settleFeedBuffers()

	g.tick++

	if g.tick%int32(g.cfg.Ticks.DecayInterval) == 0 {
		g.perfCollector.StartPhase(telemetry.PhaseDecay)
		g.updateDecay()
	}

	if g.tick%int32(g.cfg.Ticks.EffectInterval) == 0 {
		g.perfCollector.StartPhase(telemetry.PhaseEffects)
		g.updateEffects()
	}

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry()

	g.perfCollector.StartPhase(telemetry.PhasePersistence)
	g.persist()

	g.perfCollector.EndTick(len(g.actors))
}

// settleFeedBuffers ends the feed tick for every actor.
func (g *Game) settleFeedBuffers() {
	cat := g.catalog.Load()

	query := g.actorFilter.Query()
	for query.Next() {
		actor, n, _, buf := query.Get()
		if buf.Empty() {
			continue
		}
		if foreign := g.feed.EndTick(buf, n, cat); foreign > 0 {
			g.record(telemetry.NewForeignEvent(g.tick, actor.ID, foreign))
		}
	}
}

// updateDecay runs one decay pass over every actor.
func (g *Game) updateDecay() {
	cat := g.catalog.Load()

	query := g.actorFilter.Query()
	for query.Next() {
		_, n, _, _ := query.Get()
		systems.DecayTick(n, cat)
	}
}

// record counts an event in the window and the actor's lifetime stats.
func (g *Game) record(e telemetry.Event) {
	g.collector.Record(e)
	g.lifetimeTracker.Record(e)
	if e.IsEffect() && (g.outputManager != nil || g.store != nil) {
		g.effectLog = append(g.effectLog, e)
	}
}
