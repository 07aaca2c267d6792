package game

import (
	"log/slog"
	"sort"

	"github.com/pthm-cable/nutrition/telemetry"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	samples, activeEffects := g.sampleLevels()

	stats, perNutrient := g.collector.Flush(g.tick, len(g.actors), activeEffects, samples)
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	// Log stats if enabled (console output)
	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := g.outputManager.WriteNutrients(perNutrient); err != nil {
			slog.Error("failed to write nutrients", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
	g.flushEffectLog()

	bookmarks := g.bookmarkDetector.Check(stats)
	for _, bm := range bookmarks {
		if g.logStats {
			bm.LogBookmark()
		}

		if g.outputManager != nil {
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}

		// Save snapshot on bookmark
		if g.snapshotDir != "" {
			g.saveSnapshot(&bm)
		}
	}
}

// flushEffectLog writes buffered effect transitions to CSV and the store.
func (g *Game) flushEffectLog() {
	if len(g.effectLog) == 0 {
		return
	}
	if err := g.outputManager.WriteEffects(g.effectLog); err != nil {
		slog.Error("failed to write effects", "error", err)
	}
	if g.store != nil {
		if err := g.store.SaveEffectEvents(g.effectLog); err != nil {
			slog.Error("failed to save effect events", "error", err)
		}
	}
	g.effectLog = g.effectLog[:0]
}

// sampleLevels collects each nutrient's levels across actors and counts
// active effects. Lifetime survival times are refreshed on the way.
func (g *Game) sampleLevels() ([]telemetry.LevelSample, int) {
	cat := g.catalog.Load()
	samples := make([]telemetry.LevelSample, cat.Len())
	for i, nut := range cat.Nutrients {
		samples[i] = telemetry.LevelSample{Nutrient: nut.Name, Levels: make([]float64, 0, len(g.actors))}
	}

	var activeEffects int
	query := g.actorFilter.Query()
	for query.Next() {
		actor, n, fx, _ := query.Get()
		for i := range samples {
			samples[i].Levels = append(samples[i].Levels, n.Level(i))
		}
		activeEffects += len(fx.Effects)
		g.lifetimeTracker.UpdateSurvivalTime(actor.ID, g.tick, g.cfg.Ticks.DT)
	}

	return samples, activeEffects
}

// persist saves a snapshot to the store on the save interval.
func (g *Game) persist() {
	interval := g.cfg.Persistence.SaveInterval
	if g.store == nil || interval <= 0 || int(g.tick)%interval != 0 {
		return
	}
	g.flushEffectLog()
	if err := g.store.SaveSnapshot(g.Snapshot(nil)); err != nil {
		slog.Error("failed to persist snapshot", "error", err, "tick", g.tick)
	}
}

// saveSnapshot creates and saves a snapshot to disk.
func (g *Game) saveSnapshot(bookmark *telemetry.Bookmark) {
	snapshot := g.Snapshot(bookmark)

	path, err := telemetry.SaveSnapshot(snapshot, g.snapshotDir)
	if err != nil {
		slog.Error("failed to save snapshot", "error", err)
		return
	}

	slog.Info("snapshot saved", "path", path, "tick", g.tick)
}

// Snapshot builds a snapshot of every actor's current state.
func (g *Game) Snapshot(bookmark *telemetry.Bookmark) *telemetry.Snapshot {
	cat := g.catalog.Load()
	snapshot := &telemetry.Snapshot{
		Version:  telemetry.SnapshotVersion,
		Tick:     g.tick,
		Bookmark: bookmark,
	}
	for _, nut := range cat.Nutrients {
		snapshot.Nutrients = append(snapshot.Nutrients, nut.Name)
	}

	query := g.actorFilter.Query()
	for query.Next() {
		actor, n, fx, _ := query.Get()

		state := telemetry.ActorState{
			ID:     actor.ID,
			Levels: levelsByName(n, cat),
		}
		if len(fx.Effects) > 0 {
			state.Effects = make(map[string]telemetry.EffectState, len(fx.Effects))
			for name, ae := range fx.Effects {
				state.Effects[name] = telemetry.EffectState{Ref: string(ae.Ref), Amplifier: ae.Amplifier}
			}
		}
		if ls := g.lifetimeTracker.Get(actor.ID); ls != nil {
			state.Lifetime = ls.ToJSON()
		}

		snapshot.Actors = append(snapshot.Actors, state)
	}
	sort.Slice(snapshot.Actors, func(i, j int) bool {
		return snapshot.Actors[i].ID < snapshot.Actors[j].ID
	})

	return snapshot
}
