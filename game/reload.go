package game

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/systems"
)

// Reload rebuilds the catalog from disk and swaps it in. On a load error
// the current catalog stays in place. Actor levels carry over by nutrient
// name and effects whose definitions disappeared are ended.
func (g *Game) Reload() (catalog.Diagnostics, error) {
	next, diags, err := g.loader.Load()
	if err != nil {
		slog.Error("catalog reload failed, keeping current catalog", "error", err)
		return nil, fmt.Errorf("reloading catalog: %w", err)
	}
	diags.Log(nil)

	prev := g.catalog.Swap(next)

	query := g.actorFilter.Query()
	for query.Next() {
		actor, n, fx, _ := query.Get()
		systems.RemapLevels(n, prev, next)
		g.endRemovedEffects(actor.ID, fx, next)
	}

	slog.Info("catalog reloaded",
		"tick", g.tick,
		"nutrients", next.Len(),
		"effects", len(next.Effects),
		"actors", len(g.actors),
	)
	return diags, nil
}
