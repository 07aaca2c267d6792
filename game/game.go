// Package game owns the actor world and drives the nutrition tick loop.
package game

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
	"github.com/pthm-cable/nutrition/config"
	"github.com/pthm-cable/nutrition/systems"
	"github.com/pthm-cable/nutrition/telemetry"
)

// Actor lookup failures.
var (
	ErrUnknownActor   = errors.New("unknown actor")
	ErrDuplicateActor = errors.New("actor already joined")
)

// StatusEffectApplier receives effect transitions for the host to act on.
// Only edges are delivered; steady effects are never re-sent unless the
// actor's effects are reapplied.
type StatusEffectApplier interface {
	Apply(actor string, ref catalog.EffectRef, amplifier int)
	Remove(actor string, ref catalog.EffectRef)
}

// SnapshotStore persists nutrition state on the save interval.
type SnapshotStore interface {
	SaveSnapshot(s *telemetry.Snapshot) error
	SaveEffectEvents(events []telemetry.Event) error
}

// Options configures a new Game.
type Options struct {
	Config  *config.Config // nil = config.Cfg()
	Items   catalog.ItemRegistry
	Effects catalog.EffectRegistry
	Applier StatusEffectApplier // nil = log transitions only
	Store   SnapshotStore       // nil = no persistence

	LogStats       bool
	StatsWindowSec float64 // 0 = use config
	SnapshotDir    string
	OutputDir      string
	StatsCallback  func(telemetry.WindowStats)
}

// Game holds the complete nutrition state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	actorMapper *ecs.Map4[
		components.Actor,
		components.Nutrition,
		components.ActiveEffects,
		components.FeedBuffer,
	]
	actorFilter *ecs.Filter4[
		components.Actor,
		components.Nutrition,
		components.ActiveEffects,
		components.FeedBuffer,
	]

	// Entity by host actor id
	actors map[string]ecs.Entity

	catalog  *catalog.Holder
	loader   *catalog.Loader
	resolver *systems.Resolver
	feed     *systems.FeedDisambiguator
	applier  StatusEffectApplier
	store    SnapshotStore

	tick int32

	// Telemetry
	collector        *telemetry.Collector
	perfCollector    *telemetry.PerfCollector
	lifetimeTracker  *telemetry.LifetimeTracker
	bookmarkDetector *telemetry.BookmarkDetector
	outputManager    *telemetry.OutputManager
	statsCallback    func(telemetry.WindowStats)
	logStats         bool
	snapshotDir      string

	// Effect transitions waiting for the next flush
	effectLog []telemetry.Event
}

// New creates a game and loads the initial catalog.
func New(opts Options) (*Game, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	world := ecs.NewWorld()

	g := &Game{
		cfg:   cfg,
		world: world,
		actorMapper: ecs.NewMap4[
			components.Actor,
			components.Nutrition,
			components.ActiveEffects,
			components.FeedBuffer,
		](world),
		actorFilter: ecs.NewFilter4[
			components.Actor,
			components.Nutrition,
			components.ActiveEffects,
			components.FeedBuffer,
		](world),
		actors:      make(map[string]ecs.Entity),
		loader:      catalog.NewLoader(cfg, opts.Items, opts.Effects),
		resolver:    systems.NewResolver(cfg, opts.Items),
		applier:     opts.Applier,
		store:       opts.Store,
		logStats:    opts.LogStats,
		snapshotDir: opts.SnapshotDir,

		statsCallback: opts.StatsCallback,
	}
	g.feed = systems.NewFeedDisambiguator(g.resolver)
	if g.applier == nil {
		g.applier = LogApplier{}
	}

	cat, diags, err := g.loader.Load()
	if err != nil {
		return nil, fmt.Errorf("loading catalog: %w", err)
	}
	diags.Log(nil)
	g.catalog = catalog.NewHolder(cat)

	// Telemetry
	statsWindow := cfg.Telemetry.StatsWindow
	if opts.StatsWindowSec > 0 {
		statsWindow = opts.StatsWindowSec
	}
	g.collector = telemetry.NewCollector(statsWindow, cfg.Ticks.DT)
	g.perfCollector = telemetry.NewPerfCollector(int(g.collector.WindowDurationTicks()))
	g.lifetimeTracker = telemetry.NewLifetimeTracker()
	g.bookmarkDetector = telemetry.NewBookmarkDetector(10)

	if opts.OutputDir != "" {
		om, err := telemetry.NewOutputManager(opts.OutputDir)
		if err != nil {
			return nil, err
		}
		if err := om.WriteConfig(cfg); err != nil {
			slog.Error("failed to write config", "error", err)
		}
		g.outputManager = om
	}

	return g, nil
}

// Tick returns the current simulation tick.
func (g *Game) Tick() int32 {
	return g.tick
}

// Catalog returns the catalog currently in use.
func (g *Game) Catalog() *catalog.Catalog {
	return g.catalog.Load()
}

// Breakdown returns an item's visible nutrient values for tooltips.
func (g *Game) Breakdown(item catalog.ItemID) []systems.BreakdownGroup {
	return g.resolver.Breakdown(g.catalog.Load(), item)
}

// ActorCount returns the number of joined actors.
func (g *Game) ActorCount() int {
	return len(g.actors)
}

// Levels returns an actor's nutrient levels keyed by nutrient name.
func (g *Game) Levels(actor string) (map[string]float64, error) {
	e, ok := g.actors[actor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, n, _, _ := g.actorMapper.Get(e)
	return levelsByName(n, g.catalog.Load()), nil
}

// ActiveEffects returns a copy of the effects last applied to an actor.
func (g *Game) ActiveEffects(actor string) (map[string]components.ActiveEffect, error) {
	e, ok := g.actors[actor]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownActor, actor)
	}
	_, _, fx, _ := g.actorMapper.Get(e)
	out := make(map[string]components.ActiveEffect, len(fx.Effects))
	for name, ae := range fx.Effects {
		out[name] = ae
	}
	return out, nil
}

// Close flushes telemetry, saves a final snapshot and closes output files.
func (g *Game) Close() error {
	g.flushEffectLog()
	if g.store != nil {
		if err := g.store.SaveSnapshot(g.Snapshot(nil)); err != nil {
			slog.Error("failed to save final snapshot", "error", err)
		}
	}
	return g.outputManager.Close()
}

func levelsByName(n *components.Nutrition, cat *catalog.Catalog) map[string]float64 {
	out := make(map[string]float64, cat.Len())
	if cat == nil {
		return out
	}
	for _, nut := range cat.Nutrients {
		out[nut.Name] = n.Level(nut.Index)
	}
	return out
}
