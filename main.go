package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
	"github.com/pthm-cable/nutrition/game"
	"github.com/pthm-cable/nutrition/persistence"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	statsWindow := flag.Float64("stats-window", 0, "Stats window size in seconds (0 = use config)")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark snapshot files")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	dbPath := flag.String("db", "", "SQLite file for actor state (empty = use config)")
	restore := flag.Bool("restore", false, "Rejoin actors saved in the database before starting")
	seed := flag.Int64("seed", 0, "RNG seed for the simulated host (0 = time-based)")
	maxTicks := flag.Int("max-ticks", 0, "Stop after N ticks (0 = until interrupted)")
	actors := flag.Int("actors", 8, "Actors joined at start")
	maxActors := flag.Int("max-actors", 16, "Upper bound on simulated actors")
	debug := flag.Bool("debug", false, "Log effect transitions and actor departures")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	registry, err := catalog.LoadRegistry(cfg.Catalog.RegistryPath)
	if err != nil {
		slog.Error("failed to load registry", "error", err)
		os.Exit(1)
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}

	opts := game.Options{
		Config:         cfg,
		Items:          registry,
		Effects:        registry,
		LogStats:       *logStats,
		StatsWindowSec: *statsWindow,
		SnapshotDir:    *snapshotDir,
		OutputDir:      *outputDir,
	}

	path := cfg.Persistence.Path
	if *dbPath != "" {
		path = *dbPath
	}
	var db *persistence.DB
	if path != "" {
		db, err = persistence.Open(path)
		if err != nil {
			slog.Error("failed to open database", "error", err, "path", path)
			os.Exit(1)
		}
		defer db.Close()
		opts.Store = db
	}

	g, err := game.New(opts)
	if err != nil {
		slog.Error("failed to start", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := g.Close(); err != nil {
			slog.Error("failed to close outputs", "error", err)
		}
	}()

	driver := game.NewDriver(g, registry, rngSeed, *maxActors, game.DefaultDriverRates())

	if *restore && db != nil {
		restoreActors(g, driver, db)
	}
	driver.SpawnInitial(*actors - g.ActorCount())

	slog.Info("starting simulation",
		"seed", rngSeed,
		"max_ticks", *maxTicks,
		"nutrients", g.Catalog().Len(),
		"effects", len(g.Catalog().Effects),
		"actors", g.ActorCount(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// SIGHUP reloads the catalog
	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)

	for {
		select {
		case <-ctx.Done():
			slog.Info("interrupted", "tick", g.Tick())
			g.LogState()
			return
		case <-reload:
			if _, err := g.Reload(); err != nil {
				slog.Error("reload failed", "error", err)
			}
		default:
		}

		driver.Step()

		if *maxTicks > 0 && int(g.Tick()) >= *maxTicks {
			slog.Info("max ticks reached", "tick", g.Tick())
			g.LogState()
			return
		}
	}
}

// restoreActors rejoins every actor from the last saved snapshot.
func restoreActors(g *game.Game, driver *game.Driver, db *persistence.DB) {
	snap, err := db.LoadSnapshot()
	if errors.Is(err, persistence.ErrNoSnapshot) {
		slog.Info("no saved state to restore")
		return
	}
	if err != nil {
		slog.Error("failed to load saved state", "error", err)
		return
	}
	for _, a := range snap.Actors {
		if err := g.Restore(a); err != nil {
			slog.Warn("failed to restore actor", "actor", a.ID, "error", err)
			continue
		}
		driver.Adopt(a.ID)
	}
	slog.Info("restored actors", "actors", len(snap.Actors), "saved_tick", snap.Tick)
}
