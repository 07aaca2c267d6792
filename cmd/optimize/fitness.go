package main

import (
	"log/slog"
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
	"github.com/pthm-cable/nutrition/game"
	"github.com/pthm-cable/nutrition/telemetry"
)

// FitnessEvaluator runs headless simulations and computes fitness.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	registry    *catalog.StaticRegistry
	actors      int
	target      float64
	statsWindow float64

	mu          sync.Mutex
	lastQuality float64 // quality from most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config,
	registry *catalog.StaticRegistry, actors int, target float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		registry:    registry,
		actors:      actors,
		target:      target,
		statsWindow: 60.0,
	}
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// Evaluate computes fitness for a parameter vector (lower = better).
// Fitness is negative quality averaged over seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.copyConfig()
	if err := fe.params.ApplyToConfig(cfg, x); err != nil {
		slog.Warn("rejected parameters", "error", err)
		return 0
	}

	// Each seed gets its own game; nothing is shared but the read-only registry.
	qualities := make([]float64, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, s)
			if err != nil {
				slog.Error("simulation failed", "error", err, "seed", s)
				return
			}
			qualities[idx] = fe.computeQuality(windows)
		}(i, seed)
	}
	wg.Wait()

	quality := stat.Mean(qualities, nil)

	fe.mu.Lock()
	fe.lastQuality = quality
	fe.mu.Unlock()

	return -quality
}

// runSimulation executes a single headless run and returns its window stats.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.WindowStats, error) {
	var windows []telemetry.WindowStats

	g, err := game.New(game.Options{
		Config:         cfg,
		Items:          fe.registry,
		Effects:        fe.registry,
		StatsWindowSec: fe.statsWindow,
		StatsCallback: func(stats telemetry.WindowStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer g.Close()

	driver := game.NewDriver(g, fe.registry, seed, fe.actors, game.DefaultDriverRates())
	driver.SpawnInitial(fe.actors)

	for g.Tick() < fe.maxTicks {
		driver.Step()
	}
	return windows, nil
}

// copyConfig returns a copy of the base config. Config holds no reference
// fields, so a value copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// Quality component weights.
const (
	qualityWeightLevel  = 0.50
	qualityWeightSpread = 0.25
	qualityWeightChurn  = 0.25

	qualityWarmupWindows = 3 // skip first N windows (warmup)
)

// computeQuality scores a run in [0, 1]. Good runs keep the median level near
// the target, keep the p10..p90 band narrow, and don't flap effects.
func (fe *FitnessEvaluator) computeQuality(windows []telemetry.WindowStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var levelSum, spreadSum, churnSum float64
	var count int
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Actors == 0 {
			continue
		}

		levelSum += math.Exp(-math.Pow((w.LevelP50-fe.target)/15.0, 2))

		spread := (w.LevelP90 - w.LevelP10) / 100.0
		spreadSum += 1.0 - clamp01(spread)

		flips := float64(w.EffectsStarted+w.EffectsEnded) / float64(w.Actors)
		churnSum += math.Exp(-flips / 2.0)

		count++
	}
	if count == 0 {
		return 0
	}

	n := float64(count)
	quality := qualityWeightLevel*levelSum/n +
		qualityWeightSpread*spreadSum/n +
		qualityWeightChurn*churnSum/n

	return clamp01(quality)
}

// clamp01 clamps x to [0, 1].
func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
