// Package main provides CMA-ES optimization for finding nutrition parameters
// that keep a simulated population near a target level.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
)

type options struct {
	configPath string
	maxTicks   int
	seeds      int
	maxEvals   int
	population int
	actors     int
	target     float64
	outputDir  string
}

func main() {
	var o options
	flag.StringVar(&o.configPath, "config", "", "Base config YAML file (empty = use defaults)")
	flag.IntVar(&o.maxTicks, "max-ticks", 72000, "Simulation duration in ticks per run")
	flag.IntVar(&o.seeds, "seeds", 3, "Number of seeds per evaluation")
	flag.IntVar(&o.maxEvals, "max-evals", 200, "Maximum number of evaluations")
	flag.IntVar(&o.population, "population", 0, "CMA-ES population size (0 = auto)")
	flag.IntVar(&o.actors, "actors", 12, "Simulated actors per run")
	flag.Float64Var(&o.target, "target", 60, "Median nutrient level to aim for")
	flag.StringVar(&o.outputDir, "output", "", "Output directory for results")
	flag.Parse()

	// Simulation chatter would drown the progress lines
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := run(o); err != nil {
		fmt.Fprintln(os.Stderr, "optimize:", err)
		os.Exit(1)
	}
}

func run(o options) error {
	if o.outputDir == "" {
		return errors.New("--output is required")
	}
	if err := os.MkdirAll(o.outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	baseCfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	registry, err := catalog.LoadRegistry(baseCfg.Catalog.RegistryPath)
	if err != nil {
		return err
	}

	params := NewParamVector()
	seeds := make([]int64, o.seeds)
	for i := range seeds {
		seeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, int32(o.maxTicks), seeds, baseCfg, registry, o.actors, o.target)

	tracker, err := newEvalTracker(filepath.Join(o.outputDir, "optimize_log.csv"), params, o.maxEvals)
	if err != nil {
		return err
	}
	defer tracker.Close()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			used := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(used)
			tracker.Record(used, fitness, evaluator.LastQuality())
			return fitness
		},
	}

	popSize := o.population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(params.Dim())/2.0)
	}
	method := &optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize}
	settings := &optimize.Settings{
		FuncEvaluations: o.maxEvals,
		Concurrent:      0, // Seeds already run in parallel
	}

	fmt.Printf("CMA-ES over %d parameters, population=%d, max_evals=%d, seeds=%d, ticks=%d, target=%.0f\n",
		params.Dim(), popSize, o.maxEvals, o.seeds, o.maxTicks, o.target)

	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	if _, err := optimize.Minimize(problem, initX, settings, method); err != nil {
		// Hitting the evaluation budget ends the search with an error too.
		slog.Warn("optimization ended", "error", err)
	}

	best, bestFitness := tracker.Best()
	if best == nil {
		return errors.New("no evaluations completed")
	}

	fmt.Printf("\nDone: %d evaluations in %s, best quality %.3f\n",
		tracker.Count(), formatDuration(tracker.Elapsed()), -bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, best[i])
	}

	bestCfg := *baseCfg
	if err := params.ApplyToConfig(&bestCfg, best); err != nil {
		return fmt.Errorf("best parameters rejected: %w", err)
	}
	path := filepath.Join(o.outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(path); err != nil {
		return err
	}
	fmt.Printf("Best config saved to: %s\n", path)
	return nil
}

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}
