// Catalog check tool - loads nutrient and effect definitions the way the
// engine does and reports every diagnostic.
//
// Usage: go run ./cmd/catalogcheck [-config path] [-breakdown]
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
	"github.com/pthm-cable/nutrition/systems"
)

func main() {
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	breakdown := flag.Bool("breakdown", false, "Print what every registered food contributes")
	strict := flag.Bool("strict", false, "Exit non-zero on warnings too")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	// Report everything regardless of the runtime switches
	cfg.Catalog.LogMissingFood = true
	cfg.Catalog.LogMissingNutrients = true

	registry, err := catalog.LoadRegistry(cfg.Catalog.RegistryPath)
	if err != nil {
		slog.Error("failed to load registry", "error", err)
		os.Exit(1)
	}

	cat, diags, err := catalog.NewLoader(cfg, registry, registry).Load()
	if err != nil {
		slog.Error("catalog load failed", "error", err)
		os.Exit(1)
	}
	diags.Log(logger)

	if *breakdown {
		printBreakdown(cfg, cat, registry)
	}

	fmt.Printf("%d nutrients, %d effects, %d diagnostics (%d errors)\n",
		cat.Len(), len(cat.Effects), len(diags), diags.Errors())

	if diags.Errors() > 0 || (*strict && len(diags) > 0) {
		os.Exit(1)
	}
}

func printBreakdown(cfg *config.Config, cat *catalog.Catalog, registry *catalog.StaticRegistry) {
	resolver := systems.NewResolver(cfg, registry)
	for _, id := range registry.Items() {
		info, _ := registry.LookupItem(id)
		if !info.Consumable() {
			continue
		}
		groups := resolver.Breakdown(cat, id)
		if len(groups) == 0 {
			fmt.Printf("%s: nothing\n", id)
			continue
		}
		parts := make([]string, len(groups))
		for i, g := range groups {
			parts[i] = fmt.Sprintf("%.1f %s", g.Value, strings.Join(g.Nutrients, ", "))
		}
		fmt.Printf("%s: %s\n", id, strings.Join(parts, "; "))
	}
}
