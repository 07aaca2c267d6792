package catalog

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/nutrition/config"
)

// Loader builds catalogs from nutrient and effect record directories.
// Every *.yaml, *.yml and *.json file is read; a file may hold a single
// record or a list of records.
type Loader struct {
	NutrientDir string
	EffectDir   string
	Items       ItemRegistry
	Effects     EffectRegistry
	Defaults    config.NutrientDefaults

	LogMissingFood      bool
	LogMissingNutrients bool
}

// NewLoader creates a loader from the catalog and nutrition config sections.
func NewLoader(cfg *config.Config, items ItemRegistry, effects EffectRegistry) *Loader {
	return &Loader{
		NutrientDir:         cfg.Catalog.NutrientDir,
		EffectDir:           cfg.Catalog.EffectDir,
		Items:               items,
		Effects:             effects,
		Defaults:            cfg.Nutrition.Defaults,
		LogMissingFood:      cfg.Catalog.LogMissingFood,
		LogMissingNutrients: cfg.Catalog.LogMissingNutrients,
	}
}

// Load reads both directories and returns the validated catalog.
// Invalid records are reported as diagnostics. A file that cannot be read
// or decoded fails the whole load so no partial record is ever used.
func (l *Loader) Load() (*Catalog, Diagnostics, error) {
	nutrientRecords, err := readRecords[NutrientRecord](l.NutrientDir, func(r *NutrientRecord, src string) { r.Source = src })
	if err != nil {
		return nil, nil, err
	}
	effectRecords, err := readRecords[EffectRecord](l.EffectDir, func(r *EffectRecord, src string) { r.Source = src })
	if err != nil {
		return nil, nil, err
	}

	nutrients, diags := ParseNutrients(nutrientRecords, ParseOptions{
		Defaults:          l.Defaults,
		Items:             l.Items,
		ReportMissingFood: l.LogMissingFood,
	})
	effects, effectDiags := ParseEffects(effectRecords, nutrients, l.Effects)
	diags = append(diags, effectDiags...)

	c := New(nutrients, effects)

	if l.LogMissingNutrients {
		for _, id := range UnclaimedFoods(c, l.Items) {
			diags.skip("", id.String(), "registered food without nutrients")
		}
	}

	slog.Info("catalog loaded",
		"nutrients", len(nutrients),
		"effects", len(effects),
		"diagnostics", len(diags),
	)
	return c, diags, nil
}

// UnclaimedFoods lists registered edible items that no nutrient matches.
func UnclaimedFoods(c *Catalog, items ItemRegistry) []ItemID {
	if items == nil {
		return nil
	}
	var out []ItemID
	for _, id := range items.Items() {
		info, ok := items.LookupItem(id)
		if !ok || !info.Edible {
			continue
		}
		claimed := false
		for _, n := range c.Nutrients {
			if _, matched := n.Match(id, items); matched {
				claimed = true
				break
			}
		}
		if !claimed {
			out = append(out, id)
		}
	}
	return out
}

// readRecords decodes every record file in dir, in file-name order.
// A missing directory yields no records.
func readRecords[T any](dir string, setSource func(*T, string)) ([]T, error) {
	if dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Warn("catalog directory missing", "dir", dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading catalog directory %s: %w", dir, err)
	}

	var records []T
	for _, entry := range entries {
		if entry.IsDir() || !isRecordFile(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		fileRecords, err := decodeRecordFile[T](path)
		if err != nil {
			return nil, fmt.Errorf("the file %s could not be loaded: %w", entry.Name(), err)
		}
		for i := range fileRecords {
			setSource(&fileRecords[i], entry.Name())
		}
		records = append(records, fileRecords...)
	}
	return records, nil
}

func decodeRecordFile[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, errors.New("file is empty")
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var list []T
		if err := root.Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	case yaml.MappingNode:
		var rec T
		if err := root.Decode(&rec); err != nil {
			return nil, err
		}
		return []T{rec}, nil
	default:
		return nil, fmt.Errorf("expected a record or a list of records, got %s", nodeKind(root.Kind))
	}
}

func isRecordFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func nodeKind(k yaml.Kind) string {
	switch k {
	case yaml.ScalarNode:
		return "a scalar"
	case yaml.AliasNode:
		return "an alias"
	default:
		return "an unknown node"
	}
}
