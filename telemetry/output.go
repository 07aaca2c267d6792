package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/nutrition/config"
)

// csvFile is an output CSV that writes its header once.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

// write appends records, including the header on first use.
func write[T any](cf *csvFile, records []T) error {
	if !cf.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, cf.f); err != nil {
			return err
		}
		cf.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(records, cf.f)
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir string

	telemetry *csvFile
	nutrients *csvFile
	effects   *csvFile
	perf      *csvFile
	bookmarks *csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{"telemetry.csv", &om.telemetry},
		{"nutrients.csv", &om.nutrients},
		{"effects.csv", &om.effects},
		{"perf.csv", &om.perf},
		{"bookmarks.csv", &om.bookmarks},
	}
	for _, file := range files {
		f, err := os.Create(filepath.Join(dir, file.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", file.name, err)
		}
		*file.dst = &csvFile{f: f}
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	configPath := filepath.Join(om.dir, "config.yaml")
	return cfg.WriteYAML(configPath)
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := write(om.telemetry, []WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WriteNutrients writes per-nutrient level stats to nutrients.csv.
func (om *OutputManager) WriteNutrients(stats []NutrientStats) error {
	if om == nil || len(stats) == 0 {
		return nil
	}
	if err := write(om.nutrients, stats); err != nil {
		return fmt.Errorf("writing nutrients: %w", err)
	}
	return nil
}

// WriteEffects writes effect transitions to effects.csv.
func (om *OutputManager) WriteEffects(events []Event) error {
	if om == nil {
		return nil
	}
	records := make([]EffectRecord, 0, len(events))
	for _, e := range events {
		if e.IsEffect() {
			records = append(records, e.ToEffectRecord())
		}
	}
	if len(records) == 0 {
		return nil
	}
	if err := write(om.effects, records); err != nil {
		return fmt.Errorf("writing effects: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := write(om.perf, []PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := write(om.bookmarks, []Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, cf := range []*csvFile{om.telemetry, om.nutrients, om.effects, om.perf, om.bookmarks} {
		if cf == nil || cf.f == nil {
			continue
		}
		if err := cf.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
