package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SnapshotVersion is incremented when the format changes.
const SnapshotVersion = 1

// Snapshot holds every actor's nutrition state at one tick, for inspection.
type Snapshot struct {
	Version int   `json:"version"`
	Tick    int32 `json:"tick"`

	Nutrients []string     `json:"nutrients"`
	Actors    []ActorState `json:"actors"`

	Bookmark *Bookmark `json:"bookmark,omitempty"`
}

// ActorState holds one actor's nutrition state.
type ActorState struct {
	ID      string                 `json:"id"`
	Levels  map[string]float64     `json:"levels"`
	Effects map[string]EffectState `json:"effects,omitempty"`

	Lifetime *LifetimeStatsJSON `json:"lifetime,omitempty"`
}

// EffectState is an applied effect in a snapshot.
type EffectState struct {
	Ref       string `json:"ref"`
	Amplifier int    `json:"amplifier"`
}

// LifetimeStatsJSON is the JSON-serializable form of LifetimeStats.
type LifetimeStatsJSON struct {
	JoinTick        int32   `json:"join_tick"`
	SurvivalTimeSec float64 `json:"survival_time_sec"`
	Meals           int     `json:"meals"`
	SpecialItems    int     `json:"special_items"`
	ForeignChanges  int     `json:"foreign_changes"`
	TotalGained     float64 `json:"total_gained"`
	EffectsStarted  int     `json:"effects_started"`
	PeakAmplifier   int     `json:"peak_amplifier"`
	Deaths          int     `json:"deaths"`
}

// ToJSON converts LifetimeStats to its JSON form.
func (ls *LifetimeStats) ToJSON() *LifetimeStatsJSON {
	if ls == nil {
		return nil
	}
	return &LifetimeStatsJSON{
		JoinTick:        ls.JoinTick,
		SurvivalTimeSec: ls.SurvivalTimeSec,
		Meals:           ls.Meals,
		SpecialItems:    ls.SpecialItems,
		ForeignChanges:  ls.ForeignChanges,
		TotalGained:     ls.TotalGained,
		EffectsStarted:  ls.EffectsStarted,
		PeakAmplifier:   ls.PeakAmplifier,
		Deaths:          ls.Deaths,
	}
}

// FromJSON converts the JSON form back to LifetimeStats.
func (lsj *LifetimeStatsJSON) FromJSON() *LifetimeStats {
	if lsj == nil {
		return nil
	}
	return &LifetimeStats{
		JoinTick:        lsj.JoinTick,
		SurvivalTimeSec: lsj.SurvivalTimeSec,
		Meals:           lsj.Meals,
		SpecialItems:    lsj.SpecialItems,
		ForeignChanges:  lsj.ForeignChanges,
		TotalGained:     lsj.TotalGained,
		EffectsStarted:  lsj.EffectsStarted,
		PeakAmplifier:   lsj.PeakAmplifier,
		Deaths:          lsj.Deaths,
	}
}

// ErrSnapshotVersion is returned for snapshots written by a newer format.
var ErrSnapshotVersion = errors.New("unsupported snapshot version")

// SnapshotFilename names a snapshot file after its tick and bookmark type.
func SnapshotFilename(s *Snapshot) string {
	if s.Bookmark == nil {
		return fmt.Sprintf("snapshot_%d.json", s.Tick)
	}
	kind := strings.ReplaceAll(string(s.Bookmark.Type), " ", "_")
	return fmt.Sprintf("snapshot_%d_%s.json", s.Tick, kind)
}

// SaveSnapshot writes a snapshot into dir and returns its path. The file is
// written under a temporary name and renamed, so readers never see a
// partial snapshot.
func SaveSnapshot(s *Snapshot, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*")
	if err != nil {
		return "", fmt.Errorf("creating snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name()) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("writing snapshot: %w", err)
	}

	path := filepath.Join(dir, SnapshotFilename(s))
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("renaming snapshot: %w", err)
	}
	return path, nil
}

// LoadSnapshot reads a snapshot file. Snapshots from a newer format
// version are rejected with ErrSnapshotVersion.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", filepath.Base(path), err)
	}
	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("%w: %d (this build reads up to %d)", ErrSnapshotVersion, s.Version, SnapshotVersion)
	}
	return &s, nil
}
