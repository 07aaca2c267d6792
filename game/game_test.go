package game

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/config"
	"github.com/pthm-cable/nutrition/telemetry"
)

var (
	apple = catalog.MustItemID("minecraft:apple")
	bread = catalog.MustItemID("minecraft:bread")
	milk  = catalog.MustItemID("minecraft:milk_bucket")
	stone = catalog.MustItemID("minecraft:stone")
)

const fruitYAML = `
name: fruit
icon: minecraft:apple
color: "ff0000"
starting: 50
decay: 0
deathmin: 50
deathloss: 15
food:
  items: ["minecraft:apple/10"]
`

const grainYAML = `
name: grain
icon: minecraft:bread
color: "c8a000"
starting: 50
decay: 1
food:
  tags: [grain]
  items: ["minecraft:milk_bucket"]
`

const strengthYAML = `
name: strength
status: strength
minimum: 70
maximum: 100
detect: all
nutrients: [fruit]
`

type call struct {
	op    string
	actor string
	ref   catalog.EffectRef
	amp   int
}

type recordingApplier struct {
	calls []call
}

func (r *recordingApplier) Apply(actor string, ref catalog.EffectRef, amplifier int) {
	r.calls = append(r.calls, call{"apply", actor, ref, amplifier})
}

func (r *recordingApplier) Remove(actor string, ref catalog.EffectRef) {
	r.calls = append(r.calls, call{"remove", actor, ref, 0})
}

func (r *recordingApplier) reset() { r.calls = nil }

type memoryStore struct {
	snapshots []*telemetry.Snapshot
	events    []telemetry.Event
}

func (m *memoryStore) SaveSnapshot(s *telemetry.Snapshot) error {
	m.snapshots = append(m.snapshots, s)
	return nil
}

func (m *memoryStore) SaveEffectEvents(events []telemetry.Event) error {
	m.events = append(m.events, events...)
	return nil
}

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testRegistry() *catalog.StaticRegistry {
	r := catalog.NewStaticRegistry()
	r.AddItem(apple, catalog.ItemInfo{Edible: true, Hunger: 4}, "fruit")
	r.AddItem(bread, catalog.ItemInfo{Edible: true, Hunger: 5}, "grain")
	r.AddItem(milk, catalog.ItemInfo{Special: true, BaseValue: 4, ClearsEffects: true})
	r.AddItem(stone, catalog.ItemInfo{})
	r.AddEffect("strength", "strength")
	r.AddEffect("weakness", "weakness")
	return r
}

type fixture struct {
	g       *Game
	root    string
	applier *recordingApplier
}

func newFixture(t *testing.T, mutate func(*config.Config, *Options)) *fixture {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "nutrients"), "fruit.yml", fruitYAML)
	writeFile(t, filepath.Join(root, "nutrients"), "grain.yml", grainYAML)
	writeFile(t, filepath.Join(root, "effects"), "strength.yml", strengthYAML)

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}
	cfg.Catalog.NutrientDir = filepath.Join(root, "nutrients")
	cfg.Catalog.EffectDir = filepath.Join(root, "effects")
	cfg.Ticks.DT = 1
	cfg.Ticks.DecayInterval = 10
	cfg.Ticks.EffectInterval = 1
	cfg.Persistence.SaveInterval = 0

	reg := testRegistry()
	f := &fixture{root: root, applier: &recordingApplier{}}
	opts := Options{
		Config:         cfg,
		Items:          reg,
		Effects:        reg,
		Applier:        f.applier,
		StatsWindowSec: 1000,
	}
	if mutate != nil {
		mutate(cfg, &opts)
	}

	g, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	f.g = g
	return f
}

func (f *fixture) join(t *testing.T, actor string) {
	t.Helper()
	if err := f.g.Join(actor); err != nil {
		t.Fatalf("Join(%s): %v", actor, err)
	}
}

func (f *fixture) level(t *testing.T, actor, nutrient string) float64 {
	t.Helper()
	levels, err := f.g.Levels(actor)
	if err != nil {
		t.Fatalf("Levels(%s): %v", actor, err)
	}
	return levels[nutrient]
}

func (f *fixture) meal(t *testing.T, actor string, item catalog.ItemID, hunger float64) {
	t.Helper()
	if err := f.g.StatIncrease(actor, hunger); err != nil {
		t.Fatal(err)
	}
	if _, err := f.g.Consume(actor, item); err != nil {
		t.Fatal(err)
	}
}

func approxEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestJoinStartsAtStartingLevels(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	for _, name := range []string{"fruit", "grain"} {
		if got := f.level(t, "steve", name); got != 50 {
			t.Errorf("%s = %v, want 50", name, got)
		}
	}
	if f.g.ActorCount() != 1 {
		t.Errorf("ActorCount() = %d, want 1", f.g.ActorCount())
	}
	if len(f.applier.calls) != 0 {
		t.Errorf("unexpected applier calls on join: %+v", f.applier.calls)
	}
}

func TestActorErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	if err := f.g.Join("steve"); !errors.Is(err, ErrDuplicateActor) {
		t.Errorf("duplicate Join error = %v, want ErrDuplicateActor", err)
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"Leave", func() error { return f.g.Leave("alex") }},
		{"Death", func() error { return f.g.Death("alex") }},
		{"StatIncrease", func() error { return f.g.StatIncrease("alex", 4) }},
		{"Consume", func() error { _, err := f.g.Consume("alex", apple); return err }},
		{"Resync", func() error { return f.g.Resync("alex", nil) }},
		{"ReapplyEffects", func() error { return f.g.ReapplyEffects("alex") }},
		{"Levels", func() error { _, err := f.g.Levels("alex"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrUnknownActor) {
				t.Errorf("error = %v, want ErrUnknownActor", err)
			}
		})
	}
}

func TestPairedMealAppliesResolvedValues(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", bread, 5)
	f.g.Step()

	if got := f.level(t, "steve", "fruit"); !approxEqual(got, 60) {
		t.Errorf("fruit = %v, want 60", got)
	}
	if got := f.level(t, "steve", "grain"); !approxEqual(got, 52.5) {
		t.Errorf("grain = %v, want 52.5", got)
	}
}

func TestConsumeBeforeStatIncreasePairs(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	if _, err := f.g.Consume("steve", apple); err != nil {
		t.Fatal(err)
	}
	if err := f.g.StatIncrease("steve", 4); err != nil {
		t.Fatal(err)
	}
	f.g.Step()

	// No foreign share on top of the apple.
	if got := f.level(t, "steve", "grain"); got != 50 {
		t.Errorf("grain = %v, want 50", got)
	}
	if got := f.level(t, "steve", "fruit"); !approxEqual(got, 60) {
		t.Errorf("fruit = %v, want 60", got)
	}
}

func TestForeignIncreaseSpreadsOverAllNutrients(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	if err := f.g.StatIncrease("steve", 4); err != nil {
		t.Fatal(err)
	}
	f.g.Step()

	// 4 * 0.5 = 2, less 15% for the second nutrient.
	for _, name := range []string{"fruit", "grain"} {
		if got := f.level(t, "steve", name); !approxEqual(got, 51.7) {
			t.Errorf("%s = %v, want 51.7", name, got)
		}
	}
}

func TestDecayRunsOnInterval(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	for i := 0; i < 9; i++ {
		f.g.Step()
	}
	if got := f.level(t, "steve", "grain"); got != 50 {
		t.Errorf("grain after 9 ticks = %v, want 50", got)
	}

	f.g.Step()
	if got := f.level(t, "steve", "grain"); got != 49 {
		t.Errorf("grain after 10 ticks = %v, want 49", got)
	}
	if got := f.level(t, "steve", "fruit"); got != 50 {
		t.Errorf("fruit after 10 ticks = %v, want 50", got)
	}
}

func TestEffectEdgesReachApplier(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)
	f.g.Step()

	want := []call{{"apply", "steve", "strength", 0}}
	if len(f.applier.calls) != 1 || f.applier.calls[0] != want[0] {
		t.Fatalf("calls = %+v, want %+v", f.applier.calls, want)
	}

	// Steady state sends nothing.
	f.applier.reset()
	f.g.Step()
	if len(f.applier.calls) != 0 {
		t.Errorf("steady state calls = %+v, want none", f.applier.calls)
	}

	fx, err := f.g.ActiveEffects("steve")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := fx["strength"]; !ok {
		t.Errorf("ActiveEffects = %v, want strength", fx)
	}
}

func TestDeathAppliesPenaltyAndEndsEffects(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)
	f.g.Step()
	f.applier.reset()

	if err := f.g.Death("steve"); err != nil {
		t.Fatal(err)
	}

	if got := f.level(t, "steve", "fruit"); !approxEqual(got, 55) {
		t.Errorf("fruit = %v, want 55", got)
	}
	// grain falls back to the configured death defaults (min 50, loss 15)
	if got := f.level(t, "steve", "grain"); !approxEqual(got, 35) {
		t.Errorf("grain = %v, want 35", got)
	}

	want := call{"remove", "steve", "strength", 0}
	if len(f.applier.calls) != 1 || f.applier.calls[0] != want {
		t.Errorf("calls = %+v, want %+v", f.applier.calls, want)
	}
}

func TestSpecialConsumableReappliesEffects(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)
	f.g.Step()
	f.applier.reset()

	cs, err := f.g.Consume("steve", milk)
	if err != nil {
		t.Fatal(err)
	}
	if v, ok := cs.Value("grain"); !ok || !approxEqual(v, 2) {
		t.Errorf("milk grain contribution = %v, %v; want 2", v, ok)
	}

	want := call{"apply", "steve", "strength", 0}
	if len(f.applier.calls) != 1 || f.applier.calls[0] != want {
		t.Errorf("calls = %+v, want %+v", f.applier.calls, want)
	}

	// Milk is not a hunger food, so nothing is left to settle.
	f.g.Step()
	if got := f.level(t, "steve", "fruit"); !approxEqual(got, 70) {
		t.Errorf("fruit = %v, want 70", got)
	}
}

func TestUnknownAndInedibleItems(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	for _, item := range []catalog.ItemID{stone, catalog.MustItemID("mod:mystery")} {
		cs, err := f.g.Consume("steve", item)
		if err != nil {
			t.Fatalf("Consume(%s): %v", item, err)
		}
		if len(cs) != 0 {
			t.Errorf("Consume(%s) = %v, want nothing", item, cs)
		}
	}
	f.g.Step()
	if got := f.level(t, "steve", "fruit"); got != 50 {
		t.Errorf("fruit = %v, want 50", got)
	}
}

func TestResyncClampsAndIgnoresUnknownNames(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")

	if err := f.g.Resync("steve", map[string]float64{"fruit": 150, "protein": 3}); err != nil {
		t.Fatal(err)
	}
	if got := f.level(t, "steve", "fruit"); got != 100 {
		t.Errorf("fruit = %v, want 100", got)
	}
	if got := f.level(t, "steve", "grain"); got != 50 {
		t.Errorf("grain = %v, want 50", got)
	}
}

func TestLeaveRemovesActor(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")
	f.join(t, "alex")

	if err := f.g.Leave("steve"); err != nil {
		t.Fatal(err)
	}
	if f.g.ActorCount() != 1 {
		t.Errorf("ActorCount() = %d, want 1", f.g.ActorCount())
	}
	if _, err := f.g.Levels("steve"); !errors.Is(err, ErrUnknownActor) {
		t.Errorf("Levels after leave error = %v", err)
	}
	// Rejoining starts fresh.
	f.join(t, "steve")
	if got := f.level(t, "steve", "fruit"); got != 50 {
		t.Errorf("fruit after rejoin = %v, want 50", got)
	}
}

func TestBreakdown(t *testing.T) {
	f := newFixture(t, nil)

	groups := f.g.Breakdown(apple)
	if len(groups) != 1 || groups[0].Value != 10 || groups[0].Nutrients[0] != "fruit" {
		t.Errorf("Breakdown(apple) = %+v", groups)
	}
	if groups := f.g.Breakdown(stone); len(groups) != 0 {
		t.Errorf("Breakdown(stone) = %+v, want empty", groups)
	}
}

func TestReloadRemapsLevelsAndEndsRemovedEffects(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")
	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)
	f.g.Step()
	f.applier.reset()

	nutrients := filepath.Join(f.root, "nutrients")
	if err := os.Remove(filepath.Join(nutrients, "grain.yml")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, nutrients, "protein.yml", `
name: protein
icon: minecraft:bread
color: "aa5500"
starting: 20
`)
	if err := os.Remove(filepath.Join(f.root, "effects", "strength.yml")); err != nil {
		t.Fatal(err)
	}

	if _, err := f.g.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	levels, err := f.g.Levels("steve")
	if err != nil {
		t.Fatal(err)
	}
	if !approxEqual(levels["fruit"], 70) {
		t.Errorf("fruit = %v, want 70", levels["fruit"])
	}
	if levels["protein"] != 20 {
		t.Errorf("protein = %v, want 20", levels["protein"])
	}
	if _, ok := levels["grain"]; ok {
		t.Error("grain should be gone after reload")
	}

	want := call{"remove", "steve", "strength", 0}
	if len(f.applier.calls) != 1 || f.applier.calls[0] != want {
		t.Errorf("calls = %+v, want %+v", f.applier.calls, want)
	}
}

func TestReloadFailureKeepsCatalog(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")
	before := f.g.Catalog()

	writeFile(t, filepath.Join(f.root, "nutrients"), "broken.yml", "name: [unterminated")

	if _, err := f.g.Reload(); err == nil {
		t.Fatal("expected reload error")
	}
	if f.g.Catalog() != before {
		t.Error("catalog replaced after a failed reload")
	}
	if got := f.level(t, "steve", "grain"); got != 50 {
		t.Errorf("grain = %v, want 50", got)
	}
}

func TestSnapshotAndRestore(t *testing.T) {
	f := newFixture(t, nil)
	f.join(t, "steve")
	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)
	f.g.Step()

	snap := f.g.Snapshot(nil)
	if len(snap.Actors) != 1 || snap.Nutrients[0] != "fruit" {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Actors[0].Effects["strength"].Ref != "strength" {
		t.Errorf("snapshot effects = %+v", snap.Actors[0].Effects)
	}
	if snap.Actors[0].Lifetime == nil || snap.Actors[0].Lifetime.Meals != 2 {
		t.Errorf("snapshot lifetime = %+v", snap.Actors[0].Lifetime)
	}

	other := newFixture(t, nil)
	if err := other.g.Restore(snap.Actors[0]); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	if got := other.level(t, "steve", "fruit"); !approxEqual(got, 70) {
		t.Errorf("restored fruit = %v, want 70", got)
	}
	// Effects are re-sent to the new host.
	want := call{"apply", "steve", "strength", 0}
	if len(other.applier.calls) != 1 || other.applier.calls[0] != want {
		t.Errorf("restore calls = %+v, want %+v", other.applier.calls, want)
	}
}

func TestPersistOnSaveInterval(t *testing.T) {
	var store *memoryStore
	f := newFixture(t, func(cfg *config.Config, opts *Options) {
		cfg.Persistence.SaveInterval = 3
		store = &memoryStore{}
		opts.Store = store
	})
	f.join(t, "steve")
	f.meal(t, "steve", apple, 4)
	f.meal(t, "steve", apple, 4)

	for i := 0; i < 3; i++ {
		f.g.Step()
	}

	if len(store.snapshots) != 1 {
		t.Fatalf("saved %d snapshots, want 1", len(store.snapshots))
	}
	if store.snapshots[0].Tick != 3 {
		t.Errorf("snapshot tick = %d, want 3", store.snapshots[0].Tick)
	}
	if len(store.events) != 1 || store.events[0].Type != telemetry.EventEffectStarted {
		t.Errorf("effect events = %+v, want one start", store.events)
	}
}

func TestTelemetryWindowFlush(t *testing.T) {
	var windows []telemetry.WindowStats
	outDir := filepath.Join(t.TempDir(), "out")
	f := newFixture(t, func(cfg *config.Config, opts *Options) {
		opts.StatsWindowSec = 5
		opts.OutputDir = outDir
		opts.StatsCallback = func(s telemetry.WindowStats) { windows = append(windows, s) }
	})
	f.join(t, "steve")
	f.join(t, "alex")
	f.meal(t, "steve", apple, 4)
	if err := f.g.StatIncrease("alex", 3); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 5; i++ {
		f.g.Step()
	}

	if len(windows) != 1 {
		t.Fatalf("got %d windows, want 1", len(windows))
	}
	w := windows[0]
	if w.Actors != 2 || w.Meals != 1 || w.ForeignChanges != 1 || w.Joins != 2 {
		t.Errorf("window = %+v", w)
	}

	if err := f.g.Close(); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"telemetry.csv", "nutrients.csv", "perf.csv", "config.yaml"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
}
