package systems

import (
	"testing"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
)

func effect(name string, detect catalog.DetectionType, lo, hi int, nutrients ...*catalog.Nutrient) *catalog.Effect {
	return &catalog.Effect{
		Name:               name,
		Ref:                catalog.EffectRef(name),
		Minimum:            lo,
		Maximum:            hi,
		Detect:             detect,
		CumulativeModifier: 1,
		Nutrients:          nutrients,
	}
}

func TestStrengthAll(t *testing.T) {
	cat := testCatalog()
	strength := effect("strength", catalog.DetectAll, 50, 100, cat.Nutrients...)
	strength.Amplifier = 1

	if _, ok := Evaluate(strength, levels(60, 40)); ok {
		t.Error("grain at 40 is below the range")
	}
	amp, ok := Evaluate(strength, levels(60, 55))
	if !ok || amp != 1 {
		t.Errorf("Evaluate = (%d, %v), want (1, true)", amp, ok)
	}
}

func TestDetectionTypes(t *testing.T) {
	cat := testCatalog()
	tests := []struct {
		name    string
		detect  catalog.DetectionType
		levels  []float64
		wantOK  bool
		wantAmp int
	}{
		{"any one in range", catalog.DetectAny, []float64{10, 60}, true, 2},
		{"any none in range", catalog.DetectAny, []float64{10, 20}, false, 0},
		{"average in range", catalog.DetectAverage, []float64{30, 70}, true, 2},
		{"average out of range", catalog.DetectAverage, []float64{10, 70}, false, 0},
		{"all lower bound inclusive", catalog.DetectAll, []float64{50, 80}, true, 2},
		{"all upper bound inclusive", catalog.DetectAll, []float64{80, 80}, true, 2},
		{"all above upper bound", catalog.DetectAll, []float64{50, 80.5}, false, 0},
		{"cumulative one", catalog.DetectCumulative, []float64{60, 10}, true, 2},
		{"cumulative two", catalog.DetectCumulative, []float64{60, 70}, true, 5},
		{"cumulative none", catalog.DetectCumulative, []float64{0, 0}, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := effect("x", tt.detect, 50, 80, cat.Nutrients...)
			e.Amplifier = 2
			e.CumulativeModifier = 3

			amp, ok := Evaluate(e, levels(tt.levels...))
			if ok != tt.wantOK || amp != tt.wantAmp {
				t.Errorf("Evaluate = (%d, %v), want (%d, %v)", amp, ok, tt.wantAmp, tt.wantOK)
			}
		})
	}
}

func TestCumulativeMonotonic(t *testing.T) {
	nutrients := make([]*catalog.Nutrient, 6)
	for i := range nutrients {
		nutrients[i] = &catalog.Nutrient{Name: string(rune('a' + i))}
	}
	cat := catalog.New(nutrients, nil)

	for _, modifier := range []int{0, 1, 4} {
		e := effect("x", catalog.DetectCumulative, 50, 100, cat.Nutrients...)
		e.CumulativeModifier = modifier

		prev := -1
		for inRange := 1; inRange <= len(nutrients); inRange++ {
			n := &components.Nutrition{Levels: make([]float64, len(nutrients))}
			for i := 0; i < inRange; i++ {
				n.Levels[i] = 75
			}
			amp, ok := Evaluate(e, n)
			if !ok {
				t.Fatalf("modifier %d: %d in range should trigger", modifier, inRange)
			}
			if amp < prev {
				t.Errorf("modifier %d: amplifier dropped from %d to %d at count %d", modifier, prev, amp, inRange)
			}
			prev = amp
		}
	}
}

func TestEvaluateEffectsIsPure(t *testing.T) {
	cat := testCatalog()
	cat = catalog.New(cat.Nutrients, []*catalog.Effect{
		effect("strength", catalog.DetectAll, 50, 100, cat.Nutrients...),
		effect("hunger", catalog.DetectAverage, 0, 20, cat.Nutrients...),
		effect("glow", catalog.DetectAny, 90, 100, cat.Nutrients[0]),
	})
	n := levels(95, 60)

	first := EvaluateEffects(n, cat)
	second := EvaluateEffects(n, cat)

	if len(first) != 2 {
		t.Fatalf("active = %v, want strength and glow", first)
	}
	for name, a := range first {
		if second[name] != a {
			t.Errorf("%s differs between evaluations", name)
		}
	}
	if n.Levels[0] != 95 || n.Levels[1] != 60 {
		t.Error("evaluation must not mutate levels")
	}
}

func TestDiffEffects(t *testing.T) {
	prev := map[string]components.ActiveEffect{
		"strength": {Ref: "strength", Amplifier: 0},
		"speed":    {Ref: "speed", Amplifier: 1},
		"hunger":   {Ref: "hunger", Amplifier: 0},
		"glow":     {Ref: "glowing", Amplifier: 0},
	}
	next := map[string]components.ActiveEffect{
		"strength": {Ref: "strength", Amplifier: 0},
		"speed":    {Ref: "speed", Amplifier: 2},
		"regen":    {Ref: "regeneration", Amplifier: 0},
		"glow":     {Ref: "night_vision", Amplifier: 0},
	}

	edges := DiffEffects(prev, next)
	want := []struct {
		kind EdgeKind
		name string
		ref  catalog.EffectRef
	}{
		{EffectEnded, "glow", "glowing"},
		{EffectEnded, "hunger", "hunger"},
		{EffectStarted, "glow", "night_vision"},
		{EffectStarted, "regen", "regeneration"},
		{EffectAmplifierChanged, "speed", "speed"},
	}
	if len(edges) != len(want) {
		t.Fatalf("got %d edges, want %d: %+v", len(edges), len(want), edges)
	}
	for i, w := range want {
		e := edges[i]
		if e.Kind != w.kind || e.Name != w.name || e.Ref != w.ref {
			t.Errorf("edge %d = %s %s %s, want %s %s %s", i, e.Kind, e.Name, e.Ref, w.kind, w.name, w.ref)
		}
	}
	if edges[4].Previous != 1 || edges[4].Amplifier != 2 {
		t.Errorf("speed edge = %+v", edges[4])
	}
}

func TestDiffEffectsNoChange(t *testing.T) {
	active := map[string]components.ActiveEffect{"strength": {Ref: "strength"}}
	if edges := DiffEffects(active, active); len(edges) != 0 {
		t.Errorf("edges = %+v, want none", edges)
	}
}
