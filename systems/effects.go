package systems

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/nutrition/catalog"
	"github.com/pthm-cable/nutrition/components"
)

// Evaluate reports whether an effect triggers for the given levels and
// the amplifier it triggers with.
func Evaluate(e *catalog.Effect, n *components.Nutrition) (amplifier int, triggered bool) {
	if len(e.Nutrients) == 0 {
		return 0, false
	}

	switch e.Detect {
	case catalog.DetectAny:
		for _, nut := range e.Nutrients {
			if e.InRange(n.Level(nut.Index)) {
				return e.Amplifier, true
			}
		}
		return 0, false

	case catalog.DetectAll:
		for _, nut := range e.Nutrients {
			if !e.InRange(n.Level(nut.Index)) {
				return 0, false
			}
		}
		return e.Amplifier, true

	case catalog.DetectCumulative:
		count := 0
		for _, nut := range e.Nutrients {
			if e.InRange(n.Level(nut.Index)) {
				count++
			}
		}
		if count == 0 {
			return 0, false
		}
		return e.Amplifier + (count-1)*e.CumulativeModifier, true

	default:
		levels := make([]float64, len(e.Nutrients))
		for i, nut := range e.Nutrients {
			levels[i] = n.Level(nut.Index)
		}
		if e.InRange(stat.Mean(levels, nil)) {
			return e.Amplifier, true
		}
		return 0, false
	}
}

// EvaluateEffects returns every effect the levels trigger, keyed by name.
func EvaluateEffects(n *components.Nutrition, cat *catalog.Catalog) map[string]components.ActiveEffect {
	out := make(map[string]components.ActiveEffect)
	if cat == nil {
		return out
	}
	for _, e := range cat.Effects {
		if amp, ok := Evaluate(e, n); ok {
			out[e.Name] = components.ActiveEffect{Ref: e.Ref, Amplifier: amp}
		}
	}
	return out
}

// EdgeKind classifies a change in an actor's active effects.
type EdgeKind uint8

const (
	EffectStarted EdgeKind = iota
	EffectAmplifierChanged
	EffectEnded
)

func (k EdgeKind) String() string {
	switch k {
	case EffectStarted:
		return "started"
	case EffectAmplifierChanged:
		return "amplifier_changed"
	default:
		return "ended"
	}
}

// EffectEdge is one transition the status-effect applier must act on.
type EffectEdge struct {
	Kind      EdgeKind
	Name      string
	Ref       catalog.EffectRef
	Amplifier int // New amplifier; unused for EffectEnded
	Previous  int // Amplifier before the change; unused for EffectStarted
}

// DiffEffects compares the previously applied effects with a new
// evaluation. Ended edges come first so a ref can be removed before a
// replacement is applied; each group is sorted by name.
func DiffEffects(prev, next map[string]components.ActiveEffect) []EffectEdge {
	var ended, changed []EffectEdge

	for name, old := range prev {
		cur, ok := next[name]
		if !ok || cur.Ref != old.Ref {
			ended = append(ended, EffectEdge{Kind: EffectEnded, Name: name, Ref: old.Ref, Previous: old.Amplifier})
		}
	}
	for name, cur := range next {
		old, ok := prev[name]
		switch {
		case !ok || old.Ref != cur.Ref:
			changed = append(changed, EffectEdge{Kind: EffectStarted, Name: name, Ref: cur.Ref, Amplifier: cur.Amplifier})
		case old.Amplifier != cur.Amplifier:
			changed = append(changed, EffectEdge{
				Kind:      EffectAmplifierChanged,
				Name:      name,
				Ref:       cur.Ref,
				Amplifier: cur.Amplifier,
				Previous:  old.Amplifier,
			})
		}
	}

	sortEdges(ended)
	sortEdges(changed)
	return append(ended, changed...)
}

func sortEdges(edges []EffectEdge) {
	sort.Slice(edges, func(i, j int) bool { return edges[i].Name < edges[j].Name })
}
