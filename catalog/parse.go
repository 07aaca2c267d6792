package catalog

import (
	"math"
	"strconv"
	"strings"

	"github.com/pthm-cable/nutrition/config"
)

// ParseOptions controls nutrient record validation.
type ParseOptions struct {
	Defaults config.NutrientDefaults

	// Items validates food associations. Nil accepts every well-formed reference.
	Items ItemRegistry

	// ReportMissingFood emits a diagnostic for references the registry does not know.
	// Missing references are skipped either way.
	ReportMissingFood bool
}

// ParseNutrients validates raw nutrient records. Invalid records are
// dropped with a diagnostic; the rest are returned in input order.
func ParseNutrients(records []NutrientRecord, opts ParseOptions) ([]*Nutrient, Diagnostics) {
	var diags Diagnostics
	nutrients := make([]*Nutrient, 0, len(records))
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		if !enabled(rec.Enabled) {
			continue
		}

		name := strings.TrimSpace(rec.Name)
		if name == "" {
			diags.reject(rec.Source, "<unnamed>", "a name, icon and color are required")
			continue
		}
		if seen[name] {
			diags.reject(rec.Source, name, "duplicate nutrient name")
			continue
		}

		icon, err := ParseItemRef(rec.Icon)
		if err != nil {
			diags.reject(rec.Source, name, "invalid icon: %v", err)
			continue
		}
		color, err := parseColor(rec.Color)
		if err != nil {
			diags.reject(rec.Source, name, "invalid color %q: must be six hex digits", rec.Color)
			continue
		}

		n := &Nutrient{
			Name:    name,
			Icon:    icon.ID,
			Color:   color,
			Visible: rec.Visible == nil || *rec.Visible,
			Items:   make(map[ItemID]float64, len(rec.Food.Items)),
		}

		var ok bool
		if n.Starting, ok = boundedInt(rec.Starting, opts.Defaults.Starting, 0, 100); !ok {
			diags.reject(rec.Source, name, "starting value must be between 0 and 100")
			continue
		}
		if n.DeathPenaltyMin, ok = boundedInt(rec.DeathMin, opts.Defaults.DeathPenaltyMin, 0, 100); !ok {
			diags.reject(rec.Source, name, "death penalty threshold must be between 0 and 100")
			continue
		}
		if n.DeathPenaltyLoss, ok = boundedInt(rec.DeathLoss, opts.Defaults.DeathPenaltyLoss, 0, 100); !ok {
			diags.reject(rec.Source, name, "death loss value must be between 0 and 100")
			continue
		}
		n.Decay = opts.Defaults.Decay
		if rec.Decay != nil {
			d := *rec.Decay
			if math.IsNaN(d) || d < -100 || d > 100 {
				diags.reject(rec.Source, name, "decay rate must be between -100 and 100")
				continue
			}
			n.Decay = d
		}

		n.Tags = uniqueTags(rec.Food.Tags)

		for _, raw := range rec.Food.Items {
			ref, err := ParseItemRef(raw)
			if err != nil {
				diags.skip(rec.Source, name, "%v", err)
				continue
			}
			if ref.HasValue && (ref.Value < 0 || math.IsNaN(ref.Value)) {
				diags.skip(rec.Source, name, "%s has a negative custom value", raw)
				continue
			}
			if opts.Items != nil {
				info, found := opts.Items.LookupItem(ref.ID)
				if !found {
					if opts.ReportMissingFood {
						diags.skip(rec.Source, name, "food with nutrients doesn't exist: %s%s", raw, suggestion(opts.Items, ref.ID))
					}
					continue
				}
				if !info.Consumable() {
					diags.skip(rec.Source, name, "%s is not a valid food", raw)
					continue
				}
			}
			n.Items[ref.ID] = ref.Value
		}

		seen[name] = true
		nutrients = append(nutrients, n)
	}

	return nutrients, diags
}

// ParseEffects validates raw effect records against a parsed nutrient list.
func ParseEffects(records []EffectRecord, nutrients []*Nutrient, registry EffectRegistry) ([]*Effect, Diagnostics) {
	var diags Diagnostics
	effects := make([]*Effect, 0, len(records))
	byName := make(map[string]*Nutrient, len(nutrients))
	for _, n := range nutrients {
		byName[n.Name] = n
	}
	seen := make(map[string]bool, len(records))

	for _, rec := range records {
		if !enabled(rec.Enabled) {
			continue
		}

		name := strings.TrimSpace(rec.Name)
		if name == "" {
			diags.reject(rec.Source, "<unnamed>", "effect name is required")
			continue
		}
		if seen[name] {
			diags.reject(rec.Source, name, "duplicate effect name")
			continue
		}

		status := rec.statusName()
		ref, found := EffectRef(""), false
		if registry != nil {
			ref, found = registry.LookupEffect(status)
		}
		if !found {
			diags.reject(rec.Source, name, "status effect %q is not valid", status)
			continue
		}

		if rec.Minimum < 0 || rec.Minimum > 100 || rec.Maximum < 0 || rec.Maximum > 100 {
			diags.reject(rec.Source, name, "minimum and maximum must be between 0 and 100")
			continue
		}
		if rec.Minimum > rec.Maximum {
			diags.reject(rec.Source, name, "minimum %d exceeds maximum %d", rec.Minimum, rec.Maximum)
			continue
		}

		e := &Effect{
			Name:               name,
			Ref:                ref,
			Minimum:            rec.Minimum,
			Maximum:            rec.Maximum,
			CumulativeModifier: 1,
		}

		if rec.Amplifier != nil {
			if *rec.Amplifier < 0 {
				diags.reject(rec.Source, name, "amplifier must not be negative")
				continue
			}
			e.Amplifier = *rec.Amplifier
		}
		if rec.CumulativeModifier != nil {
			if *rec.CumulativeModifier < 0 {
				diags.reject(rec.Source, name, "cumulative modifier must not be negative")
				continue
			}
			e.CumulativeModifier = *rec.CumulativeModifier
		}

		detect, known := ParseDetectionType(rec.Detect)
		if !known && rec.Detect != "" {
			diags.warn(rec.Source, name, "unknown detection type %q, using average", rec.Detect)
		}
		e.Detect = detect

		if len(rec.Nutrients) == 0 {
			e.AllNutrients = true
			e.Nutrients = append([]*Nutrient(nil), nutrients...)
		} else {
			for _, nutrientName := range rec.Nutrients {
				n, ok := byName[strings.TrimSpace(nutrientName)]
				if !ok {
					diags.dropRef(rec.Source, name, "nutrient %s not found", nutrientName)
					continue
				}
				e.Nutrients = append(e.Nutrients, n)
			}
			if len(e.Nutrients) == 0 {
				diags.reject(rec.Source, name, "no listed nutrient exists")
				continue
			}
		}

		seen[name] = true
		effects = append(effects, e)
	}

	return effects, diags
}

// boundedInt returns the record value or the fallback, and whether it is within [lo, hi].
func boundedInt(v *int, fallback, lo, hi int) (int, bool) {
	if v == nil {
		return fallback, true
	}
	if *v < lo || *v > hi {
		return 0, false
	}
	return *v, true
}

// parseColor converts "RRGGBB" to an opaque 0xAARRGGBB value.
func parseColor(s string) (uint32, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return 0, strconv.ErrSyntax
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return 0xff000000 | uint32(v), nil
}

func uniqueTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
