package catalog

import "strings"

// DetectionType selects how an effect aggregates its nutrient levels.
type DetectionType uint8

const (
	DetectAverage DetectionType = iota // mean of levels in range
	DetectAny                          // at least one level in range
	DetectAll                          // every level in range
	DetectCumulative                   // amplifier grows per level in range
)

// String returns the record spelling of the detection type.
func (d DetectionType) String() string {
	switch d {
	case DetectAny:
		return "any"
	case DetectAll:
		return "all"
	case DetectCumulative:
		return "cumulative"
	default:
		return "average"
	}
}

// ParseDetectionType parses a record value, case-insensitively.
// Unknown values report ok=false and fall back to DetectAverage.
func ParseDetectionType(s string) (DetectionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any":
		return DetectAny, true
	case "average":
		return DetectAverage, true
	case "all":
		return DetectAll, true
	case "cumulative":
		return DetectCumulative, true
	default:
		return DetectAverage, false
	}
}

// Effect is a threshold rule mapping nutrient levels to a status effect.
type Effect struct {
	Name               string
	Ref                EffectRef
	Amplifier          int
	Minimum            int // Inclusive
	Maximum            int // Inclusive
	Detect             DetectionType
	CumulativeModifier int
	Nutrients          []*Nutrient
	AllNutrients       bool // Record left the nutrient list empty
}

// InRange reports whether a level lies within the effect's inclusive bounds.
func (e *Effect) InRange(level float64) bool {
	return level >= float64(e.Minimum) && level <= float64(e.Maximum)
}
