package telemetry

// Collector accumulates events within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float64

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	meals          int
	specials       int
	foreign        int
	nutrientGain   float64
	deaths         int
	joins          int
	leaves         int
	effectsStarted int
	effectsChanged int
	effectsEnded   int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticksPerWindow := int32(1)
	if dt > 0 {
		ticksPerWindow = int32(windowDurationSec / dt)
	}
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// Record counts an event in the current window.
func (c *Collector) Record(e Event) {
	switch e.Type {
	case EventMeal:
		c.meals++
		c.nutrientGain += e.Amount
	case EventSpecial:
		c.specials++
		c.nutrientGain += e.Amount
	case EventForeign:
		c.foreign += int(e.Amount)
	case EventEffectStarted:
		c.effectsStarted++
	case EventEffectChanged:
		c.effectsChanged++
	case EventEffectEnded:
		c.effectsEnded++
	case EventDeath:
		c.deaths++
	case EventJoin:
		c.joins++
	case EventLeave:
		c.leaves++
	}
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// LevelSample holds one nutrient's levels across every actor.
type LevelSample struct {
	Nutrient string
	Levels   []float64
}

// Flush produces a WindowStats plus per-nutrient stats and resets counters
// for the next window. The caller provides the actor count, the number of
// active effects and the level samples taken at window end.
func (c *Collector) Flush(currentTick int32, actors, activeEffects int, samples []LevelSample) (WindowStats, []NutrientStats) {
	var all []float64
	perNutrient := make([]NutrientStats, 0, len(samples))
	for _, s := range samples {
		all = append(all, s.Levels...)
		perNutrient = append(perNutrient, ComputeNutrientStats(currentTick, s.Nutrient, s.Levels))
	}
	mean, p10, p50, p90 := ComputeLevelStats(all)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Actors: actors,

		Meals:          c.meals,
		Specials:       c.specials,
		ForeignChanges: c.foreign,
		NutrientGain:   c.nutrientGain,
		Deaths:         c.deaths,
		Joins:          c.joins,
		Leaves:         c.leaves,

		EffectsStarted: c.effectsStarted,
		EffectsChanged: c.effectsChanged,
		EffectsEnded:   c.effectsEnded,
		ActiveEffects:  activeEffects,

		LevelMean: mean,
		LevelP10:  p10,
		LevelP50:  p50,
		LevelP90:  p90,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.meals = 0
	c.specials = 0
	c.foreign = 0
	c.nutrientGain = 0
	c.deaths = 0
	c.joins = 0
	c.leaves = 0
	c.effectsStarted = 0
	c.effectsChanged = 0
	c.effectsEnded = 0

	return stats, perNutrient
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
