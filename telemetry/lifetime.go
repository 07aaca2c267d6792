package telemetry

// LifetimeStats tracks per-actor statistics while the actor is present.
type LifetimeStats struct {
	JoinTick        int32
	SurvivalTimeSec float64

	// Feeding
	Meals          int
	SpecialItems   int
	ForeignChanges int
	TotalGained    float64

	// Effects
	EffectsStarted int
	PeakAmplifier  int

	Deaths int
}

// LifetimeTracker manages per-actor lifetime statistics.
type LifetimeTracker struct {
	stats map[string]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[string]*LifetimeStats),
	}
}

// Register creates lifetime stats for an actor that just joined.
func (lt *LifetimeTracker) Register(actor string, joinTick int32) {
	lt.stats[actor] = &LifetimeStats{JoinTick: joinTick}
}

// Get returns the lifetime stats for an actor, or nil if not found.
func (lt *LifetimeTracker) Get(actor string) *LifetimeStats {
	return lt.stats[actor]
}

// Remove removes an actor's stats and returns them (for logging).
func (lt *LifetimeTracker) Remove(actor string) *LifetimeStats {
	stats := lt.stats[actor]
	delete(lt.stats, actor)
	return stats
}

// Record folds an event into the owning actor's stats.
func (lt *LifetimeTracker) Record(e Event) {
	s := lt.stats[e.Actor]
	if s == nil {
		return
	}
	switch e.Type {
	case EventMeal:
		s.Meals++
		s.TotalGained += e.Amount
	case EventSpecial:
		s.SpecialItems++
		s.TotalGained += e.Amount
	case EventForeign:
		s.ForeignChanges += int(e.Amount)
	case EventEffectStarted, EventEffectChanged:
		if e.Type == EventEffectStarted {
			s.EffectsStarted++
		}
		if e.Amplifier > s.PeakAmplifier {
			s.PeakAmplifier = e.Amplifier
		}
	case EventDeath:
		s.Deaths++
	}
}

// UpdateSurvivalTime updates the time spent in the simulation.
func (lt *LifetimeTracker) UpdateSurvivalTime(actor string, currentTick int32, dt float64) {
	if s := lt.stats[actor]; s != nil {
		s.SurvivalTimeSec = float64(currentTick-s.JoinTick) * dt
	}
}

// All returns all tracked stats (for snapshots).
func (lt *LifetimeTracker) All() map[string]*LifetimeStats {
	return lt.stats
}

// Count returns the number of tracked actors.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}
