package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Phase is one timed part of the simulation step.
type Phase int

const (
	PhaseFeed Phase = iota
	PhaseDecay
	PhaseEffects
	PhaseTelemetry
	PhasePersistence

	NumPhases
)

var phaseNames = [NumPhases]string{"feed", "decay", "effects", "telemetry", "persistence"}

func (p Phase) String() string {
	if p < 0 || p >= NumPhases {
		return "unknown"
	}
	return phaseNames[p]
}

const noPhase Phase = -1

// perfSample is the timing of one tick.
type perfSample struct {
	tick   time.Duration
	actors int
	phases [NumPhases]time.Duration
}

// PerfCollector times tick phases over a rolling window of ticks.
// Phases not entered during a tick count as zero for that tick.
type PerfCollector struct {
	samples []perfSample // ring buffer
	next    int
	filled  int

	cur        perfSample
	tickStart  time.Time
	phaseStart time.Time
	phase      Phase

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks,
// usually one stats window.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 20
	}
	return &PerfCollector{
		samples: make([]perfSample, windowSize),
		phase:   noPhase,
		now:     time.Now,
	}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = perfSample{}
	p.phase = noPhase
}

// StartPhase ends the running phase, if any, and starts timing phase.
func (p *PerfCollector) StartPhase(phase Phase) {
	now := p.now()
	p.endPhase(now)
	p.phaseStart = now
	p.phase = phase
}

func (p *PerfCollector) endPhase(now time.Time) {
	if p.phase >= 0 && p.phase < NumPhases {
		p.cur.phases[p.phase] += now.Sub(p.phaseStart)
	}
	p.phase = noPhase
}

// EndTick finishes the tick and records it with the number of actors the
// tick processed.
func (p *PerfCollector) EndTick(actors int) {
	now := p.now()
	p.endPhase(now)
	p.cur.tick = now.Sub(p.tickStart)
	p.cur.actors = actors

	p.samples[p.next] = p.cur
	p.next = (p.next + 1) % len(p.samples)
	if p.filled < len(p.samples) {
		p.filled++
	}
}

// PerfStats summarizes tick timing over the collector's window.
type PerfStats struct {
	Ticks int

	AvgTick time.Duration
	P95Tick time.Duration
	MaxTick time.Duration

	PhaseAvg [NumPhases]time.Duration
	PhasePct [NumPhases]float64 // Share of average tick time

	AvgActors      float64
	PerActor       time.Duration // Average tick time per processed actor
	TicksPerSecond float64
}

// Stats computes statistics over the samples currently in the window.
func (p *PerfCollector) Stats() PerfStats {
	var s PerfStats
	s.Ticks = p.filled
	if p.filled == 0 {
		return s
	}

	ticks := make([]float64, p.filled)
	var phaseSum [NumPhases]time.Duration
	var total time.Duration
	var actors int
	for i, sample := range p.samples[:p.filled] {
		ticks[i] = float64(sample.tick)
		total += sample.tick
		actors += sample.actors
		for ph, d := range sample.phases {
			phaseSum[ph] += d
		}
	}
	sort.Float64s(ticks)

	n := time.Duration(p.filled)
	s.AvgTick = total / n
	s.P95Tick = time.Duration(stat.Quantile(0.95, stat.Empirical, ticks, nil))
	s.MaxTick = time.Duration(ticks[len(ticks)-1])
	s.AvgActors = float64(actors) / float64(p.filled)

	for ph := range phaseSum {
		s.PhaseAvg[ph] = phaseSum[ph] / n
		if s.AvgTick > 0 {
			s.PhasePct[ph] = float64(s.PhaseAvg[ph]) / float64(s.AvgTick) * 100
		}
	}
	if s.AvgTick > 0 {
		s.TicksPerSecond = float64(time.Second) / float64(s.AvgTick)
	}
	if s.AvgActors > 0 {
		s.PerActor = time.Duration(float64(s.AvgTick) / s.AvgActors)
	}
	return s
}

// LogStats logs performance statistics, skipping phases under 0.1%.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTick.Microseconds(),
		"p95_tick_us", s.P95Tick.Microseconds(),
		"max_tick_us", s.MaxTick.Microseconds(),
		"per_actor_ns", s.PerActor.Nanoseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	for ph := Phase(0); ph < NumPhases; ph++ {
		if pct := s.PhasePct[ph]; pct > 0.1 {
			attrs = append(attrs, ph.String()+"_pct", float64(int(pct*10))/10)
		}
	}
	slog.Info("perf", attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd      int32   `csv:"window_end"`
	AvgTickUS      int64   `csv:"avg_tick_us"`
	P95TickUS      int64   `csv:"p95_tick_us"`
	MaxTickUS      int64   `csv:"max_tick_us"`
	PerActorNS     int64   `csv:"per_actor_ns"`
	TicksPerSec    float64 `csv:"ticks_per_sec"`
	FeedPct        float64 `csv:"feed_pct"`
	DecayPct       float64 `csv:"decay_pct"`
	EffectsPct     float64 `csv:"effects_pct"`
	TelemetryPct   float64 `csv:"telemetry_pct"`
	PersistencePct float64 `csv:"persistence_pct"`
}

// ToCSV flattens the stats into one perf.csv row.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:      windowEnd,
		AvgTickUS:      s.AvgTick.Microseconds(),
		P95TickUS:      s.P95Tick.Microseconds(),
		MaxTickUS:      s.MaxTick.Microseconds(),
		PerActorNS:     s.PerActor.Nanoseconds(),
		TicksPerSec:    s.TicksPerSecond,
		FeedPct:        s.PhasePct[PhaseFeed],
		DecayPct:       s.PhasePct[PhaseDecay],
		EffectsPct:     s.PhasePct[PhaseEffects],
		TelemetryPct:   s.PhasePct[PhaseTelemetry],
		PersistencePct: s.PhasePct[PhasePersistence],
	}
}
