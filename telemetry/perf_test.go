package telemetry

import (
	"testing"
	"time"
)

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time         { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCollector(window int) (*PerfCollector, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(window)
	pc.now = clock.now
	return pc, clock
}

// runTick records one tick with the given phase durations.
func runTick(pc *PerfCollector, clock *fakeClock, actors int, phases map[Phase]time.Duration) {
	pc.StartTick()
	for ph := Phase(0); ph < NumPhases; ph++ {
		d, ok := phases[ph]
		if !ok {
			continue
		}
		pc.StartPhase(ph)
		clock.advance(d)
	}
	pc.EndTick(actors)
}

func TestPerfCollectorPhaseBreakdown(t *testing.T) {
	pc, clock := newTestCollector(10)

	for i := 0; i < 4; i++ {
		runTick(pc, clock, 8, map[Phase]time.Duration{
			PhaseFeed:    100 * time.Microsecond,
			PhaseEffects: 300 * time.Microsecond,
		})
	}

	s := pc.Stats()
	if s.Ticks != 4 {
		t.Errorf("ticks = %d, want 4", s.Ticks)
	}
	if s.AvgTick != 400*time.Microsecond {
		t.Errorf("avg tick = %v, want 400µs", s.AvgTick)
	}
	if s.PhaseAvg[PhaseFeed] != 100*time.Microsecond {
		t.Errorf("feed avg = %v, want 100µs", s.PhaseAvg[PhaseFeed])
	}
	if s.PhasePct[PhaseEffects] != 75 {
		t.Errorf("effects pct = %v, want 75", s.PhasePct[PhaseEffects])
	}
	if s.PhaseAvg[PhaseDecay] != 0 {
		t.Errorf("decay avg = %v, want 0 for a skipped phase", s.PhaseAvg[PhaseDecay])
	}
	if s.PerActor != 50*time.Microsecond {
		t.Errorf("per actor = %v, want 50µs", s.PerActor)
	}
	if s.TicksPerSecond != 2500 {
		t.Errorf("ticks/sec = %v, want 2500", s.TicksPerSecond)
	}
}

func TestPerfCollectorRollingWindow(t *testing.T) {
	pc, clock := newTestCollector(5)

	// Five slow ticks are pushed out by five fast ones.
	for i := 0; i < 5; i++ {
		runTick(pc, clock, 1, map[Phase]time.Duration{PhaseFeed: time.Millisecond})
	}
	for i := 0; i < 5; i++ {
		runTick(pc, clock, 1, map[Phase]time.Duration{PhaseFeed: 10 * time.Microsecond})
	}

	s := pc.Stats()
	if s.Ticks != 5 {
		t.Errorf("ticks = %d, want window size 5", s.Ticks)
	}
	if s.MaxTick != 10*time.Microsecond {
		t.Errorf("max tick = %v, want 10µs once slow ticks rolled out", s.MaxTick)
	}
}

func TestPerfCollectorTail(t *testing.T) {
	pc, clock := newTestCollector(20)

	for i := 1; i <= 20; i++ {
		runTick(pc, clock, 1, map[Phase]time.Duration{PhaseDecay: time.Duration(i) * time.Microsecond})
	}

	s := pc.Stats()
	if s.P95Tick != 19*time.Microsecond {
		t.Errorf("p95 = %v, want 19µs", s.P95Tick)
	}
	if s.MaxTick != 20*time.Microsecond {
		t.Errorf("max = %v, want 20µs", s.MaxTick)
	}
}

func TestPerfCollectorEmpty(t *testing.T) {
	pc, _ := newTestCollector(10)

	s := pc.Stats()
	if s.Ticks != 0 || s.AvgTick != 0 || s.TicksPerSecond != 0 || s.PerActor != 0 {
		t.Errorf("empty stats = %+v, want zero", s)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseFeed, "feed"},
		{PhasePersistence, "persistence"},
		{NumPhases, "unknown"},
		{Phase(-1), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(tt.phase), got, tt.want)
		}
	}
}

func TestPerfStatsToCSV(t *testing.T) {
	s := PerfStats{AvgTick: 250 * time.Microsecond, PerActor: 1500 * time.Nanosecond}
	s.PhasePct[PhaseFeed] = 40
	s.PhasePct[PhaseEffects] = 60

	row := s.ToCSV(1200)
	if row.WindowEnd != 1200 || row.AvgTickUS != 250 || row.PerActorNS != 1500 {
		t.Errorf("row = %+v", row)
	}
	if row.FeedPct != 40 || row.EffectsPct != 60 || row.DecayPct != 0 {
		t.Errorf("phase columns = %v/%v/%v", row.FeedPct, row.EffectsPct, row.DecayPct)
	}
}
