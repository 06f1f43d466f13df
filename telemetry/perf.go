package telemetry

import (
	"log/slog"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/fluid/systems"
)

// Phase names for the simulation step. The solver stages report their own
// IDs through the phase hook; PhaseTelemetry covers window bookkeeping.
const (
	PhasePredict   = systems.StagePredict
	PhaseIndex     = systems.StageIndex
	PhaseDensity   = systems.StageDensity
	PhaseForces    = systems.StageForces
	PhaseViscosity = systems.StageViscosity
	PhaseIntegrate = systems.StageIntegrate
	PhaseTelemetry = "telemetry"
)

// phaseOrder is the column and log order. A sample's phase array is indexed
// the same way.
var phaseOrder = [...]string{
	PhasePredict, PhaseIndex, PhaseDensity,
	PhaseForces, PhaseViscosity, PhaseIntegrate,
	PhaseTelemetry,
}

const numPhases = len(phaseOrder)

func phaseSlot(phase string) int {
	for i, name := range phaseOrder {
		if name == phase {
			return i
		}
	}
	return -1
}

// tickSample is the timing of one tick. ran has bit i set when phaseOrder[i]
// was started during the tick.
type tickSample struct {
	total  time.Duration
	phases [numPhases]time.Duration
	ran    uint16
}

// PerfCollector keeps per-phase timings for the last windowSize ticks in a
// ring buffer. Phases not listed in phaseOrder are folded into the tick total
// only.
type PerfCollector struct {
	ring  []tickSample
	next  int
	count int

	cur        tickSample
	tickStart  time.Time
	phaseStart time.Time
	slot       int // running phase, -1 between phases

	lastFrame     time.Time
	frameDuration time.Duration

	now func() time.Time
}

// NewPerfCollector creates a collector averaging over windowSize ticks. Values
// below one fall back to 60.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{ring: make([]tickSample, windowSize), slot: -1, now: time.Now}
}

// StartTick begins timing a new simulation tick.
func (p *PerfCollector) StartTick() {
	p.tickStart = p.now()
	p.cur = tickSample{}
	p.slot = -1
}

// StartPhase closes the running phase and opens phase. It has the signature
// fluid.WithPhaseHook expects.
func (p *PerfCollector) StartPhase(phase string) {
	now := p.now()
	p.closePhase(now)
	p.phaseStart = now
	p.slot = phaseSlot(phase)
	if p.slot >= 0 {
		p.cur.ran |= 1 << p.slot
	}
}

func (p *PerfCollector) closePhase(now time.Time) {
	if p.slot >= 0 {
		p.cur.phases[p.slot] += now.Sub(p.phaseStart)
	}
	p.slot = -1
}

// EndTick closes the running phase and stores the tick in the ring.
func (p *PerfCollector) EndTick() {
	now := p.now()
	p.closePhase(now)
	p.cur.total = now.Sub(p.tickStart)

	p.ring[p.next] = p.cur
	p.next = (p.next + 1) % len(p.ring)
	if p.count < len(p.ring) {
		p.count++
	}
}

// RecordFrame marks the end of a rendered frame.
func (p *PerfCollector) RecordFrame() {
	now := p.now()
	if !p.lastFrame.IsZero() {
		p.frameDuration = now.Sub(p.lastFrame)
	}
	p.lastFrame = now
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	// Tick timing
	AvgTickDuration time.Duration
	MinTickDuration time.Duration
	MaxTickDuration time.Duration
	P95TickDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration

	// Phase percentages of total tick time
	PhasePct map[string]float64

	// Throughput
	TicksPerSecond float64

	// Frame timing (graphics mode)
	FrameDuration time.Duration
	FPS           float64
}

// Stats aggregates the ticks currently in the ring. PhaseAvg and PhasePct
// only hold phases that ran at least once in the window.
func (p *PerfCollector) Stats() PerfStats {
	stats := PerfStats{
		PhaseAvg:      make(map[string]time.Duration, numPhases),
		PhasePct:      make(map[string]float64, numPhases),
		FrameDuration: p.frameDuration,
	}
	if p.frameDuration > 0 {
		stats.FPS = float64(time.Second) / float64(p.frameDuration)
	}
	if p.count == 0 {
		return stats
	}

	totals := make([]float64, p.count)
	var sums [numPhases]time.Duration
	var ran uint16
	for i, s := range p.ring[:p.count] {
		totals[i] = float64(s.total)
		for j, d := range s.phases {
			sums[j] += d
		}
		ran |= s.ran
	}
	sort.Float64s(totals)

	avg := time.Duration(stat.Mean(totals, nil))
	stats.AvgTickDuration = avg
	stats.MinTickDuration = time.Duration(totals[0])
	stats.MaxTickDuration = time.Duration(totals[len(totals)-1])
	stats.P95TickDuration = time.Duration(stat.Quantile(0.95, stat.Empirical, totals, nil))
	if avg > 0 {
		stats.TicksPerSecond = float64(time.Second) / float64(avg)
	}

	for i, name := range phaseOrder {
		if ran&(1<<i) == 0 {
			continue
		}
		phaseAvg := sums[i] / time.Duration(p.count)
		stats.PhaseAvg[name] = phaseAvg
		if avg > 0 {
			stats.PhasePct[name] = float64(phaseAvg) / float64(avg) * 100
		}
	}
	return stats
}

// LogStats logs performance statistics.
func (s PerfStats) LogStats() {
	attrs := []any{
		"avg_tick_us", s.AvgTickDuration.Microseconds(),
		"p95_tick_us", s.P95TickDuration.Microseconds(),
		"max_tick_us", s.MaxTickDuration.Microseconds(),
		"ticks_per_sec", int(s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, "fps", int(s.FPS))
	}

	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok && pct > 0.1 {
			attrs = append(attrs, phase+"_pct", int(pct*10)/10.0)
		}
	}

	slog.Info("perf", attrs...)
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_tick_us", s.AvgTickDuration.Microseconds()),
		slog.Int64("min_tick_us", s.MinTickDuration.Microseconds()),
		slog.Int64("max_tick_us", s.MaxTickDuration.Microseconds()),
		slog.Int64("p95_tick_us", s.P95TickDuration.Microseconds()),
		slog.Float64("ticks_per_sec", s.TicksPerSecond),
	}
	if s.FPS > 0 {
		attrs = append(attrs, slog.Float64("fps", s.FPS))
	}
	for _, phase := range phaseOrder {
		if pct, ok := s.PhasePct[phase]; ok {
			attrs = append(attrs, slog.Float64(phase+"_pct", pct))
		}
	}
	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd    int32   `csv:"window_end"`
	AvgTickUS    int64   `csv:"avg_tick_us"`
	MinTickUS    int64   `csv:"min_tick_us"`
	MaxTickUS    int64   `csv:"max_tick_us"`
	P95TickUS    int64   `csv:"p95_tick_us"`
	TicksPerSec  float64 `csv:"ticks_per_sec"`
	FPS          float64 `csv:"fps"`
	PredictPct   float64 `csv:"predict_pct"`
	IndexPct     float64 `csv:"index_pct"`
	DensityPct   float64 `csv:"density_pct"`
	ForcesPct    float64 `csv:"forces_pct"`
	ViscosityPct float64 `csv:"viscosity_pct"`
	IntegratePct float64 `csv:"integrate_pct"`
	TelemetryPct float64 `csv:"telemetry_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd int32) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:    windowEnd,
		AvgTickUS:    s.AvgTickDuration.Microseconds(),
		MinTickUS:    s.MinTickDuration.Microseconds(),
		MaxTickUS:    s.MaxTickDuration.Microseconds(),
		P95TickUS:    s.P95TickDuration.Microseconds(),
		TicksPerSec:  s.TicksPerSecond,
		FPS:          s.FPS,
		PredictPct:   s.PhasePct[PhasePredict],
		IndexPct:     s.PhasePct[PhaseIndex],
		DensityPct:   s.PhasePct[PhaseDensity],
		ForcesPct:    s.PhasePct[PhaseForces],
		ViscosityPct: s.PhasePct[PhaseViscosity],
		IntegratePct: s.PhasePct[PhaseIntegrate],
		TelemetryPct: s.PhasePct[PhaseTelemetry],
	}
}
