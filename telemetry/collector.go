package telemetry

import (
	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/fluid"
)

// Collector accumulates tick events within time windows and produces
// WindowStats.
type Collector struct {
	windowDurationSec   float64
	windowDurationTicks int32
	dt                  float32 // simulated seconds per tick

	// Current window tracking
	windowStartTick int32

	// Event counters for current window
	recoveries int
	collisions int
	outOfGrid  int

	// Scratch buffers reused across flushes
	densities []float64
	speeds    []float64
	speedsSq  []float64
	masses    []float64
	xs, ys    []float64
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: simulated seconds per tick (used for tick-to-time conversion)
func NewCollector(windowDurationSec float64, dt float32) *Collector {
	ticksPerWindow := int32(windowDurationSec / float64(dt))
	if ticksPerWindow < 1 {
		ticksPerWindow = 1
	}

	return &Collector{
		windowDurationSec:   windowDurationSec,
		windowDurationTicks: ticksPerWindow,
		dt:                  dt,
	}
}

// RecordTick adds one tick's solver events to the current window.
func (c *Collector) RecordTick(stats fluid.TickStats) {
	c.recoveries += stats.Recoveries
	c.collisions += stats.Collisions
	c.outOfGrid += stats.OutOfGrid
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Flush produces a WindowStats from the window's counters and the particle
// state at currentTick, then resets counters for the next window.
func (c *Collector) Flush(currentTick int32, particles []components.Particle) WindowStats {
	c.sample(particles)

	density := ComputeDistribution(c.densities)
	speed := ComputeDistribution(c.speeds)
	cx, cy := Centroid(c.masses, c.xs, c.ys)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * float64(c.dt),

		Particles: len(particles),

		Recoveries: c.recoveries,
		Collisions: c.collisions,
		OutOfGrid:  c.outOfGrid,

		DensityMean: density.Mean,
		DensityStd:  density.Std,
		DensityP10:  density.P10,
		DensityP50:  density.P50,
		DensityP90:  density.P90,
		DensityMax:  density.Max,

		SpeedMean: speed.Mean,
		SpeedP50:  speed.P50,
		SpeedP90:  speed.P90,
		SpeedMax:  speed.Max,

		KineticEnergy: KineticEnergy(c.masses, c.speedsSq),
		CentroidX:     cx,
		CentroidY:     cy,
	}

	// Reset for next window
	c.windowStartTick = currentTick
	c.recoveries = 0
	c.collisions = 0
	c.outOfGrid = 0

	return stats
}

// sample copies particle state into the float64 scratch buffers.
func (c *Collector) sample(particles []components.Particle) {
	n := len(particles)
	c.densities = resize(c.densities, n)
	c.speeds = resize(c.speeds, n)
	c.speedsSq = resize(c.speedsSq, n)
	c.masses = resize(c.masses, n)
	c.xs = resize(c.xs, n)
	c.ys = resize(c.ys, n)

	for i := range particles {
		p := &particles[i]
		speedSq := float64(p.Velocity.LengthSq())
		c.densities[i] = float64(p.Density)
		c.speedsSq[i] = speedSq
		c.speeds[i] = float64(p.Velocity.Length())
		c.masses[i] = float64(p.Mass)
		c.xs[i] = float64(p.Position.X)
		c.ys[i] = float64(p.Position.Y)
	}
}

func resize(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
