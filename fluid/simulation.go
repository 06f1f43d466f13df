// Package fluid runs the per-tick SPH pipeline over a fixed set of particles.
package fluid

import (
	"fmt"
	"log/slog"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

// recoveryWarnFraction is the share of recovered particles per tick above
// which a warning is logged.
const recoveryWarnFraction = 0.01

// TickStats summarises one Step.
type TickStats struct {
	Recoveries int // particles whose velocity was reverted to LastVelocity
	Collisions int // particles that touched the bounds
	OutOfGrid  int // particles whose predicted position fell outside the grid
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithWorkers sets the worker count. Zero or less uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(s *Simulation) { s.workers = n }
}

// WithParallelThreshold sets the particle count below which stages run inline.
func WithParallelThreshold(n int) Option {
	return func(s *Simulation) { s.threshold = n }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithPhaseHook registers fn to be called with the stage ID at the start of
// every stage.
func WithPhaseHook(fn func(phase string)) Option {
	return func(s *Simulation) { s.phaseHook = fn }
}

// Simulation owns the per-tick scratch arrays and the worker pool. All aux
// arrays are addressed by Particle.Index.
type Simulation struct {
	params  systems.Params
	kernels systems.Kernels
	grid    *systems.Grid
	logger  *slog.Logger

	workers   int
	threshold int
	phaseHook func(phase string)
	pool      *workerPool

	n          int
	indexes    components.IndexSet
	predicted  []components.Vec2
	densities  []float32
	cells      []systems.CellIndex // NeighborCount per particle
	velocities []components.Vec2   // post-force snapshot for viscosity
}

// New creates a simulation for n particles.
func New(params systems.Params, n int, opts ...Option) (*Simulation, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, fmt.Errorf("particle count %d: %w", n, systems.ErrInvalidParams)
	}

	s := &Simulation{
		params:  params,
		kernels: systems.NewKernels(params.SmoothingRadius),
		grid:    systems.NewGrid(params.BoundsHalfExtent, params.SmoothingRadius),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pool = newWorkerPool(s.workers, s.threshold)
	s.resize(n)

	return s, nil
}

// resize reallocates the aux arrays for n particles.
func (s *Simulation) resize(n int) {
	s.n = n
	s.predicted = make([]components.Vec2, n)
	s.densities = make([]float32, n)
	s.cells = make([]systems.CellIndex, n*systems.NeighborCount)
	s.velocities = make([]components.Vec2, n)
}

// Close stops the worker pool.
func (s *Simulation) Close() {
	s.pool.stop()
}

// Params returns the parameters the simulation was created with.
func (s *Simulation) Params() systems.Params {
	return s.params
}

// Densities returns the densities of the last tick, indexed by particle index.
// The slice is reused by the next Step.
func (s *Simulation) Densities() []float32 {
	return s.densities
}

// Grid returns the grid built in the last tick.
func (s *Simulation) Grid() *systems.Grid {
	return s.grid
}

// SampleDensity estimates the density at point from the last tick's
// predicted positions.
func (s *Simulation) SampleDensity(point components.Vec2) float32 {
	return systems.SampleDensity(point, s.predicted, s.grid, s.kernels, s.params)
}

func (s *Simulation) neighborCells(idx int) []systems.CellIndex {
	base := idx * systems.NeighborCount
	return s.cells[base : base+systems.NeighborCount]
}

func (s *Simulation) phase(name string) {
	if s.phaseHook != nil {
		s.phaseHook(name)
	}
}

// Step advances particles by one tick. dt is the frame delta; it is scaled by
// TimeScale. pointer may be nil. Particle indexes must be a dense permutation
// of 0..len(particles); otherwise Step returns an error wrapping
// components.ErrIndexGap or components.ErrIndexDuplicate and leaves particles
// untouched.
func (s *Simulation) Step(particles []components.Particle, dt float32, pointer *systems.Pointer) (TickStats, error) {
	if err := s.indexes.Check(particles); err != nil {
		return TickStats{}, fmt.Errorf("step: %w", err)
	}
	if len(particles) != s.n {
		s.resize(len(particles))
	}
	dt *= s.params.TimeScale
	n := len(particles)

	s.pool.resetCounters()
	var stats TickStats

	s.phase(systems.StagePredict)
	s.pool.run(n, func(start, end, _ int) {
		s.predict(particles[start:end], dt)
	})

	s.phase(systems.StageIndex)
	s.pool.run(n, func(start, end, _ int) {
		s.index(particles[start:end])
	})
	stats.OutOfGrid = s.grid.Build(s.predicted)

	s.phase(systems.StageDensity)
	s.pool.run(n, func(start, end, _ int) {
		s.density(particles[start:end])
	})

	s.phase(systems.StageForces)
	s.pool.run(n, func(start, end, _ int) {
		s.forces(particles[start:end], dt, pointer)
	})

	s.phase(systems.StageViscosity)
	if s.params.UseViscosity {
		s.pool.run(n, func(start, end, _ int) {
			s.snapshotVelocities(particles[start:end])
		})
		s.pool.run(n, func(start, end, _ int) {
			s.viscosity(particles[start:end], dt)
		})
	}

	s.phase(systems.StageIntegrate)
	s.pool.run(n, func(start, end, worker int) {
		s.integrate(particles[start:end], dt, &s.pool.counters[worker])
	})

	stats.Recoveries, stats.Collisions = s.pool.sumCounters()
	if n > 0 && float64(stats.Recoveries) > recoveryWarnFraction*float64(n) {
		s.logger.Warn("velocity recoveries",
			"recovered", stats.Recoveries,
			"particles", n,
		)
	}
	return stats, nil
}

func (s *Simulation) predict(particles []components.Particle, dt float32) {
	gravity := s.params.Gravity.Scale(dt)
	for i := range particles {
		p := &particles[i]
		p.Velocity = p.Velocity.Add(gravity)
		p.PredictedPosition = p.Position.Add(p.Velocity.Div(s.params.PredictionRate))
		s.predicted[p.Index] = p.PredictedPosition
	}
}

func (s *Simulation) index(particles []components.Particle) {
	for i := range particles {
		idx := particles[i].Index
		cells := s.grid.NeighborIndexes(s.predicted[idx])
		copy(s.neighborCells(idx), cells[:])
	}
}

func (s *Simulation) density(particles []components.Particle) {
	for i := range particles {
		idx := particles[i].Index
		s.densities[idx] = systems.Density(idx, s.predicted, s.grid, s.neighborCells(idx), s.kernels, s.params)
	}
}

func (s *Simulation) forces(particles []components.Particle, dt float32, pointer *systems.Pointer) {
	for i := range particles {
		p := &particles[i]
		idx := p.Index

		var pressure components.Vec2
		if s.params.UsePressure {
			pressure = systems.PressureForce(idx, s.neighborCells(idx), s.predicted, s.grid, s.densities, s.kernels, s.params)
		}
		drag := systems.DragForce(p.Velocity, p.Area, s.params)

		var interaction components.Vec2
		if pointer != nil {
			interaction = systems.InteractionForce(s.predicted[idx], *pointer, p.Velocity, s.params)
		}

		force := pressure.Scale(s.params.PressureForceModifier).Sub(drag).Add(interaction)
		p.Velocity = p.Velocity.Add(force.Div(p.Mass).Scale(dt))
	}
}

func (s *Simulation) snapshotVelocities(particles []components.Particle) {
	for i := range particles {
		s.velocities[particles[i].Index] = particles[i].Velocity
	}
}

func (s *Simulation) viscosity(particles []components.Particle, dt float32) {
	for i := range particles {
		p := &particles[i]
		idx := p.Index
		force := systems.ViscosityForce(s.predicted[idx], s.velocities[idx], s.predicted, s.neighborCells(idx), s.grid, s.velocities, s.kernels, s.params)
		p.Velocity = p.Velocity.Add(force.Div(p.Mass).Scale(dt))
	}
}

func (s *Simulation) integrate(particles []components.Particle, dt float32, counters *workerCounters) {
	for i := range particles {
		p := &particles[i]

		if !p.Velocity.IsFinite() {
			s.logger.Debug("reverting non-finite velocity",
				"index", p.Index,
				"velocity", p.Velocity,
			)
			p.Velocity = p.LastVelocity
			counters.recoveries++
		} else {
			p.LastVelocity = p.Velocity
		}

		pos := p.Position.Add(p.Velocity.Scale(dt))
		half := systems.HalfBounds(s.params, p.Radius)
		var collided bool
		p.Position, p.Velocity, collided = systems.ResolveCollisions(pos, p.Velocity, half, s.params.CollisionDamping)
		if collided {
			counters.collisions++
		}

		p.Density = s.densities[p.Index]
	}
}
