package fluid

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/pthm-cable/fluid/components"
	"github.com/pthm-cable/fluid/systems"
)

const testDT = float32(1.0 / 60.0)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSim(t testing.TB, p systems.Params, n int, opts ...Option) *Simulation {
	t.Helper()
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	sim, err := New(p, n, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(sim.Close)
	return sim
}

func step(t testing.TB, sim *Simulation, particles []components.Particle, pointer *systems.Pointer) TickStats {
	t.Helper()
	stats, err := sim.Step(particles, testDT, pointer)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	return stats
}

// blockParticles lays out a cols x rows block centred on the origin.
func blockParticles(cols, rows int, spacing float32) []components.Particle {
	particles := make([]components.Particle, 0, cols*rows)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			p := components.NewParticle(2, components.Vec2{X: 1, Y: 0}, 0.03, len(particles))
			p.Position = components.Vec2{
				X: (float32(x) - float32(cols)/2) * spacing,
				Y: (float32(y) - float32(rows)/2) * spacing,
			}
			particles = append(particles, p)
		}
	}
	return particles
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := systems.DefaultParams()
	p.SmoothingRadius = 0
	if _, err := New(p, 10); err == nil {
		t.Error("expected error for zero smoothing radius")
	}
	if _, err := New(systems.DefaultParams(), -1); err == nil {
		t.Error("expected error for negative particle count")
	}
}

func TestCompressedPairAcceleratesApart(t *testing.T) {
	p := systems.DefaultParams()
	p.Gravity = components.Vec2{}
	p.TargetDensity = 0.01
	p.UseViscosity = false

	h := p.SmoothingRadius
	particles := []components.Particle{
		components.NewParticle(2, components.Vec2{}, 0.03, 0),
		components.NewParticle(2, components.Vec2{}, 0.03, 1),
	}
	particles[0].Position = components.Vec2{X: -h / 4}
	particles[1].Position = components.Vec2{X: h / 4}

	sim := newTestSim(t, p, len(particles))
	step(t, sim, particles, nil)

	if particles[0].Velocity.X >= 0 {
		t.Errorf("left velocity.X = %v, want negative", particles[0].Velocity.X)
	}
	if particles[1].Velocity.X <= 0 {
		t.Errorf("right velocity.X = %v, want positive", particles[1].Velocity.X)
	}
	gap := particles[1].Position.X - particles[0].Position.X
	if gap <= h/2 {
		t.Errorf("gap = %v, want > %v", gap, h/2)
	}
	for i, pt := range particles {
		if pt.Density <= 0 {
			t.Errorf("particle %d density = %v, want > 0", i, pt.Density)
		}
	}
}

func TestLoneParticleOutsideBoxIsClamped(t *testing.T) {
	p := systems.DefaultParams()
	p.Gravity = components.Vec2{}
	p.DragCoefficient = 0

	pt := components.NewParticle(2, components.Vec2{X: 4, Y: 0}, 0.03, 0)
	half := systems.HalfBounds(p, pt.Radius)
	pt.Position = components.Vec2{X: half.X + 10, Y: 0}
	particles := []components.Particle{pt}

	sim := newTestSim(t, p, 1)
	stats := step(t, sim, particles, nil)

	got := particles[0]
	if got.Position.X != half.X {
		t.Errorf("position.X = %v, want %v", got.Position.X, half.X)
	}
	if math.Abs(float64(got.Velocity.X+2)) > 1e-5 {
		t.Errorf("velocity.X = %v, want -2", got.Velocity.X)
	}
	if stats.Collisions != 1 {
		t.Errorf("collisions = %d, want 1", stats.Collisions)
	}
}

func TestOutOfGridCounted(t *testing.T) {
	p := systems.DefaultParams()
	particles := []components.Particle{
		components.NewParticle(2, components.Vec2{}, 0.03, 0),
		components.NewParticle(2, components.Vec2{}, 0.03, 1),
	}
	particles[1].Position = components.Vec2{X: 0, Y: p.BoundsHalfExtent.Y * 3}

	sim := newTestSim(t, p, len(particles))
	stats := step(t, sim, particles, nil)

	if stats.OutOfGrid != 1 {
		t.Errorf("out of grid = %d, want 1", stats.OutOfGrid)
	}
	if particles[1].Density != 0 {
		t.Errorf("out of grid density = %v, want 0", particles[1].Density)
	}
}

func TestNonFiniteVelocityReverts(t *testing.T) {
	p := systems.DefaultParams()
	p.Gravity = components.Vec2{}

	pt := components.NewParticle(2, components.Vec2{X: 1, Y: 0}, 0.03, 0)
	pt.Velocity = components.Vec2{X: float32(math.NaN()), Y: 0}
	particles := []components.Particle{pt}

	sim := newTestSim(t, p, 1)
	stats := step(t, sim, particles, nil)

	got := particles[0]
	if stats.Recoveries != 1 {
		t.Errorf("recoveries = %d, want 1", stats.Recoveries)
	}
	if got.Velocity != (components.Vec2{X: 1, Y: 0}) {
		t.Errorf("velocity = %v, want LastVelocity (1,0)", got.Velocity)
	}
	if !got.Position.IsFinite() {
		t.Errorf("position = %v, want finite", got.Position)
	}
	if got.LastVelocity != (components.Vec2{X: 1, Y: 0}) {
		t.Errorf("LastVelocity = %v, want (1,0)", got.LastVelocity)
	}
}

func TestStepKeepsStateFinite(t *testing.T) {
	particles := blockParticles(20, 20, 6)
	sim := newTestSim(t, systems.DefaultParams(), len(particles))

	pointer := &systems.Pointer{Position: components.Vec2{X: 30, Y: 30}, Strength: 1}
	for tick := 0; tick < 120; tick++ {
		step(t, sim, particles, pointer)
	}

	for _, pt := range particles {
		if !pt.Position.IsFinite() || !pt.Velocity.IsFinite() {
			t.Fatalf("particle %d non-finite: pos %v vel %v", pt.Index, pt.Position, pt.Velocity)
		}
		if pt.Density < 0 {
			t.Fatalf("particle %d density = %v, want >= 0", pt.Index, pt.Density)
		}
		half := systems.HalfBounds(sim.Params(), pt.Radius)
		if math.Abs(float64(pt.Position.X)) > float64(half.X) || math.Abs(float64(pt.Position.Y)) > float64(half.Y) {
			t.Fatalf("particle %d escaped bounds: %v", pt.Index, pt.Position)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	p := systems.DefaultParams()
	serial := blockParticles(30, 20, 5)
	parallel := blockParticles(30, 20, 5)

	serialSim := newTestSim(t, p, len(serial), WithWorkers(1))
	parallelSim := newTestSim(t, p, len(parallel), WithWorkers(4), WithParallelThreshold(1))

	pointer := &systems.Pointer{Position: components.Vec2{X: -20, Y: 10}, Strength: -1}
	for tick := 0; tick < 30; tick++ {
		a := step(t, serialSim, serial, pointer)
		b := step(t, parallelSim, parallel, pointer)
		if a != b {
			t.Fatalf("tick %d stats differ: %+v vs %+v", tick, a, b)
		}
	}

	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("particle %d differs:\nserial   %+v\nparallel %+v", i, serial[i], parallel[i])
		}
	}
}

func TestPermutedSliceMatchesOrdered(t *testing.T) {
	p := systems.DefaultParams()
	ordered := blockParticles(10, 10, 5)
	permuted := make([]components.Particle, len(ordered))
	for i := range ordered {
		permuted[len(ordered)-1-i] = ordered[i]
	}

	simA := newTestSim(t, p, len(ordered))
	simB := newTestSim(t, p, len(permuted))
	for tick := 0; tick < 10; tick++ {
		step(t, simA, ordered, nil)
		step(t, simB, permuted, nil)
	}

	for _, pt := range permuted {
		if pt != ordered[pt.Index] {
			t.Fatalf("particle %d differs:\nordered  %+v\npermuted %+v", pt.Index, ordered[pt.Index], pt)
		}
	}
}

func TestPhaseHookOrder(t *testing.T) {
	var got []string
	particles := blockParticles(3, 3, 5)
	sim := newTestSim(t, systems.DefaultParams(), len(particles), WithPhaseHook(func(phase string) {
		got = append(got, phase)
	}))

	step(t, sim, particles, nil)

	want := systems.NewStageRegistry().IDs()
	if len(got) != len(want) {
		t.Fatalf("phases = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("phase %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestStepResizesForNewCount(t *testing.T) {
	sim := newTestSim(t, systems.DefaultParams(), 4)
	particles := blockParticles(4, 4, 5)

	step(t, sim, particles, nil)

	if len(sim.Densities()) != len(particles) {
		t.Errorf("densities len = %d, want %d", len(sim.Densities()), len(particles))
	}
	if d := sim.SampleDensity(particles[0].PredictedPosition); d <= 0 {
		t.Errorf("SampleDensity at a particle = %v, want > 0", d)
	}
}

func TestDisabledForces(t *testing.T) {
	p := systems.DefaultParams()
	p.Gravity = components.Vec2{}
	p.DragCoefficient = 0
	p.UsePressure = false
	p.UseViscosity = false

	particles := blockParticles(4, 4, 2)
	before := make([]components.Vec2, len(particles))
	for i := range particles {
		before[i] = particles[i].Velocity
	}

	sim := newTestSim(t, p, len(particles))
	step(t, sim, particles, nil)

	for i := range particles {
		if particles[i].Velocity != before[i] {
			t.Errorf("particle %d velocity changed with forces off: %v -> %v", i, before[i], particles[i].Velocity)
		}
	}
}

func TestStepRejectsBadIndexes(t *testing.T) {
	tests := []struct {
		name    string
		indexes []int
		wantErr error
	}{
		{"out of range", []int{5}, components.ErrIndexGap},
		{"duplicate", []int{0, 0}, components.ErrIndexDuplicate},
		{"negative", []int{0, -1}, components.ErrIndexGap},
	}

	p := systems.DefaultParams()
	p.Gravity = components.Vec2{}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			particles := make([]components.Particle, len(tc.indexes))
			for i, idx := range tc.indexes {
				particles[i] = components.NewParticle(2, components.Vec2{}, 0.03, idx)
				particles[i].Position = components.Vec2{X: float32(i)*6 - 3}
			}
			before := append([]components.Particle(nil), particles...)

			sim := newTestSim(t, p, len(particles))
			stats, err := sim.Step(particles, testDT, nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Step error = %v, want %v", err, tc.wantErr)
			}
			if stats != (TickStats{}) {
				t.Errorf("stats = %+v, want zero", stats)
			}
			for i := range particles {
				if particles[i] != before[i] {
					t.Errorf("particle %d changed on a rejected tick: %+v", i, particles[i])
				}
			}
		})
	}
}

func TestStepRechecksAfterFix(t *testing.T) {
	particles := blockParticles(3, 1, 5)
	sim := newTestSim(t, systems.DefaultParams(), len(particles))

	particles[2].Index = 1
	if _, err := sim.Step(particles, testDT, nil); !errors.Is(err, components.ErrIndexDuplicate) {
		t.Fatalf("Step error = %v, want duplicate", err)
	}

	particles[2].Index = 2
	step(t, sim, particles, nil)
	for _, pt := range particles {
		if pt.Density <= 0 {
			t.Errorf("particle %d density = %v after a valid tick", pt.Index, pt.Density)
		}
	}
}

func BenchmarkStep(b *testing.B) {
	for _, workers := range []int{1, 0} {
		name := "serial"
		if workers == 0 {
			name = "parallel"
		}
		b.Run(name, func(b *testing.B) {
			particles := blockParticles(60, 40, 5)
			sim := newTestSim(b, systems.DefaultParams(), len(particles), WithWorkers(workers))

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				sim.Step(particles, testDT, nil)
			}
		})
	}
}

func BenchmarkGridBuild(b *testing.B) {
	p := systems.DefaultParams()
	particles := blockParticles(60, 40, 5)
	positions := make([]components.Vec2, len(particles))
	for i := range particles {
		positions[i] = particles[i].Position
	}
	grid := systems.NewGrid(p.BoundsHalfExtent, p.SmoothingRadius)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		grid.Build(positions)
	}
}
