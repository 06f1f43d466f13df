// Package components defines the particle record and the ECS components that
// mirror it for the visual layer.
package components

import (
	"errors"
	"fmt"
	"math"
)

// ParticleResolution is the number of rendered pixels per unit of particle
// radius. A particle's on-screen footprint is Radius * ParticleResolution.
const ParticleResolution float32 = 50

var (
	// ErrIndexGap is returned when particle indexes skip a value in 0..N.
	ErrIndexGap = errors.New("particle index out of range")
	// ErrIndexDuplicate is returned when two particles share an index.
	ErrIndexDuplicate = errors.New("duplicate particle index")
)

// Particle is one simulation entity.
//
// Index addresses the per-tick auxiliary arrays (predicted position, density,
// neighbour cells) and must stay constant for the particle's lifetime.
type Particle struct {
	Position          Vec2
	Velocity          Vec2
	LastVelocity      Vec2 // rollback value when integration goes non-finite
	PredictedPosition Vec2

	Mass   float32
	Radius float32
	Area   float32

	Index int

	// Density is the last computed density, kept for the visual layer only.
	Density float32
}

// NewParticle creates a particle at the origin. The spawning layer sets
// Position afterwards.
func NewParticle(mass float32, velocity Vec2, radius float32, index int) Particle {
	return Particle{
		Velocity:     velocity,
		LastVelocity: velocity,
		Mass:         mass,
		Radius:       radius,
		Area:         particleArea(radius),
		Index:        index,
	}
}

func particleArea(radius float32) float32 {
	return math.Pi * radius * radius * ParticleResolution
}

// CheckIndexes verifies that particle indexes are a dense permutation of 0..N.
func CheckIndexes(particles []Particle) error {
	var set IndexSet
	return set.Check(particles)
}

// IndexSet checks index permutations, reusing its buffer between calls.
type IndexSet struct {
	seen []bool
}

// Check verifies that particle indexes are a dense permutation of 0..N.
func (s *IndexSet) Check(particles []Particle) error {
	if cap(s.seen) < len(particles) {
		s.seen = make([]bool, len(particles))
	}
	seen := s.seen[:len(particles)]
	clear(seen)
	for i := range particles {
		idx := particles[i].Index
		if idx < 0 || idx >= len(particles) {
			return fmt.Errorf("particle %d has index %d (n=%d): %w", i, idx, len(particles), ErrIndexGap)
		}
		if seen[idx] {
			return fmt.Errorf("particle %d has index %d: %w", i, idx, ErrIndexDuplicate)
		}
		seen[idx] = true
	}
	return nil
}
