package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/pthm-cable/fluid/components"
)

// ErrInvalidParams is returned by Params.Validate.
var ErrInvalidParams = errors.New("invalid simulation parameters")

// Params holds every tunable the solver reads. It is fixed for the lifetime
// of a simulation instance.
type Params struct {
	Gravity          components.Vec2 // constant external acceleration
	SmoothingRadius  float32         // kernel cutoff and grid cell size
	BoundsHalfExtent components.Vec2 // half size of the bounding box

	InfluenceModifier     float32 // scales every kernel contribution
	TargetDensity         float32
	PressureMultiplier    float32 // equation of state stiffness
	PressureForceModifier float32 // applied to the pressure force in the velocity update
	DensityFloor          float32 // lower clamp for the pressure force denominator

	AirDensity        float32
	DragCoefficient   float32
	ViscosityStrength float32

	CollisionDamping float32

	InteractionRadius   float32
	InteractionStrength float32
	InteractionFloor    float32 // lower clamp for the squared pointer distance

	TimeScale      float32 // multiplies the frame delta
	PredictionRate float32 // predicted = position + velocity / PredictionRate

	UsePressure  bool
	UseViscosity bool
}

// DefaultParams returns the parameters used when no configuration is loaded.
func DefaultParams() Params {
	return Params{
		Gravity:               components.Vec2{X: 0, Y: -100},
		SmoothingRadius:       12,
		BoundsHalfExtent:      components.Vec2{X: 850, Y: 500},
		InfluenceModifier:     10,
		TargetDensity:         0.25,
		PressureMultiplier:    20000,
		PressureForceModifier: 5,
		DensityFloor:          1e-6,
		AirDensity:            1,
		DragCoefficient:       0.01,
		ViscosityStrength:     1e-7,
		CollisionDamping:      0.5,
		InteractionRadius:     948.68,
		InteractionStrength:   9e7,
		InteractionFloor:      80,
		TimeScale:             2,
		PredictionRate:        120,
		UsePressure:           true,
		UseViscosity:          true,
	}
}

// Validate rejects parameter sets the solver cannot run with.
func (p Params) Validate() error {
	switch {
	case !positive(p.SmoothingRadius):
		return fmt.Errorf("smoothing radius %v: %w", p.SmoothingRadius, ErrInvalidParams)
	case !positive(p.BoundsHalfExtent.X) || !positive(p.BoundsHalfExtent.Y):
		return fmt.Errorf("bounds half extent %v: %w", p.BoundsHalfExtent, ErrInvalidParams)
	case !positive(p.PredictionRate):
		return fmt.Errorf("prediction rate %v: %w", p.PredictionRate, ErrInvalidParams)
	case !positive(p.TimeScale):
		return fmt.Errorf("time scale %v: %w", p.TimeScale, ErrInvalidParams)
	case !(p.CollisionDamping >= 0 && p.CollisionDamping <= 1):
		return fmt.Errorf("collision damping %v outside [0,1]: %w", p.CollisionDamping, ErrInvalidParams)
	case !positive(p.DensityFloor):
		return fmt.Errorf("density floor %v: %w", p.DensityFloor, ErrInvalidParams)
	case !positive(p.InteractionFloor):
		return fmt.Errorf("interaction floor %v: %w", p.InteractionFloor, ErrInvalidParams)
	case !p.Gravity.IsFinite():
		return fmt.Errorf("gravity %v: %w", p.Gravity, ErrInvalidParams)
	case !finite(p.TargetDensity) || !finite(p.PressureMultiplier) || !finite(p.ViscosityStrength) ||
		!finite(p.DragCoefficient) || !finite(p.InteractionRadius) || !finite(p.InteractionStrength):
		return fmt.Errorf("non-finite force parameter: %w", ErrInvalidParams)
	}
	return nil
}

// CheckRadius reports whether a particle of the given radius fits in the box,
// that is whether HalfBounds is positive on both axes.
func (p Params) CheckRadius(radius float32) error {
	if !positive(radius) {
		return fmt.Errorf("particle radius %v: %w", radius, ErrInvalidParams)
	}
	half := HalfBounds(p, radius)
	if !positive(half.X) || !positive(half.Y) {
		return fmt.Errorf("particle footprint %v does not fit bounds %v: %w",
			radius*components.ParticleResolution, p.BoundsHalfExtent, ErrInvalidParams)
	}
	return nil
}

// positive is false for NaN and +Inf as well as for x <= 0.
func positive(x float32) bool {
	return x > 0 && finite(x)
}

func finite(x float32) bool {
	return !math.IsNaN(float64(x)) && !math.IsInf(float64(x), 0)
}

// interactionRadiusSq is compared against squared pointer distances.
func (p Params) interactionRadiusSq() float32 {
	return p.InteractionRadius * p.InteractionRadius
}
