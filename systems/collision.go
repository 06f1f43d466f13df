package systems

import "github.com/pthm-cable/fluid/components"

// HalfBounds returns the per-axis limit for a particle's centre: the box half
// extent minus half the particle's rendered footprint.
func HalfBounds(p Params, radius float32) components.Vec2 {
	footprint := radius * components.ParticleResolution / 2
	return components.Vec2{
		X: p.BoundsHalfExtent.X - footprint,
		Y: p.BoundsHalfExtent.Y - footprint,
	}
}

// ResolveCollisions clamps pos into [-half, half] per axis and reflects the
// matching velocity component scaled by damping. Axes are independent, so a
// corner hit damps both components. collided reports whether any axis hit.
func ResolveCollisions(pos, vel, half components.Vec2, damping float32) (components.Vec2, components.Vec2, bool) {
	collided := false
	sign := pos.Signum()

	if abs32(pos.X) > half.X {
		pos.X = half.X * sign.X
		vel.X *= -damping
		collided = true
	}
	if abs32(pos.Y) > half.Y {
		pos.Y = half.Y * sign.Y
		vel.Y *= -damping
		collided = true
	}
	return pos, vel, collided
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
