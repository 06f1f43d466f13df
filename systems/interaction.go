package systems

import "github.com/pthm-cable/fluid/components"

// Pointer is an external interaction input in world space. Positive strength
// pulls particles in, negative pushes them away.
type Pointer struct {
	Position components.Vec2
	Strength float32
}

// InteractionForce pulls pos towards (or pushes it away from) the pointer.
// Outside the interaction radius, or exactly on the pointer, it is zero.
// Subtracting vel damps particles that are already moving fast near the
// pointer.
func InteractionForce(pos components.Vec2, pointer Pointer, vel components.Vec2, p Params) components.Vec2 {
	distSq := pointer.Position.DistanceSq(pos)
	if distSq > p.interactionRadiusSq() || distSq == 0 {
		return components.Vec2{}
	}

	dir := pointer.Position.Sub(pos).Div(distSq)
	target := p.InteractionStrength * pointer.Strength
	strength := components.Vec2{X: target - vel.X, Y: target - vel.Y}.Div(max(distSq, p.InteractionFloor))

	return strength.Mul(dir)
}
