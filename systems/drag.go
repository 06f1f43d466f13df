package systems

import "github.com/pthm-cable/fluid/components"

// DragForce is the quadratic drag F = 0.5*rho*|v|^2*C*A along v.
// A particle at rest has no drag.
func DragForce(vel components.Vec2, area float32, p Params) components.Vec2 {
	speedSq := vel.LengthSq()
	if speedSq == 0 {
		return components.Vec2{}
	}
	magnitude := p.AirDensity * speedSq * p.DragCoefficient * area / 2
	return vel.Normalize().Scale(magnitude)
}
