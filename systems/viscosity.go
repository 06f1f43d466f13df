package systems

import "github.com/pthm-cable/fluid/components"

// ViscosityForce smooths vel towards the velocities of the particles in the
// neighbour cells. velocities must be the snapshot taken after the pressure
// pass of the current tick.
func ViscosityForce(pos, vel components.Vec2, predicted []components.Vec2, cells []CellIndex, grid *Grid, velocities []components.Vec2, k Kernels, p Params) components.Vec2 {
	var force components.Vec2
	for _, c := range cells {
		for _, j := range grid.Cell(c) {
			influence := k.Viscosity(pos.Distance(predicted[j]))
			if influence == 0 {
				continue
			}
			force = force.Add(velocities[j].Sub(vel).Scale(influence))
		}
	}
	return force.Scale(p.ViscosityStrength)
}
