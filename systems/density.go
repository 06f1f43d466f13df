package systems

import "github.com/pthm-cable/fluid/components"

// Density sums the kernel-weighted contributions of every particle in the
// neighbour cells of particle i, including i itself.
func Density(i int, predicted []components.Vec2, grid *Grid, cells []CellIndex, k Kernels, p Params) float32 {
	return densityAt(predicted[i], predicted, grid, cells, k, p)
}

// SampleDensity estimates the density at an arbitrary point from the last
// built grid.
func SampleDensity(point components.Vec2, predicted []components.Vec2, grid *Grid, k Kernels, p Params) float32 {
	cells := grid.NeighborIndexes(point)
	return densityAt(point, predicted, grid, cells[:], k, p)
}

func densityAt(point components.Vec2, predicted []components.Vec2, grid *Grid, cells []CellIndex, k Kernels, p Params) float32 {
	var density float32
	for _, c := range cells {
		for _, j := range grid.Cell(c) {
			dist := point.Distance(predicted[j])
			density += k.Density(dist) * p.InfluenceModifier
		}
	}
	return density
}

// PressureFromDensity is the linear equation of state. Negative below the
// target density.
func PressureFromDensity(density float32, p Params) float32 {
	return (density - p.TargetDensity) * p.PressureMultiplier
}

// SharedPressure is the mean of both particles' pressures, which keeps the
// pairwise force symmetric.
func SharedPressure(densityA, densityB float32, p Params) float32 {
	return (PressureFromDensity(densityA, p) + PressureFromDensity(densityB, p)) / 2
}

// PressureForce accumulates the pressure gradient force on particle i from
// every other particle in its neighbour cells. Neighbours at exactly the same
// position are skipped.
func PressureForce(i int, cells []CellIndex, predicted []components.Vec2, grid *Grid, densities []float32, k Kernels, p Params) components.Vec2 {
	self := predicted[i]
	var force components.Vec2

	for _, c := range cells {
		for _, j32 := range grid.Cell(c) {
			j := int(j32)
			if j == i {
				continue
			}
			other := predicted[j]
			if other == self {
				continue
			}

			offset := self.Sub(other)
			dist := offset.Length()
			slope := k.DensityDerivative(dist)
			if slope == 0 {
				continue
			}
			dir := offset.Div(dist)

			denom := densities[j]
			if denom < p.DensityFloor {
				denom = p.DensityFloor
			}
			shared := SharedPressure(densities[i], densities[j], p)
			force = force.Sub(dir.Scale(shared * slope * p.InfluenceModifier / denom))
		}
	}
	return force
}
