package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/fluid/components"
)

// ParticleWorld mirrors particle records into an ECS world so the visual
// layer can query them without touching solver state. The solver never reads
// from it.
type ParticleWorld struct {
	world *ecs.World

	mapper *ecs.Map5[
		components.Position,
		components.Velocity,
		components.Body,
		components.Density,
		components.ParticleID,
	]
	filter *ecs.Filter5[
		components.Position,
		components.Velocity,
		components.Body,
		components.Density,
		components.ParticleID,
	]

	posMap     *ecs.Map1[components.Position]
	velMap     *ecs.Map1[components.Velocity]
	densityMap *ecs.Map1[components.Density]

	entities []ecs.Entity // by particle index
}

// NewParticleWorld creates one entity per particle.
func NewParticleWorld(particles []components.Particle) *ParticleWorld {
	world := ecs.NewWorld()

	w := &ParticleWorld{
		world: world,
		mapper: ecs.NewMap5[
			components.Position,
			components.Velocity,
			components.Body,
			components.Density,
			components.ParticleID,
		](world),
		filter: ecs.NewFilter5[
			components.Position,
			components.Velocity,
			components.Body,
			components.Density,
			components.ParticleID,
		](world),
		posMap:     ecs.NewMap1[components.Position](world),
		velMap:     ecs.NewMap1[components.Velocity](world),
		densityMap: ecs.NewMap1[components.Density](world),
		entities:   make([]ecs.Entity, len(particles)),
	}

	for i := range particles {
		p := &particles[i]
		pos := components.Position{X: p.Position.X, Y: p.Position.Y}
		vel := components.Velocity{X: p.Velocity.X, Y: p.Velocity.Y}
		body := components.Body{Radius: p.Radius, Mass: p.Mass}
		density := components.Density{Value: p.Density}
		id := components.ParticleID{Index: p.Index}
		w.entities[p.Index] = w.mapper.NewEntity(&pos, &vel, &body, &density, &id)
	}

	return w
}

// Len returns the number of mirrored particles.
func (w *ParticleWorld) Len() int {
	return len(w.entities)
}

// Sync copies position, velocity and density from the particle records.
func (w *ParticleWorld) Sync(particles []components.Particle) {
	for i := range particles {
		p := &particles[i]
		if p.Index < 0 || p.Index >= len(w.entities) {
			continue
		}
		e := w.entities[p.Index]

		pos := w.posMap.Get(e)
		pos.X, pos.Y = p.Position.X, p.Position.Y

		vel := w.velMap.Get(e)
		vel.X, vel.Y = p.Velocity.X, p.Velocity.Y

		w.densityMap.Get(e).Value = p.Density
	}
}

// Each calls fn for every mirrored particle.
func (w *ParticleWorld) Each(fn func(pos components.Position, vel components.Velocity, body components.Body, density float32)) {
	query := w.filter.Query()
	for query.Next() {
		pos, vel, body, density, _ := query.Get()
		fn(*pos, *vel, *body, density.Value)
	}
}
