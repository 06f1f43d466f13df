package components

// Body holds the physical properties the renderer needs.
type Body struct {
	Radius float32
	Mass   float32
}

// Density is the ECS mirror of a particle's last computed density.
type Density struct {
	Value float32
}

// ParticleID links an ECS entity back to its particle record.
type ParticleID struct {
	Index int
}
