package systems

// Stage IDs for the per-tick pipeline, in execution order. They double as
// perf phase names.
const (
	StagePredict   = "predict"
	StageIndex     = "index"
	StageDensity   = "density"
	StageForces    = "forces"
	StageViscosity = "viscosity"
	StageIntegrate = "integrate"
)

// StageInfo describes a pipeline stage for UI display.
type StageInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this stage does
}

// StageRegistry holds metadata about all stages.
// This centralizes stage naming so the HUD and perf output stay in sync.
type StageRegistry struct {
	stages []StageInfo
	byID   map[string]StageInfo
}

// NewStageRegistry creates a registry with every pipeline stage.
func NewStageRegistry() *StageRegistry {
	reg := &StageRegistry{
		byID: make(map[string]StageInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds the pipeline stages in execution order.
// Update this when adding new stages.
func (r *StageRegistry) registerDefaults() {
	r.Register(StageInfo{ID: StagePredict, Name: "Predict", Description: "Applies gravity and predicts positions"})
	r.Register(StageInfo{ID: StageIndex, Name: "Index", Description: "Caches neighbour cells and rebuilds the grid"})
	r.Register(StageInfo{ID: StageDensity, Name: "Density", Description: "Sums kernel-weighted density"})
	r.Register(StageInfo{ID: StageForces, Name: "Forces", Description: "Pressure, drag and pointer interaction"})
	r.Register(StageInfo{ID: StageViscosity, Name: "Viscosity", Description: "Smooths the velocity field"})
	r.Register(StageInfo{ID: StageIntegrate, Name: "Integrate", Description: "Advances positions and resolves collisions"})
}

// Register adds a stage to the registry.
func (r *StageRegistry) Register(info StageInfo) {
	r.stages = append(r.stages, info)
	r.byID[info.ID] = info
}

// GetName returns the display name for a stage ID.
// Falls back to the ID itself if not found.
func (r *StageRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// IDs returns all stage IDs in registration order.
func (r *StageRegistry) IDs() []string {
	ids := make([]string, len(r.stages))
	for i, info := range r.stages {
		ids[i] = info.ID
	}
	return ids
}
