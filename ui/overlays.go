package ui

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// OverlayID uniquely identifies an overlay.
type OverlayID string

// Overlay IDs.
const (
	OverlayDensityColors OverlayID = "density_colors"
	OverlaySpeedColors   OverlayID = "speed_colors"
	OverlayBounds        OverlayID = "bounds"
	OverlayPointer       OverlayID = "pointer"
	OverlayGrid          OverlayID = "grid"
	OverlayProbe         OverlayID = "density_probe"
	OverlayPerf          OverlayID = "perf"
)

// GroupColour holds the particle colouring overlays. Exactly one is enabled.
const GroupColour = "colour"

// OverlayDescriptor defines an overlay that can be toggled.
type OverlayDescriptor struct {
	ID       OverlayID
	Name     string
	Key      int32  // toggle key (0 = none)
	KeyLabel string // e.g. "C"
	Category string // "visual" or "debug"
	// Group makes overlays a radio set: enabling one disables the rest, and
	// the enabled member cannot be switched off directly.
	Group string
}

// OverlayRegistry manages overlay state and metadata.
type OverlayRegistry struct {
	descriptors []OverlayDescriptor // registration order
	byID        map[OverlayID]OverlayDescriptor
	enabled     map[OverlayID]bool
}

var defaultOverlays = []OverlayDescriptor{
	{ID: OverlayDensityColors, Name: "Density", Key: rl.KeyC, KeyLabel: "C", Category: "visual", Group: GroupColour},
	{ID: OverlaySpeedColors, Name: "Speed", Key: rl.KeyV, KeyLabel: "V", Category: "visual", Group: GroupColour},
	{ID: OverlayBounds, Name: "Bounds", Key: rl.KeyB, KeyLabel: "B", Category: "visual"},
	{ID: OverlayPointer, Name: "Pointer radius", Key: rl.KeyI, KeyLabel: "I", Category: "visual"},
	{ID: OverlayGrid, Name: "Spatial grid", Key: rl.KeyG, KeyLabel: "G", Category: "debug"},
	{ID: OverlayProbe, Name: "Density probe", Key: rl.KeyX, KeyLabel: "X", Category: "debug"},
	{ID: OverlayPerf, Name: "Stage timings", Key: rl.KeyF, KeyLabel: "F", Category: "debug"},
}

// NewOverlayRegistry creates a registry with the default overlays. Density
// colouring, bounds and the pointer ring start enabled.
func NewOverlayRegistry() *OverlayRegistry {
	reg := &OverlayRegistry{
		byID:    make(map[OverlayID]OverlayDescriptor),
		enabled: make(map[OverlayID]bool),
	}
	for _, desc := range defaultOverlays {
		reg.Register(desc)
	}
	reg.SetEnabled(OverlayDensityColors, true)
	reg.SetEnabled(OverlayBounds, true)
	reg.SetEnabled(OverlayPointer, true)
	return reg
}

// Register adds a disabled overlay.
func (r *OverlayRegistry) Register(desc OverlayDescriptor) {
	r.descriptors = append(r.descriptors, desc)
	r.byID[desc.ID] = desc
	r.enabled[desc.ID] = false
}

// Toggle flips an overlay and returns its new state.
func (r *OverlayRegistry) Toggle(id OverlayID) bool {
	r.SetEnabled(id, !r.enabled[id])
	return r.enabled[id]
}

// SetEnabled sets an overlay's state, keeping radio groups consistent.
// Disabling the enabled member of a group is ignored.
func (r *OverlayRegistry) SetEnabled(id OverlayID, enabled bool) {
	desc, ok := r.byID[id]
	if !ok {
		return
	}
	if desc.Group == "" {
		r.enabled[id] = enabled
		return
	}
	if !enabled {
		return
	}
	for _, other := range r.descriptors {
		if other.Group == desc.Group {
			r.enabled[other.ID] = other.ID == id
		}
	}
}

// IsEnabled returns whether an overlay is active.
func (r *OverlayRegistry) IsEnabled(id OverlayID) bool {
	return r.enabled[id]
}

// Selected returns the enabled member of group, or "" if none is.
func (r *OverlayRegistry) Selected(group string) OverlayID {
	for _, desc := range r.descriptors {
		if desc.Group == group && r.enabled[desc.ID] {
			return desc.ID
		}
	}
	return ""
}

// ByCategory returns overlays in category, in registration order.
func (r *OverlayRegistry) ByCategory(category string) []OverlayDescriptor {
	var result []OverlayDescriptor
	for _, desc := range r.descriptors {
		if desc.Category == category {
			result = append(result, desc)
		}
	}
	return result
}

// Categories returns all unique categories in order.
func (r *OverlayRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, desc := range r.descriptors {
		if !seen[desc.Category] {
			seen[desc.Category] = true
			cats = append(cats, desc.Category)
		}
	}
	return cats
}

// HandleKeyPress toggles the overlay bound to key. It reports false if no
// overlay uses the key.
func (r *OverlayRegistry) HandleKeyPress(key int32) (OverlayID, bool) {
	for _, desc := range r.descriptors {
		if desc.Key == key {
			r.Toggle(desc.ID)
			return desc.ID, true
		}
	}
	return "", false
}

// Keys returns every toggle key in registration order.
func (r *OverlayRegistry) Keys() []int32 {
	keys := make([]int32, 0, len(r.descriptors))
	for _, desc := range r.descriptors {
		if desc.Key != 0 {
			keys = append(keys, desc.Key)
		}
	}
	return keys
}
