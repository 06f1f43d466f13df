package main

import (
	"math"

	"github.com/pthm-cable/fluid/config"
)

// ParamSpec defines a single tunable parameter. Log-scaled parameters are
// searched in log10 space; Min and Max are always raw values.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
	Log     bool    // search in log10 space
}

// ParamVector holds the set of all tunable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters with
// defaults taken from cfg.
func NewParamVector(cfg *config.Config) *ParamVector {
	pv := &ParamVector{
		Specs: []ParamSpec{
			{Name: "pressure_multiplier", Path: "physics.pressure_multiplier", Min: 1e3, Max: 3e5, Log: true},
			{Name: "viscosity_strength", Path: "physics.viscosity_strength", Min: 1e-9, Max: 1e-5, Log: true},
			{Name: "target_density", Path: "physics.target_density", Min: 0.05, Max: 1.0},
		},
	}
	defaults := pv.ExtractFromConfig(cfg)
	for i := range pv.Specs {
		pv.Specs[i].Default = defaults[i]
	}
	return pv
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice, clamped to
// the search bounds.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return pv.Clamp(v)
}

func (s ParamSpec) toSearch(x float64) float64 {
	if s.Log {
		return math.Log10(x)
	}
	return x
}

func (s ParamSpec) fromSearch(x float64) float64 {
	if s.Log {
		return math.Pow(10, x)
	}
	return x
}

// Normalize converts raw parameter values to the [0,1] search range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		lo, hi := spec.toSearch(spec.Min), spec.toSearch(spec.Max)
		normalized[i] = (spec.toSearch(raw[i]) - lo) / (hi - lo)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		lo, hi := spec.toSearch(spec.Min), spec.toSearch(spec.Max)
		raw[i] = spec.fromSearch(lo + normalized[i]*(hi-lo))
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if math.IsNaN(val) || val < spec.Min {
			val = spec.Min
		}
		if val > spec.Max {
			val = spec.Max
		}
		clamped[i] = val
	}
	return clamped
}

// ApplyToConfig applies parameter values to a Config struct.
// Order must match Specs order.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	clamped := pv.Clamp(values)
	cfg.Physics.PressureMultiplier = clamped[0]
	cfg.Physics.ViscosityStrength = clamped[1]
	cfg.Physics.TargetDensity = clamped[2]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Physics.PressureMultiplier,
		cfg.Physics.ViscosityStrength,
		cfg.Physics.TargetDensity,
	}
}
