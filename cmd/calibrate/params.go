// Package main provides CMA-ES calibration of the flocking rule parameters.
package main

import (
	"github.com/pthm-cable/flock/config"
)

// ParamSpec defines a single searchable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all searchable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the six-parameter search space: a field-of-view
// radius and a force magnitude per behavior rule.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "separation_fov", Path: "rules.separation_fov", Min: 0.5, Max: 12.0, Default: 4.0},
			{Name: "separation_mag", Path: "rules.separation_mag", Min: 0.0, Max: 2.0, Default: 1.0},
			{Name: "alignment_fov", Path: "rules.alignment_fov", Min: 0.5, Max: 18.0, Default: 6.0},
			{Name: "alignment_mag", Path: "rules.alignment_mag", Min: 0.0, Max: 1.5, Default: 0.5},
			{Name: "cohesion_fov", Path: "rules.cohesion_fov", Min: 1.0, Max: 30.0, Default: 10.0},
			{Name: "cohesion_mag", Path: "rules.cohesion_mag", Min: 0.0, Max: 0.5, Default: 0.08},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// DefaultVector returns the default parameter values as a slice.
func (pv *ParamVector) DefaultVector() []float64 {
	v := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		v[i] = spec.Default
	}
	return v
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		val := v[i]
		if val < spec.Min {
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

	cfg.Rules.SeparationFOV = clamped[0]
	cfg.Rules.SeparationMag = clamped[1]
	cfg.Rules.AlignmentFOV = clamped[2]
	cfg.Rules.AlignmentMag = clamped[3]
	cfg.Rules.CohesionFOV = clamped[4]
	cfg.Rules.CohesionMag = clamped[5]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Rules.SeparationFOV,
		cfg.Rules.SeparationMag,
		cfg.Rules.AlignmentFOV,
		cfg.Rules.AlignmentMag,
		cfg.Rules.CohesionFOV,
		cfg.Rules.CohesionMag,
	}
}
