package main

import (
	"github.com/pthm-cable/forage/config"
)

// ParamSpec defines a single optimizable parameter.
type ParamSpec struct {
	Name    string  // Human-readable name
	Path    string  // Config path for logging
	Min     float64 // Lower bound
	Max     float64 // Upper bound
	Default float64 // Default value
}

// ParamVector holds the set of all optimizable parameters.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of optimizable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			// Breeding
			{Name: "mutation_rate", Path: "evolution.mutation_rate", Min: 0.01, Max: 0.5, Default: 0.1},
			{Name: "mutation_sigma", Path: "evolution.mutation_sigma", Min: 0.02, Max: 1.0, Default: 0.2},
			{Name: "elite_fraction", Path: "evolution.elite_fraction", Min: 0.05, Max: 0.5, Default: 0.2},
			{Name: "clip_limit", Path: "evolution.clip_limit", Min: 0.5, Max: 5.0, Default: 2.0},
			// Founders
			{Name: "init_scale", Path: "neural.init_scale", Min: 0.1, Max: 1.5, Default: 0.5},
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

	cfg.Evolution.MutationRate = clamped[0]
	cfg.Evolution.MutationSigma = clamped[1]
	cfg.Evolution.EliteFraction = clamped[2]
	cfg.Evolution.ClipLimit = clamped[3]
	cfg.Neural.InitScale = clamped[4]
}

// ExtractFromConfig extracts current parameter values from a Config struct.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	return []float64{
		cfg.Evolution.MutationRate,
		cfg.Evolution.MutationSigma,
		cfg.Evolution.EliteFraction,
		cfg.Evolution.ClipLimit,
		cfg.Neural.InitScale,
	}
}

// LogRow is one line of optimize_log.csv.
type LogRow struct {
	Eval          int     `csv:"eval"`
	Fitness       float64 `csv:"fitness"`
	MeanFitness   float64 `csv:"mean_fitness"`
	MutationRate  float64 `csv:"mutation_rate"`
	MutationSigma float64 `csv:"mutation_sigma"`
	EliteFraction float64 `csv:"elite_fraction"`
	ClipLimit     float64 `csv:"clip_limit"`
	InitScale     float64 `csv:"init_scale"`
}

// NewLogRow builds a log row from clamped parameter values.
func (pv *ParamVector) NewLogRow(eval int, fitness, meanFitness float64, clamped []float64) LogRow {
	return LogRow{
		Eval:          eval,
		Fitness:       fitness,
		MeanFitness:   meanFitness,
		MutationRate:  clamped[0],
		MutationSigma: clamped[1],
		EliteFraction: clamped[2],
		ClipLimit:     clamped[3],
		InitScale:     clamped[4],
	}
}
