// Package telemetry records per-generation statistics and writes them to
// CSV files, a SQLite run history and the structured log.
package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// GenerationRecord summarizes one completed generation. Records are append-only.
type GenerationRecord struct {
	Generation int `csv:"generation"`

	// Fitness distribution over every agent, dead ones included
	MeanFitness   float64 `csv:"mean_fitness"`
	MaxFitness    float64 `csv:"max_fitness"`
	MinFitness    float64 `csv:"min_fitness"`
	StdFitness    float64 `csv:"std_fitness"`
	MedianFitness float64 `csv:"median_fitness"`

	// Foraging
	MeanScore float64 `csv:"mean_score"`
	MaxScore  int     `csv:"max_score"`
	FoodEaten int     `csv:"food_eaten"`

	// Survival
	Survivors     int     `csv:"survivors"`
	Deaths        int     `csv:"deaths"`
	MeanDeathStep float64 `csv:"mean_death_step"` // over agents that died, 0 if none did

	// Steps actually simulated; below max_steps when every agent died early
	Steps int `csv:"steps"`
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// ComputeFitnessStats returns mean, max, min, standard deviation and median.
// The standard deviation is the population form. Empty input yields zeros.
func ComputeFitnessStats(values []float64) (mean, maxV, minV, std, median float64) {
	n := len(values)
	if n == 0 {
		return 0, 0, 0, 0, 0
	}

	mean = stat.Mean(values, nil)
	maxV = floats.Max(values)
	minV = floats.Min(values)
	std = math.Sqrt(stat.MomentAbout(2, values, mean, nil))

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)
	median = Percentile(sorted, 0.5)

	return mean, maxV, minV, std, median
}

// LogValue implements slog.LogValuer for structured logging.
func (r GenerationRecord) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", r.Generation),
		slog.Float64("mean_fitness", r.MeanFitness),
		slog.Float64("max_fitness", r.MaxFitness),
		slog.Float64("min_fitness", r.MinFitness),
		slog.Float64("std_fitness", r.StdFitness),
		slog.Float64("median_fitness", r.MedianFitness),
		slog.Float64("mean_score", r.MeanScore),
		slog.Int("max_score", r.MaxScore),
		slog.Int("food_eaten", r.FoodEaten),
		slog.Int("survivors", r.Survivors),
		slog.Int("deaths", r.Deaths),
		slog.Float64("mean_death_step", r.MeanDeathStep),
		slog.Int("steps", r.Steps),
	)
}

// LogStats logs the record on logger as a single "generation" line.
func (r GenerationRecord) LogStats(logger *slog.Logger) {
	logger.Info("generation",
		"generation", r.Generation,
		"mean_fitness", r.MeanFitness,
		"max_fitness", r.MaxFitness,
		"min_fitness", r.MinFitness,
		"mean_score", r.MeanScore,
		"max_score", r.MaxScore,
		"survivors", r.Survivors,
		"steps", r.Steps,
	)
}
