package main

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/evolution"
	"github.com/pthm-cable/forage/telemetry"
)

// tailGenerations is the number of final generations averaged into a run's score.
const tailGenerations = 5

// FitnessEvaluator runs complete evolution runs and scores a parameter vector.
// Seeds are evaluated one after another.
type FitnessEvaluator struct {
	params      *ParamVector
	generations int
	seeds       []int64
	baseConfig  *config.Config

	lastMean float64 // mean agent fitness from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, generations int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		generations: generations,
		seeds:       seeds,
		baseConfig:  baseCfg,
	}
}

// LastMeanFitness returns the tail mean agent fitness of the most recent evaluation.
func (fe *FitnessEvaluator) LastMeanFitness() float64 {
	return fe.lastMean
}

// Evaluate computes the objective for a parameter vector (lower = better).
// The objective is the negated tail mean fitness averaged over every seed.
// Configurations that fail to run score +Inf.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)

	scores := make([]float64, 0, len(fe.seeds))
	for _, seed := range fe.seeds {
		score, err := fe.runEvolution(cfg, seed)
		if err != nil {
			fmt.Printf("seed %d failed: %v\n", seed, err)
			return math.Inf(1)
		}
		scores = append(scores, score)
	}

	fe.lastMean = stat.Mean(scores, nil)
	return -fe.lastMean
}

// runEvolution executes one run and returns the mean fitness of its last generations.
func (fe *FitnessEvaluator) runEvolution(cfg *config.Config, seed int64) (float64, error) {
	m, err := evolution.NewManager(cfg, evolution.Options{Seed: seed})
	if err != nil {
		return 0, err
	}
	history, err := m.Run(context.Background(), fe.generations)
	if err != nil {
		return 0, err
	}
	return tailMean(history), nil
}

// tailMean averages MeanFitness over the last tailGenerations records.
func tailMean(history []telemetry.GenerationRecord) float64 {
	if len(history) == 0 {
		return 0
	}
	start := max(0, len(history)-tailGenerations)
	values := make([]float64, 0, len(history)-start)
	for _, rec := range history[start:] {
		values = append(values, rec.MeanFitness)
	}
	return stat.Mean(values, nil)
}
