package evolution

import (
	"context"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/forage/config"
)

// TestEvolutionImprovesFitness checks that, averaged over several seeds, the
// last generations forage better than the random founders.
func TestEvolutionImprovesFitness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping multi-seed evolution run in short mode")
	}

	const (
		seeds       = 8
		generations = 25
		tail        = 5
	)

	cfg := config.Default()
	cfg.Evolution.MaxSteps = 300

	first := make([]float64, 0, seeds)
	last := make([]float64, 0, seeds)
	for seed := int64(1); seed <= seeds; seed++ {
		m, err := NewManager(cfg, Options{Seed: seed})
		if err != nil {
			t.Fatal(err)
		}
		history, err := m.Run(context.Background(), generations)
		if err != nil {
			t.Fatal(err)
		}

		first = append(first, history[0].MeanFitness)
		var sum float64
		for _, r := range history[generations-tail:] {
			sum += r.MeanFitness
		}
		last = append(last, sum/tail)
	}

	before := stat.Mean(first, nil)
	after := stat.Mean(last, nil)
	t.Logf("mean fitness: founders %.2f, last %d generations %.2f", before, tail, after)
	if after <= before {
		t.Errorf("mean fitness did not improve: %.2f -> %.2f", before, after)
	}
}
