package evolution

import (
	"fmt"
	"sort"

	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/traits"
)

// FitnessEnergyDivisor scales leftover energy into fitness.
const FitnessEnergyDivisor = 10.0

// Fitness returns score + energy/FitnessEnergyDivisor.
func Fitness(score int, energy float64) float64 {
	return float64(score) + energy/FitnessEnergyDivisor
}

// Ranked is one agent's evaluated result.
type Ranked struct {
	ID      uint32
	Fitness float64
	Score   int
	Energy  float64
	Alive   bool
	Elite   bool
	Traits  traits.Traits

	DeathStep int
}

// genome seeds one agent of the next generation.
type genome struct {
	brain  *neural.Controller
	traits traits.Traits
	elite  bool
}

// evaluate ranks every agent, dead ones included, by descending fitness.
// Ties are broken by ascending ID.
func (m *Manager) evaluate(pop *Population) []Ranked {
	ranking := make([]Ranked, 0, pop.Len())

	query := pop.filter.Query()
	for query.Next() {
		_, energy, forager, tr := query.Get()
		ranking = append(ranking, Ranked{
			ID:      forager.ID,
			Fitness: Fitness(forager.Score, energy.Value),
			Score:   forager.Score,
			Energy:  energy.Value,
			Alive:   energy.Alive,
			Elite:   forager.Elite,
			Traits:  *tr,

			DeathStep: forager.DeathStep,
		})
	}

	sort.SliceStable(ranking, func(i, j int) bool {
		if ranking[i].Fitness != ranking[j].Fitness {
			return ranking[i].Fitness > ranking[j].Fitness
		}
		return ranking[i].ID < ranking[j].ID
	})
	return ranking
}

// breed builds the next generation from a ranking. The top EliteCount agents
// are carried over as clones; the rest are crossover children of two parents
// drawn uniformly, with replacement, from the top ParentPoolSize.
func (m *Manager) breed(pop *Population, ranking []Ranked) ([]genome, error) {
	cfg := m.cfg
	n := cfg.Population.Size
	next := make([]genome, 0, n)

	elites := min(cfg.Derived.EliteCount, len(ranking), n)
	for _, r := range ranking[:elites] {
		next = append(next, genome{
			brain:  pop.Controller(r.ID).Clone(),
			traits: r.Traits,
			elite:  true,
		})
	}

	pool := ranking[:min(cfg.Derived.ParentPoolSize, len(ranking))]
	for len(next) < n {
		a := pool[m.rng.Intn(len(pool))]
		b := pool[m.rng.Intn(len(pool))]

		child, err := pop.Controller(a.ID).Crossover(m.rng, pop.Controller(b.ID), m.mode)
		if err != nil {
			return nil, fmt.Errorf("crossover %d x %d: %w", a.ID, b.ID, err)
		}
		child.Mutate(m.rng, cfg.Evolution.MutationRate, cfg.Evolution.MutationSigma)

		tr := m.schema.Crossover(m.rng, a.Traits, b.Traits)
		m.schema.Mutate(m.rng, &tr)

		next = append(next, genome{brain: child, traits: tr})
	}
	return next, nil
}
