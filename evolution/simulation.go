package evolution

import (
	"fmt"

	"github.com/pthm-cable/forage/systems"
)

// StepFunc observes the world and population after every simulation step.
// It must not modify either.
type StepFunc func(step int, world *systems.World, pop *Population)

// simulate runs up to max_steps steps or until every agent is dead.
// Returns the number of steps executed.
func (m *Manager) simulate(world *systems.World, pop *Population) (int, error) {
	cfg := m.cfg
	sense := make([]float64, systems.NumSenses)

	steps := 0
	for step := 0; step < cfg.Evolution.MaxSteps && len(pop.alive) > 0; step++ {
		for _, e := range pop.alive {
			pos := pop.posMap.Get(e)
			energy := pop.energyMap.Get(e)
			forager := pop.foragerMap.Get(e)
			tr := pop.traitsMap.Get(e)

			// 1. Sense the nearest food
			fx, fy, _ := world.NearestFood(pos.X, pos.Y)
			sense = systems.Sense(m.rng, *pos, *energy, *forager, fx, fy, world, m.norms, sense)

			// 2. Think
			action, err := pop.brains[forager.ID].Forward(sense)
			if err != nil {
				return steps, fmt.Errorf("agent %d: %w", forager.ID, err)
			}

			// 3. Move and pay the step cost
			if err := systems.Act(action, pos, energy, forager, *tr, world, cfg.Agent.StepCost, step); err != nil {
				return steps, fmt.Errorf("agent %d: %w", forager.ID, err)
			}

			// 4. Eat if still alive
			systems.Consume(m.rng, *pos, energy, forager, *tr, world, cfg.Food.Energy)
		}

		pop.partitionAlive()
		steps = step + 1

		if m.onStep != nil {
			m.onStep(step, world, pop)
		}
	}
	return steps, nil
}
