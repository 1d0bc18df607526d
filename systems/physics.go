// Package systems holds the per-agent operations of the foraging simulation:
// sensing, moving and eating inside a World.
package systems

import (
	"fmt"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/traits"
)

// Act moves the agent by its first two action components scaled by speed,
// clamps it to the arena and charges stepCost. An agent whose energy reaches
// zero dies and records step as its DeathStep. Dead agents are left untouched.
func Act(
	action []float64,
	pos *components.Position,
	energy *components.Energy,
	forager *components.Forager,
	tr traits.Traits,
	world *World,
	stepCost float64,
	step int,
) error {
	if len(action) < 2 {
		return fmt.Errorf("systems: action has %d components, need at least 2", len(action))
	}
	if !energy.Alive {
		return nil
	}

	pos.X = clampFloat(pos.X+action[0]*tr.Speed, 0, world.Width())
	pos.Y = clampFloat(pos.Y+action[1]*tr.Speed, 0, world.Height())

	energy.Value -= stepCost
	if energy.Value <= 0 {
		energy.Alive = false
		forager.DeathStep = step
	}
	return nil
}
