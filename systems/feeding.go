package systems

import (
	"math/rand"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/traits"
)

// Consume eats the first food item (by index) strictly within the agent's pickup radius.
// The item is respawned, the score rises by one and energy rises by gain up to Max.
// Returns false for dead agents or when nothing is in reach.
func Consume(
	rng *rand.Rand,
	pos components.Position,
	energy *components.Energy,
	forager *components.Forager,
	tr traits.Traits,
	world *World,
	gain float64,
) bool {
	if !energy.Alive {
		return false
	}
	for i, f := range world.food {
		if distance(pos.X, pos.Y, f.X, f.Y) < tr.PickupRadius {
			world.place(rng, i)
			forager.Score++
			energy.Gain(gain)
			return true
		}
	}
	return false
}
