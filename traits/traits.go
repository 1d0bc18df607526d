// Package traits defines the heritable physical traits carried by each agent.
package traits

import (
	"math/rand"

	"github.com/pthm-cable/forage/config"
)

// Trait names a field of Traits.
type Trait uint8

const (
	Speed        Trait = iota // Step length per unit of action
	PickupRadius              // Food is eaten strictly inside this distance

	NumTraits
)

// String returns the config key of the trait.
func (t Trait) String() string {
	switch t {
	case Speed:
		return "speed"
	case PickupRadius:
		return "pickup_radius"
	}
	return "unknown"
}

// Bound limits a trait value and sets its mutation step.
type Bound struct {
	Min, Max float64
	Sigma    float64
}

// Clamp restricts v to [Min, Max].
func (b Bound) Clamp(v float64) float64 {
	if v < b.Min {
		return b.Min
	}
	if v > b.Max {
		return b.Max
	}
	return v
}

// Traits is a fixed-schema record of real-valued heritable traits.
type Traits struct {
	Speed        float64
	PickupRadius float64
}

// Get returns the value of trait t.
func (tr *Traits) Get(t Trait) float64 {
	switch t {
	case Speed:
		return tr.Speed
	case PickupRadius:
		return tr.PickupRadius
	}
	return 0
}

// Set assigns the value of trait t.
func (tr *Traits) Set(t Trait, v float64) {
	switch t {
	case Speed:
		tr.Speed = v
	case PickupRadius:
		tr.PickupRadius = v
	}
}

// Schema holds the per-trait bounds and the mutation rate.
type Schema struct {
	Bounds       [NumTraits]Bound
	MutationRate float64
}

// SchemaFromConfig builds the schema from the traits config section.
func SchemaFromConfig(cfg *config.Config) Schema {
	toBound := func(b config.TraitBoundConfig) Bound {
		return Bound{Min: b.Min, Max: b.Max, Sigma: b.Sigma}
	}
	var s Schema
	s.Bounds[Speed] = toBound(cfg.Traits.Speed)
	s.Bounds[PickupRadius] = toBound(cfg.Traits.PickupRadius)
	s.MutationRate = cfg.Traits.MutationRate
	return s
}

// Default returns the founder traits from the agent constants.
func Default(cfg *config.Config) Traits {
	return Traits{
		Speed:        cfg.Agent.Speed,
		PickupRadius: cfg.Agent.PickupRadius,
	}
}

// Crossover picks each trait from a or b with a fair coin.
// Consumes no randomness when the schema disables trait evolution.
func (s Schema) Crossover(rng *rand.Rand, a, b Traits) Traits {
	if s.MutationRate == 0 {
		return a
	}
	child := a
	for t := Trait(0); t < NumTraits; t++ {
		if rng.Float64() >= 0.5 {
			child.Set(t, b.Get(t))
		}
	}
	return child
}

// Mutate perturbs each trait with probability MutationRate and clamps it to its bound.
func (s Schema) Mutate(rng *rand.Rand, tr *Traits) {
	if s.MutationRate == 0 {
		return
	}
	for t := Trait(0); t < NumTraits; t++ {
		b := s.Bounds[t]
		v := tr.Get(t)
		if rng.Float64() < s.MutationRate {
			v += rng.NormFloat64() * b.Sigma
		}
		tr.Set(t, b.Clamp(v))
	}
}
