package traits

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forage/config"
)

func testSchema(rate float64) Schema {
	cfg := config.Default()
	cfg.Traits.MutationRate = rate
	return SchemaFromConfig(cfg)
}

func TestDefaultMatchesAgentConstants(t *testing.T) {
	cfg := config.Default()
	tr := Default(cfg)
	if tr.Speed != cfg.Agent.Speed || tr.PickupRadius != cfg.Agent.PickupRadius {
		t.Errorf("Default() = %+v, want speed %v radius %v", tr, cfg.Agent.Speed, cfg.Agent.PickupRadius)
	}
}

func TestGetSet(t *testing.T) {
	var tr Traits
	tr.Set(Speed, 1.5)
	tr.Set(PickupRadius, 4)
	if tr.Get(Speed) != 1.5 || tr.Get(PickupRadius) != 4 {
		t.Errorf("Get after Set = %+v", tr)
	}
	if Speed.String() != "speed" || PickupRadius.String() != "pickup_radius" {
		t.Error("unexpected trait names")
	}
}

func TestDisabledSchemaIsInert(t *testing.T) {
	s := testSchema(0)
	rng := rand.New(rand.NewSource(1))
	a := Traits{Speed: 2, PickupRadius: 3}
	b := Traits{Speed: 3, PickupRadius: 5}

	child := s.Crossover(rng, a, b)
	s.Mutate(rng, &child)
	if child != a {
		t.Errorf("disabled schema changed traits: %+v", child)
	}

	// No randomness consumed either.
	fresh := rand.New(rand.NewSource(1))
	if rng.Int63() != fresh.Int63() {
		t.Error("disabled schema consumed randomness")
	}
}

func TestMutateStaysInBounds(t *testing.T) {
	s := testSchema(1)
	s.Bounds[Speed].Sigma = 10
	s.Bounds[PickupRadius].Sigma = 10
	rng := rand.New(rand.NewSource(2))

	tr := Traits{Speed: 2, PickupRadius: 3}
	for i := 0; i < 200; i++ {
		s.Mutate(rng, &tr)
		for tt := Trait(0); tt < NumTraits; tt++ {
			b := s.Bounds[tt]
			if v := tr.Get(tt); v < b.Min || v > b.Max {
				t.Fatalf("iteration %d: %s = %v outside [%v, %v]", i, tt, v, b.Min, b.Max)
			}
		}
	}
}

func TestCrossoverPicksFromParents(t *testing.T) {
	s := testSchema(0.5)
	rng := rand.New(rand.NewSource(3))
	a := Traits{Speed: 1, PickupRadius: 2}
	b := Traits{Speed: 3, PickupRadius: 4}

	sawA, sawB := false, false
	for i := 0; i < 50; i++ {
		c := s.Crossover(rng, a, b)
		if c.Speed != a.Speed && c.Speed != b.Speed {
			t.Fatalf("speed %v not inherited", c.Speed)
		}
		if c.PickupRadius != a.PickupRadius && c.PickupRadius != b.PickupRadius {
			t.Fatalf("radius %v not inherited", c.PickupRadius)
		}
		sawA = sawA || c.Speed == a.Speed
		sawB = sawB || c.Speed == b.Speed
	}
	if !sawA || !sawB {
		t.Error("crossover never mixed parents")
	}
}
