package systems

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/traits"
)

func newAgent(x, y, energy float64) (components.Position, components.Energy, components.Forager) {
	return components.Position{X: x, Y: y},
		components.Energy{Value: energy, Max: 100, Alive: true},
		components.Forager{DeathStep: -1}
}

func TestActMovesAndCharges(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(1)), 100, 100, 0, 5, 20)
	pos, energy, forager := newAgent(50, 50, 10)
	tr := traits.Traits{Speed: 2, PickupRadius: 3}

	if err := Act([]float64{0.5, -1, 0.3, 0.9}, &pos, &energy, &forager, tr, world, 1, 0); err != nil {
		t.Fatalf("Act: %v", err)
	}
	if pos.X != 51 || pos.Y != 48 {
		t.Errorf("position = (%v, %v), want (51, 48)", pos.X, pos.Y)
	}
	if energy.Value != 9 {
		t.Errorf("energy = %v, want 9", energy.Value)
	}
}

func TestActClampsToArena(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(1)), 100, 80, 0, 5, 20)
	tr := traits.Traits{Speed: 2}

	tests := []struct {
		name         string
		x, y         float64
		action       []float64
		wantX, wantY float64
	}{
		{"left wall", 1, 40, []float64{-1, 0}, 0, 40},
		{"right wall", 99.5, 40, []float64{1, 0}, 100, 40},
		{"bottom wall", 50, 0.5, []float64{0, -1}, 50, 0},
		{"top wall", 50, 79, []float64{0, 1}, 50, 80},
		{"corner", 0, 0, []float64{-1, -1}, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, energy, forager := newAgent(tt.x, tt.y, 50)
			if err := Act(tt.action, &pos, &energy, &forager, tr, world, 1, 0); err != nil {
				t.Fatal(err)
			}
			if pos.X != tt.wantX || pos.Y != tt.wantY {
				t.Errorf("position = (%v, %v), want (%v, %v)", pos.X, pos.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestActDeathIsTerminal(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(1)), 100, 100, 0, 5, 20)
	pos, energy, forager := newAgent(50, 50, 2)
	tr := traits.Traits{Speed: 2}
	action := []float64{1, 1}

	for step := 0; step < 2; step++ {
		if err := Act(action, &pos, &energy, &forager, tr, world, 1, step); err != nil {
			t.Fatal(err)
		}
	}
	if energy.Alive {
		t.Fatal("agent with zero energy still alive")
	}
	if forager.DeathStep != 1 {
		t.Errorf("DeathStep = %d, want 1", forager.DeathStep)
	}

	frozenPos, frozenEnergy := pos, energy
	for step := 2; step < 10; step++ {
		if err := Act(action, &pos, &energy, &forager, tr, world, 1, step); err != nil {
			t.Fatal(err)
		}
	}
	if pos != frozenPos || energy != frozenEnergy || forager.DeathStep != 1 {
		t.Errorf("dead agent changed: pos %+v energy %+v death %d", pos, energy, forager.DeathStep)
	}
}

func TestActRejectsShortAction(t *testing.T) {
	world := NewWorld(rand.New(rand.NewSource(1)), 100, 100, 0, 5, 20)
	pos, energy, forager := newAgent(50, 50, 10)
	if err := Act([]float64{1}, &pos, &energy, &forager, traits.Traits{Speed: 2}, world, 1, 0); err == nil {
		t.Error("Act with one component succeeded, want error")
	}
	if energy.Value != 10 {
		t.Errorf("failed Act charged energy: %v", energy.Value)
	}
}
