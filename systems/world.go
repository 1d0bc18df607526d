package systems

import (
	"fmt"
	"math"
	"math/rand"
)

// Food is a single edible item. Eaten items are relocated, never removed.
type Food struct {
	X, Y   float64
	Energy float64
}

// World is the bounded foraging arena and its food field.
// The number of food items never changes after construction.
type World struct {
	width, height float64
	margin        float64
	foodEnergy    float64
	food          []Food
}

// NewWorld places foodCount items uniformly inside the margin.
func NewWorld(rng *rand.Rand, width, height float64, foodCount int, margin, foodEnergy float64) *World {
	w := &World{
		width:      width,
		height:     height,
		margin:     margin,
		foodEnergy: foodEnergy,
		food:       make([]Food, foodCount),
	}
	for i := range w.food {
		w.place(rng, i)
	}
	return w
}

func (w *World) place(rng *rand.Rand, idx int) {
	w.food[idx] = Food{
		X:      uniformIn(rng, w.margin, w.width),
		Y:      uniformIn(rng, w.margin, w.height),
		Energy: w.foodEnergy,
	}
}

// Width returns the horizontal extent.
func (w *World) Width() float64 { return w.width }

// Height returns the vertical extent.
func (w *World) Height() float64 { return w.height }

// Center returns the middle of the arena.
func (w *World) Center() (x, y float64) { return w.width / 2, w.height / 2 }

// FoodCount returns the number of food items.
func (w *World) FoodCount() int { return len(w.food) }

// Food returns a copy of the food field.
func (w *World) Food() []Food {
	return append([]Food(nil), w.food...)
}

// NearestFood returns the closest food item to (x, y) and its index.
// With no food the world center is returned with index -1.
// Ties keep the lowest index.
func (w *World) NearestFood(x, y float64) (fx, fy float64, idx int) {
	if len(w.food) == 0 {
		cx, cy := w.Center()
		return cx, cy, -1
	}
	best := math.Inf(1)
	idx = -1
	for i, f := range w.food {
		if d := distance(x, y, f.X, f.Y); d < best {
			best = d
			idx = i
		}
	}
	return w.food[idx].X, w.food[idx].Y, idx
}

// RespawnFood moves item idx to a fresh random location.
func (w *World) RespawnFood(rng *rand.Rand, idx int) error {
	if idx < 0 || idx >= len(w.food) {
		return fmt.Errorf("systems: food index %d out of range [0, %d)", idx, len(w.food))
	}
	w.place(rng, idx)
	return nil
}

// SpawnPoint draws an agent start position inside margin.
func (w *World) SpawnPoint(rng *rand.Rand, margin float64) (x, y float64) {
	return uniformIn(rng, margin, w.width), uniformIn(rng, margin, w.height)
}

// Contains reports whether (x, y) lies inside the arena.
func (w *World) Contains(x, y float64) bool {
	return x >= 0 && x <= w.width && y >= 0 && y <= w.height
}
