package components

// Position represents an agent's world position.
type Position struct {
	X, Y float64
}
