// Package components defines ECS components for the simulation.
package components

// Forager holds identity and foraging results for one agent.
// Score and DeathStep freeze once the agent dies.
type Forager struct {
	ID        uint32
	Score     int
	DeathStep int  // step index of the Alive -> Dead transition, -1 while alive
	Elite     bool // carried over unmodified from the previous generation
}
