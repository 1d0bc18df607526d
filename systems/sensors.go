package systems

import (
	"math"
	"math/rand"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
)

// Sense vector layout.
const (
	SenseX = iota
	SenseY
	SenseDistance
	SenseBearingCos
	SenseBearingSin
	SenseEnergy
	SenseScore
	SenseNoise

	NumSenses
)

// Norms holds the divisors that scale raw readings into network range.
type Norms struct {
	DistanceScale float64 // distance is divided by width * DistanceScale
	ScoreScale    float64
}

// NormsFromConfig reads the scaling constants from the agent config.
func NormsFromConfig(cfg *config.Config) Norms {
	return Norms{
		DistanceScale: cfg.Agent.DistanceScale,
		ScoreScale:    cfg.Agent.ScoreScale,
	}
}

// Sense builds the feature vector for one agent relative to the target food at (foodX, foodY).
// The last feature is a uniform draw from rng. dst is reused when it has room.
func Sense(
	rng *rand.Rand,
	pos components.Position,
	energy components.Energy,
	forager components.Forager,
	foodX, foodY float64,
	world *World,
	norms Norms,
	dst []float64,
) []float64 {
	if cap(dst) < NumSenses {
		dst = make([]float64, NumSenses)
	}
	dst = dst[:NumSenses]

	dx := foodX - pos.X
	dy := foodY - pos.Y
	bearing := math.Atan2(dy, dx)

	dst[SenseX] = pos.X / world.Width()
	dst[SenseY] = pos.Y / world.Height()
	dst[SenseDistance] = math.Hypot(dx, dy) / (world.Width() * norms.DistanceScale)
	dst[SenseBearingCos] = math.Cos(bearing)
	dst[SenseBearingSin] = math.Sin(bearing)
	dst[SenseEnergy] = energy.Value / energy.Max
	dst[SenseScore] = float64(forager.Score) / norms.ScoreScale
	dst[SenseNoise] = rng.Float64()
	return dst
}
