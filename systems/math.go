package systems

import (
	"math"
	"math/rand"
)

// clampFloat clamps v between minVal and maxVal.
func clampFloat(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// distance returns the Euclidean distance between two points.
func distance(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}

// uniformIn draws from [margin, extent-margin], falling back to [0, extent] when the range is empty.
func uniformIn(rng *rand.Rand, margin, extent float64) float64 {
	lo, hi := margin, extent-margin
	if hi < lo {
		lo, hi = 0, extent
	}
	return lo + rng.Float64()*(hi-lo)
}
