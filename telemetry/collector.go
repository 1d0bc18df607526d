package telemetry

// Collector accumulates per-agent outcomes during a generation and produces
// a GenerationRecord when flushed.
type Collector struct {
	fitness []float64
	scores  []float64

	maxScore   int
	foodEaten  int
	survivors  int
	deaths     int
	deathSteps float64
}

// NewCollector creates a collector sized for the given population.
func NewCollector(capacity int) *Collector {
	return &Collector{
		fitness: make([]float64, 0, capacity),
		scores:  make([]float64, 0, capacity),
	}
}

// RecordAgent adds one agent's final result.
// deathStep is ignored for agents that are still alive.
func (c *Collector) RecordAgent(fitness float64, score int, alive bool, deathStep int) {
	c.fitness = append(c.fitness, fitness)
	c.scores = append(c.scores, float64(score))
	c.foodEaten += score
	if score > c.maxScore {
		c.maxScore = score
	}
	if alive {
		c.survivors++
	} else {
		c.deaths++
		c.deathSteps += float64(deathStep)
	}
}

// Len returns the number of agents recorded since the last flush.
func (c *Collector) Len() int {
	return len(c.fitness)
}

// Flush produces a GenerationRecord and resets the collector.
func (c *Collector) Flush(generation, steps int) GenerationRecord {
	mean, maxV, minV, std, median := ComputeFitnessStats(c.fitness)
	scoreMean, _, _, _, _ := ComputeFitnessStats(c.scores)

	var meanDeath float64
	if c.deaths > 0 {
		meanDeath = c.deathSteps / float64(c.deaths)
	}

	rec := GenerationRecord{
		Generation:    generation,
		MeanFitness:   mean,
		MaxFitness:    maxV,
		MinFitness:    minV,
		StdFitness:    std,
		MedianFitness: median,
		MeanScore:     scoreMean,
		MaxScore:      c.maxScore,
		FoodEaten:     c.foodEaten,
		Survivors:     c.survivors,
		Deaths:        c.deaths,
		MeanDeathStep: meanDeath,
		Steps:         steps,
	}

	c.fitness = c.fitness[:0]
	c.scores = c.scores[:0]
	c.maxScore = 0
	c.foodEaten = 0
	c.survivors = 0
	c.deaths = 0
	c.deathSteps = 0

	return rec
}
