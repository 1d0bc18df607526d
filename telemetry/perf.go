package telemetry

import (
	"log/slog"
	"sort"
	"time"
)

// Phase names for one generation.
const (
	PhaseSpawn    = "spawn"
	PhaseSimulate = "simulate"
	PhaseEvaluate = "evaluate"
	PhaseRecord   = "record"
	PhaseBreed    = "breed"
)

// PerfSample holds timing data for a single generation.
type PerfSample struct {
	Duration time.Duration
	Steps    int
	Phases   map[string]time.Duration
}

// PerfCollector tracks generation timings over a rolling window.
type PerfCollector struct {
	windowSize    int
	samples       []PerfSample
	writeIndex    int
	sampleCount   int
	currentPhases map[string]time.Duration
	start         time.Time
	phaseStart    time.Time
	lastPhase     string
}

// NewPerfCollector creates a new performance collector.
// windowSize is the number of generations to average over.
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 10
	}
	return &PerfCollector{
		windowSize:    windowSize,
		samples:       make([]PerfSample, windowSize),
		currentPhases: make(map[string]time.Duration),
	}
}

// StartGeneration begins timing a new generation.
func (p *PerfCollector) StartGeneration() {
	if p == nil {
		return
	}
	p.start = time.Now()
	p.currentPhases = make(map[string]time.Duration)
	p.lastPhase = ""
}

// StartPhase begins timing a specific phase, ending the previous one.
func (p *PerfCollector) StartPhase(phase string) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}
	p.phaseStart = now
	p.lastPhase = phase
}

// EndGeneration finishes timing and records the sample.
func (p *PerfCollector) EndGeneration(steps int) {
	if p == nil {
		return
	}
	now := time.Now()
	if p.lastPhase != "" {
		p.currentPhases[p.lastPhase] += now.Sub(p.phaseStart)
	}

	p.samples[p.writeIndex] = PerfSample{
		Duration: now.Sub(p.start),
		Steps:    steps,
		Phases:   p.currentPhases,
	}
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
	p.lastPhase = ""
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgDuration time.Duration
	MinDuration time.Duration
	MaxDuration time.Duration

	// Phase breakdown (average durations and share of the generation)
	PhaseAvg map[string]time.Duration
	PhasePct map[string]float64

	StepsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	if p == nil || p.sampleCount == 0 {
		return PerfStats{
			PhaseAvg: make(map[string]time.Duration),
			PhasePct: make(map[string]float64),
		}
	}

	var total, minD, maxD time.Duration
	var steps int
	phaseSum := make(map[string]time.Duration)

	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		total += s.Duration
		steps += s.Steps

		if i == 0 || s.Duration < minD {
			minD = s.Duration
		}
		if s.Duration > maxD {
			maxD = s.Duration
		}
		for phase, dur := range s.Phases {
			phaseSum[phase] += dur
		}
	}

	avg := total / time.Duration(p.sampleCount)

	phaseAvg := make(map[string]time.Duration)
	phasePct := make(map[string]float64)
	for phase, sum := range phaseSum {
		phaseAvg[phase] = sum / time.Duration(p.sampleCount)
		if avg > 0 {
			phasePct[phase] = float64(phaseAvg[phase]) / float64(avg) * 100
		}
	}

	var stepsPerSec float64
	if total > 0 {
		stepsPerSec = float64(steps) / total.Seconds()
	}

	return PerfStats{
		AvgDuration:    avg,
		MinDuration:    minD,
		MaxDuration:    maxD,
		PhaseAvg:       phaseAvg,
		PhasePct:       phasePct,
		StepsPerSecond: stepsPerSec,
	}
}

// LogValue implements slog.LogValuer for structured logging.
func (s PerfStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int64("avg_generation_us", s.AvgDuration.Microseconds()),
		slog.Int64("min_generation_us", s.MinDuration.Microseconds()),
		slog.Int64("max_generation_us", s.MaxDuration.Microseconds()),
		slog.Float64("steps_per_sec", s.StepsPerSecond),
	}

	phases := make([]string, 0, len(s.PhasePct))
	for phase := range s.PhasePct {
		phases = append(phases, phase)
	}
	sort.Strings(phases)
	for _, phase := range phases {
		attrs = append(attrs, slog.Float64(phase+"_pct", s.PhasePct[phase]))
	}

	return slog.GroupValue(attrs...)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	Generation      int     `csv:"generation"`
	AvgGenerationUS int64   `csv:"avg_generation_us"`
	MinGenerationUS int64   `csv:"min_generation_us"`
	MaxGenerationUS int64   `csv:"max_generation_us"`
	StepsPerSec     float64 `csv:"steps_per_sec"`
	SpawnPct        float64 `csv:"spawn_pct"`
	SimulatePct     float64 `csv:"simulate_pct"`
	EvaluatePct     float64 `csv:"evaluate_pct"`
	RecordPct       float64 `csv:"record_pct"`
	BreedPct        float64 `csv:"breed_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(generation int) PerfStatsCSV {
	return PerfStatsCSV{
		Generation:      generation,
		AvgGenerationUS: s.AvgDuration.Microseconds(),
		MinGenerationUS: s.MinDuration.Microseconds(),
		MaxGenerationUS: s.MaxDuration.Microseconds(),
		StepsPerSec:     s.StepsPerSecond,
		SpawnPct:        s.PhasePct[PhaseSpawn],
		SimulatePct:     s.PhasePct[PhaseSimulate],
		EvaluatePct:     s.PhasePct[PhaseEvaluate],
		RecordPct:       s.PhasePct[PhaseRecord],
		BreedPct:        s.PhasePct[PhaseBreed],
	}
}
