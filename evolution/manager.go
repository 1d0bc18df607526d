// Package evolution runs the generational loop: simulate a population of
// foragers, rank them by fitness, and breed the next generation.
package evolution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/pthm-cable/forage/components"
	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/neural"
	"github.com/pthm-cable/forage/systems"
	"github.com/pthm-cable/forage/telemetry"
	"github.com/pthm-cable/forage/traits"
)

// Recorder receives every completed generation record.
type Recorder interface {
	RecordGeneration(ctx context.Context, rec telemetry.GenerationRecord) error
}

// BookmarkRecorder is implemented by recorders that also store bookmarks.
type BookmarkRecorder interface {
	WriteBookmark(b telemetry.Bookmark) error
}

// PerfRecorder is implemented by recorders that also store timing stats.
type PerfRecorder interface {
	WritePerf(stats telemetry.PerfStats, generation int) error
}

// Options configures a Manager.
type Options struct {
	Seed      int64
	Logger    *slog.Logger // nil discards
	Recorders []Recorder
	OnStep    StepFunc
	Perf      *telemetry.PerfCollector // nil disables timing
	LogStats  bool                     // log perf and bookmarks every generation
}

// Summary describes a run so far.
type Summary struct {
	Generations     int
	BestScore       int
	BestFitness     float64
	LastMeanFitness float64
	LastMaxScore    int
}

// Manager owns the population across generations. It is not safe for
// concurrent use.
type Manager struct {
	cfg       *config.Config
	rng       *rand.Rand
	logger    *slog.Logger
	recorders []Recorder
	onStep    StepFunc
	perf      *telemetry.PerfCollector
	logStats  bool

	schema traits.Schema
	norms  systems.Norms
	mode   neural.CrossoverMode

	collector *telemetry.Collector
	bookmarks *telemetry.BookmarkDetector

	// State
	generation  int
	nextID      uint32
	genomes     []genome
	pop         *Population
	world       *systems.World
	ranking     []Ranked
	history     []telemetry.GenerationRecord
	bestScore   int
	bestFitness float64
}

// NewManager validates cfg and creates the founding population.
// Invalid configurations fail with an error wrapping config.ErrInvalid.
func NewManager(cfg *config.Config, opts Options) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("evolution: %w: nil config", config.ErrInvalid)
	}
	cfg = cfg.Clone()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("evolution: %w", err)
	}
	mode, err := neural.ParseCrossoverMode(cfg.Evolution.BiasCrossover)
	if err != nil {
		return nil, fmt.Errorf("evolution: %w: %v", config.ErrInvalid, err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	m := &Manager{
		cfg:       cfg,
		rng:       rand.New(rand.NewSource(opts.Seed)),
		logger:    logger,
		recorders: opts.Recorders,
		onStep:    opts.OnStep,
		perf:      opts.Perf,
		logStats:  opts.LogStats,
		schema:    traits.SchemaFromConfig(cfg),
		norms:     systems.NormsFromConfig(cfg),
		mode:      mode,
		collector: telemetry.NewCollector(cfg.Population.Size),
		bookmarks: telemetry.NewBookmarkDetector(10, cfg.Evolution.MaxSteps),
	}

	m.genomes = make([]genome, cfg.Population.Size)
	for i := range m.genomes {
		brain, err := neural.NewController(m.rng, cfg.Neural.Inputs, cfg.Neural.Hidden, cfg.Neural.Outputs, cfg.Neural.InitScale)
		if err != nil {
			return nil, fmt.Errorf("evolution: %w", err)
		}
		brain.ClipLimit = cfg.Evolution.ClipLimit
		m.genomes[i] = genome{brain: brain, traits: traits.Default(cfg)}
	}
	return m, nil
}

// Run executes the given number of generations and returns the full history.
// ctx is checked between generations only.
func (m *Manager) Run(ctx context.Context, generations int) ([]telemetry.GenerationRecord, error) {
	if generations < 0 {
		return nil, fmt.Errorf("evolution: generations must be >= 0, got %d", generations)
	}
	for i := 0; i < generations; i++ {
		if _, err := m.RunGeneration(ctx); err != nil {
			return m.History(), err
		}
	}
	return m.History(), nil
}

// RunGeneration simulates one generation, records it, and breeds the next.
func (m *Manager) RunGeneration(ctx context.Context) (telemetry.GenerationRecord, error) {
	if err := ctx.Err(); err != nil {
		return telemetry.GenerationRecord{}, err
	}
	cfg := m.cfg

	m.perf.StartGeneration()
	m.perf.StartPhase(telemetry.PhaseSpawn)
	m.world = systems.NewWorld(m.rng, cfg.World.Width, cfg.World.Height, cfg.Food.Count, cfg.Food.Margin, cfg.Food.Energy)
	m.pop = m.spawnPopulation(m.world)

	m.perf.StartPhase(telemetry.PhaseSimulate)
	steps, err := m.simulate(m.world, m.pop)
	if err != nil {
		return telemetry.GenerationRecord{}, fmt.Errorf("generation %d: %w", m.generation, err)
	}

	m.perf.StartPhase(telemetry.PhaseEvaluate)
	m.ranking = m.evaluate(m.pop)

	m.perf.StartPhase(telemetry.PhaseRecord)
	rec := m.record(steps)

	m.perf.StartPhase(telemetry.PhaseBreed)
	next, err := m.breed(m.pop, m.ranking)
	if err != nil {
		return rec, fmt.Errorf("generation %d: %w", m.generation, err)
	}
	m.genomes = next
	m.perf.EndGeneration(steps)
	m.generation++

	if err := m.flushTelemetry(ctx, rec); err != nil {
		return rec, fmt.Errorf("generation %d: %w", rec.Generation, err)
	}
	return rec, nil
}

// spawnPopulation places one agent per pending genome, elites first.
func (m *Manager) spawnPopulation(world *systems.World) *Population {
	cfg := m.cfg
	pop := newPopulation(len(m.genomes))
	for _, g := range m.genomes {
		x, y := world.SpawnPoint(m.rng, cfg.Population.SpawnMargin)
		energy := components.Energy{
			Value: cfg.Agent.InitialEnergy,
			Max:   cfg.Agent.MaxEnergy,
			Alive: true,
		}
		pop.spawn(m.nextID, x, y, energy, g.traits, g.brain, g.elite)
		m.nextID++
	}
	return pop
}

// record builds the generation record and updates run-level bests.
func (m *Manager) record(steps int) telemetry.GenerationRecord {
	for _, r := range m.ranking {
		m.collector.RecordAgent(r.Fitness, r.Score, r.Alive, r.DeathStep)
	}
	rec := m.collector.Flush(m.generation, steps)

	if len(m.history) == 0 || rec.MaxScore > m.bestScore {
		m.bestScore = rec.MaxScore
	}
	if len(m.history) == 0 || rec.MaxFitness > m.bestFitness {
		m.bestFitness = rec.MaxFitness
	}
	m.history = append(m.history, rec)
	return rec
}

// flushTelemetry hands the record to every recorder, logs it and checks bookmarks.
func (m *Manager) flushTelemetry(ctx context.Context, rec telemetry.GenerationRecord) error {
	if m.cfg.Telemetry.LogGenerations {
		rec.LogStats(m.logger)
	}

	var errs []error
	for _, r := range m.recorders {
		if err := r.RecordGeneration(ctx, rec); err != nil {
			errs = append(errs, err)
		}
	}

	if m.perf != nil {
		perfStats := m.perf.Stats()
		if m.logStats {
			m.logger.Info("perf", "generation", rec.Generation, "stats", perfStats)
		}
		for _, r := range m.recorders {
			if pr, ok := r.(PerfRecorder); ok {
				if err := pr.WritePerf(perfStats, rec.Generation); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}

	for _, bm := range m.bookmarks.Check(rec) {
		if m.logStats {
			bm.LogBookmark(m.logger)
		}
		for _, r := range m.recorders {
			if br, ok := r.(BookmarkRecorder); ok {
				if err := br.WriteBookmark(bm); err != nil {
					errs = append(errs, err)
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Config returns the validated configuration in use.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Generation returns the number of completed generations.
func (m *Manager) Generation() int {
	return m.generation
}

// History returns a copy of every generation record so far.
func (m *Manager) History() []telemetry.GenerationRecord {
	return append([]telemetry.GenerationRecord(nil), m.history...)
}

// Population returns the most recently simulated population, or nil before
// the first generation.
func (m *Manager) Population() *Population {
	return m.pop
}

// World returns the most recently simulated world, or nil before the first generation.
func (m *Manager) World() *systems.World {
	return m.world
}

// LastRanking returns a copy of the latest ranking, best first.
func (m *Manager) LastRanking() []Ranked {
	return append([]Ranked(nil), m.ranking...)
}

// BestScore returns the highest single-agent score seen in any generation.
func (m *Manager) BestScore() int {
	return m.bestScore
}

// Summary reports run-level results.
func (m *Manager) Summary() Summary {
	s := Summary{
		Generations: m.generation,
		BestScore:   m.bestScore,
		BestFitness: m.bestFitness,
	}
	if n := len(m.history); n > 0 {
		s.LastMeanFitness = m.history[n-1].MeanFitness
		s.LastMaxScore = m.history[n-1].MaxScore
	}
	return s
}
