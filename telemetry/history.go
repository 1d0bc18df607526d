package telemetry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// RunInfo describes one evolution run stored in the history database.
type RunInfo struct {
	ID        string
	Seed      int64
	StartedAt time.Time
}

// HistoryStore persists generation records of every run in a SQLite database.
// Each run is keyed by a random UUID.
type HistoryStore struct {
	path string

	mu    sync.RWMutex
	db    *sql.DB
	runID string
}

// NewHistoryStore returns a store backed by the database at path.
// Call Init before use.
func NewHistoryStore(path string) *HistoryStore {
	return &HistoryStore{path: path}
}

// Init opens the database and creates the tables if needed.
func (s *HistoryStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("history: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("history: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("history: ping: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("history: create tables: %w", err)
	}

	s.db = db
	return nil
}

// BeginRun registers a new run and makes it the target of RecordGeneration.
func (s *HistoryStore) BeginRun(ctx context.Context, seed int64) (RunInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return RunInfo{}, err
	}

	info := RunInfo{
		ID:        uuid.NewString(),
		Seed:      seed,
		StartedAt: time.Now().UTC(),
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO runs (id, seed, started_at) VALUES (?, ?, ?)`,
		info.ID, info.Seed, info.StartedAt.Format(time.RFC3339Nano))
	if err != nil {
		return RunInfo{}, fmt.Errorf("history: insert run: %w", err)
	}

	s.mu.Lock()
	s.runID = info.ID
	s.mu.Unlock()
	return info, nil
}

// RecordGeneration stores rec under the current run.
func (s *HistoryStore) RecordGeneration(ctx context.Context, rec GenerationRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	s.mu.RLock()
	runID := s.runID
	s.mu.RUnlock()
	if runID == "" {
		return errors.New("history: RecordGeneration called before BeginRun")
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO generations (
			run_id, generation, mean_fitness, max_fitness, min_fitness, std_fitness,
			median_fitness, mean_score, max_score, food_eaten, survivors, deaths,
			mean_death_step, steps
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, generation) DO UPDATE SET
			mean_fitness = excluded.mean_fitness,
			max_fitness = excluded.max_fitness,
			min_fitness = excluded.min_fitness,
			std_fitness = excluded.std_fitness,
			median_fitness = excluded.median_fitness,
			mean_score = excluded.mean_score,
			max_score = excluded.max_score,
			food_eaten = excluded.food_eaten,
			survivors = excluded.survivors,
			deaths = excluded.deaths,
			mean_death_step = excluded.mean_death_step,
			steps = excluded.steps
	`, runID, rec.Generation, rec.MeanFitness, rec.MaxFitness, rec.MinFitness, rec.StdFitness,
		rec.MedianFitness, rec.MeanScore, rec.MaxScore, rec.FoodEaten, rec.Survivors, rec.Deaths,
		rec.MeanDeathStep, rec.Steps)
	if err != nil {
		return fmt.Errorf("history: insert generation %d: %w", rec.Generation, err)
	}
	return nil
}

// Generations returns the stored records of a run ordered by generation.
func (s *HistoryStore) Generations(ctx context.Context, runID string) ([]GenerationRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `
		SELECT generation, mean_fitness, max_fitness, min_fitness, std_fitness,
			median_fitness, mean_score, max_score, food_eaten, survivors, deaths,
			mean_death_step, steps
		FROM generations WHERE run_id = ? ORDER BY generation
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("history: query generations: %w", err)
	}
	defer rows.Close()

	var out []GenerationRecord
	for rows.Next() {
		var r GenerationRecord
		if err := rows.Scan(&r.Generation, &r.MeanFitness, &r.MaxFitness, &r.MinFitness, &r.StdFitness,
			&r.MedianFitness, &r.MeanScore, &r.MaxScore, &r.FoodEaten, &r.Survivors, &r.Deaths,
			&r.MeanDeathStep, &r.Steps); err != nil {
			return nil, fmt.Errorf("history: scan generation: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Runs lists every stored run, oldest first.
func (s *HistoryStore) Runs(ctx context.Context) ([]RunInfo, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, `SELECT id, seed, started_at FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var (
			info    RunInfo
			started string
		)
		if err := rows.Scan(&info.ID, &info.Seed, &started); err != nil {
			return nil, fmt.Errorf("history: scan run: %w", err)
		}
		info.StartedAt, err = time.Parse(time.RFC3339Nano, started)
		if err != nil {
			return nil, fmt.Errorf("history: run %s: %w", info.ID, err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Close closes the database.
func (s *HistoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *HistoryStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errors.New("history: store is not initialized")
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			seed INTEGER NOT NULL,
			started_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS generations (
			run_id TEXT NOT NULL REFERENCES runs(id),
			generation INTEGER NOT NULL,
			mean_fitness REAL NOT NULL,
			max_fitness REAL NOT NULL,
			min_fitness REAL NOT NULL,
			std_fitness REAL NOT NULL,
			median_fitness REAL NOT NULL,
			mean_score REAL NOT NULL,
			max_score INTEGER NOT NULL,
			food_eaten INTEGER NOT NULL,
			survivors INTEGER NOT NULL,
			deaths INTEGER NOT NULL,
			mean_death_step REAL NOT NULL,
			steps INTEGER NOT NULL,
			PRIMARY KEY (run_id, generation)
		);
	`)
	return err
}
