package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/evolution"
	"github.com/pthm-cable/forage/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Generations to run (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	historyDB := flag.String("history-db", "", "SQLite database for run history (empty = disabled)")
	logStats := flag.Bool("log-stats", false, "Log timing and bookmarks via slog")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger, *configPath, *seed, *generations, *outputDir, *historyDB, *logStats); err != nil {
		slog.Error("run failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, configPath string, seed int64, generations int, outputDir, historyDB string, logStats bool) error {
	// Initialize config before anything else
	if err := config.Init(configPath); err != nil {
		return err
	}
	cfg := config.Cfg()

	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if generations <= 0 {
		generations = cfg.Evolution.Generations
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var recorders []evolution.Recorder

	om, err := telemetry.NewOutputManager(outputDir)
	if err != nil {
		return err
	}
	if om != nil {
		defer om.Close()
		if err := om.WriteConfig(cfg); err != nil {
			return err
		}
		recorders = append(recorders, om)
	}

	if historyDB != "" {
		store := telemetry.NewHistoryStore(historyDB)
		if err := store.Init(ctx); err != nil {
			return err
		}
		defer store.Close()

		info, err := store.BeginRun(ctx, seed)
		if err != nil {
			return err
		}
		logger.Info("history run started", "run_id", info.ID, "db", historyDB)
		recorders = append(recorders, store)
	}

	m, err := evolution.NewManager(cfg, evolution.Options{
		Seed:      seed,
		Logger:    logger,
		Recorders: recorders,
		Perf:      telemetry.NewPerfCollector(10),
		LogStats:  logStats,
	})
	if err != nil {
		return err
	}

	logger.Info("starting evolution",
		"seed", seed,
		"generations", generations,
		"population", cfg.Population.Size,
		"max_steps", cfg.Evolution.MaxSteps,
		"output_dir", outputDir,
	)

	_, err = m.Run(ctx, generations)
	s := m.Summary()
	logger.Info("evolution finished",
		"generations", s.Generations,
		"best_score", s.BestScore,
		"best_fitness", s.BestFitness,
		"last_mean_fitness", s.LastMeanFitness,
	)
	return err
}
