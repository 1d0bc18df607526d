package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gocarina/gocsv"
	"github.com/google/go-cmp/cmp"

	"github.com/pthm-cable/forage/config"
)

func TestNewOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	// Every method is nil-safe.
	if err := om.RecordGeneration(context.Background(), GenerationRecord{}); err != nil {
		t.Error(err)
	}
	if err := om.Close(); err != nil {
		t.Error(err)
	}
}

func TestOutputManagerWritesGenerations(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatal(err)
	}

	recs := []GenerationRecord{
		{Generation: 0, MeanFitness: 4.5, MaxFitness: 9, MinFitness: 1, MeanScore: 0.5, MaxScore: 2, Survivors: 3, Steps: 500},
		{Generation: 1, MeanFitness: 5.5, MaxFitness: 11, MinFitness: 2, MeanScore: 1.5, MaxScore: 4, Survivors: 0, Deaths: 10, Steps: 230},
	}
	for _, r := range recs {
		if err := om.RecordGeneration(context.Background(), r); err != nil {
			t.Fatal(err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkExtinction, Generation: 1, Description: "all dead"}); err != nil {
		t.Fatal(err)
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatal(err)
	}
	if err := om.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(filepath.Join(dir, "generations.csv"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	var got []GenerationRecord
	if err := gocsv.UnmarshalFile(f, &got); err != nil {
		t.Fatalf("reading generations.csv: %v", err)
	}
	if diff := cmp.Diff(recs, got); diff != "" {
		t.Errorf("generations.csv mismatch (-want +got):\n%s", diff)
	}

	cfg, err := config.Load(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatalf("config snapshot does not load: %v", err)
	}
	if cfg.Population.Size != config.Default().Population.Size {
		t.Errorf("snapshot population size = %d", cfg.Population.Size)
	}
}
