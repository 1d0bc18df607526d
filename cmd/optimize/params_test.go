package main

import (
	"math"
	"testing"

	"github.com/pthm-cable/forage/config"
	"github.com/pthm-cable/forage/telemetry"
)

func TestNormalizeRoundTrip(t *testing.T) {
	pv := NewParamVector()
	raw := pv.DefaultVector()
	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: round trip %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestDefaultsMatchConfig(t *testing.T) {
	pv := NewParamVector()
	got := pv.ExtractFromConfig(config.Default())
	for i, want := range pv.DefaultVector() {
		if got[i] != want {
			t.Errorf("%s: config default %v, param default %v", pv.Specs[i].Path, got[i], want)
		}
	}
}

func TestApplyToConfigClamps(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	values := make([]float64, pv.Dim())
	for i := range values {
		values[i] = 100
	}
	pv.ApplyToConfig(cfg, values)

	got := pv.ExtractFromConfig(cfg)
	for i, spec := range pv.Specs {
		if got[i] != spec.Max {
			t.Errorf("%s = %v, want clamped to %v", spec.Path, got[i], spec.Max)
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("clamped config invalid: %v", err)
	}
}

func TestTailMean(t *testing.T) {
	var history []telemetry.GenerationRecord
	if got := tailMean(history); got != 0 {
		t.Errorf("empty tailMean = %v", got)
	}
	for i := range 8 {
		history = append(history, telemetry.GenerationRecord{Generation: i, MeanFitness: float64(i)})
	}
	// last five: 3..7
	if got := tailMean(history); got != 5 {
		t.Errorf("tailMean = %v, want 5", got)
	}
}
