package telemetry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(4)
	c.RecordAgent(12.0, 3, true, -1)
	c.RecordAgent(5.0, 5, false, 40)
	c.RecordAgent(1.0, 1, false, 20)
	c.RecordAgent(2.0, 0, true, -1)

	got := c.Flush(7, 100)
	want := GenerationRecord{
		Generation:    7,
		MeanFitness:   5,
		MaxFitness:    12,
		MinFitness:    1,
		MedianFitness: 3.5,
		MeanScore:     2.25,
		MaxScore:      5,
		FoodEaten:     9,
		Survivors:     2,
		Deaths:        2,
		MeanDeathStep: 30,
		Steps:         100,
	}
	// std is checked in the stats tests
	got.StdFitness = 0
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Flush() mismatch (-want +got):\n%s", diff)
	}
}

func TestCollectorResetsAfterFlush(t *testing.T) {
	c := NewCollector(2)
	c.RecordAgent(3, 2, false, 5)
	c.Flush(0, 10)

	if c.Len() != 0 {
		t.Fatalf("Len after flush = %d, want 0", c.Len())
	}
	got := c.Flush(1, 10)
	if got.FoodEaten != 0 || got.Deaths != 0 || got.MaxScore != 0 || got.MeanDeathStep != 0 {
		t.Errorf("counters survived flush: %+v", got)
	}
}
