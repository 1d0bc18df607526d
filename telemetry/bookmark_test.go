package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_NewBestScore(t *testing.T) {
	bd := NewBookmarkDetector(10, 500)

	if got := bd.Check(GenerationRecord{Generation: 0, MaxScore: 3, Survivors: 5, Steps: 500}); len(got) != 0 {
		t.Errorf("first generation produced bookmarks: %+v", got)
	}
	if got := bd.Check(GenerationRecord{Generation: 1, MaxScore: 3, Survivors: 5, Steps: 500}); hasBookmark(got, BookmarkNewBestScore) {
		t.Error("equal score triggered new_best_score")
	}
	got := bd.Check(GenerationRecord{Generation: 2, MaxScore: 5, Survivors: 5, Steps: 500})
	if !hasBookmark(got, BookmarkNewBestScore) {
		t.Error("expected new_best_score bookmark")
	}
}

func TestBookmarkDetector_FitnessBreakthrough(t *testing.T) {
	bd := NewBookmarkDetector(10, 500)

	for i := 0; i < 5; i++ {
		bd.Check(GenerationRecord{Generation: i, MeanFitness: 4, MaxFitness: 8, Survivors: 1, Steps: 500})
	}
	got := bd.Check(GenerationRecord{Generation: 5, MeanFitness: 10, MaxFitness: 12, Survivors: 1, Steps: 500})
	if !hasBookmark(got, BookmarkFitnessBreakthrough) {
		t.Error("expected fitness_breakthrough bookmark")
	}
}

func TestBookmarkDetector_Extinction(t *testing.T) {
	bd := NewBookmarkDetector(10, 500)

	got := bd.Check(GenerationRecord{Generation: 0, Survivors: 0, Steps: 120})
	if !hasBookmark(got, BookmarkExtinction) {
		t.Error("expected extinction bookmark")
	}

	got = bd.Check(GenerationRecord{Generation: 1, Survivors: 0, Steps: 500})
	if hasBookmark(got, BookmarkExtinction) {
		t.Error("running every step is not an early extinction")
	}
}

func TestBookmarkDetector_StagnationFiresOnce(t *testing.T) {
	bd := NewBookmarkDetector(5, 500)

	fired := 0
	for i := 0; i < 3*stagnationWindow; i++ {
		got := bd.Check(GenerationRecord{Generation: i, MeanFitness: 5, MaxFitness: 7, Survivors: 1, Steps: 500})
		if hasBookmark(got, BookmarkStagnation) {
			fired++
		}
	}
	if fired != 1 {
		t.Errorf("stagnation fired %d times, want 1", fired)
	}
}
