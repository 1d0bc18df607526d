package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkNewBestScore        BookmarkType = "new_best_score"
	BookmarkFitnessBreakthrough BookmarkType = "fitness_breakthrough"
	BookmarkExtinction          BookmarkType = "extinction"
	BookmarkStagnation          BookmarkType = "stagnation"
)

// stagnationWindow is the number of generations without a max-fitness gain
// before a stagnation bookmark fires.
const stagnationWindow = 10

// Bookmark marks a notable generation.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Generation  int          `csv:"generation"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark on logger.
func (b Bookmark) LogBookmark(logger *slog.Logger) {
	logger.Info("bookmark",
		"type", string(b.Type),
		"generation", b.Generation,
		"description", b.Description,
	)
}

// BookmarkDetector watches the stream of generation records.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []GenerationRecord
	historySize int
	historyIdx  int
	historyFull bool

	seen             bool
	bestScore        int
	bestFitness      float64
	sinceImprovement int
	maxSteps         int
}

// NewBookmarkDetector creates a detector with the given history size.
// maxSteps is the step limit per generation, used to spot early extinction.
func NewBookmarkDetector(historySize, maxSteps int) *BookmarkDetector {
	if historySize < 3 {
		historySize = 3
	}
	return &BookmarkDetector{
		history:     make([]GenerationRecord, historySize),
		historySize: historySize,
		maxSteps:    maxSteps,
	}
}

// Check analyzes the latest record and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(rec GenerationRecord) []Bookmark {
	var bookmarks []Bookmark

	if bd.seen {
		if b := bd.checkNewBestScore(rec); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkFitnessBreakthrough(rec); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStagnation(rec); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}
	if b := bd.checkExtinction(rec); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	if !bd.seen || rec.MaxScore > bd.bestScore {
		bd.bestScore = rec.MaxScore
	}
	if !bd.seen || rec.MaxFitness > bd.bestFitness {
		bd.bestFitness = rec.MaxFitness
	}
	bd.seen = true
	bd.addToHistory(rec)

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(rec GenerationRecord) {
	bd.history[bd.historyIdx] = rec
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []GenerationRecord {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkNewBestScore(rec GenerationRecord) *Bookmark {
	if rec.MaxScore <= bd.bestScore {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkNewBestScore,
		Generation:  rec.Generation,
		Description: fmt.Sprintf("Best score rose from %d to %d", bd.bestScore, rec.MaxScore),
	}
}

func (bd *BookmarkDetector) checkFitnessBreakthrough(rec GenerationRecord) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += h.MeanFitness
	}
	avg := total / float64(len(history))
	if avg <= 0 {
		return nil
	}

	if rec.MeanFitness > avg*1.5 {
		return &Bookmark{
			Type:        BookmarkFitnessBreakthrough,
			Generation:  rec.Generation,
			Description: fmt.Sprintf("Mean fitness %.2f is %.1fx rolling average (%.2f)", rec.MeanFitness, rec.MeanFitness/avg, avg),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkStagnation(rec GenerationRecord) *Bookmark {
	if rec.MaxFitness > bd.bestFitness {
		bd.sinceImprovement = 0
		return nil
	}
	bd.sinceImprovement++
	if bd.sinceImprovement == stagnationWindow { // trigger once per plateau
		return &Bookmark{
			Type:        BookmarkStagnation,
			Generation:  rec.Generation,
			Description: fmt.Sprintf("Max fitness has not exceeded %.2f for %d generations", bd.bestFitness, stagnationWindow),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkExtinction(rec GenerationRecord) *Bookmark {
	if rec.Survivors > 0 || rec.Steps >= bd.maxSteps {
		return nil
	}
	return &Bookmark{
		Type:        BookmarkExtinction,
		Generation:  rec.Generation,
		Description: fmt.Sprintf("Every agent died by step %d of %d", rec.Steps, bd.maxSteps),
	}
}
