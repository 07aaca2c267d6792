package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkForeignSurge    BookmarkType = "foreign_surge"
	BookmarkEffectChurn     BookmarkType = "effect_churn"
	BookmarkDeficiencyCrash BookmarkType = "deficiency_crash"
	BookmarkStableDiet      BookmarkType = "stable_diet"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int32        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in the simulation.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []WindowStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	recentLevelPeak    float64 // peak median level in recent history
	stableWindowsCount int     // consecutive windows with a steady median level
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5 // minimum for stable diet detection
	}
	return &BookmarkDetector{
		history:     make([]WindowStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats WindowStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		// Foreign surge: unpaired stat increases > 2x rolling average
		if b := bd.checkForeignSurge(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Effect churn: effect transitions per actor > 2x rolling average
		if b := bd.checkEffectChurn(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Deficiency crash: median level dropped >30% from recent peak
		if b := bd.checkDeficiencyCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}

		// Stable diet: median level steady over 5+ windows
		if b := bd.checkStableDiet(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)

	if stats.LevelP50 > bd.recentLevelPeak {
		bd.recentLevelPeak = stats.LevelP50
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats WindowStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []WindowStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) checkForeignSurge(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total int
	for _, h := range history {
		total += h.ForeignChanges
	}
	avg := float64(total) / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := float64(stats.ForeignChanges)
	if current > avg*2.0 && stats.ForeignChanges >= 5 {
		return &Bookmark{
			Type:        BookmarkForeignSurge,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("%d foreign stat changes is %.1fx average (%.1f)", stats.ForeignChanges, current/avg, avg),
		}
	}

	return nil
}

// churn returns effect transitions per actor.
func churn(s WindowStats) float64 {
	if s.Actors == 0 {
		return 0
	}
	return float64(s.EffectsStarted+s.EffectsChanged+s.EffectsEnded) / float64(s.Actors)
}

func (bd *BookmarkDetector) checkEffectChurn(stats WindowStats) *Bookmark {
	history := bd.getHistory()
	if len(history) < 3 {
		return nil
	}

	var total float64
	for _, h := range history {
		total += churn(h)
	}
	avg := total / float64(len(history))
	if avg == 0 {
		return nil
	}

	current := churn(stats)
	if current > avg*2.0 && current >= 1 {
		return &Bookmark{
			Type:        BookmarkEffectChurn,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Effect churn %.2f per actor is %.1fx average (%.2f)", current, current/avg, avg),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkDeficiencyCrash(stats WindowStats) *Bookmark {
	if bd.recentLevelPeak == 0 || stats.Actors == 0 {
		return nil
	}

	dropPercent := 1.0 - stats.LevelP50/bd.recentLevelPeak
	if dropPercent > 0.30 && stats.LevelP50 < bd.recentLevelPeak-10 {
		// Reset peak after crash
		oldPeak := bd.recentLevelPeak
		bd.recentLevelPeak = stats.LevelP50

		return &Bookmark{
			Type:        BookmarkDeficiencyCrash,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Median level fell %.0f%% from peak %.1f to %.1f", dropPercent*100, oldPeak, stats.LevelP50),
		}
	}

	return nil
}

func (bd *BookmarkDetector) checkStableDiet(stats WindowStats) *Bookmark {
	if stats.Actors == 0 {
		bd.stableWindowsCount = 0
		return nil
	}

	history := bd.getHistory()
	if len(history) < 4 {
		return nil
	}

	var sum float64
	for _, h := range history[len(history)-4:] {
		sum += h.LevelP50
	}
	mean := sum / 4

	var variance float64
	for _, h := range history[len(history)-4:] {
		d := h.LevelP50 - mean
		variance += d * d
	}
	variance /= 4

	cv2 := 0.0
	if mean > 0 {
		cv2 = variance / (mean * mean)
	}

	if mean > 0 && cv2 < 0.0025 { // CV < 5%
		bd.stableWindowsCount++
	} else {
		bd.stableWindowsCount = 0
	}

	if bd.stableWindowsCount == 5 { // trigger exactly once at 5 windows
		return &Bookmark{
			Type:        BookmarkStableDiet,
			Tick:        stats.WindowEndTick,
			Description: fmt.Sprintf("Median level steady near %.1f across %d actors over 5+ windows", mean, stats.Actors),
		}
	}

	return nil
}
