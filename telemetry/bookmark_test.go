package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, bt BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == bt {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_ForeignSurge(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick:  int32(i * 400),
			Actors:         4,
			ForeignChanges: 2,
		})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 2000, Actors: 4, ForeignChanges: 10})
	if !hasBookmark(bookmarks, BookmarkForeignSurge) {
		t.Error("expected foreign_surge bookmark")
	}
}

func TestBookmarkDetector_ForeignSurgeNeedsVolume(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 400), Actors: 4, ForeignChanges: 1})
	}

	// 4x the average, but below the minimum count
	bookmarks := bd.Check(WindowStats{WindowEndTick: 2000, Actors: 4, ForeignChanges: 4})
	if hasBookmark(bookmarks, BookmarkForeignSurge) {
		t.Error("foreign_surge should need at least 5 changes")
	}
}

func TestBookmarkDetector_EffectChurn(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{
			WindowEndTick:  int32(i * 400),
			Actors:         10,
			EffectsStarted: 1,
			EffectsEnded:   1,
		})
	}

	bookmarks := bd.Check(WindowStats{
		WindowEndTick:  2000,
		Actors:         10,
		EffectsStarted: 8,
		EffectsChanged: 4,
		EffectsEnded:   3,
	})
	if !hasBookmark(bookmarks, BookmarkEffectChurn) {
		t.Error("expected effect_churn bookmark")
	}
}

func TestBookmarkDetector_DeficiencyCrash(t *testing.T) {
	bd := NewBookmarkDetector(10)

	for i := 0; i < 5; i++ {
		bd.Check(WindowStats{WindowEndTick: int32(i * 400), Actors: 10, LevelP50: 80})
	}

	bookmarks := bd.Check(WindowStats{WindowEndTick: 2000, Actors: 10, LevelP50: 40})
	if !hasBookmark(bookmarks, BookmarkDeficiencyCrash) {
		t.Fatal("expected deficiency_crash bookmark")
	}

	// Peak resets, so holding at the new level does not fire again.
	bookmarks = bd.Check(WindowStats{WindowEndTick: 2400, Actors: 10, LevelP50: 40})
	if hasBookmark(bookmarks, BookmarkDeficiencyCrash) {
		t.Error("deficiency_crash fired twice for the same drop")
	}
}

func TestBookmarkDetector_StableDiet(t *testing.T) {
	bd := NewBookmarkDetector(10)

	var fired []int
	for i := 0; i < 12; i++ {
		bookmarks := bd.Check(WindowStats{WindowEndTick: int32(i * 400), Actors: 10, LevelP50: 50})
		if hasBookmark(bookmarks, BookmarkStableDiet) {
			fired = append(fired, i)
		}
	}

	if len(fired) != 1 {
		t.Fatalf("stable_diet fired %d times, want once", len(fired))
	}
	if fired[0] != 8 {
		t.Errorf("stable_diet fired at window %d, want 8", fired[0])
	}
}

func TestBookmarkDetector_NoBookmarksWithoutHistory(t *testing.T) {
	bd := NewBookmarkDetector(10)

	bookmarks := bd.Check(WindowStats{Actors: 10, ForeignChanges: 100, EffectsStarted: 100})
	if len(bookmarks) != 0 {
		t.Errorf("first window produced %d bookmarks, want 0", len(bookmarks))
	}
}
