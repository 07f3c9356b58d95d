package history

import (
	"context"
	"testing"
	"time"
)

// createTestStore creates an in-memory SQLite store for testing
func createTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func testRecord(ts time.Time) PlayRecord {
	return PlayRecord{
		Timestamp:        ts,
		Artist:           "Mitski",
		Album:            "Laurel Hell",
		Title:            "Working for the Knife",
		TrackNumber:      2,
		AlbumTrackCount:  11,
		DurationListened: 157 * time.Second,
		SourceID:         "file:///music/laurel-hell/02.flac",
	}
}

func TestAddAndPlaysForYear(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	ts := time.Date(2024, time.March, 10, 20, 15, 0, 0, time.Local)
	id, err := store.Add(ctx, testRecord(ts))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if id == 0 {
		t.Error("expected non-zero id")
	}

	plays, err := store.PlaysForYear(ctx, 2024)
	if err != nil {
		t.Fatalf("PlaysForYear: %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}

	got := plays[0]
	if got.Artist != "Mitski" || got.Album != "Laurel Hell" || got.Title != "Working for the Knife" {
		t.Errorf("metadata mismatch: %+v", got)
	}
	if got.TrackNumber != 2 || got.AlbumTrackCount != 11 {
		t.Errorf("track position mismatch: %+v", got)
	}
	if got.DurationListened != 157*time.Second {
		t.Errorf("DurationListened = %v, want 2m37s", got.DurationListened)
	}
	if !got.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, ts)
	}
}

func TestPlaysForYearExcludesOtherYears(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	for _, year := range []int{2022, 2023, 2024} {
		ts := time.Date(year, time.June, 1, 12, 0, 0, 0, time.Local)
		if _, err := store.Add(ctx, testRecord(ts)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	plays, err := store.PlaysForYear(ctx, 2023)
	if err != nil {
		t.Fatalf("PlaysForYear: %v", err)
	}
	if len(plays) != 1 {
		t.Fatalf("got %d plays, want 1", len(plays))
	}
	if plays[0].Timestamp.Year() != 2023 {
		t.Errorf("got play from %d", plays[0].Timestamp.Year())
	}
}

func TestPlaysForYearOrdering(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.Local)
	// Insert out of order
	for _, offset := range []time.Duration{2 * time.Hour, 0, time.Hour} {
		if _, err := store.Add(ctx, testRecord(base.Add(offset))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	plays, err := store.PlaysForYear(ctx, 2024)
	if err != nil {
		t.Fatalf("PlaysForYear: %v", err)
	}
	if len(plays) != 3 {
		t.Fatalf("got %d plays, want 3", len(plays))
	}
	for i := 1; i < len(plays); i++ {
		if plays[i].Timestamp.Before(plays[i-1].Timestamp) {
			t.Errorf("plays not in chronological order: %v before %v", plays[i].Timestamp, plays[i-1].Timestamp)
		}
	}
}

func TestYears(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	years, err := store.Years(ctx)
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if len(years) != 0 {
		t.Errorf("expected no years in empty store, got %v", years)
	}

	for _, y := range []int{2023, 2024, 2024} {
		ts := time.Date(y, time.August, 15, 18, 30, 0, 0, time.Local)
		if _, err := store.Add(ctx, testRecord(ts)); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	years, err = store.Years(ctx)
	if err != nil {
		t.Fatalf("Years: %v", err)
	}
	if len(years) != 2 {
		t.Fatalf("got %d years, want 2: %v", len(years), years)
	}
	if years[0].Year != 2024 || years[0].Plays != 2 {
		t.Errorf("years[0] = %+v, want 2024 with 2 plays", years[0])
	}
	if years[1].Year != 2023 || years[1].Plays != 1 {
		t.Errorf("years[1] = %+v, want 2023 with 1 play", years[1])
	}
}

func TestRecent(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, time.May, 1, 9, 0, 0, 0, time.Local)
	for i := 0; i < 5; i++ {
		if _, err := store.Add(ctx, testRecord(base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("Add: %v", err)
		}
	}

	plays, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(plays) != 3 {
		t.Fatalf("got %d plays, want 3", len(plays))
	}
	if !plays[0].Timestamp.Equal(base.Add(4 * time.Hour)) {
		t.Errorf("expected newest play first, got %v", plays[0].Timestamp)
	}
}

func TestCount(t *testing.T) {
	store := createTestStore(t)
	ctx := context.Background()

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}

	if _, err := store.Add(ctx, testRecord(time.Now())); err != nil {
		t.Fatalf("Add: %v", err)
	}

	count, err = store.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}
