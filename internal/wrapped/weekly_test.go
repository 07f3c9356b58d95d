package wrapped

import (
	"math"
	"testing"
	"time"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

func play(ts time.Time, artist string) history.PlayRecord {
	return history.PlayRecord{
		Timestamp:        ts,
		Artist:           artist,
		Album:            "Some Album",
		Title:            "Some Track",
		DurationListened: 200 * time.Second,
	}
}

// playsInWeek generates n plays spread across the given ISO week
func playsInWeek(year, week int, artist string, n int) []history.PlayRecord {
	monday := weekStart(year, week)
	records := make([]history.PlayRecord, 0, n)
	for i := 0; i < n; i++ {
		ts := monday.Add(time.Duration(i) * time.Hour)
		records = append(records, play(ts, artist))
	}
	return records
}

func TestAggregateWeeklyTotalsMatchPlayCount(t *testing.T) {
	var records []history.PlayRecord
	records = append(records, playsInWeek(2024, 10, "Caroline Polachek", 20)...)
	records = append(records, playsInWeek(2024, 11, "Sufjan Stevens", 13)...)
	records = append(records, playsInWeek(2024, 30, "Caroline Polachek", 7)...)

	buckets := AggregateWeekly(records)

	var total float64
	for _, b := range buckets {
		total += b.TotalHours
	}

	want := float64(len(records)) * EstimatedMinutesPerPlay / 60.0
	if math.Abs(total-want) > 1e-9 {
		t.Errorf("sum of weekly totals = %v, want %v", total, want)
	}
}

func TestAggregateWeeklySparseWeeks(t *testing.T) {
	var records []history.PlayRecord
	records = append(records, playsInWeek(2024, 10, "Caroline Polachek", 3)...)
	records = append(records, playsInWeek(2024, 14, "Caroline Polachek", 3)...)

	buckets := AggregateWeekly(records)

	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2 (empty weeks must be absent)", len(buckets))
	}
	if buckets[0].Week != 10 || buckets[1].Week != 14 {
		t.Errorf("weeks = %d, %d; want 10, 14", buckets[0].Week, buckets[1].Week)
	}
}

func TestAggregateWeeklyCaseInsensitiveArtists(t *testing.T) {
	monday := weekStart(2024, 5)
	records := []history.PlayRecord{
		play(monday, "beach house"),
		play(monday.Add(time.Hour), "Beach House"),
		play(monday.Add(2*time.Hour), "BEACH HOUSE"),
	}

	buckets := AggregateWeekly(records)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}

	bucket := buckets[0]
	if len(bucket.ArtistHours) != 1 {
		t.Fatalf("got %d artists, want 1 (case-insensitive merge): %v", len(bucket.ArtistHours), bucket.ArtistHours)
	}

	hours, ok := bucket.ArtistHours["beach house"]
	if !ok {
		t.Fatalf("expected first-seen spelling as display name, got %v", bucket.ArtistHours)
	}
	want := 3 * EstimatedMinutesPerPlay / 60.0
	if math.Abs(hours-want) > 1e-9 {
		t.Errorf("hours = %v, want %v", hours, want)
	}
}

func TestAggregateWeeklyUnknownArtistSentinel(t *testing.T) {
	records := []history.PlayRecord{play(weekStart(2024, 5), "")}

	buckets := AggregateWeekly(records)
	if len(buckets) != 1 {
		t.Fatalf("got %d buckets, want 1", len(buckets))
	}
	if _, ok := buckets[0].ArtistHours[UnknownArtist]; !ok {
		t.Errorf("empty artist not substituted: %v", buckets[0].ArtistHours)
	}
}

func TestAggregateWeeklyEmpty(t *testing.T) {
	if buckets := AggregateWeekly(nil); len(buckets) != 0 {
		t.Errorf("expected no buckets for no records, got %v", buckets)
	}
}

func TestAggregateWeeklyUsesEstimateNotActualDuration(t *testing.T) {
	monday := weekStart(2024, 5)
	rec := play(monday, "Grouper")
	rec.DurationListened = 2 * time.Hour // real duration must not leak into hours

	buckets := AggregateWeekly([]history.PlayRecord{rec})
	want := EstimatedMinutesPerPlay / 60.0
	if math.Abs(buckets[0].TotalHours-want) > 1e-9 {
		t.Errorf("TotalHours = %v, want fixed estimate %v", buckets[0].TotalHours, want)
	}
}

func TestWeekStart(t *testing.T) {
	tests := []struct {
		year, week int
		want       string
	}{
		{2024, 1, "2024-01-01"},  // Jan 1 2024 is a Monday in week 1
		{2024, 10, "2024-03-04"},
		{2021, 1, "2021-01-04"},  // Jan 1-3 2021 belong to ISO 2020
		{2026, 1, "2025-12-29"},  // Week 1 of 2026 starts in December 2025
	}

	for _, tt := range tests {
		got := weekStart(tt.year, tt.week).Format("2006-01-02")
		if got != tt.want {
			t.Errorf("weekStart(%d, %d) = %s, want %s", tt.year, tt.week, got, tt.want)
		}
	}
}

func TestWeekStartAgreesWithISOWeek(t *testing.T) {
	// Every Monday of 2024 must round-trip through ISOWeek -> weekStart
	d := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	for d.Year() == 2024 {
		year, week := d.ISOWeek()
		if got := weekStart(year, week); !got.Equal(d) {
			t.Errorf("weekStart(%d, %d) = %v, want %v", year, week, got, d)
		}
		d = d.AddDate(0, 0, 7)
	}
}
