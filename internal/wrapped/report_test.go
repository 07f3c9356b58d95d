package wrapped

import (
	"reflect"
	"testing"
	"time"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

// yearOfRecords builds a plausible year: an obsession block plus scattered
// album listening
func yearOfRecords() []history.PlayRecord {
	var records []history.PlayRecord

	// Weeks 10-12: heavy single-artist listening (40 plays/week ≈ 2.3h)
	for week := 10; week <= 12; week++ {
		monday := weekStart(2024, week)
		for i := 0; i < 40; i++ {
			records = append(records, history.PlayRecord{
				Timestamp:        monday.Add(time.Duration(i) * 30 * time.Minute),
				Artist:           "Alvvays",
				Album:            "Blue Rev",
				Title:            "Track",
				TrackNumber:      i%14 + 1,
				AlbumTrackCount:  14,
				DurationListened: 3 * time.Minute,
			})
		}
	}

	// A sequential full-album session in the autumn
	base := time.Date(2024, time.October, 5, 21, 0, 0, 0, time.UTC)
	for i := 1; i <= 10; i++ {
		records = append(records, history.PlayRecord{
			Timestamp:        base.Add(time.Duration(i) * 4 * time.Minute),
			Artist:           "Duster",
			Album:            "Stratosphere",
			Title:            "Track",
			TrackNumber:      i,
			AlbumTrackCount:  10,
			DurationListened: 3 * time.Minute,
		})
	}

	return records
}

func TestBuildReport(t *testing.T) {
	records := yearOfRecords()
	report := BuildReport(records, 2024, DefaultConfig())

	if report.Year != 2024 {
		t.Errorf("Year = %d, want 2024", report.Year)
	}
	if report.TotalPlays != len(records) {
		t.Errorf("TotalPlays = %d, want %d", report.TotalPlays, len(records))
	}
	if len(report.Obsessions) == 0 {
		t.Fatal("expected an obsession period")
	}
	if report.Diversity != nil {
		t.Error("Diversity must be nil when obsessions exist")
	}

	top := report.Obsessions[0]
	if top.Artist != "Alvvays" {
		t.Errorf("top obsession artist = %q, want Alvvays", top.Artist)
	}
	if top.DurationWeeks != 3 {
		t.Errorf("DurationWeeks = %d, want 3", top.DurationWeeks)
	}

	if report.Profile.TotalAlbumSessions == 0 {
		t.Error("expected album sessions in the profile")
	}
	if report.Profile.ListenerType == "" || report.Profile.PersonalityInsight == "" {
		t.Error("profile missing classification")
	}
}

func TestBuildReportDiverseListener(t *testing.T) {
	// Light, spread-out listening: no week qualifies
	var records []history.PlayRecord
	artists := []string{"A", "B", "C", "D", "E", "F"}
	for i, artist := range artists {
		records = append(records, history.PlayRecord{
			Timestamp:        weekStart(2024, i+1).Add(12 * time.Hour),
			Artist:           artist,
			Album:            "Album",
			Title:            "Track",
			DurationListened: 3 * time.Minute,
		})
	}

	report := BuildReport(records, 2024, DefaultConfig())
	if len(report.Obsessions) != 0 {
		t.Fatalf("expected no obsessions, got %+v", report.Obsessions)
	}
	if report.Diversity == nil {
		t.Fatal("expected a diversity summary")
	}
	if report.Diversity.UniqueArtists != 6 || report.Diversity.TotalPlays != 6 {
		t.Errorf("Diversity = %+v, want 6 artists / 6 plays", report.Diversity)
	}
}

func TestBuildReportEmpty(t *testing.T) {
	report := BuildReport(nil, 2024, DefaultConfig())

	if len(report.Obsessions) != 0 || len(report.Weeks) != 0 {
		t.Errorf("expected empty analysis, got %+v", report)
	}
	if report.Diversity == nil {
		t.Error("empty year still gets a diversity summary")
	}
	if report.Profile.TotalAlbumSessions != 0 {
		t.Errorf("TotalAlbumSessions = %d, want 0", report.Profile.TotalAlbumSessions)
	}
	if report.Profile.ListenerType == "" {
		t.Error("empty profile still gets a label")
	}
}

func TestBuildReportIdempotent(t *testing.T) {
	records := yearOfRecords()

	first := BuildReport(records, 2024, DefaultConfig())
	second := BuildReport(records, 2024, DefaultConfig())

	if !reflect.DeepEqual(first, second) {
		t.Error("running the pipeline twice over the same records produced different reports")
	}
}
