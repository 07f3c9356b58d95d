// Package wrapped derives year-in-review listening insights from a year of
// play records: weekly artist totals, single-artist obsession periods, album
// listening sessions, and a listener personality profile.
package wrapped

import (
	"sort"
	"strings"
	"time"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

// EstimatedMinutesPerPlay is the fixed per-play listening estimate used for
// all reported hour totals. The numbers the original reports were built on
// use this estimate rather than actual play durations; keep it so the
// reported hours stay comparable.
const EstimatedMinutesPerPlay = 3.5

// Sentinels substituted for empty metadata at the point of use
const (
	UnknownArtist = "Unknown Artist"
	UnknownAlbum  = "Unknown Album"
)

// WeeklyBucket holds one ISO week's listening, broken down by artist.
// Hours are play-count estimates (EstimatedMinutesPerPlay per play).
type WeeklyBucket struct {
	Year        int                // ISO week-numbering year
	Week        int                // ISO week number (Monday start, Jan-4 rule)
	ArtistHours map[string]float64 // Display artist name -> estimated hours
	TotalHours  float64
}

// AggregateWeekly buckets records into ISO weeks with per-artist hour totals.
// Weeks with no plays are absent from the result. Artists are merged
// case-insensitively; the first spelling seen is kept for display.
func AggregateWeekly(records []history.PlayRecord) []WeeklyBucket {
	type weekKey struct{ year, week int }

	buckets := make(map[weekKey]*WeeklyBucket)
	display := make(map[weekKey]map[string]string) // lowercased -> display name

	hoursPerPlay := EstimatedMinutesPerPlay / 60.0

	for _, rec := range records {
		year, week := rec.Timestamp.ISOWeek()
		key := weekKey{year, week}

		bucket, ok := buckets[key]
		if !ok {
			bucket = &WeeklyBucket{
				Year:        year,
				Week:        week,
				ArtistHours: make(map[string]float64),
			}
			buckets[key] = bucket
			display[key] = make(map[string]string)
		}

		artist := rec.Artist
		if artist == "" {
			artist = UnknownArtist
		}
		lower := strings.ToLower(artist)
		name, ok := display[key][lower]
		if !ok {
			name = artist
			display[key][lower] = artist
		}

		bucket.ArtistHours[name] += hoursPerPlay
		bucket.TotalHours += hoursPerPlay
	}

	result := make([]WeeklyBucket, 0, len(buckets))
	for _, b := range buckets {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Year != result[j].Year {
			return result[i].Year < result[j].Year
		}
		return result[i].Week < result[j].Week
	})

	return result
}

// weekStart returns the Monday of the given ISO week
func weekStart(year, week int) time.Time {
	// January 4th is always in ISO week 1
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	weekday := int(jan4.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	monday := jan4.AddDate(0, 0, 1-weekday)
	return monday.AddDate(0, 0, (week-1)*7)
}

// weekEnd returns the Sunday of the given ISO week
func weekEnd(year, week int) time.Time {
	return weekStart(year, week).AddDate(0, 0, 6)
}
