package wrapped

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

// ObsessionWeek is a weekly bucket dominated by a single artist
type ObsessionWeek struct {
	Year        int
	Week        int
	Artist      string
	ArtistHours float64
	TotalHours  float64
	Dominance   float64            // ArtistHours / TotalHours
	Breakdown   map[string]float64 // Full per-artist hours for the week
}

// ObsessionPeriod is a run of consecutive obsession weeks for one artist
type ObsessionPeriod struct {
	Artist           string
	Year             int
	StartWeek        int
	EndWeek          int
	StartDate        time.Time // Monday of the first week
	EndDate          time.Time // Sunday of the last week
	DurationWeeks    int
	TotalHours       float64
	AverageDominance float64
	PeakDominance    float64
	IntensityScore   float64
	Weeks            []ObsessionWeek
}

// Diversity summarizes a year with no qualifying obsessions
type Diversity struct {
	UniqueArtists int
	TotalPlays    int
}

// DetectObsessions finds periods where one artist dominated consecutive
// weeks, ranked by intensity. Returns at most cfg.MaxObsessions periods;
// an empty slice means a diverse listener, not an error.
func DetectObsessions(buckets []WeeklyBucket, cfg Config) []ObsessionPeriod {
	weeks := qualifyWeeks(buckets, cfg)
	periods := mergeWeeks(weeks)

	sort.SliceStable(periods, func(i, j int) bool {
		if periods[i].IntensityScore != periods[j].IntensityScore {
			return periods[i].IntensityScore > periods[j].IntensityScore
		}
		return periods[i].TotalHours > periods[j].TotalHours
	})

	if len(periods) > cfg.MaxObsessions {
		periods = periods[:cfg.MaxObsessions]
	}
	return periods
}

// qualifyWeeks filters buckets down to obsession-eligible weeks. A week
// qualifies only when it has enough total listening, its top artist holds
// at least the dominance threshold, and that artist clears the absolute
// hours floor; a 100%-dominance week on trivial volume does not count.
func qualifyWeeks(buckets []WeeklyBucket, cfg Config) []ObsessionWeek {
	var weeks []ObsessionWeek

	for _, bucket := range buckets {
		if bucket.TotalHours < cfg.MinWeeklyHours {
			continue
		}

		var topArtist string
		var topHours float64
		for artist, hours := range bucket.ArtistHours {
			if hours > topHours || (hours == topHours && (topArtist == "" || artist < topArtist)) {
				topArtist = artist
				topHours = hours
			}
		}
		if topArtist == "" {
			continue
		}

		dominance := topHours / bucket.TotalHours
		if dominance < cfg.DominanceThreshold || topHours < cfg.MinArtistHours {
			continue
		}

		weeks = append(weeks, ObsessionWeek{
			Year:        bucket.Year,
			Week:        bucket.Week,
			Artist:      topArtist,
			ArtistHours: topHours,
			TotalHours:  bucket.TotalHours,
			Dominance:   dominance,
			Breakdown:   bucket.ArtistHours,
		})
	}

	return weeks
}

// mergeWeeks walks qualifying weeks in order and joins runs of the same
// artist (case-insensitive) with strictly consecutive week numbers in one
// year. Any skipped week ends the period, even if the artist comes back.
func mergeWeeks(weeks []ObsessionWeek) []ObsessionPeriod {
	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year < weeks[j].Year
		}
		return weeks[i].Week < weeks[j].Week
	})

	var periods []ObsessionPeriod
	var run []ObsessionWeek

	flush := func() {
		if len(run) > 0 {
			periods = append(periods, buildPeriod(run))
			run = nil
		}
	}

	for _, week := range weeks {
		if len(run) > 0 {
			last := run[len(run)-1]
			sameArtist := strings.EqualFold(last.Artist, week.Artist)
			consecutive := week.Year == last.Year && week.Week == last.Week+1
			if !sameArtist || !consecutive {
				flush()
			}
		}
		run = append(run, week)
	}
	flush()

	return periods
}

func buildPeriod(weeks []ObsessionWeek) ObsessionPeriod {
	p := ObsessionPeriod{
		Artist:    weeks[0].Artist,
		Year:      weeks[0].Year,
		StartWeek: weeks[0].Week,
		EndWeek:   weeks[len(weeks)-1].Week,
		Weeks:     weeks,
	}
	p.DurationWeeks = p.EndWeek - p.StartWeek + 1
	p.StartDate = weekStart(p.Year, p.StartWeek)
	p.EndDate = weekEnd(p.Year, p.EndWeek)

	var dominanceSum float64
	for _, w := range weeks {
		p.TotalHours += w.ArtistHours
		dominanceSum += w.Dominance
		if w.Dominance > p.PeakDominance {
			p.PeakDominance = w.Dominance
		}
	}
	p.AverageDominance = dominanceSum / float64(len(weeks))

	// Log-scaled duration rewards sustained obsessions without letting
	// length alone outrank a short, extremely concentrated one
	p.IntensityScore = p.TotalHours * p.AverageDominance * math.Log(float64(p.DurationWeeks)+1)

	return p
}

// Diversify computes the fallback summary for a year with no qualifying
// obsession periods
func Diversify(records []history.PlayRecord) Diversity {
	artists := make(map[string]struct{})
	for _, rec := range records {
		artist := rec.Artist
		if artist == "" {
			artist = UnknownArtist
		}
		artists[strings.ToLower(artist)] = struct{}{}
	}
	return Diversity{
		UniqueArtists: len(artists),
		TotalPlays:    len(records),
	}
}
