package wrapped

import (
	"sort"
	"strings"
	"time"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

// AlbumSession is a maximal run of same-album plays bounded by a time gap
type AlbumSession struct {
	Artist          string
	Album           string
	Start           time.Time
	End             time.Time
	Plays           int
	TrackNumbers    []int         // Track positions in play order (0 = unknown)
	DistinctTracks  int           // Distinct known track positions touched
	AlbumTrackCount int           // Best-known total tracks on the album
	Sequential      bool          // Play order follows the album's track order
	Completion      float64       // DistinctTracks / AlbumTrackCount
	FullAlbum       bool          // Completion at or above the configured cutoff
	Listened        time.Duration // Total active listening time in the session
}

// AnalyzeAlbumSessions groups a year's plays into album sessions. A new
// session starts when the album changes (artist+album, case-insensitive) or
// the gap since the previous play exceeds cfg.SessionGap.
func AnalyzeAlbumSessions(records []history.PlayRecord, cfg Config) []AlbumSession {
	if len(records) == 0 {
		return nil
	}

	sorted := make([]history.PlayRecord, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	var sessions []AlbumSession
	var run []history.PlayRecord

	flush := func() {
		if len(run) > 0 {
			sessions = append(sessions, buildSession(run, cfg))
			run = nil
		}
	}

	for _, rec := range sorted {
		if len(run) > 0 {
			prev := run[len(run)-1]
			if !sameAlbum(prev, rec) || rec.Timestamp.Sub(prev.Timestamp) > cfg.SessionGap {
				flush()
			}
		}
		run = append(run, rec)
	}
	flush()

	return sessions
}

func sameAlbum(a, b history.PlayRecord) bool {
	return strings.EqualFold(a.Artist, b.Artist) && strings.EqualFold(a.Album, b.Album)
}

func buildSession(run []history.PlayRecord, cfg Config) AlbumSession {
	first := run[0]

	artist := first.Artist
	if artist == "" {
		artist = UnknownArtist
	}
	album := first.Album
	if album == "" {
		album = UnknownAlbum
	}

	s := AlbumSession{
		Artist: artist,
		Album:  album,
		Start:  first.Timestamp,
		End:    run[len(run)-1].Timestamp,
		Plays:  len(run),
	}

	distinct := make(map[int]struct{})
	maxTrack := 0
	for _, rec := range run {
		s.TrackNumbers = append(s.TrackNumbers, rec.TrackNumber)
		s.Listened += rec.DurationListened
		if rec.TrackNumber > 0 {
			distinct[rec.TrackNumber] = struct{}{}
			if rec.TrackNumber > maxTrack {
				maxTrack = rec.TrackNumber
			}
		}
		if rec.AlbumTrackCount > s.AlbumTrackCount {
			s.AlbumTrackCount = rec.AlbumTrackCount
		}
	}
	s.DistinctTracks = len(distinct)

	// Players that don't report the album's track count get the highest
	// track number seen as a floor
	if s.AlbumTrackCount < maxTrack {
		s.AlbumTrackCount = maxTrack
	}

	if s.AlbumTrackCount > 0 {
		s.Completion = float64(s.DistinctTracks) / float64(s.AlbumTrackCount)
	}
	s.Sequential = isSequential(s.TrackNumbers)
	s.FullAlbum = s.AlbumTrackCount > 0 && s.Completion >= cfg.FullAlbumCutoff

	return s
}

// isSequential reports whether the plays followed the album's track order.
// All positions must be known and strictly increasing; a single play can't
// establish an order.
func isSequential(trackNumbers []int) bool {
	if len(trackNumbers) < 2 {
		return false
	}
	for i, n := range trackNumbers {
		if n <= 0 {
			return false
		}
		if i > 0 && n <= trackNumbers[i-1] {
			return false
		}
	}
	return true
}

// Profile aggregates a year of album sessions into the listener's album
// behavior, with the derived personality label and narrative
type Profile struct {
	TotalAlbumSessions            int
	FullAlbumPercentage           float64 // 0-100, share of sessions
	SequentialListeningPercentage float64 // 0-100, share of sessions
	AverageTracksPerAlbumSession  float64 // Mean distinct tracks per session
	NotableSessions               []AlbumSession
	ListenerType                  string
	PersonalityInsight            string
}

// maxNotableSessions caps how many standout sessions the profile keeps
const maxNotableSessions = 3

// BuildProfile reduces album sessions into the listener profile. An empty
// session list yields a zero-valued profile with its own narrative.
func BuildProfile(sessions []AlbumSession) Profile {
	p := Profile{TotalAlbumSessions: len(sessions)}

	if len(sessions) > 0 {
		var fullAlbum, sequential, distinctSum int
		for _, s := range sessions {
			if s.FullAlbum {
				fullAlbum++
			}
			if s.Sequential {
				sequential++
			}
			distinctSum += s.DistinctTracks
		}

		n := float64(len(sessions))
		p.FullAlbumPercentage = float64(fullAlbum) / n * 100
		p.SequentialListeningPercentage = float64(sequential) / n * 100
		p.AverageTracksPerAlbumSession = float64(distinctSum) / n
		p.NotableSessions = notableSessions(sessions)
	}

	p.ListenerType, p.PersonalityInsight = Classify(p)
	return p
}

// notableSessions picks the standout sessions: highest completion first,
// longest listening time as the tie-break
func notableSessions(sessions []AlbumSession) []AlbumSession {
	ranked := make([]AlbumSession, len(sessions))
	copy(ranked, sessions)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Completion != ranked[j].Completion {
			return ranked[i].Completion > ranked[j].Completion
		}
		return ranked[i].Listened > ranked[j].Listened
	})

	if len(ranked) > maxNotableSessions {
		ranked = ranked[:maxNotableSessions]
	}
	return ranked
}
