package history

import (
	"time"
)

// PlayRecord is one validated listening event. Records are created by the
// playback tracker once a track has accumulated enough active play time, and
// are immutable once stored; the analysis pipeline reads them back per year.
type PlayRecord struct {
	ID               int64
	Timestamp        time.Time     // Start of the listen
	Artist           string        // May be empty; substituted at point of use
	Album            string        // May be empty
	Title            string        // May be empty
	TrackNumber      int           // Position on the album (0 if unknown)
	AlbumTrackCount  int           // Total tracks on the album (0 if unknown)
	DurationListened time.Duration // Active play time, pauses excluded
	SourceID         string        // Opaque file/stream identifier
}
