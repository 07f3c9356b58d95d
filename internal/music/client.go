package music

import (
	"context"
	"time"
)

// Track represents the player's current track with its metadata and state
type Track struct {
	Title           string        // Track title
	Artist          string        // Artist name (may be empty if the player reports none)
	Album           string        // Album name
	TrackNumber     int           // Position of the track on its album (0 if unknown)
	AlbumTrackCount int           // Total tracks on the album (0 if unknown)
	Duration        time.Duration // Total track duration (0 if unknown)
	Position        time.Duration // Current playback position
	State           PlayState     // Current playback state
	SourceID        string        // Opaque identifier for the underlying file/stream
}

// PlayState represents the current playback state of the music player
type PlayState int

const (
	StateStopped PlayState = iota // No track playing
	StatePlaying                  // Track is currently playing
	StatePaused                   // Track is paused
)

// String returns a human-readable representation of the PlayState
func (s PlayState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Client defines the interface for interacting with a music player
type Client interface {
	// GetCurrentTrack returns the currently playing/paused track, or nil if
	// nothing is playing or no player is available
	GetCurrentTrack(ctx context.Context) (*Track, error)
}
