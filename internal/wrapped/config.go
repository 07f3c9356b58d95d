package wrapped

import "time"

// Default analysis thresholds. Tuned against a single listener's yearly
// history; all are overridable via configuration.
const (
	DefaultMinWeeklyHours     = 1.5
	DefaultDominanceThreshold = 0.5
	DefaultMinArtistHours     = 1.0
	DefaultMaxObsessions      = 3
	DefaultSessionGap         = 30 * time.Minute
	DefaultFullAlbumCutoff    = 0.8
)

// Config holds the analysis thresholds
type Config struct {
	MinWeeklyHours     float64       // Weekly total below this never qualifies for obsession analysis
	DominanceThreshold float64       // Minimum share of the week's hours for the top artist
	MinArtistHours     float64       // Absolute hours floor for the top artist
	MaxObsessions      int           // How many obsession periods to report
	SessionGap         time.Duration // Maximum gap between plays within one album session
	FullAlbumCutoff    float64       // Completion at or above this makes a session full-album
}

// DefaultConfig returns the standard analysis thresholds
func DefaultConfig() Config {
	return Config{
		MinWeeklyHours:     DefaultMinWeeklyHours,
		DominanceThreshold: DefaultDominanceThreshold,
		MinArtistHours:     DefaultMinArtistHours,
		MaxObsessions:      DefaultMaxObsessions,
		SessionGap:         DefaultSessionGap,
		FullAlbumCutoff:    DefaultFullAlbumCutoff,
	}
}
