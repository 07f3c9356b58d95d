package wrapped

import "fmt"

// Listener archetype labels
const (
	TypeAlbumPurist      = "Album Purist"
	TypeBalancedListener = "Balanced Listener"
	TypeTrackShuffler    = "Track Shuffler"
	TypeMoodCurator      = "Mood Curator"
)

// Classify maps an album-behavior profile to a listener archetype and a
// narrative. The checks are a priority list evaluated in order; the first
// match wins, so reordering them changes the classification.
func Classify(p Profile) (listenerType, insight string) {
	switch {
	case p.FullAlbumPercentage >= 70:
		return TypeAlbumPurist, fmt.Sprintf(
			"You listen to albums the way artists intended: %.0f%% of your album sessions were full plays, "+
				"and %.0f%% followed the track order front to back. Albums are journeys for you, not playlists.",
			p.FullAlbumPercentage, p.SequentialListeningPercentage)
	case p.FullAlbumPercentage >= 40:
		return TypeBalancedListener, fmt.Sprintf(
			"You move between deep album listens and single tracks: %.0f%% of your %d album sessions were full plays, "+
				"averaging %.1f tracks per sitting. You give albums a fair shot without being precious about it.",
			p.FullAlbumPercentage, p.TotalAlbumSessions, p.AverageTracksPerAlbumSession)
	case p.AverageTracksPerAlbumSession < 2:
		return TypeTrackShuffler, fmt.Sprintf(
			"You chase songs, not albums: your sessions averaged just %.1f tracks per album, "+
				"and only %.0f%% of them were full plays. The shuffle button is your co-pilot.",
			p.AverageTracksPerAlbumSession, p.FullAlbumPercentage)
	default:
		return TypeMoodCurator, fmt.Sprintf(
			"You pull a few tracks at a time from the albums that fit the moment, averaging %.1f tracks "+
				"across %d sessions. You curate by mood rather than committing to full albums (%.0f%% full plays).",
			p.AverageTracksPerAlbumSession, p.TotalAlbumSessions, p.FullAlbumPercentage)
	}
}
