package tracker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
	"github.com/nielsjsc/musicbee-wrapped/internal/music"
)

// DefaultMinListen is the minimum active play time below which a play is
// treated as a skip and discarded
const DefaultMinListen = 5 * time.Second

// DefaultMaxTrackedPlay bounds how long a play accumulates when the player
// never reports the track's duration. Once crossed, the play is flushed and
// accumulation restarts, so a missed stop notification cannot swallow a
// long listen.
const DefaultMaxTrackedPlay = 10 * time.Minute

// durationGrace is added to the player-reported track duration when deciding
// that a play has outlived its track and should be flushed
const durationGrace = 30 * time.Second

// Clock abstracts time.Now so tests can drive the tracker deterministically
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Config holds tracker thresholds
type Config struct {
	MinListen      time.Duration // Minimum active time for a play to count
	MaxTrackedPlay time.Duration // Safety window when track duration is unknown
}

// DefaultConfig returns the standard tracker thresholds
func DefaultConfig() Config {
	return Config{
		MinListen:      DefaultMinListen,
		MaxTrackedPlay: DefaultMaxTrackedPlay,
	}
}

// session is the mutable state for the track currently being listened to
type session struct {
	track        *music.Track
	startTime    time.Time     // Start of the listen (PlayRecord timestamp)
	segmentStart time.Time     // Start of the current playing segment (zero while paused)
	pausedAt     time.Time     // When the track was paused (zero while playing)
	accumulated  time.Duration // Completed active play time, pauses excluded
}

// Tracker converts raw player observations into validated play records.
//
// Observe (driven by player notifications/polls) and Tick (driven by a
// periodic timer) both finalize in-progress plays, so all session state is
// guarded by one mutex.
type Tracker struct {
	mu      sync.Mutex
	cfg     Config
	clock   Clock
	logger  zerolog.Logger
	current session
}

// New creates a Tracker with the given thresholds
func New(cfg Config, logger zerolog.Logger) *Tracker {
	return NewWithClock(cfg, systemClock{}, logger)
}

// NewWithClock creates a Tracker with an injected clock, for tests
func NewWithClock(cfg Config, clock Clock, logger zerolog.Logger) *Tracker {
	if cfg.MinListen <= 0 {
		cfg.MinListen = DefaultMinListen
	}
	if cfg.MaxTrackedPlay <= 0 {
		cfg.MaxTrackedPlay = DefaultMaxTrackedPlay
	}
	return &Tracker{
		cfg:    cfg,
		clock:  clock,
		logger: logger.With().Str("component", "tracker").Logger(),
	}
}

// Observe feeds the tracker one player observation. It returns a finalized
// PlayRecord when the observation ended a qualifying play (track changed or
// playback stopped), or nil otherwise.
func (t *Tracker) Observe(track *music.Track) *history.PlayRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.clock.Now()

	// Stopped, or no player: finalize whatever was in flight
	if track == nil || track.State == music.StateStopped {
		rec := t.finalizeLocked(now)
		t.current = session{}
		return rec
	}

	// New listen
	if t.current.track == nil {
		t.startLocked(track, now)
		return nil
	}

	// Track changed: finalize the old play, start the new one
	if !isSameTrack(t.current.track, track) {
		rec := t.finalizeLocked(now)
		t.startLocked(track, now)
		return rec
	}

	// Same track: a repeated notification for the state we are already in is
	// a no-op, so duplicate track-changed events never double-count
	switch track.State {
	case music.StatePlaying:
		if !t.current.pausedAt.IsZero() {
			// Resume: paused time is simply not accumulated
			t.current.segmentStart = now
			t.current.pausedAt = time.Time{}
		}
	case music.StatePaused:
		if t.current.pausedAt.IsZero() {
			t.current.accumulated += now.Sub(t.current.segmentStart)
			t.current.segmentStart = time.Time{}
			t.current.pausedAt = now
		}
	}

	// Keep the freshest metadata; some players fill in duration or track
	// numbers a beat after the track change
	t.current.track = track

	return nil
}

// Tick re-evaluates the in-progress play on the periodic timer. If the track
// has been playing past its safety window (its reported duration plus grace,
// or MaxTrackedPlay when the duration is unknown), the play is recorded and
// accumulation restarts. This guarantees a long-running track is captured
// even if the player's stop notification never arrives.
func (t *Tracker) Tick() *history.PlayRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current.track == nil || t.current.track.State != music.StatePlaying {
		return nil
	}

	now := t.clock.Now()
	window := t.cfg.MaxTrackedPlay
	if d := t.current.track.Duration; d > 0 {
		window = d + durationGrace
	}

	if t.activeLocked(now) < window {
		return nil
	}

	rec := t.finalizeLocked(now)
	// Restart accumulation for the (apparently still playing) track
	t.startLocked(t.current.track, now)
	return rec
}

// Flush finalizes and clears the in-progress play. Called on shutdown so a
// qualifying listen in flight is not lost.
func (t *Tracker) Flush() *history.PlayRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec := t.finalizeLocked(t.clock.Now())
	t.current = session{}
	return rec
}

// Active returns the accumulated active play time of the in-progress track
func (t *Tracker) Active() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.activeLocked(t.clock.Now())
}

// startLocked begins a fresh session for track. Must be called with the lock
// held.
func (t *Tracker) startLocked(track *music.Track, now time.Time) {
	t.current = session{
		track:     track,
		startTime: now,
	}
	switch track.State {
	case music.StatePlaying:
		t.current.segmentStart = now
	case music.StatePaused:
		// A listen can begin paused (e.g. daemon started mid-pause); nothing
		// accumulates until the player resumes
		t.current.pausedAt = now
	}
}

// activeLocked returns accumulated active time as of now. Must be called with
// the lock held.
func (t *Tracker) activeLocked(now time.Time) time.Duration {
	active := t.current.accumulated
	if t.current.track != nil && !t.current.segmentStart.IsZero() {
		active += now.Sub(t.current.segmentStart)
	}
	return active
}

// finalizeLocked evaluates the in-progress play and returns a PlayRecord if
// it crossed the minimum-listen threshold, nil if it was a skip. The session
// is left untouched; callers clear or restart it. Must be called with the
// lock held.
func (t *Tracker) finalizeLocked(now time.Time) *history.PlayRecord {
	if t.current.track == nil {
		return nil
	}

	active := t.activeLocked(now)
	if active < t.cfg.MinListen {
		if active > 0 {
			t.logger.Debug().
				Str("title", t.current.track.Title).
				Dur("active", active).
				Msg("Discarding skip")
		}
		return nil
	}

	track := t.current.track
	t.logger.Info().
		Str("title", track.Title).
		Str("artist", track.Artist).
		Dur("active", active).
		Msg("Recording play")

	return &history.PlayRecord{
		Timestamp:        t.current.startTime,
		Artist:           track.Artist,
		Album:            track.Album,
		Title:            track.Title,
		TrackNumber:      track.TrackNumber,
		AlbumTrackCount:  track.AlbumTrackCount,
		DurationListened: active,
		SourceID:         track.SourceID,
	}
}

// isSameTrack compares two tracks to determine if they're the same
func isSameTrack(t1, t2 *music.Track) bool {
	if t1 == nil || t2 == nil {
		return false
	}
	if t1.SourceID != "" && t2.SourceID != "" {
		return t1.SourceID == t2.SourceID
	}
	return t1.Title == t2.Title &&
		t1.Artist == t2.Artist &&
		t1.Album == t2.Album
}
