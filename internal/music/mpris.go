package music

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	mprisPrefix     = "org.mpris.MediaPlayer2."
	mprisPath       = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// MPRISClient implements the Client interface over the MPRIS D-Bus interface,
// which most Linux music players (including MusicBee under Wine shims,
// Spotify, mpd frontends, etc.) expose on the session bus.
type MPRISClient struct {
	conn *dbus.Conn

	mu     sync.Mutex
	player string // cached bus name of the active player
}

// NewMPRISClient connects to the D-Bus session bus
func NewMPRISClient() (*MPRISClient, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to session bus: %w", err)
	}
	return &MPRISClient{conn: conn}, nil
}

// Close releases the D-Bus connection
func (c *MPRISClient) Close() error {
	return c.conn.Close()
}

// GetCurrentTrack returns the current track of the first MPRIS player found
// on the bus, or nil if no player is running
func (c *MPRISClient) GetCurrentTrack(ctx context.Context) (*Track, error) {
	name, err := c.findPlayer(ctx)
	if err != nil {
		return nil, err
	}
	if name == "" {
		return nil, nil
	}

	obj := c.conn.Object(name, mprisPath)

	status, err := getProperty(ctx, obj, "PlaybackStatus")
	if err != nil {
		// Player vanished between ListNames and the property read
		c.forgetPlayer(name)
		return nil, fmt.Errorf("failed to read playback status: %w", err)
	}

	state := parsePlaybackStatus(status)
	if state == StateStopped {
		return &Track{State: StateStopped}, nil
	}

	meta, err := getProperty(ctx, obj, "Metadata")
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata: %w", err)
	}

	metaMap, _ := meta.Value().(map[string]dbus.Variant)
	track := parseMetadata(metaMap)
	track.State = state

	if pos, err := getProperty(ctx, obj, "Position"); err == nil {
		if us, ok := asInt64(pos.Value()); ok {
			track.Position = time.Duration(us) * time.Microsecond
		}
	}

	return track, nil
}

// findPlayer returns the bus name of an MPRIS player, preferring the cached
// one if it is still present on the bus
func (c *MPRISClient) findPlayer(ctx context.Context) (string, error) {
	var names []string
	err := c.conn.BusObject().CallWithContext(ctx, "org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return "", fmt.Errorf("failed to list bus names: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var found string
	for _, n := range names {
		if !strings.HasPrefix(n, mprisPrefix) {
			continue
		}
		if n == c.player {
			return n, nil
		}
		if found == "" {
			found = n
		}
	}
	c.player = found
	return found, nil
}

func (c *MPRISClient) forgetPlayer(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.player == name {
		c.player = ""
	}
}

func getProperty(ctx context.Context, obj dbus.BusObject, prop string) (dbus.Variant, error) {
	var v dbus.Variant
	err := obj.CallWithContext(ctx, propsInterface+".Get", 0, playerInterface, prop).Store(&v)
	return v, err
}

func parsePlaybackStatus(v dbus.Variant) PlayState {
	s, _ := v.Value().(string)
	switch s {
	case "Playing":
		return StatePlaying
	case "Paused":
		return StatePaused
	default:
		return StateStopped
	}
}

// parseMetadata maps the MPRIS metadata dictionary onto a Track. Players are
// inconsistent about which keys they populate and with what integer widths,
// so every field is read defensively; missing fields stay zero.
func parseMetadata(meta map[string]dbus.Variant) *Track {
	track := &Track{}
	if meta == nil {
		return track
	}

	if v, ok := meta["xesam:title"]; ok {
		track.Title, _ = v.Value().(string)
	}
	if v, ok := meta["xesam:album"]; ok {
		track.Album, _ = v.Value().(string)
	}
	if v, ok := meta["xesam:artist"]; ok {
		switch artists := v.Value().(type) {
		case []string:
			if len(artists) > 0 {
				track.Artist = artists[0]
			}
		case string:
			track.Artist = artists
		}
	}
	if v, ok := meta["xesam:trackNumber"]; ok {
		if n, ok := asInt64(v.Value()); ok {
			track.TrackNumber = int(n)
		}
	}
	if v, ok := meta["mpris:length"]; ok {
		if us, ok := asInt64(v.Value()); ok {
			track.Duration = time.Duration(us) * time.Microsecond
		}
	}
	if v, ok := meta["xesam:url"]; ok {
		track.SourceID, _ = v.Value().(string)
	}
	if track.SourceID == "" {
		if v, ok := meta["mpris:trackid"]; ok {
			if p, ok := v.Value().(dbus.ObjectPath); ok {
				track.SourceID = string(p)
			}
		}
	}

	return track
}

// asInt64 normalizes the integer types D-Bus players use interchangeably
func asInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case uint32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
