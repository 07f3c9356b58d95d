package tracker

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/nielsjsc/musicbee-wrapped/internal/music"
)

// Update represents an observation from the music client
type Update struct {
	Track *music.Track // Current track (nil if stopped/no player)
	Err   error        // Error from the music client
}

// Poller polls the music client at regular intervals
type Poller struct {
	client   music.Client
	interval time.Duration
	logger   zerolog.Logger
}

// NewPoller creates a new Poller instance
func NewPoller(client music.Client, interval time.Duration, logger zerolog.Logger) *Poller {
	return &Poller{
		client:   client,
		interval: interval,
		logger:   logger.With().Str("component", "poller").Logger(),
	}
}

// Run starts the polling loop and sends updates to the provided channel.
// Blocks until context is cancelled.
func (p *Poller) Run(ctx context.Context, updates chan<- Update) error {
	p.logger.Info().
		Dur("interval", p.interval).
		Msg("Starting poller")

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Poll immediately on start
	p.poll(ctx, updates)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info().Msg("Poller stopped")
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, updates)
		}
	}
}

// poll queries the music client and sends an update
func (p *Poller) poll(ctx context.Context, updates chan<- Update) {
	track, err := p.client.GetCurrentTrack(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Msg("Error getting current track")
		select {
		case updates <- Update{Err: err}:
		case <-ctx.Done():
		}
		return
	}

	select {
	case updates <- Update{Track: track}:
		if track != nil {
			p.logger.Debug().
				Str("title", track.Title).
				Str("artist", track.Artist).
				Str("state", track.State.String()).
				Msg("Poll update")
		}
	case <-ctx.Done():
	}
}
