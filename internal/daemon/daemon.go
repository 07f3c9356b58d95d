package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/nielsjsc/musicbee-wrapped/internal/history"
	"github.com/nielsjsc/musicbee-wrapped/internal/music"
	"github.com/nielsjsc/musicbee-wrapped/internal/tracker"
)

// Config holds daemon configuration
type Config struct {
	PollInterval time.Duration // How often to poll the player
	TickInterval time.Duration // How often to re-evaluate the in-progress play
	DBPath       string        // Path to the play history database
	Tracker      tracker.Config
}

// Daemon coordinates the player poller, the play tracker, and the history
// store
type Daemon struct {
	config  Config
	client  music.Client
	store   *history.Store
	tracker *tracker.Tracker
	poller  *tracker.Poller
	logger  zerolog.Logger
}

// New creates a new Daemon instance
func New(cfg Config, musicClient music.Client, logger zerolog.Logger) (*Daemon, error) {
	store, err := history.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return &Daemon{
		config:  cfg,
		client:  musicClient,
		store:   store,
		tracker: tracker.New(cfg.Tracker, logger),
		poller:  tracker.NewPoller(musicClient, cfg.PollInterval, logger),
		logger:  logger.With().Str("component", "daemon").Logger(),
	}, nil
}

// Run starts the daemon and blocks until a shutdown signal is received
func (d *Daemon) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Handle first signal gracefully, second signal forces exit
	go func() {
		<-sigChan
		d.logger.Info().Msg("Shutdown signal received, initiating graceful shutdown")
		cancel()

		<-sigChan
		d.logger.Warn().Msg("Second shutdown signal received, forcing exit")
		os.Exit(1)
	}()

	if err := d.run(ctx); err != nil && err != context.Canceled {
		return err
	}

	return nil
}

// run is the main daemon loop
func (d *Daemon) run(ctx context.Context) error {
	d.logger.Info().Msg("Starting daemon")

	var wg sync.WaitGroup
	updates := make(chan tracker.Update, 10)

	// Start poller
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := d.poller.Run(ctx, updates); err != nil && err != context.Canceled {
			d.logger.Error().Err(err).Msg("Poller error")
		}
	}()

	// Periodic re-evaluation of the in-progress play
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.runTicker(ctx)
	}()

	// Main loop: handle player updates
	wg.Add(1)
	go func() {
		defer wg.Done()
		d.handleUpdates(ctx, updates)
	}()

	wg.Wait()

	d.logger.Info().Msg("Daemon stopped")
	return nil
}

// handleUpdates processes player observations from the poller
func (d *Daemon) handleUpdates(ctx context.Context, updates <-chan tracker.Update) {
	for {
		select {
		case <-ctx.Done():
			return
		case update := <-updates:
			if update.Err != nil {
				// Player gone or D-Bus hiccup; keep polling
				d.logger.Debug().Err(update.Err).Msg("Track update error")
				continue
			}
			if rec := d.tracker.Observe(update.Track); rec != nil {
				d.savePlay(ctx, rec)
			}
		}
	}
}

// runTicker drives the tracker's liveness check so a play that never gets a
// stop notification is still recorded
func (d *Daemon) runTicker(ctx context.Context) {
	ticker := time.NewTicker(d.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if rec := d.tracker.Tick(); rec != nil {
				d.savePlay(ctx, rec)
			}
		}
	}
}

// savePlay hands a completed play record to the store. A storage failure is
// logged, never propagated; the streaming path must not stall on the store.
func (d *Daemon) savePlay(ctx context.Context, rec *history.PlayRecord) {
	id, err := d.store.Add(ctx, *rec)
	if err != nil {
		d.logger.Error().
			Err(err).
			Str("title", rec.Title).
			Str("artist", rec.Artist).
			Msg("Failed to save play")
		return
	}

	d.logger.Info().
		Int64("id", id).
		Str("title", rec.Title).
		Str("artist", rec.Artist).
		Dur("listened", rec.DurationListened).
		Msg("Play saved")
}

// Shutdown flushes the in-flight play and closes the store
func (d *Daemon) Shutdown() error {
	d.logger.Info().Msg("Shutting down daemon")

	ctx := context.Background()
	if rec := d.tracker.Flush(); rec != nil {
		d.savePlay(ctx, rec)
	}

	if err := d.store.Close(); err != nil {
		return fmt.Errorf("failed to close history store: %w", err)
	}

	return nil
}
