package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nielsjsc/musicbee-wrapped/internal/config"
	"github.com/nielsjsc/musicbee-wrapped/internal/daemon"
	"github.com/nielsjsc/musicbee-wrapped/internal/music"
	"github.com/nielsjsc/musicbee-wrapped/internal/tracker"
)

var (
	daemonLogFile  string
	daemonLogLevel string
	daemonDataDir  string
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the play tracking daemon",
	Long: `Run the daemon that watches the active media player and records plays.

The daemon will:
- Poll the player every second over MPRIS to detect track and state changes
- Track active play time, excluding pauses
- Discard skips and previews shorter than the minimum listen threshold (5s)
- Record a play even when the player's stop notification goes missing
- Handle graceful shutdown on SIGINT/SIGTERM, flushing the in-flight play

The daemon runs in the foreground and logs to stderr by default.
Use the --log-file flag to log to a file (useful for a systemd unit).`,
	RunE: runDaemon,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().StringVar(&daemonLogFile, "log-file", "", "Log file path (default: stderr)")
	daemonCmd.Flags().StringVar(&daemonLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	daemonCmd.Flags().StringVar(&daemonDataDir, "data-dir", "", "Data directory for the play database (default: ~/.local/share/wrapped)")
}

func runDaemon(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if daemonDataDir != "" {
		cfg.DataDir = daemonDataDir
	}

	logger := setupLogger(daemonLogFile, daemonLogLevel)

	logger.Info().
		Str("version", version).
		Msg("Starting wrapped daemon")

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	logger.Info().Str("data_dir", cfg.DataDir).Msg("Using data directory")

	musicClient, err := music.NewMPRISClient()
	if err != nil {
		return fmt.Errorf("failed to connect to the session bus: %w", err)
	}
	defer musicClient.Close()

	daemonCfg := daemon.Config{
		PollInterval: time.Duration(cfg.PollInterval) * time.Second,
		TickInterval: time.Second,
		DBPath:       cfg.DBPath(),
		Tracker: tracker.Config{
			MinListen:      time.Duration(cfg.MinListenSeconds) * time.Second,
			MaxTrackedPlay: time.Duration(cfg.MaxTrackedPlayMinutes) * time.Minute,
		},
	}

	d, err := daemon.New(daemonCfg, musicClient, logger)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	// Blocks until shutdown signal
	if err := d.Run(); err != nil {
		return fmt.Errorf("daemon error: %w", err)
	}

	if err := d.Shutdown(); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		return err
	}

	logger.Info().Msg("Daemon stopped")
	return nil
}

// setupLogger creates a logger with the specified configuration
func setupLogger(logFile, logLevel string) zerolog.Logger {
	level := zerolog.InfoLevel
	switch logLevel {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output *os.File
	if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
			output = os.Stderr
		} else {
			output = f
		}
	} else {
		output = os.Stderr
	}

	logger := zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()

	// Use pretty console output if logging to stderr
	if output == os.Stderr {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return logger
}
