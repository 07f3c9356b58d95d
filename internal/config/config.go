package config

import (
	"os"
	"path/filepath"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/nielsjsc/musicbee-wrapped/internal/wrapped"
)

// Config holds application configuration
type Config struct {
	// How often the player is polled, in seconds
	PollInterval int

	// Data directory for the play history database
	DataDir string

	// Minimum active play time (seconds) for a play to be recorded
	MinListenSeconds int

	// Safety window (minutes) after which an in-progress play with unknown
	// track duration is flushed
	MaxTrackedPlayMinutes int

	// Analysis thresholds for the wrapped report
	Analysis AnalysisConfig
}

// AnalysisConfig mirrors the wrapped thresholds in config-file-friendly units
type AnalysisConfig struct {
	MinWeeklyHours     float64
	DominanceThreshold float64
	MinArtistHours     float64
	MaxObsessions      int
	SessionGapMinutes  int
	FullAlbumCutoff    float64
}

// Load reads configuration from file and environment
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	configDir := getConfigDir()
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	v.SetDefault("poll_interval", 1)
	v.SetDefault("data_dir", "")
	v.SetDefault("min_listen_seconds", 5)
	v.SetDefault("max_tracked_play_minutes", 10)
	v.SetDefault("analysis.min_weekly_hours", wrapped.DefaultMinWeeklyHours)
	v.SetDefault("analysis.dominance_threshold", wrapped.DefaultDominanceThreshold)
	v.SetDefault("analysis.min_artist_hours", wrapped.DefaultMinArtistHours)
	v.SetDefault("analysis.max_obsessions", wrapped.DefaultMaxObsessions)
	v.SetDefault("analysis.session_gap_minutes", int(wrapped.DefaultSessionGap/time.Minute))
	v.SetDefault("analysis.full_album_cutoff", wrapped.DefaultFullAlbumCutoff)

	// Config file is optional
	_ = v.ReadInConfig()

	v.SetEnvPrefix("WRAPPED")
	v.AutomaticEnv()

	cfg := &Config{
		PollInterval:          v.GetInt("poll_interval"),
		DataDir:               v.GetString("data_dir"),
		MinListenSeconds:      v.GetInt("min_listen_seconds"),
		MaxTrackedPlayMinutes: v.GetInt("max_tracked_play_minutes"),
		Analysis: AnalysisConfig{
			MinWeeklyHours:     v.GetFloat64("analysis.min_weekly_hours"),
			DominanceThreshold: v.GetFloat64("analysis.dominance_threshold"),
			MinArtistHours:     v.GetFloat64("analysis.min_artist_hours"),
			MaxObsessions:      v.GetInt("analysis.max_obsessions"),
			SessionGapMinutes:  v.GetInt("analysis.session_gap_minutes"),
			FullAlbumCutoff:    v.GetFloat64("analysis.full_album_cutoff"),
		},
	}

	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir()
	}

	return cfg, nil
}

// AnalysisThresholds converts the config values into the analysis package's
// threshold structure
func (c *Config) AnalysisThresholds() wrapped.Config {
	return wrapped.Config{
		MinWeeklyHours:     c.Analysis.MinWeeklyHours,
		DominanceThreshold: c.Analysis.DominanceThreshold,
		MinArtistHours:     c.Analysis.MinArtistHours,
		MaxObsessions:      c.Analysis.MaxObsessions,
		SessionGap:         time.Duration(c.Analysis.SessionGapMinutes) * time.Minute,
		FullAlbumCutoff:    c.Analysis.FullAlbumCutoff,
	}
}

// DBPath returns the path of the play history database
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// getConfigDir returns the configuration directory path, creating it if it
// doesn't exist
func getConfigDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "."
	}

	configDir := filepath.Join(home, ".config", "wrapped")
	_ = os.MkdirAll(configDir, 0755)

	return configDir
}

func defaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "wrapped")
}
