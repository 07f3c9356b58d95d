package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "wrapped",
	Short: "Music listening tracker and year-in-review analyzer",
	Long: `wrapped tracks what you actually listen to and turns a year of plays
into a year-in-review report.

A background daemon watches the active MPRIS media player, filters out skips
and previews, and records validated plays to a local database. The wrapped
command then analyzes a year of plays for single-artist obsession periods
and your album listening personality.`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
