package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nielsjsc/musicbee-wrapped/internal/config"
	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

var historyLimit int

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded plays and available years",
	Long: `List the most recently recorded plays and the years available for
analysis with their play counts.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of recent plays to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	store, err := history.Open(cfg.DBPath())
	if err != nil {
		return fmt.Errorf("failed to open play history: %w", err)
	}
	defer store.Close()

	years, err := store.Years(ctx)
	if err != nil {
		return fmt.Errorf("failed to list years: %w", err)
	}
	if len(years) == 0 {
		fmt.Println("No plays recorded yet. Start the daemon with 'wrapped daemon'.")
		return nil
	}

	fmt.Println("Years:")
	yearTable := tablewriter.NewWriter(os.Stdout)
	yearTable.Header([]string{"Year", "Plays"})
	for _, yc := range years {
		yearTable.Append([]string{strconv.Itoa(yc.Year), strconv.Itoa(yc.Plays)})
	}
	yearTable.Render()

	plays, err := store.Recent(ctx, historyLimit)
	if err != nil {
		return fmt.Errorf("failed to load recent plays: %w", err)
	}

	fmt.Println("\nRecent plays:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"When", "Artist", "Title", "Album", "Listened"})
	for _, rec := range plays {
		table.Append([]string{
			rec.Timestamp.Format("2006-01-02 15:04"),
			rec.Artist,
			rec.Title,
			rec.Album,
			rec.DurationListened.Truncate(time.Second).String(),
		})
	}
	table.Render()

	return nil
}
