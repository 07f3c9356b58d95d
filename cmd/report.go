package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/nielsjsc/musicbee-wrapped/internal/config"
	"github.com/nielsjsc/musicbee-wrapped/internal/history"
	"github.com/nielsjsc/musicbee-wrapped/internal/wrapped"
)

const bannerWidth = 64

var reportYear int

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate the year-in-review listening report",
	Long: `Analyze a year of recorded plays and print the year-in-review report:
obsession periods (weeks dominated by a single artist), your album
listening behavior, and the listener personality derived from it.

If the requested year has no plays, the most recent year with data is
reported instead.`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVarP(&reportYear, "year", "y", 0, "Year to analyze (default: current year)")
}

func runReport(cmd *cobra.Command, args []string) error {
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

	year := reportYear
	if year == 0 {
		year = time.Now().Year()
	}

	records, year, err := loadYear(ctx, store, year)
	if err != nil {
		return err
	}

	report := wrapped.BuildReport(records, year, cfg.AnalysisThresholds())
	printReport(report)
	return nil
}

// loadYear fetches the requested year's plays, falling back to the most
// recent year that has any
func loadYear(ctx context.Context, store *history.Store, year int) ([]history.PlayRecord, int, error) {
	records, err := store.PlaysForYear(ctx, year)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load plays: %w", err)
	}
	if len(records) > 0 {
		return records, year, nil
	}

	years, err := store.Years(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list years: %w", err)
	}
	if len(years) == 0 {
		return nil, year, nil
	}

	fallback := years[0].Year
	fmt.Printf("No plays recorded for %d; showing %d instead.\n\n", year, fallback)

	records, err = store.PlaysForYear(ctx, fallback)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load plays: %w", err)
	}
	return records, fallback, nil
}

func printReport(report wrapped.Report) {
	printBanner(fmt.Sprintf("Your %d Wrapped", report.Year))
	fmt.Printf("\n%d plays recorded across %d weeks.\n\n", report.TotalPlays, len(report.Weeks))

	printObsessions(report)
	printProfile(report.Profile)
}

func printObsessions(report wrapped.Report) {
	fmt.Println("## Obsessions")

	if len(report.Obsessions) == 0 {
		d := report.Diversity
		fmt.Println("\nNo single-artist obsessions this year — you're a diverse listener.")
		if d != nil && d.TotalPlays > 0 {
			fmt.Printf("You spread %d plays across %d different artists.\n\n", d.TotalPlays, d.UniqueArtists)
		} else {
			fmt.Println()
		}
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"#", "Artist", "Period", "Weeks", "Hours", "Avg Dom", "Peak Dom", "Intensity"})

	for i, p := range report.Obsessions {
		table.Append([]string{
			strconv.Itoa(i + 1),
			p.Artist,
			fmt.Sprintf("%s – %s", p.StartDate.Format("Jan 2"), p.EndDate.Format("Jan 2")),
			strconv.Itoa(p.DurationWeeks),
			fmt.Sprintf("%.1f", p.TotalHours),
			fmt.Sprintf("%.0f%%", p.AverageDominance*100),
			fmt.Sprintf("%.0f%%", p.PeakDominance*100),
			fmt.Sprintf("%.1f", p.IntensityScore),
		})
	}
	table.Render()
	fmt.Println()
}

func printProfile(p wrapped.Profile) {
	fmt.Println("## Album Behavior")
	fmt.Printf("\nListener type: %s\n\n%s\n\n", p.ListenerType, p.PersonalityInsight)

	if p.TotalAlbumSessions == 0 {
		return
	}

	fmt.Printf("Sessions: %d | Full albums: %.0f%% | Sequential: %.0f%% | Avg tracks/session: %.1f\n\n",
		p.TotalAlbumSessions,
		p.FullAlbumPercentage,
		p.SequentialListeningPercentage,
		p.AverageTracksPerAlbumSession,
	)

	if len(p.NotableSessions) == 0 {
		return
	}

	fmt.Println("Notable sessions:")
	table := tablewriter.NewWriter(os.Stdout)
	table.Header([]string{"Artist", "Album", "Date", "Tracks", "Completion", "Sequential"})

	for _, s := range p.NotableSessions {
		sequential := ""
		if s.Sequential {
			sequential = "yes"
		}
		table.Append([]string{
			s.Artist,
			s.Album,
			s.Start.Format("2006-01-02"),
			strconv.Itoa(s.DistinctTracks),
			fmt.Sprintf("%.0f%%", s.Completion*100),
			sequential,
		})
	}
	table.Render()
	fmt.Println()
}

// printBanner prints a centered title line padded to a fixed display width
func printBanner(title string) {
	width := runewidth.StringWidth(title)
	if width >= bannerWidth {
		fmt.Println(title)
		return
	}

	pad := (bannerWidth - width) / 2
	line := strings.Repeat(" ", pad) + title
	fmt.Println(strings.Repeat("=", bannerWidth))
	fmt.Println(runewidth.FillRight(line, bannerWidth))
	fmt.Println(strings.Repeat("=", bannerWidth))
}
