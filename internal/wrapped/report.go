package wrapped

import (
	"github.com/nielsjsc/musicbee-wrapped/internal/history"
)

// Report is the full year-in-review result set
type Report struct {
	Year       int
	TotalPlays int
	Weeks      []WeeklyBucket
	Obsessions []ObsessionPeriod
	Diversity  *Diversity // Set when no obsession periods qualified
	Profile    Profile
}

// BuildReport runs the batch pipeline over one year's records. The input is
// treated as an immutable snapshot; running twice over the same records
// yields identical reports. An empty record set produces an empty report,
// never an error.
func BuildReport(records []history.PlayRecord, year int, cfg Config) Report {
	report := Report{
		Year:       year,
		TotalPlays: len(records),
	}

	report.Weeks = AggregateWeekly(records)
	report.Obsessions = DetectObsessions(report.Weeks, cfg)
	if len(report.Obsessions) == 0 {
		d := Diversify(records)
		report.Diversity = &d
	}

	sessions := AnalyzeAlbumSessions(records, cfg)
	report.Profile = BuildProfile(sessions)

	return report
}
