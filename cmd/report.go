package cmd

import (
	"os"

	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report [date]",
	Short: "Show attendance for a day",
	Long: `Show the attendance sessions recorded on a date (YYYY-MM-DD).
Without a date the current day at the station is shown.

Examples:
  attendance report
  attendance report 2024-03-01 --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().Bool("json", false, "Output as JSON")
}

// reportOutput is the JSON form of a day's attendance.
type reportOutput struct {
	Date     string                   `json:"date"`
	Sessions []database.SessionRecord `json:"sessions"`
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	jsonOutput := mustGetBool(cmd, "json")

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	date := a.station.Today()
	if len(args) == 1 {
		date = args[0]
	}
	records, err := a.station.Attendance(ctx, date)
	if err != nil {
		return err
	}

	if jsonOutput {
		if records == nil {
			records = []database.SessionRecord{}
		}
		return printJSON(os.Stdout, reportOutput{Date: date, Sessions: records})
	}
	return printReport(os.Stdout, date, records)
}
