package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/kozaktomas/fingerprint-attendance/internal/attendance"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/enrollment"
	"github.com/kozaktomas/fingerprint-attendance/internal/station"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}

func printEnrollResult(w io.Writer, res enrollment.Result) {
	switch res.Status {
	case enrollment.Enrolled:
		fmt.Fprintf(w, "Fingerprint for %s enrolled successfully.\n", res.Name)
	case enrollment.AlreadyEnrolled:
		fmt.Fprintf(w, "Fingerprint already enrolled for %s.\n", res.Existing.Name)
	case enrollment.CaptureMismatch:
		fmt.Fprintln(w, "Fingers do not match. Nothing was enrolled.")
	}
}

func printVerifyResult(w io.Writer, res station.VerifyResult) {
	if res.Status != station.Recognized {
		fmt.Fprintln(w, "Unrecognized fingerprint.")
		return
	}
	switch res.Action.Kind {
	case attendance.CheckIn:
		fmt.Fprintf(w, "Time-in recorded for %s at %s.\n", res.Match.Name, res.Action.Time)
	case attendance.CheckOut:
		fmt.Fprintf(w, "Time-out recorded for %s at %s.\n", res.Match.Name, res.Action.Time)
	}
}

func printUpdateResult(w io.Writer, res station.UpdateResult) {
	switch res.Status {
	case station.Updated:
		fmt.Fprintf(w, "Fingerprint for %s updated successfully.\n", res.Name)
	case station.NotFound:
		fmt.Fprintln(w, "Name not found.")
	case station.CaptureMismatch:
		fmt.Fprintln(w, "Fingers do not match. Fingerprint was not updated.")
	}
}

func printDeleteResult(w io.Writer, name string, deleted bool) {
	if !deleted {
		fmt.Fprintln(w, "Name not found.")
		return
	}
	fmt.Fprintf(w, "Fingerprint for %s deleted successfully.\n", name)
}

func printIdentities(w io.Writer, identities []database.IdentitySummary) {
	if len(identities) == 0 {
		fmt.Fprintln(w, "No fingerprints enrolled.")
		return
	}
	fmt.Fprintln(w, "Enrolled fingerprints:")
	for _, id := range identities {
		fmt.Fprintln(w, id.Name)
	}
}

func printReport(w io.Writer, date string, records []database.SessionRecord) error {
	if len(records) == 0 {
		fmt.Fprintf(w, "No attendance recorded on %s.\n", date)
		return nil
	}

	fmt.Fprintf(w, "Attendance on %s:\n\n", date)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tTIME IN\tTIME OUT")
	fmt.Fprintln(tw, "----\t-------\t--------")
	for _, r := range records {
		out := "-"
		if r.TimeOut != nil {
			out = *r.TimeOut
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", r.DisplayName(), r.TimeIn, out)
	}
	return tw.Flush()
}
