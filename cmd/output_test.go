package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/kozaktomas/fingerprint-attendance/internal/attendance"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/matcher"
	"github.com/kozaktomas/fingerprint-attendance/internal/station"
)

func strPtr(s string) *string { return &s }

func TestPrintVerifyResult(t *testing.T) {
	alice := &matcher.Match{IdentityID: 1, Name: "Alice", Score: 93}
	tests := []struct {
		name string
		res  station.VerifyResult
		want string
	}{
		{
			name: "check-in",
			res: station.VerifyResult{Status: station.Recognized, Match: alice,
				Action: &attendance.Action{Kind: attendance.CheckIn, Time: "09:00:00"}},
			want: "Time-in recorded for Alice at 09:00:00.\n",
		},
		{
			name: "check-out",
			res: station.VerifyResult{Status: station.Recognized, Match: alice,
				Action: &attendance.Action{Kind: attendance.CheckOut, Time: "17:00:00"}},
			want: "Time-out recorded for Alice at 17:00:00.\n",
		},
		{
			name: "unrecognized",
			res:  station.VerifyResult{Status: station.Unrecognized},
			want: "Unrecognized fingerprint.\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			printVerifyResult(&buf, tc.res)
			if buf.String() != tc.want {
				t.Errorf("printVerifyResult() = %q, want %q", buf.String(), tc.want)
			}
		})
	}
}

func TestPrintReport(t *testing.T) {
	records := []database.SessionRecord{
		{AttendanceSession: database.AttendanceSession{ID: 1, IdentityID: 1, Date: "2026-03-02", TimeIn: "09:00:00", TimeOut: strPtr("17:00:00")}, Name: "Alice"},
		{AttendanceSession: database.AttendanceSession{ID: 2, IdentityID: 7, Date: "2026-03-02", TimeIn: "10:15:00"}},
	}

	var buf bytes.Buffer
	if err := printReport(&buf, "2026-03-02", records); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	got := buf.String()

	lines := strings.Split(strings.TrimRight(got, "\n"), "\n")
	if len(lines) != 6 {
		t.Fatalf("printReport() printed %d lines, want 6:\n%s", len(lines), got)
	}
	if lines[0] != "Attendance on 2026-03-02:" {
		t.Errorf("header = %q", lines[0])
	}
	if f := strings.Fields(lines[4]); len(f) != 3 || f[0] != "Alice" || f[2] != "17:00:00" {
		t.Errorf("closed session row = %q", lines[4])
	}
	if !strings.HasPrefix(lines[5], "(deleted #7)") || !strings.HasSuffix(lines[5], "-") {
		t.Errorf("open session of deleted identity row = %q", lines[5])
	}
}

func TestPrintReport_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := printReport(&buf, "2026-03-02", nil); err != nil {
		t.Fatalf("printReport: %v", err)
	}
	if want := "No attendance recorded on 2026-03-02.\n"; buf.String() != want {
		t.Errorf("printReport(empty) = %q, want %q", buf.String(), want)
	}
}

func TestFilterIdentities(t *testing.T) {
	identities := []database.IdentitySummary{
		{ID: 1, Name: "Jiří Novák"},
		{ID: 2, Name: "Jana Nováková"},
		{ID: 3, Name: "Petr Svoboda"},
	}

	tests := []struct {
		query string
		want  []int64
	}{
		{"", []int64{1, 2, 3}},
		{"novak", []int64{1, 2}},
		{"JIRI", []int64{1}},
		{"svoboda", []int64{3}},
		{"dvořák", nil},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := filterIdentities(identities, tc.query)
			var ids []int64
			for _, id := range got {
				ids = append(ids, id.ID)
			}
			if len(ids) != len(tc.want) {
				t.Fatalf("filterIdentities(%q) = %v, want %v", tc.query, ids, tc.want)
			}
			for i := range ids {
				if ids[i] != tc.want[i] {
					t.Errorf("filterIdentities(%q) = %v, want %v", tc.query, ids, tc.want)
					break
				}
			}
		})
	}
}
