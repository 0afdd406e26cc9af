package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/database/mock"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	sensormock "github.com/kozaktomas/fingerprint-attendance/internal/sensor/mock"
	"github.com/kozaktomas/fingerprint-attendance/internal/station"
)

func tpl(t *testing.T, b ...byte) fingerprint.Template {
	t.Helper()
	out, err := fingerprint.NewTemplate(b)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	return out
}

func newTestStation(t *testing.T, store *mock.MockStore, dev *sensormock.Device) *station.Station {
	t.Helper()
	clock := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	st, err := station.New(station.Options{
		Opener:    dev.Opener(),
		Store:     store,
		Capturer:  fingerprint.Capturer{PollInterval: time.Microsecond, Timeout: 50 * time.Millisecond},
		Threshold: 50,
		Location:  time.UTC,
		Now:       func() time.Time { return clock },
	})
	if err != nil {
		t.Fatalf("station.New: %v", err)
	}
	return st
}

func TestRunMenu_Session(t *testing.T) {
	store := mock.NewMockStore()
	alice := tpl(t, 3, 1, 4, 1, 5)
	dev := sensormock.NewDevice().Finger(alice, alice, alice)
	st := newTestStation(t, store, dev)

	// Enroll, verify, list, an invalid choice, delete an unknown and a known
	// name, then exit. The trailing list is never reached.
	input := strings.Join([]string{
		"1", "Alice",
		"2",
		"5",
		"9",
		"4", "Bob",
		"4", "Alice",
		"6",
		"5",
	}, "\n") + "\n"

	var out bytes.Buffer
	if err := runMenu(context.Background(), st, strings.NewReader(input), &out); err != nil {
		t.Fatalf("runMenu() error = %v", err)
	}

	got := out.String()
	want := []string{
		"1. Enroll Fingerprint",
		"6. Exit",
		"Enter name: ",
		"Fingerprint for Alice enrolled successfully.",
		"Time-in recorded for Alice at 09:00:00.",
		"Enrolled fingerprints:\nAlice\n",
		"Invalid choice. Please try again.",
		"Name not found.",
		"Fingerprint for Alice deleted successfully.",
	}
	for _, w := range want {
		if !strings.Contains(got, w) {
			t.Errorf("menu output missing %q\noutput:\n%s", w, got)
		}
	}
	if n := strings.Count(got, "Enter your choice: "); n != 7 {
		t.Errorf("menu shown %d times, want 7", n)
	}
	if len(store.Identities()) != 0 {
		t.Errorf("identities after delete = %d, want 0", len(store.Identities()))
	}
	if sessions := store.Sessions(); len(sessions) != 1 || !sessions[0].IsOpen() {
		t.Errorf("sessions = %+v, want one open session", sessions)
	}
}

func TestRunMenu_FailuresDoNotExit(t *testing.T) {
	store := mock.NewMockStore()
	store.ListError = errors.New("disk on fire")
	dev := sensormock.NewDevice()
	dev.OpenError = errors.New("no such port")
	st := newTestStation(t, store, dev)

	var out bytes.Buffer
	err := runMenu(context.Background(), st, strings.NewReader("5\n2\n6\n"), &out)
	if err != nil {
		t.Fatalf("runMenu() error = %v", err)
	}

	got := out.String()
	for _, w := range []string{
		"Failed to fetch fingerprints: list identities: disk on fire",
		"Failed to verify fingerprint: open sensor: no such port",
	} {
		if !strings.Contains(got, w) {
			t.Errorf("menu output missing %q\noutput:\n%s", w, got)
		}
	}
	if n := strings.Count(got, "Enter your choice: "); n != 3 {
		t.Errorf("menu shown %d times, want 3", n)
	}
}

func TestRunMenu_EndOfInput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"after choice", "5\n"},
		{"while asking for name", "4\n"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			st := newTestStation(t, mock.NewMockStore(), sensormock.NewDevice())
			var out bytes.Buffer
			if err := runMenu(context.Background(), st, strings.NewReader(tc.input), &out); err != nil {
				t.Errorf("runMenu(%q) error = %v, want nil", tc.input, err)
			}
		})
	}
}

func TestRunMenu_Cancelled(t *testing.T) {
	st := newTestStation(t, mock.NewMockStore(), sensormock.NewDevice())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := runMenu(ctx, st, blockingReader{}, &out)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("runMenu() error = %v, want context.Canceled", err)
	}
}

// blockingReader never yields input.
type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
