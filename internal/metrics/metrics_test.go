package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()

	m.Enrollment("enrolled")
	m.Enrollment("enrolled")
	m.Enrollment("capture-mismatch")
	m.Verification("recognized")
	m.Event("check-in")
	m.CaptureRetry("no-finger")
	m.CompareFailure()

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"enrolled", testutil.ToFloat64(m.enrollments.WithLabelValues("enrolled")), 2},
		{"mismatch", testutil.ToFloat64(m.enrollments.WithLabelValues("capture-mismatch")), 1},
		{"recognized", testutil.ToFloat64(m.verifications.WithLabelValues("recognized")), 1},
		{"check-in", testutil.ToFloat64(m.events.WithLabelValues("check-in")), 1},
		{"no-finger", testutil.ToFloat64(m.captureRetries.WithLabelValues("no-finger")), 1},
		{"compare failures", testutil.ToFloat64(m.compareFailures), 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("counter = %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestObserveOperation(t *testing.T) {
	m := New()
	m.ObserveOperation("verify", time.Now(), nil)
	m.ObserveOperation("verify", time.Now(), errors.New("boom"))

	if n := testutil.CollectAndCount(m.operationSeconds); n != 2 {
		t.Errorf("histogram series = %d, want 2", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Enrollment("enrolled")
	m.Verification("recognized")
	m.Event("check-in")
	m.CaptureRetry("no-finger")
	m.CompareFailure()
	m.ObserveOperation("verify", time.Now(), nil)
	if err := m.WriteTextfile("/nonexistent/metrics.prom"); err != nil {
		t.Errorf("WriteTextfile on nil metrics = %v, want nil", err)
	}
	if m.Registry() != nil {
		t.Error("Registry() on nil metrics should be nil")
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.Event("check-out")

	path := filepath.Join(t.TempDir(), "attendance.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	want := `attendance_events_total{kind="check-out"} 1`
	if !strings.Contains(string(data), want) {
		t.Errorf("textfile missing %q:\n%s", want, data)
	}
}

func TestWriteTextfileEmptyPathDisabled(t *testing.T) {
	if err := New().WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") = %v, want nil", err)
	}
}
