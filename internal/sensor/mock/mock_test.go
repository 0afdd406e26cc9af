package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

func tpl(t *testing.T, b ...byte) fingerprint.Template {
	t.Helper()
	out, err := fingerprint.NewTemplate(b)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	return out
}

func TestCosineScore(t *testing.T) {
	tests := []struct {
		name string
		a, b []byte
		want int
	}{
		{"identical", []byte{1, 2, 3}, []byte{1, 2, 3}, 100},
		{"scaled", []byte{1, 2, 3}, []byte{2, 4, 6}, 100},
		{"orthogonal", []byte{1, 0}, []byte{0, 1}, 0},
		{"diagonal", []byte{1, 0}, []byte{1, 1}, 71},
		{"zero vector", []byte{0, 0}, []byte{1, 1}, 0},
		{"length mismatch", []byte{1, 2}, []byte{1, 2, 3}, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CosineScore(tpl(t, tc.a...), tpl(t, tc.b...))
			if got != tc.want {
				t.Errorf("CosineScore(%v, %v) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestDeviceScriptedReads(t *testing.T) {
	ctx := context.Background()
	a := tpl(t, 1, 2)
	dev := NewDevice(Read{Err: fingerprint.ErrNoFinger}).Finger(a)

	s, err := dev.Opener()(ctx)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := s.Capture(ctx); !errors.Is(err, fingerprint.ErrNoFinger) {
		t.Errorf("first Capture() error = %v, want ErrNoFinger", err)
	}
	got, err := s.Capture(ctx)
	if err != nil || !got.Equal(a) {
		t.Errorf("second Capture() = %v, %v, want %v", got.Bytes(), err, a.Bytes())
	}
	if _, err := s.Capture(ctx); !errors.Is(err, fingerprint.ErrNoFinger) {
		t.Errorf("exhausted Capture() error = %v, want ErrNoFinger", err)
	}
	if !dev.Open() {
		t.Error("Open() = false with a live session")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if dev.Open() {
		t.Error("Open() = true after Close")
	}
}

func TestDeviceAuthenticate(t *testing.T) {
	ctx := context.Background()
	dev := NewDevice()
	dev.Password = 42
	s, _ := dev.Opener()(ctx)

	if ok, _ := s.Authenticate(ctx, 42); !ok {
		t.Error("Authenticate(42) = false, want true")
	}
	if ok, _ := s.Authenticate(ctx, 7); ok {
		t.Error("Authenticate(7) = true, want false")
	}
	if dev.Authentications != 2 {
		t.Errorf("Authentications = %d, want 2", dev.Authentications)
	}
}
