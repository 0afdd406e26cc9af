// Package enrollment registers new fingerprints: capture twice, confirm the
// two reads agree, refuse fingers that are already enrolled and store the rest.
package enrollment

import (
	"context"
	"fmt"

	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	"github.com/kozaktomas/fingerprint-attendance/internal/identity"
	"github.com/kozaktomas/fingerprint-attendance/internal/matcher"
)

// Status is the outcome of an enrollment attempt.
type Status int

const (
	Enrolled Status = iota + 1
	AlreadyEnrolled
	CaptureMismatch
)

func (s Status) String() string {
	switch s {
	case Enrolled:
		return "enrolled"
	case AlreadyEnrolled:
		return "already-enrolled"
	case CaptureMismatch:
		return "capture-mismatch"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Result describes an enrollment attempt.
type Result struct {
	Status Status `json:"status"`
	// ID and Name are set for Enrolled.
	ID   int64  `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	// Existing is set for AlreadyEnrolled.
	Existing *matcher.Match `json:"existing,omitempty"`
}

// NameSource supplies the name of the person being enrolled. It is only
// consulted once the finger is known to be new.
type NameSource func(ctx context.Context) (string, error)

// StaticName returns a NameSource that always yields name.
func StaticName(name string) NameSource {
	return func(context.Context) (string, error) {
		return name, nil
	}
}

// Manager runs enrollment against a device session and the identity store.
type Manager struct {
	capturer *fingerprint.Capturer
	matcher  *matcher.Matcher
	store    database.IdentityWriter
}

// NewManager creates an enrollment manager.
func NewManager(capturer *fingerprint.Capturer, m *matcher.Matcher, store database.IdentityWriter) *Manager {
	return &Manager{capturer: capturer, matcher: m, store: store}
}

// Recapture reads the same finger twice and returns the first read as the
// reference template. ok is false when the two reads do not match.
func (m *Manager) Recapture(ctx context.Context, dev fingerprint.Device) (tpl fingerprint.Template, ok bool, err error) {
	first, err := m.capturer.Capture(ctx, dev, fingerprint.StepPlaceFinger)
	if err != nil {
		return fingerprint.Template{}, false, fmt.Errorf("first capture: %w", err)
	}
	if err := m.capturer.WaitRemoval(ctx); err != nil {
		return fingerprint.Template{}, false, err
	}
	second, err := m.capturer.Capture(ctx, dev, fingerprint.StepPlaceSameFinger)
	if err != nil {
		return fingerprint.Template{}, false, fmt.Errorf("second capture: %w", err)
	}

	score, err := dev.Compare(ctx, first, second)
	if err != nil {
		return fingerprint.Template{}, false, fmt.Errorf("compare captures: %w", err)
	}
	if score <= constants.NoMatchScore {
		return fingerprint.Template{}, false, nil
	}
	return first, true, nil
}

// Enroll captures a new finger and stores it under the name from name.
// candidates are the identities already enrolled, in store order.
func (m *Manager) Enroll(ctx context.Context, dev fingerprint.Device, candidates []database.Identity, name NameSource) (Result, error) {
	tpl, ok, err := m.Recapture(ctx, dev)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{Status: CaptureMismatch}, nil
	}

	existing, err := m.matcher.FindMatch(ctx, dev, tpl, candidates)
	if err != nil {
		return Result{}, fmt.Errorf("check existing enrollments: %w", err)
	}
	if existing != nil {
		return Result{Status: AlreadyEnrolled, Existing: existing}, nil
	}

	raw, err := name(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("read name: %w", err)
	}
	canonical, err := identity.CanonicalName(raw)
	if err != nil {
		return Result{}, err
	}

	id, err := m.store.Put(ctx, canonical, tpl)
	if err != nil {
		return Result{}, fmt.Errorf("store identity: %w", err)
	}
	return Result{Status: Enrolled, ID: id, Name: canonical}, nil
}
