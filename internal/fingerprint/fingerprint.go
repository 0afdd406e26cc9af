// Package fingerprint defines the sensor contract used by the attendance core:
// the opaque template type, the device session interface and the polling
// capture loop.
package fingerprint

import (
	"context"
	"errors"
)

var (
	// ErrNoFinger means no finger was on the sensor during a read attempt.
	ErrNoFinger = errors.New("no finger on sensor")
	// ErrBadImage means the read produced an image too poor to extract characteristics from.
	ErrBadImage = errors.New("fingerprint image unusable")
	// ErrDeviceUnavailable means the sensor timed out or dropped off the line during a read.
	ErrDeviceUnavailable = errors.New("fingerprint sensor did not answer")
	// ErrDeviceAuth means the sensor rejected the access password.
	ErrDeviceAuth = errors.New("fingerprint sensor password is incorrect")
	// ErrCaptureTimeout means no usable read arrived within the capture timeout.
	ErrCaptureTimeout = errors.New("timed out waiting for finger")
)

// IsTransient reports whether a failed read should simply be retried.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoFinger) || errors.Is(err, ErrBadImage) || errors.Is(err, ErrDeviceUnavailable)
}

// Comparer scores how alike two templates are. Higher is more similar; the
// sensor reports 0 for templates that do not come from the same finger.
type Comparer interface {
	Compare(ctx context.Context, a, b Template) (int, error)
}

// Device is an open session with a fingerprint sensor.
type Device interface {
	Comparer

	// Authenticate checks the sensor access password. It returns false, nil
	// when the sensor answered but rejected the password.
	Authenticate(ctx context.Context, password uint32) (bool, error)

	// Capture performs a single read of the finger currently on the sensor.
	// ErrNoFinger, ErrBadImage and ErrDeviceUnavailable are transient; see
	// Capturer for the retry loop.
	Capture(ctx context.Context) (Template, error)

	// Close releases the underlying transport.
	Close() error
}

// Opener acquires a new device session.
type Opener func(ctx context.Context) (Device, error)
