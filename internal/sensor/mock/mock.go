// Package mock provides an in-memory fingerprint device for testing.
package mock

import (
	"context"
	"errors"
	"math"
	"sync"

	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// Read is one scripted capture result: either a template or an error.
type Read struct {
	Template fingerprint.Template
	Err      error
}

// Device is a scripted implementation of fingerprint.Device.
// Reads are consumed in order; once exhausted every capture reports no finger.
type Device struct {
	mu    sync.Mutex
	reads []Read

	// Password is the access password the device accepts.
	Password uint32

	// ScoreFunc overrides the default cosine-based score.
	ScoreFunc func(a, b fingerprint.Template) int

	// Error injection
	OpenError         error
	AuthenticateError error
	CompareError      func(a, b fingerprint.Template) error
	CloseError        error

	// Observed calls
	Opens           int
	Closes          int
	Captures        int
	Comparisons     int
	Authentications int
}

var _ fingerprint.Device = (*session)(nil)

// NewDevice creates a device that will return reads in order.
func NewDevice(reads ...Read) *Device {
	return &Device{reads: reads}
}

// Finger queues successful reads of the given templates.
func (d *Device) Finger(tpls ...fingerprint.Template) *Device {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, t := range tpls {
		d.reads = append(d.reads, Read{Template: t})
	}
	return d
}

// Opener returns a fingerprint.Opener handing out sessions on this device.
func (d *Device) Opener() fingerprint.Opener {
	return func(ctx context.Context) (fingerprint.Device, error) {
		d.mu.Lock()
		defer d.mu.Unlock()
		if d.OpenError != nil {
			return nil, d.OpenError
		}
		d.Opens++
		return &session{d: d}, nil
	}
}

// Open reports whether a session is currently held.
func (d *Device) Open() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.Opens > d.Closes
}

// Score computes the similarity of two templates on a 0-100 scale.
func (d *Device) Score(a, b fingerprint.Template) int {
	if d.ScoreFunc != nil {
		return d.ScoreFunc(a, b)
	}
	return CosineScore(a, b)
}

type session struct {
	d      *Device
	closed bool
}

func (s *session) Authenticate(ctx context.Context, password uint32) (bool, error) {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.d.Authentications++
	if s.d.AuthenticateError != nil {
		return false, s.d.AuthenticateError
	}
	return password == s.d.Password, nil
}

func (s *session) Capture(ctx context.Context) (fingerprint.Template, error) {
	if err := ctx.Err(); err != nil {
		return fingerprint.Template{}, err
	}
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	if s.closed {
		return fingerprint.Template{}, errors.New("mock device: session closed")
	}
	s.d.Captures++
	if len(s.d.reads) == 0 {
		return fingerprint.Template{}, fingerprint.ErrNoFinger
	}
	r := s.d.reads[0]
	s.d.reads = s.d.reads[1:]
	return r.Template, r.Err
}

func (s *session) Compare(ctx context.Context, a, b fingerprint.Template) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.d.mu.Lock()
	s.d.Comparisons++
	compareErr := s.d.CompareError
	s.d.mu.Unlock()

	if compareErr != nil {
		if err := compareErr(a, b); err != nil {
			return 0, err
		}
	}
	return s.d.Score(a, b), nil
}

func (s *session) Close() error {
	s.d.mu.Lock()
	defer s.d.mu.Unlock()
	s.closed = true
	s.d.Closes++
	return s.d.CloseError
}

// CosineScore maps the cosine similarity of two templates, read as byte
// vectors, to a 0-100 score. Templates of different length score 0.
func CosineScore(a, b fingerprint.Template) int {
	x, y := a.Bytes(), b.Bytes()
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range x {
		dotProduct += float64(x[i]) * float64(y[i])
		normA += float64(x[i]) * float64(x[i])
		normB += float64(y[i]) * float64(y[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	similarity := dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
	// Clamp to handle floating point errors
	similarity = min(max(similarity, 0), 1)
	return int(math.Round(similarity * 100))
}
