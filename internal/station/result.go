package station

import (
	"github.com/kozaktomas/fingerprint-attendance/internal/attendance"
	"github.com/kozaktomas/fingerprint-attendance/internal/matcher"
)

// VerifyStatus is the outcome of a verification.
type VerifyStatus int

const (
	Recognized VerifyStatus = iota + 1
	Unrecognized
)

func (s VerifyStatus) String() string {
	switch s {
	case Recognized:
		return "recognized"
	case Unrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s VerifyStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// VerifyResult describes a verification. Match and Action are set only when recognized.
type VerifyResult struct {
	Status VerifyStatus       `json:"status"`
	Match  *matcher.Match     `json:"match,omitempty"`
	Action *attendance.Action `json:"action,omitempty"`
}

// UpdateStatus is the outcome of a template update.
type UpdateStatus int

const (
	Updated UpdateStatus = iota + 1
	NotFound
	CaptureMismatch
)

func (s UpdateStatus) String() string {
	switch s {
	case Updated:
		return "updated"
	case NotFound:
		return "not-found"
	case CaptureMismatch:
		return "capture-mismatch"
	default:
		return "unknown"
	}
}

// MarshalText encodes the status by name.
func (s UpdateStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UpdateResult describes a template update.
type UpdateResult struct {
	Status UpdateStatus `json:"status"`
	Name   string       `json:"name"`
}
