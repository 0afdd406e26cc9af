package database

import (
	"fmt"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

// Identity is an enrolled person with the reference template of one finger.
type Identity struct {
	ID        int64
	Name      string
	Template  fingerprint.Template
	CreatedAt time.Time
}

// IdentitySummary is an identity without its template, as shown in listings.
type IdentitySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// AttendanceSession is one check-in, optionally closed by a check-out, on a
// civil date in the station's timezone.
type AttendanceSession struct {
	ID         int64   `json:"id"`
	IdentityID int64   `json:"identity_id"`
	Date       string  `json:"date"`     // YYYY-MM-DD
	TimeIn     string  `json:"time_in"`  // HH:MM:SS
	TimeOut    *string `json:"time_out"` // nil while the session is open
}

// IsOpen reports whether the session still awaits a check-out.
func (s AttendanceSession) IsOpen() bool {
	return s.TimeOut == nil
}

// SessionRecord is an attendance session joined with the name of its identity.
// Name is empty when the identity has since been deleted.
type SessionRecord struct {
	AttendanceSession
	Name string `json:"name"`
}

// DisplayName returns the identity name, or a placeholder for deleted identities.
func (r SessionRecord) DisplayName() string {
	if r.Name == "" {
		return fmt.Sprintf("(deleted #%d)", r.IdentityID)
	}
	return r.Name
}
