package database

import (
	"context"
	"errors"

	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
)

var (
	// ErrSessionNotOpen is returned when closing a session that is already closed or missing.
	ErrSessionNotOpen = errors.New("attendance session is not open")
	// ErrSessionAlreadyOpen is returned when a second open session is created for the same identity and date.
	ErrSessionAlreadyOpen = errors.New("attendance session already open")
)

// IdentityReader provides read-only access to enrolled identities.
// Implementations keep no cache; every call reads storage.
type IdentityReader interface {
	// List returns id and name of every identity, ordered by id
	List(ctx context.Context) ([]IdentitySummary, error)
	// GetAll returns every identity with its template, ordered by id
	GetAll(ctx context.Context) ([]Identity, error)
}

// IdentityWriter provides write access to enrolled identities.
// Names are not unique; UpdateTemplate and Delete act on the lowest id with that name.
type IdentityWriter interface {
	IdentityReader

	// Put inserts a new identity and returns its id. No uniqueness check is made.
	Put(ctx context.Context, name string, tpl fingerprint.Template) (int64, error)
	// UpdateTemplate replaces the template of the first identity with that name.
	// It reports false, without error, when no identity has that name.
	UpdateTemplate(ctx context.Context, name string, tpl fingerprint.Template) (bool, error)
	// Delete removes the first identity with that name.
	// It reports false, without error, when no identity has that name.
	Delete(ctx context.Context, name string) (bool, error)
}

// SessionStore provides access to attendance sessions. Sessions are never deleted.
type SessionStore interface {
	// FindOpen returns the open session of an identity on a date, or nil if there is none
	FindOpen(ctx context.Context, identityID int64, date string) (*AttendanceSession, error)
	// OpenSession inserts an open session and returns its id
	OpenSession(ctx context.Context, identityID int64, date, timeIn string) (int64, error)
	// CloseSession sets the check-out time of an open session
	CloseSession(ctx context.Context, sessionID int64, timeOut string) error
	// ListByDate returns every session of a date ordered by check-in time
	ListByDate(ctx context.Context, date string) ([]SessionRecord, error)
}

// Store is a complete storage backend.
type Store interface {
	IdentityWriter
	SessionStore

	// Migrate applies pending schema migrations and returns the versions applied
	Migrate(ctx context.Context) ([]string, error)
	Close() error
}
