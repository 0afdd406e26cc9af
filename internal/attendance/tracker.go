// Package attendance turns recognised fingerprints into check-in and
// check-out events.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
)

// Kind is the direction of an attendance event.
type Kind int

const (
	CheckIn Kind = iota + 1
	CheckOut
)

func (k Kind) String() string {
	switch k {
	case CheckIn:
		return "check-in"
	case CheckOut:
		return "check-out"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Action is the recorded outcome of one attendance event.
type Action struct {
	Kind       Kind   `json:"kind"`
	SessionID  int64  `json:"session_id"`
	IdentityID int64  `json:"identity_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
}

// Tracker keeps at most one open session per identity and civil date:
// an event closes the open session, or opens a new one when none is open.
type Tracker struct {
	store database.SessionStore
	loc   *time.Location
}

// NewTracker creates a tracker deriving dates in loc. A nil loc means time.Local.
func NewTracker(store database.SessionStore, loc *time.Location) *Tracker {
	if loc == nil {
		loc = time.Local
	}
	return &Tracker{store: store, loc: loc}
}

// Clock splits now into the civil date and time of day in the tracker's location.
func (t *Tracker) Clock(now time.Time) (date, clock string) {
	local := now.In(t.loc)
	return local.Format(constants.DateLayout), local.Format(constants.TimeLayout)
}

// RecordEvent records an event of identityID at now.
func (t *Tracker) RecordEvent(ctx context.Context, identityID int64, now time.Time) (Action, error) {
	date, clock := t.Clock(now)
	action := Action{IdentityID: identityID, Date: date, Time: clock}

	open, err := t.store.FindOpen(ctx, identityID, date)
	if err != nil {
		return Action{}, fmt.Errorf("find open session: %w", err)
	}

	if open != nil {
		if err := t.store.CloseSession(ctx, open.ID, clock); err != nil {
			return Action{}, fmt.Errorf("record check-out: %w", err)
		}
		action.Kind = CheckOut
		action.SessionID = open.ID
		return action, nil
	}

	id, err := t.store.OpenSession(ctx, identityID, date, clock)
	if errors.Is(err, database.ErrSessionAlreadyOpen) {
		return Action{}, fmt.Errorf("record check-in: session opened concurrently: %w", err)
	}
	if err != nil {
		return Action{}, fmt.Errorf("record check-in: %w", err)
	}
	action.Kind = CheckIn
	action.SessionID = id
	return action, nil
}
