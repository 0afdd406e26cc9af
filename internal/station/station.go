// Package station implements the operator entry points of an attendance
// station. Every operation that needs the sensor opens, authenticates and
// closes its own device session.
package station

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kozaktomas/fingerprint-attendance/internal/attendance"
	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"github.com/kozaktomas/fingerprint-attendance/internal/database"
	"github.com/kozaktomas/fingerprint-attendance/internal/enrollment"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	"github.com/kozaktomas/fingerprint-attendance/internal/identity"
	"github.com/kozaktomas/fingerprint-attendance/internal/matcher"
	"github.com/kozaktomas/fingerprint-attendance/internal/metrics"
)

// ErrInvalidDate is returned for report dates not in YYYY-MM-DD form.
var ErrInvalidDate = errors.New("invalid date, want YYYY-MM-DD")

// Options configures a Station. Opener and Store are required.
type Options struct {
	Opener   fingerprint.Opener
	Store    database.Store
	Password uint32

	// Capturer drives the polling loop; its OnRetry hook is owned by the station.
	Capturer  fingerprint.Capturer
	Threshold int
	Location  *time.Location

	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Station owns the device opener and the store for the lifetime of a process.
type Station struct {
	opener   fingerprint.Opener
	store    database.Store
	password uint32

	capturer *fingerprint.Capturer
	matcher  *matcher.Matcher
	tracker  *attendance.Tracker
	enroller *enrollment.Manager

	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// New creates a station.
func New(opts Options) (*Station, error) {
	if opts.Opener == nil {
		return nil, errors.New("device opener is required")
	}
	if opts.Store == nil {
		return nil, errors.New("store is required")
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Capturer.PollInterval <= 0 {
		opts.Capturer.PollInterval = constants.DefaultPollInterval
	}

	s := &Station{
		opener:   opts.Opener,
		store:    opts.Store,
		password: opts.Password,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}

	capturer := opts.Capturer
	capturer.OnRetry = func(err error) {
		s.metrics.CaptureRetry(retryReason(err))
	}
	s.capturer = &capturer

	s.matcher = matcher.New(opts.Threshold, opts.Logger)
	s.matcher.OnCompareError = func(int64, error) {
		s.metrics.CompareFailure()
	}

	s.tracker = attendance.NewTracker(opts.Store, opts.Location)
	s.enroller = enrollment.NewManager(s.capturer, s.matcher, opts.Store)
	return s, nil
}

func retryReason(err error) string {
	switch {
	case errors.Is(err, fingerprint.ErrNoFinger):
		return "no-finger"
	case errors.Is(err, fingerprint.ErrBadImage):
		return "bad-image"
	case errors.Is(err, fingerprint.ErrDeviceUnavailable):
		return "device-unavailable"
	default:
		return "other"
	}
}

// begin tags an operation with a correlation id.
func (s *Station) begin(op string) (*slog.Logger, time.Time) {
	return s.logger.With("op", op, "op_id", uuid.NewString()), time.Now()
}

// withDevice opens a device session, authenticates it and runs fn. The
// session is always closed. A rejected password yields fingerprint.ErrDeviceAuth.
func (s *Station) withDevice(ctx context.Context, log *slog.Logger, fn func(dev fingerprint.Device) error) error {
	dev, err := s.opener(ctx)
	if err != nil {
		return fmt.Errorf("open sensor: %w", err)
	}
	defer func() {
		if err := dev.Close(); err != nil {
			log.Warn("failed to close sensor", "error", err)
		}
	}()

	ok, err := dev.Authenticate(ctx, s.password)
	if err != nil {
		return fmt.Errorf("authenticate sensor: %w", err)
	}
	if !ok {
		return fingerprint.ErrDeviceAuth
	}
	log.Debug("sensor session opened")
	return fn(dev)
}

// Enroll captures a new finger and stores it under the name from name.
func (s *Station) Enroll(ctx context.Context, name enrollment.NameSource) (res enrollment.Result, err error) {
	log, started := s.begin("enroll")
	defer func() { s.metrics.ObserveOperation("enroll", started, err) }()

	candidates, err := s.store.GetAll(ctx)
	if err != nil {
		return enrollment.Result{}, fmt.Errorf("load enrolled identities: %w", err)
	}

	err = s.withDevice(ctx, log, func(dev fingerprint.Device) error {
		res, err = s.enroller.Enroll(ctx, dev, candidates, name)
		return err
	})
	if err != nil {
		log.Error("enrollment failed", "error", err)
		return enrollment.Result{}, err
	}

	s.metrics.Enrollment(res.Status.String())
	switch res.Status {
	case enrollment.Enrolled:
		log.Info("identity enrolled", "identity_id", res.ID, "name", res.Name)
	case enrollment.AlreadyEnrolled:
		log.Info("finger already enrolled", "identity_id", res.Existing.IdentityID, "score", res.Existing.Score)
	default:
		log.Info("enrollment captures did not match")
	}
	return res, nil
}

// Verify identifies the finger on the sensor and records an attendance event.
func (s *Station) Verify(ctx context.Context) (res VerifyResult, err error) {
	log, started := s.begin("verify")
	defer func() { s.metrics.ObserveOperation("verify", started, err) }()

	err = s.withDevice(ctx, log, func(dev fingerprint.Device) error {
		probe, err := s.capturer.Capture(ctx, dev, fingerprint.StepPlaceFinger)
		if err != nil {
			return fmt.Errorf("capture: %w", err)
		}
		candidates, err := s.store.GetAll(ctx)
		if err != nil {
			return fmt.Errorf("load enrolled identities: %w", err)
		}
		match, err := s.matcher.FindMatch(ctx, dev, probe, candidates)
		if err != nil {
			return fmt.Errorf("match: %w", err)
		}
		if match == nil {
			res = VerifyResult{Status: Unrecognized}
			return nil
		}
		action, err := s.tracker.RecordEvent(ctx, match.IdentityID, s.now())
		if err != nil {
			return err
		}
		res = VerifyResult{Status: Recognized, Match: match, Action: &action}
		return nil
	})
	if err != nil {
		s.metrics.Verification("error")
		log.Error("verification failed", "error", err)
		return VerifyResult{}, err
	}

	s.metrics.Verification(res.Status.String())
	if res.Status == Recognized {
		s.metrics.Event(res.Action.Kind.String())
		log.Info("attendance recorded",
			"identity_id", res.Match.IdentityID,
			"score", res.Match.Score,
			"kind", res.Action.Kind.String(),
			"session_id", res.Action.SessionID,
		)
	} else {
		log.Info("fingerprint not recognized")
	}
	return res, nil
}

// Update recaptures the finger of the first identity called name and replaces its template.
func (s *Station) Update(ctx context.Context, name string) (res UpdateResult, err error) {
	log, started := s.begin("update")
	defer func() { s.metrics.ObserveOperation("update", started, err) }()

	name, err = identity.CanonicalName(name)
	if err != nil {
		return UpdateResult{}, err
	}
	res.Name = name

	// Avoid asking for a finger when there is nothing to update.
	exists, err := s.nameExists(ctx, name)
	if err != nil {
		return UpdateResult{}, err
	}
	if !exists {
		log.Info("update target not found", "name", name)
		res.Status = NotFound
		return res, nil
	}

	var (
		tpl fingerprint.Template
		ok  bool
	)
	err = s.withDevice(ctx, log, func(dev fingerprint.Device) error {
		tpl, ok, err = s.enroller.Recapture(ctx, dev)
		return err
	})
	if err != nil {
		log.Error("update failed", "error", err)
		return UpdateResult{}, err
	}
	if !ok {
		log.Info("update captures did not match", "name", name)
		res.Status = CaptureMismatch
		return res, nil
	}

	updated, err := s.store.UpdateTemplate(ctx, name, tpl)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("update template: %w", err)
	}
	if !updated {
		res.Status = NotFound
		return res, nil
	}
	log.Info("template updated", "name", name)
	res.Status = Updated
	return res, nil
}

func (s *Station) nameExists(ctx context.Context, name string) (bool, error) {
	identities, err := s.store.List(ctx)
	if err != nil {
		return false, fmt.Errorf("list identities: %w", err)
	}
	for _, summary := range identities {
		if summary.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// Delete removes the first identity called name. It reports false when no
// identity has that name.
func (s *Station) Delete(ctx context.Context, name string) (deleted bool, err error) {
	log, started := s.begin("delete")
	defer func() { s.metrics.ObserveOperation("delete", started, err) }()

	name, err = identity.CanonicalName(name)
	if err != nil {
		return false, err
	}
	deleted, err = s.store.Delete(ctx, name)
	if err != nil {
		return false, fmt.Errorf("delete identity: %w", err)
	}
	log.Info("delete identity", "name", name, "deleted", deleted)
	return deleted, nil
}

// ListEnrolled returns the enrolled identities in enrollment order.
func (s *Station) ListEnrolled(ctx context.Context) ([]database.IdentitySummary, error) {
	identities, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	return identities, nil
}

// Today returns the current civil date at the station.
func (s *Station) Today() string {
	date, _ := s.tracker.Clock(s.now())
	return date
}

// Attendance returns the sessions of date, or of today when date is empty.
func (s *Station) Attendance(ctx context.Context, date string) ([]database.SessionRecord, error) {
	if date == "" {
		date = s.Today()
	}
	if _, err := time.Parse(constants.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	records, err := s.store.ListByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return records, nil
}
