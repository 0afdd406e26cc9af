package fingerprint

import (
	"context"
	"errors"
	"time"
)

// Step identifies what the operator is asked to do during a capture.
type Step int

const (
	StepPlaceFinger Step = iota
	StepRemoveFinger
	StepPlaceSameFinger
)

// String returns the operator-facing instruction for the step.
func (s Step) String() string {
	switch s {
	case StepPlaceFinger:
		return "Waiting for finger..."
	case StepRemoveFinger:
		return "Remove finger..."
	case StepPlaceSameFinger:
		return "Waiting for same finger again..."
	default:
		return "unknown step"
	}
}

// Prompter shows capture progress to the operator.
type Prompter interface {
	// Prompt is called once when a step begins.
	Prompt(step Step)
	// Waiting is called after every unsuccessful read attempt.
	Waiting(step Step, attempt int)
	// Done is called when the step has finished, successfully or not.
	Done(step Step)
}

// Capturer polls a device until a usable read arrives.
// A zero Timeout waits until ctx is cancelled.
type Capturer struct {
	PollInterval time.Duration
	Timeout      time.Duration
	RemoveDelay  time.Duration
	Prompter     Prompter

	// OnRetry, when set, is called with every transient read failure.
	OnRetry func(err error)
}

// Capture reads one template, retrying transient failures every PollInterval.
func (c *Capturer) Capture(ctx context.Context, dev Device, step Step) (Template, error) {
	waitCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	c.prompt(step)
	defer c.done(step)

	for attempt := 1; ; attempt++ {
		tpl, err := dev.Capture(waitCtx)
		if err == nil {
			return tpl, nil
		}
		if !IsTransient(err) {
			return Template{}, c.waitError(ctx, waitCtx, err)
		}
		if c.OnRetry != nil {
			c.OnRetry(err)
		}
		if c.Prompter != nil {
			c.Prompter.Waiting(step, attempt)
		}

		timer := time.NewTimer(c.PollInterval)
		select {
		case <-waitCtx.Done():
			timer.Stop()
			return Template{}, c.waitError(ctx, waitCtx, waitCtx.Err())
		case <-timer.C:
		}
	}
}

// WaitRemoval asks the operator to lift the finger and pauses for RemoveDelay.
func (c *Capturer) WaitRemoval(ctx context.Context) error {
	c.prompt(StepRemoveFinger)
	defer c.done(StepRemoveFinger)

	if c.RemoveDelay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.RemoveDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// waitError maps expiry of the capture deadline to ErrCaptureTimeout while
// leaving cancellation of the caller's context untouched.
func (c *Capturer) waitError(parent, waitCtx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
		return ErrCaptureTimeout
	}
	return err
}

func (c *Capturer) prompt(step Step) {
	if c.Prompter != nil {
		c.Prompter.Prompt(step)
	}
}

func (c *Capturer) done(step Step) {
	if c.Prompter != nil {
		c.Prompter.Done(step)
	}
}
