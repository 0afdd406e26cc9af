package cmd

import (
	"fmt"
	"io"

	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	"github.com/schollz/progressbar/v3"
)

// spinnerPrompter shows a spinner while the sensor waits for a finger.
type spinnerPrompter struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

var _ fingerprint.Prompter = (*spinnerPrompter)(nil)

func newSpinnerPrompter(w io.Writer) *spinnerPrompter {
	return &spinnerPrompter{w: w}
}

func (p *spinnerPrompter) Prompt(step fingerprint.Step) {
	if step == fingerprint.StepRemoveFinger {
		fmt.Fprintln(p.w, step.String())
		return
	}
	p.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.w),
		progressbar.OptionSetDescription(step.String()),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *spinnerPrompter) Waiting(step fingerprint.Step, attempt int) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

func (p *spinnerPrompter) Done(step fingerprint.Step) {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
}
