package fingerprint

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"
)

func TestTemplateRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"single byte", []byte{0x42}},
		{"sensor sized", bytes.Repeat([]byte{0x03, 0x01, 0x5c}, 170)},
		{"max size", bytes.Repeat([]byte{0xff}, MaxTemplateSize)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tpl, err := NewTemplate(tc.payload)
			if err != nil {
				t.Fatalf("NewTemplate: %v", err)
			}
			encoded, err := Encode(tpl)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if len(encoded) != len(tc.payload)+headerSize+trailerSize {
				t.Errorf("encoded length = %d, want %d", len(encoded), len(tc.payload)+headerSize+trailerSize)
			}
			decoded, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !decoded.Equal(tpl) {
				t.Errorf("Decode(Encode(t)) = %v, want %v", decoded.Bytes(), tc.payload)
			}
		})
	}
}

func TestNewTemplateRejectsInvalidPayload(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"nil", nil},
		{"empty", []byte{}},
		{"oversized", make([]byte, MaxTemplateSize+1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewTemplate(tc.payload); !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("NewTemplate() error = %v, want ErrInvalidTemplate", err)
			}
		})
	}
}

func TestTemplateIsCopied(t *testing.T) {
	raw := []byte{1, 2, 3}
	tpl, err := NewTemplate(raw)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	raw[0] = 9
	if tpl.Bytes()[0] != 1 {
		t.Error("template shares memory with the caller's slice")
	}
	out := tpl.Bytes()
	out[1] = 9
	if tpl.Bytes()[1] != 2 {
		t.Error("Bytes() exposes internal storage")
	}
}

func TestDecodeRejectsCorruptEncoding(t *testing.T) {
	tpl, _ := NewTemplate([]byte{10, 20, 30, 40})
	valid, _ := Encode(tpl)

	corrupt := func(mutate func(b []byte) []byte) []byte {
		return mutate(bytes.Clone(valid))
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"truncated", valid[:len(valid)-1]},
		{"bad magic", corrupt(func(b []byte) []byte { b[0] = 'X'; return b })},
		{"bad version", corrupt(func(b []byte) []byte { b[3] = 7; return b })},
		{"length mismatch", corrupt(func(b []byte) []byte { b[5] = 9; return b })},
		{"payload flipped", corrupt(func(b []byte) []byte { b[headerSize] ^= 0xff; return b })},
		{"trailing bytes", append(bytes.Clone(valid), 0)},
		{"legacy string list", []byte("[3, 1, 92, 17]")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode(tc.data); !errors.Is(err, ErrInvalidTemplate) {
				t.Errorf("Decode() error = %v, want ErrInvalidTemplate", err)
			}
		})
	}
}

func TestEncodeZeroTemplate(t *testing.T) {
	if _, err := Encode(Template{}); !errors.Is(err, ErrInvalidTemplate) {
		t.Errorf("Encode(zero) error = %v, want ErrInvalidTemplate", err)
	}
}

// scriptedDevice returns the queued read results in order and then reports no finger.
type scriptedDevice struct {
	reads []error
	tpl   Template
	calls int
}

func (d *scriptedDevice) Capture(ctx context.Context) (Template, error) {
	d.calls++
	if len(d.reads) == 0 {
		return Template{}, ErrNoFinger
	}
	err := d.reads[0]
	d.reads = d.reads[1:]
	if err != nil {
		return Template{}, err
	}
	return d.tpl, nil
}

func (d *scriptedDevice) Compare(ctx context.Context, a, b Template) (int, error) { return 0, nil }
func (d *scriptedDevice) Authenticate(ctx context.Context, pw uint32) (bool, error) {
	return true, nil
}

func (d *scriptedDevice) Close() error { return nil }

type recordingPrompter struct {
	events []string
}

func (p *recordingPrompter) Prompt(step Step)  { p.events = append(p.events, "prompt:"+step.String()) }
func (p *recordingPrompter) Waiting(Step, int) { p.events = append(p.events, "waiting") }
func (p *recordingPrompter) Done(step Step)    { p.events = append(p.events, "done:"+step.String()) }

func TestCapturerRetriesTransientFailures(t *testing.T) {
	tpl, _ := NewTemplate([]byte{1, 2, 3})
	dev := &scriptedDevice{reads: []error{ErrNoFinger, ErrBadImage, ErrNoFinger, nil}, tpl: tpl}
	prompter := &recordingPrompter{}
	retries := 0
	c := &Capturer{
		PollInterval: time.Millisecond,
		Timeout:      time.Second,
		Prompter:     prompter,
		OnRetry:      func(error) { retries++ },
	}

	got, err := c.Capture(context.Background(), dev, StepPlaceFinger)
	if err != nil {
		t.Fatalf("Capture: %v", err)
	}
	if !got.Equal(tpl) {
		t.Errorf("Capture() = %v, want %v", got.Bytes(), tpl.Bytes())
	}
	if dev.calls != 4 {
		t.Errorf("device read %d times, want 4", dev.calls)
	}
	if retries != 3 {
		t.Errorf("OnRetry called %d times, want 3", retries)
	}
	want := []string{"prompt:Waiting for finger...", "waiting", "waiting", "waiting", "done:Waiting for finger..."}
	if len(prompter.events) != len(want) {
		t.Fatalf("prompter events = %v, want %v", prompter.events, want)
	}
	for i := range want {
		if prompter.events[i] != want[i] {
			t.Errorf("event[%d] = %q, want %q", i, prompter.events[i], want[i])
		}
	}
}

func TestCapturerSurfacesPermanentErrors(t *testing.T) {
	boom := errors.New("unexpected confirmation code")
	dev := &scriptedDevice{reads: []error{ErrNoFinger, boom}}
	c := &Capturer{PollInterval: time.Millisecond, Timeout: time.Second}

	_, err := c.Capture(context.Background(), dev, StepPlaceFinger)
	if !errors.Is(err, boom) {
		t.Errorf("Capture() error = %v, want %v", err, boom)
	}
}

func TestCapturerTimeout(t *testing.T) {
	dev := &scriptedDevice{}
	c := &Capturer{PollInterval: time.Millisecond, Timeout: 20 * time.Millisecond}

	_, err := c.Capture(context.Background(), dev, StepPlaceFinger)
	if !errors.Is(err, ErrCaptureTimeout) {
		t.Errorf("Capture() error = %v, want ErrCaptureTimeout", err)
	}
	if dev.calls < 2 {
		t.Errorf("device read %d times, expected polling", dev.calls)
	}
}

func TestCapturerCancelled(t *testing.T) {
	dev := &scriptedDevice{}
	c := &Capturer{PollInterval: time.Millisecond}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)

	_, err := c.Capture(ctx, dev, StepPlaceFinger)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Capture() error = %v, want context.Canceled", err)
	}
}

func TestWaitRemoval(t *testing.T) {
	prompter := &recordingPrompter{}
	c := &Capturer{RemoveDelay: time.Millisecond, Prompter: prompter}
	if err := c.WaitRemoval(context.Background()); err != nil {
		t.Fatalf("WaitRemoval: %v", err)
	}
	if len(prompter.events) != 2 || prompter.events[0] != "prompt:Remove finger..." {
		t.Errorf("prompter events = %v", prompter.events)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.RemoveDelay = time.Hour
	if err := c.WaitRemoval(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("WaitRemoval(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrNoFinger, true},
		{ErrBadImage, true},
		{ErrDeviceUnavailable, true},
		{errors.Join(errors.New("read"), ErrNoFinger), true},
		{ErrDeviceAuth, false},
		{ErrCaptureTimeout, false},
		{errors.New("other"), false},
	}
	for _, tc := range tests {
		if got := IsTransient(tc.err); got != tc.want {
			t.Errorf("IsTransient(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}
