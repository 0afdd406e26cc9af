// Package sensor drives ZFM/R30x-family optical fingerprint modules over a
// serial line using the module's packet protocol.
package sensor

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/kozaktomas/fingerprint-attendance/internal/config"
	"github.com/kozaktomas/fingerprint-attendance/internal/constants"
	"github.com/kozaktomas/fingerprint-attendance/internal/fingerprint"
	"go.bug.st/serial"
)

// Confirmation codes
const (
	codeOK             byte = 0x00
	codeReceiveError   byte = 0x01
	codeNoFinger       byte = 0x02
	codeImageFail      byte = 0x03
	codeImageMessy     byte = 0x06
	codeFewFeatures    byte = 0x07
	codeNoMatch        byte = 0x08
	codeUploadFail     byte = 0x0D
	codeDownloadFail   byte = 0x0E
	codeWrongPassword  byte = 0x13
	codeInvalidImage   byte = 0x15
	codeBadBufferIndex byte = 0x1C
)

var codeDescriptions = map[byte]string{
	codeReceiveError:   "error receiving packet",
	codeNoFinger:       "no finger on sensor",
	codeImageFail:      "failed to capture image",
	codeImageMessy:     "image too disorderly",
	codeFewFeatures:    "too few feature points",
	codeNoMatch:        "templates do not match",
	codeUploadFail:     "error uploading template",
	codeDownloadFail:   "module cannot receive data packets",
	codeWrongPassword:  "wrong password",
	codeInvalidImage:   "no valid image in buffer",
	codeBadBufferIndex: "invalid buffer index",
}

// ConfirmationError is a non-success confirmation code returned by the module.
type ConfirmationError struct {
	Instruction byte
	Code        byte
}

func (e *ConfirmationError) Error() string {
	desc, ok := codeDescriptions[e.Code]
	if !ok {
		desc = "unknown error"
	}
	return fmt.Sprintf("sensor instruction %#02x failed with code %#02x: %s", e.Instruction, e.Code, desc)
}

// Sensor is an open session with a fingerprint module.
type Sensor struct {
	rw         io.ReadWriteCloser
	r          io.Reader
	address    uint32
	packetSize int
}

var _ fingerprint.Device = (*Sensor)(nil)

// New wraps an already open transport.
func New(rw io.ReadWriteCloser, address uint32, packetSize int) *Sensor {
	if packetSize <= 0 || packetSize > maxPayload {
		packetSize = constants.DefaultDataPacketSize
	}
	return &Sensor{
		rw:         rw,
		r:          timeoutReader{r: rw},
		address:    address,
		packetSize: packetSize,
	}
}

// Open opens the serial port described by cfg.
func Open(cfg *config.DeviceConfig) (*Sensor, error) {
	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("reset input buffer: %w", err)
	}
	return New(port, cfg.Address, cfg.PacketSize), nil
}

// NewOpener returns a fingerprint.Opener that opens a fresh serial session per call.
func NewOpener(cfg *config.DeviceConfig) fingerprint.Opener {
	return func(ctx context.Context) (fingerprint.Device, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s, err := Open(cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
}

// Close closes the serial port.
func (s *Sensor) Close() error {
	if err := s.rw.Close(); err != nil {
		return fmt.Errorf("close sensor: %w", err)
	}
	return nil
}

// Authenticate verifies the module access password.
func (s *Sensor) Authenticate(ctx context.Context, password uint32) (bool, error) {
	payload := binary.BigEndian.AppendUint32([]byte{cmdVerifyPassword}, password)
	code, _, err := s.command(ctx, payload...)
	if err != nil {
		return false, err
	}
	switch code {
	case codeOK:
		return true, nil
	case codeWrongPassword:
		return false, nil
	default:
		return false, &ConfirmationError{Instruction: cmdVerifyPassword, Code: code}
	}
}

// Capture reads the finger image, converts it to characteristics in char
// buffer 1 and uploads them.
// A module that times out or drops off the line yields fingerprint.ErrDeviceUnavailable.
func (s *Sensor) Capture(ctx context.Context) (fingerprint.Template, error) {
	tpl, err := s.capture(ctx)
	if errors.Is(err, ErrReadTimeout) || errors.Is(err, ErrTransport) {
		return fingerprint.Template{}, fmt.Errorf("%w: %w", fingerprint.ErrDeviceUnavailable, err)
	}
	return tpl, err
}

func (s *Sensor) capture(ctx context.Context) (fingerprint.Template, error) {
	// Drop what is left of a frame an earlier timed out read gave up on.
	if err := s.resetInput(); err != nil {
		return fingerprint.Template{}, err
	}

	code, _, err := s.command(ctx, cmdGenImage)
	if err != nil {
		return fingerprint.Template{}, err
	}
	switch code {
	case codeOK:
	case codeNoFinger:
		return fingerprint.Template{}, fingerprint.ErrNoFinger
	case codeImageFail:
		return fingerprint.Template{}, fingerprint.ErrBadImage
	default:
		return fingerprint.Template{}, &ConfirmationError{Instruction: cmdGenImage, Code: code}
	}

	code, _, err = s.command(ctx, cmdImageToTz, charBuffer1)
	if err != nil {
		return fingerprint.Template{}, err
	}
	switch code {
	case codeOK:
	case codeImageMessy, codeFewFeatures, codeInvalidImage:
		return fingerprint.Template{}, fingerprint.ErrBadImage
	default:
		return fingerprint.Template{}, &ConfirmationError{Instruction: cmdImageToTz, Code: code}
	}

	return s.upload(ctx, charBuffer1)
}

// Compare loads both templates into the module and runs a precise match.
// A module-reported mismatch scores 0.
func (s *Sensor) Compare(ctx context.Context, a, b fingerprint.Template) (int, error) {
	if err := s.download(ctx, charBuffer1, a); err != nil {
		return 0, err
	}
	if err := s.download(ctx, charBuffer2, b); err != nil {
		return 0, err
	}

	code, data, err := s.command(ctx, cmdMatch)
	if err != nil {
		return 0, err
	}
	switch code {
	case codeOK:
		if len(data) < 2 {
			return 0, fmt.Errorf("%w: match response without score", ErrMalformedPacket)
		}
		return int(binary.BigEndian.Uint16(data[:2])), nil
	case codeNoMatch:
		return 0, nil
	default:
		return 0, &ConfirmationError{Instruction: cmdMatch, Code: code}
	}
}

// inputResetter is implemented by serial ports.
type inputResetter interface {
	ResetInputBuffer() error
}

func (s *Sensor) resetInput() error {
	r, ok := s.rw.(inputResetter)
	if !ok {
		return nil
	}
	if err := r.ResetInputBuffer(); err != nil {
		return fmt.Errorf("%w: reset input buffer: %w", ErrTransport, err)
	}
	return nil
}

// command sends an instruction and returns the confirmation code and the
// remaining acknowledgement payload.
func (s *Sensor) command(ctx context.Context, payload ...byte) (byte, []byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}
	if err := writePacket(s.rw, s.address, packet{pid: pidCommand, payload: payload}); err != nil {
		return 0, nil, err
	}
	ack, err := readPacket(s.r, s.address)
	if err != nil {
		return 0, nil, err
	}
	if ack.pid != pidAck {
		return 0, nil, fmt.Errorf("%w: expected acknowledgement, got packet id %#02x", ErrMalformedPacket, ack.pid)
	}
	if len(ack.payload) == 0 {
		return 0, nil, fmt.Errorf("%w: empty acknowledgement", ErrMalformedPacket)
	}
	return ack.payload[0], ack.payload[1:], nil
}

// upload transfers the characteristics held in a char buffer to the host.
func (s *Sensor) upload(ctx context.Context, buffer byte) (fingerprint.Template, error) {
	code, _, err := s.command(ctx, cmdUploadChar, buffer)
	if err != nil {
		return fingerprint.Template{}, err
	}
	if code != codeOK {
		return fingerprint.Template{}, &ConfirmationError{Instruction: cmdUploadChar, Code: code}
	}

	var data []byte
	for {
		if err := ctx.Err(); err != nil {
			return fingerprint.Template{}, err
		}
		p, err := readPacket(s.r, s.address)
		if err != nil {
			return fingerprint.Template{}, fmt.Errorf("upload characteristics: %w", err)
		}
		switch p.pid {
		case pidData, pidEndData:
			data = append(data, p.payload...)
		default:
			return fingerprint.Template{}, fmt.Errorf("%w: unexpected packet id %#02x during upload", ErrMalformedPacket, p.pid)
		}
		if p.pid == pidEndData {
			break
		}
		if len(data) > fingerprint.MaxTemplateSize {
			return fingerprint.Template{}, fmt.Errorf("upload characteristics: %w", fingerprint.ErrInvalidTemplate)
		}
	}
	return fingerprint.NewTemplate(data)
}

// download transfers a template from the host into a char buffer.
func (s *Sensor) download(ctx context.Context, buffer byte, tpl fingerprint.Template) error {
	if tpl.IsZero() {
		return fmt.Errorf("download characteristics: %w", fingerprint.ErrInvalidTemplate)
	}
	code, _, err := s.command(ctx, cmdDownloadChar, buffer)
	if err != nil {
		return err
	}
	if code != codeOK {
		return &ConfirmationError{Instruction: cmdDownloadChar, Code: code}
	}

	data := tpl.Bytes()
	for len(data) > 0 {
		n := min(s.packetSize, len(data))
		pid := pidData
		if n == len(data) {
			pid = pidEndData
		}
		if err := writePacket(s.rw, s.address, packet{pid: pid, payload: data[:n]}); err != nil {
			return fmt.Errorf("download characteristics: %w", err)
		}
		data = data[n:]
	}
	return nil
}
