package sensor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const startCode uint16 = 0xEF01

// Packet identifiers
const (
	pidCommand byte = 0x01
	pidData    byte = 0x02
	pidAck     byte = 0x07
	pidEndData byte = 0x08
)

// Instruction codes
const (
	cmdGenImage       byte = 0x01
	cmdImageToTz      byte = 0x02
	cmdMatch          byte = 0x03
	cmdUploadChar     byte = 0x08
	cmdDownloadChar   byte = 0x09
	cmdVerifyPassword byte = 0x13
)

// Char buffers on the module
const (
	charBuffer1 byte = 0x01
	charBuffer2 byte = 0x02
)

// maxPayload is the largest payload the module accepts in one packet (length field minus checksum).
const maxPayload = 256

var (
	// ErrChecksum is returned when a received packet fails checksum validation.
	ErrChecksum = errors.New("sensor packet checksum mismatch")
	// ErrMalformedPacket is returned for packets with a bad header or length.
	ErrMalformedPacket = errors.New("malformed sensor packet")
	// ErrReadTimeout is returned when the module does not answer within the read timeout.
	ErrReadTimeout = errors.New("sensor read timeout")
	// ErrTransport is returned when the serial line itself fails.
	ErrTransport = errors.New("sensor transport failure")
)

type packet struct {
	pid     byte
	payload []byte
}

// checksum is the low 16 bits of the sum of the packet id, both length bytes and the payload.
func checksum(pid byte, length uint16, payload []byte) uint16 {
	sum := uint16(pid) + length>>8 + length&0xFF
	for _, b := range payload {
		sum += uint16(b)
	}
	return sum
}

func encodePacket(address uint32, p packet) []byte {
	length := uint16(len(p.payload) + 2) //nolint:gosec // payload bounded by maxPayload
	buf := make([]byte, 0, 11+len(p.payload))
	buf = binary.BigEndian.AppendUint16(buf, startCode)
	buf = binary.BigEndian.AppendUint32(buf, address)
	buf = append(buf, p.pid)
	buf = binary.BigEndian.AppendUint16(buf, length)
	buf = append(buf, p.payload...)
	buf = binary.BigEndian.AppendUint16(buf, checksum(p.pid, length, p.payload))
	return buf
}

func writePacket(w io.Writer, address uint32, p packet) error {
	if len(p.payload) > maxPayload {
		return fmt.Errorf("%w: payload of %d bytes", ErrMalformedPacket, len(p.payload))
	}
	if _, err := w.Write(encodePacket(address, p)); err != nil {
		return fmt.Errorf("%w: write packet: %w", ErrTransport, err)
	}
	return nil
}

func readPacket(r io.Reader, address uint32) (packet, error) {
	header := make([]byte, 9)
	if _, err := io.ReadFull(r, header); err != nil {
		return packet{}, readError("read packet header", err)
	}
	if binary.BigEndian.Uint16(header[0:2]) != startCode {
		return packet{}, fmt.Errorf("%w: start code %#04x", ErrMalformedPacket, binary.BigEndian.Uint16(header[0:2]))
	}
	if got := binary.BigEndian.Uint32(header[2:6]); got != address {
		return packet{}, fmt.Errorf("%w: address %#08x, want %#08x", ErrMalformedPacket, got, address)
	}
	pid := header[6]
	length := binary.BigEndian.Uint16(header[7:9])
	if length < 2 || int(length) > maxPayload+2 {
		return packet{}, fmt.Errorf("%w: length %d", ErrMalformedPacket, length)
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return packet{}, readError("read packet body", err)
	}
	payload := body[:length-2]
	if binary.BigEndian.Uint16(body[length-2:]) != checksum(pid, length, payload) {
		return packet{}, ErrChecksum
	}
	return packet{pid: pid, payload: payload}, nil
}

func readError(what string, err error) error {
	if errors.Is(err, ErrReadTimeout) {
		return fmt.Errorf("%s: %w", what, err)
	}
	return fmt.Errorf("%w: %s: %w", ErrTransport, what, err)
}

// timeoutReader turns the (0, nil) result serial ports return on a read
// timeout into ErrReadTimeout so io.ReadFull does not spin.
type timeoutReader struct {
	r io.Reader
}

func (t timeoutReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n == 0 && err == nil && len(p) > 0 {
		return 0, ErrReadTimeout
	}
	return n, err
}
