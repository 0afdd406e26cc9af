package fingerprint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
)

// MaxTemplateSize is the largest characteristics payload accepted from a sensor.
// ZFM/R30x modules produce 512-byte character files.
const MaxTemplateSize = 2048

const (
	formatVersion byte = 1
	headerSize         = 6 // magic (3) + version (1) + payload length (2)
	trailerSize        = 4 // CRC-32 of the payload
)

var templateMagic = [3]byte{'F', 'P', 'T'}

// ErrInvalidTemplate is returned for empty, oversized or corrupt templates.
var ErrInvalidTemplate = errors.New("invalid fingerprint template")

// Template is the characteristics buffer a sensor produces for one finger read.
// The contents are opaque; they are only handed back to the sensor for comparison
// or persisted as an encoded blob.
type Template struct {
	data []byte
}

// NewTemplate copies b into a template.
func NewTemplate(b []byte) (Template, error) {
	if len(b) == 0 {
		return Template{}, fmt.Errorf("%w: empty payload", ErrInvalidTemplate)
	}
	if len(b) > MaxTemplateSize {
		return Template{}, fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrInvalidTemplate, len(b), MaxTemplateSize)
	}
	return Template{data: bytes.Clone(b)}, nil
}

// Bytes returns a copy of the raw characteristics.
func (t Template) Bytes() []byte {
	return bytes.Clone(t.data)
}

// Len returns the payload size in bytes.
func (t Template) Len() int {
	return len(t.data)
}

// IsZero reports whether the template holds no data.
func (t Template) IsZero() bool {
	return len(t.data) == 0
}

// Equal reports whether both templates carry the same characteristics.
func (t Template) Equal(other Template) bool {
	return bytes.Equal(t.data, other.data)
}

// MarshalBinary encodes the template as
// "FPT" | version | uint16 length | payload | uint32 CRC-32 (all big-endian).
func (t Template) MarshalBinary() ([]byte, error) {
	if t.IsZero() {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidTemplate)
	}
	buf := make([]byte, 0, headerSize+len(t.data)+trailerSize)
	buf = append(buf, templateMagic[:]...)
	buf = append(buf, formatVersion)
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(t.data))) //nolint:gosec // bounded by MaxTemplateSize
	buf = append(buf, t.data...)
	buf = binary.BigEndian.AppendUint32(buf, crc32.ChecksumIEEE(t.data))
	return buf, nil
}

// UnmarshalBinary decodes a buffer produced by MarshalBinary.
func (t *Template) UnmarshalBinary(b []byte) error {
	if len(b) < headerSize+trailerSize {
		return fmt.Errorf("%w: encoding too short (%d bytes)", ErrInvalidTemplate, len(b))
	}
	if !bytes.Equal(b[:3], templateMagic[:]) {
		return fmt.Errorf("%w: bad magic", ErrInvalidTemplate)
	}
	if b[3] != formatVersion {
		return fmt.Errorf("%w: unsupported format version %d", ErrInvalidTemplate, b[3])
	}
	size := int(binary.BigEndian.Uint16(b[4:6]))
	if len(b) != headerSize+size+trailerSize {
		return fmt.Errorf("%w: length %d does not match encoding of %d bytes", ErrInvalidTemplate, size, len(b))
	}
	payload := b[headerSize : headerSize+size]
	if crc32.ChecksumIEEE(payload) != binary.BigEndian.Uint32(b[headerSize+size:]) {
		return fmt.Errorf("%w: checksum mismatch", ErrInvalidTemplate)
	}
	decoded, err := NewTemplate(payload)
	if err != nil {
		return err
	}
	*t = decoded
	return nil
}

// Encode is MarshalBinary for callers that already hold a valid template.
func Encode(t Template) ([]byte, error) {
	return t.MarshalBinary()
}

// Decode parses an encoded template.
func Decode(b []byte) (Template, error) {
	var t Template
	if err := t.UnmarshalBinary(b); err != nil {
		return Template{}, err
	}
	return t, nil
}
