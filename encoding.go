package mqtt

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// Encoding errors.
var (
	ErrShortBuffer     = errors.New("read past end of buffer")
	ErrStringTooLong   = errors.New("string exceeds maximum length of 65535 bytes")
	ErrBinaryTooLong   = errors.New("binary data exceeds maximum length of 65535 bytes")
	ErrInvalidUTF8     = errors.New("invalid UTF-8 string")
	ErrVarintTooLarge  = errors.New("variable length integer exceeds maximum value")
	ErrVarintMalformed = errors.New("malformed variable length integer")
)

const (
	maxUint16 = 65535
	maxVarint = 268435455 // 0x0FFFFFFF

	varintContinueBit = 0x80
	varintValueMask   = 0x7F
)

// writeBuffer accumulates encoded packet bytes. Capacity grows by doubling,
// or to the exact required size when doubling is not enough.
type writeBuffer struct {
	data []byte
}

func (b *writeBuffer) grow(n int) {
	need := len(b.data) + n
	if need <= cap(b.data) {
		return
	}
	newCap := cap(b.data) * 2
	if newCap < 16 {
		newCap = 16
	}
	if newCap < need {
		newCap = need
	}
	data := make([]byte, len(b.data), newCap)
	copy(data, b.data)
	b.data = data
}

// WriteByte appends a single byte.
func (b *writeBuffer) WriteByte(v byte) error {
	b.grow(1)
	b.data = append(b.data, v)
	return nil
}

// WriteUint16 appends a big-endian unsigned 16-bit integer.
func (b *writeBuffer) WriteUint16(v uint16) {
	b.grow(2)
	b.data = append(b.data, byte(v>>8), byte(v))
}

// Write appends raw bytes without a length prefix.
func (b *writeBuffer) Write(p []byte) (int, error) {
	b.grow(len(p))
	b.data = append(b.data, p...)
	return len(p), nil
}

// WriteString appends a UTF-8 string with a 2-byte length prefix.
// The prefix counts bytes, not characters.
func (b *writeBuffer) WriteString(s string) error {
	if len(s) > maxUint16 {
		return ErrStringTooLong
	}
	if !utf8.ValidString(s) {
		return ErrInvalidUTF8
	}
	b.WriteUint16(uint16(len(s)))
	b.grow(len(s))
	b.data = append(b.data, s...)
	return nil
}

// WriteBinary appends binary data with a 2-byte length prefix.
func (b *writeBuffer) WriteBinary(p []byte) error {
	if len(p) > maxUint16 {
		return ErrBinaryTooLong
	}
	b.WriteUint16(uint16(len(p)))
	b.grow(len(p))
	b.data = append(b.data, p...)
	return nil
}

// WriteVarint appends an MQTT variable length integer (1-4 bytes).
func (b *writeBuffer) WriteVarint(v uint32) error {
	if v > maxVarint {
		return ErrVarintTooLarge
	}
	for {
		encoded := byte(v & varintValueMask)
		v >>= 7
		if v > 0 {
			encoded |= varintContinueBit
		}
		b.data = append(b.data, encoded)
		if v == 0 {
			return nil
		}
	}
}

// Bytes returns the accumulated bytes.
func (b *writeBuffer) Bytes() []byte { return b.data }

// Len returns the number of accumulated bytes.
func (b *writeBuffer) Len() int { return len(b.data) }

// readCursor reads the mirror encodings back out of a byte slice. Reading
// past the available bytes returns ErrShortBuffer instead of padding or
// panicking.
type readCursor struct {
	data []byte
	pos  int
}

func newReadCursor(data []byte) *readCursor {
	return &readCursor{data: data}
}

// Remaining returns the number of unread bytes.
func (r *readCursor) Remaining() int { return len(r.data) - r.pos }

// ReadByte reads a single byte.
func (r *readCursor) ReadByte() (byte, error) {
	if r.Remaining() < 1 {
		return 0, ErrShortBuffer
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads a big-endian unsigned 16-bit integer.
func (r *readCursor) ReadUint16() (uint16, error) {
	if r.Remaining() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadBytes reads exactly n raw bytes.
func (r *readCursor) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Remaining() < n {
		return nil, ErrShortBuffer
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// ReadString reads a UTF-8 string with a 2-byte length prefix.
func (r *readCursor) ReadString() (string, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return "", err
	}
	buf, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", ErrInvalidUTF8
	}
	return string(buf), nil
}

// ReadBinary reads binary data with a 2-byte length prefix.
func (r *readCursor) ReadBinary() ([]byte, error) {
	length, err := r.ReadUint16()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, nil
	}
	return r.ReadBytes(int(length))
}

// ReadVarint reads an MQTT variable length integer. ErrShortBuffer means the
// encoding continues past the available bytes; ErrVarintMalformed means a
// fifth continuation byte was seen.
func (r *readCursor) ReadVarint() (uint32, error) {
	var value uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		value |= uint32(b&varintValueMask) << shift
		if b&varintContinueBit == 0 {
			return value, nil
		}
		shift += 7
		if shift > 21 {
			return 0, ErrVarintMalformed
		}
	}
}

// ReadRest consumes and returns all unread bytes.
func (r *readCursor) ReadRest() []byte {
	v := r.data[r.pos:]
	r.pos = len(r.data)
	return v
}

// varintSize returns the encoded size of a variable length integer.
func varintSize(v uint32) int {
	switch {
	case v < 128:
		return 1
	case v < 16384:
		return 2
	case v < 2097152:
		return 3
	default:
		return 4
	}
}
