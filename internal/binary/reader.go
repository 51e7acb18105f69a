// Package binary provides the byte cursor shared by the SWF and ABC decoders.
package binary

import (
	"bytes"
	"encoding/binary"
	stderrors "errors"
	"math"

	"github.com/wippyai/abcdump/errors"
)

var (
	// ErrUnexpectedEOF is returned when a read runs past the end of the buffer.
	ErrUnexpectedEOF = stderrors.New("unexpected end of data")

	// ErrOverflow is returned when a variable-length integer exceeds 5 bytes.
	ErrOverflow = stderrors.New("varint: overflow")
)

// maxVarintLen is the longest encoding of a u30/u32/s32 value.
const maxVarintLen = 5

// Reader is a cursor over an in-memory buffer.
//
// Reads are atomic: a read that fails leaves the position where the
// field started, so Fail reports the offset of the offending field.
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a Reader positioned at the start of data.
func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.buf) - r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	if r.pos >= len(r.buf) {
		return 0, ErrUnexpectedEOF
	}
	b := r.buf[r.pos]
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The result is a copy and never
// aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > r.Len() {
		return nil, ErrUnexpectedEOF
	}
	out := make([]byte, n)
	copy(out, r.buf[r.pos:r.pos+n])
	r.pos += n
	return out, nil
}

// ReadU16 reads a little-endian uint16.
func (r *Reader) ReadU16() (uint16, error) {
	if r.Len() < 2 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	if r.Len() < 4 {
		return 0, ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadS24 reads a 3-byte little-endian signed integer.
func (r *Reader) ReadS24() (int32, error) {
	if r.Len() < 3 {
		return 0, ErrUnexpectedEOF
	}
	b := r.buf[r.pos:]
	v := int32(b[0]) | int32(b[1])<<8 | int32(int8(b[2]))<<16
	r.pos += 3
	return v, nil
}

// ReadU32 reads a variable-length unsigned integer of at most 5 bytes.
func (r *Reader) ReadU32() (uint32, error) {
	start := r.pos
	var result uint32
	var shift uint
	for i := 0; i < maxVarintLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			r.pos = start
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
	}
	r.pos = start
	return 0, ErrOverflow
}

// ReadU30 reads a u30 value. The encoding is identical to u32; the upper
// bits are kept as written.
func (r *Reader) ReadU30() (uint32, error) {
	return r.ReadU32()
}

// ReadS32 reads a variable-length signed integer. The value is the u32
// encoding reinterpreted as two's complement, without sign extension of
// shorter encodings.
func (r *Reader) ReadS32() (int32, error) {
	v, err := r.ReadU32()
	return int32(v), err
}

// ReadD64 reads a little-endian IEEE-754 double.
func (r *Reader) ReadD64() (float64, error) {
	if r.Len() < 8 {
		return 0, ErrUnexpectedEOF
	}
	bits := binary.LittleEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return math.Float64frombits(bits), nil
}

// ReadString reads a u30 length followed by that many bytes.
// The bytes are not validated as UTF-8.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	n, err := r.ReadU30()
	if err != nil {
		return "", err
	}
	if int64(n) > int64(r.Len()) {
		r.pos = start
		return "", ErrUnexpectedEOF
	}
	s := string(r.buf[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

// ReadCString reads a NUL-terminated string. The terminator is consumed.
func (r *Reader) ReadCString() (string, error) {
	i := bytes.IndexByte(r.buf[r.pos:], 0)
	if i < 0 {
		return "", ErrUnexpectedEOF
	}
	s := string(r.buf[r.pos : r.pos+i])
	r.pos += i + 1
	return s, nil
}

// ReadRemaining reads all remaining bytes.
func (r *Reader) ReadRemaining() []byte {
	out, _ := r.ReadBytes(r.Len())
	return out
}

// Fail converts a read error into a structured decode error at the
// current position. Errors that are already structured pass through.
func (r *Reader) Fail(phase errors.Phase, what string, err error) error {
	var e *errors.Error
	if stderrors.As(err, &e) {
		return err
	}
	switch {
	case stderrors.Is(err, ErrUnexpectedEOF):
		return errors.Truncated(phase, what, r.pos)
	case stderrors.Is(err, ErrOverflow):
		return errors.Overflow(phase, what, r.pos)
	default:
		return errors.New(phase, errors.KindInvalidData).
			Offset(r.pos).
			Detail("%s", what).
			Cause(err).
			Build()
	}
}
