// Package abctest builds ABC, SWF and SWC fixtures byte by byte for tests.
package abctest

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Writer appends little-endian and variable-length fields to a buffer.
type Writer struct {
	buf bytes.Buffer
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// Raw writes a byte slice unchanged.
func (w *Writer) Raw(data []byte) {
	w.buf.Write(data)
}

// U16 writes a little-endian uint16.
func (w *Writer) U16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

// U32LE writes a little-endian uint32.
func (w *Writer) U32LE(v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

// U30 writes a variable-length unsigned integer.
func (w *Writer) U30(v uint32) {
	w.buf.Write(U30(v))
}

// S32 writes a variable-length signed integer as its u32 bit pattern.
func (w *Writer) S32(v int32) {
	w.buf.Write(U30(uint32(v)))
}

// S24 writes a 3-byte little-endian signed integer.
func (w *Writer) S24(v int32) {
	w.buf.Write(S24(v))
}

// D64 writes a little-endian IEEE-754 double.
func (w *Writer) D64(v float64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], math.Float64bits(v))
	w.buf.Write(b[:])
}

// String writes a u30 length followed by the bytes of s.
func (w *Writer) String(s string) {
	w.U30(uint32(len(s)))
	w.buf.WriteString(s)
}

// CString writes s followed by a NUL byte.
func (w *Writer) CString(s string) {
	w.buf.WriteString(s)
	w.buf.WriteByte(0)
}

// U30 encodes v as a variable-length unsigned integer.
func U30(v uint32) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

// S24 encodes v as a 3-byte little-endian signed integer.
func S24(v int32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16)}
}

// Code concatenates instruction fragments into a code buffer.
// Each argument is a byte, an int opcode, or a byte slice of operands.
func Code(parts ...any) []byte {
	var out []byte
	for _, p := range parts {
		switch v := p.(type) {
		case byte:
			out = append(out, v)
		case int:
			out = append(out, byte(v))
		case []byte:
			out = append(out, v...)
		default:
			panic("abctest.Code: unsupported fragment")
		}
	}
	return out
}
