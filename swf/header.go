package swf

import (
	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/internal/binary"
)

// Signature is the three-byte file signature.
type Signature string

const (
	SignatureFWS Signature = "FWS" // uncompressed
	SignatureCWS Signature = "CWS" // zlib
	SignatureZWS Signature = "ZWS" // LZMA
)

// headerSize is the length of signature, version and file length.
const headerSize = 8

// Rect is the frame size in twips.
type Rect struct {
	XMin, XMax, YMin, YMax int32
}

// Header is the SWF file header. FrameSize, FrameRate and FrameCount
// are read from the (possibly decompressed) movie body.
type Header struct {
	Signature  Signature
	FrameSize  Rect
	FrameRate  float64
	FileLength uint32
	FrameCount uint16
	Version    byte
}

// IsSWF reports whether data starts with a known SWF signature.
func IsSWF(data []byte) bool {
	if len(data) < 3 {
		return false
	}
	switch Signature(data[:3]) {
	case SignatureFWS, SignatureCWS, SignatureZWS:
		return true
	}
	return false
}

// readRect reads a bit-packed RECT: 5 bits of field width then four
// signed fields, padded to a byte boundary.
func readRect(r *binary.Reader) (Rect, error) {
	first, err := r.ReadByte()
	if err != nil {
		return Rect{}, r.Fail(errors.PhaseContainer, "frame size", err)
	}
	nbits := int(first >> 3)
	totalBits := 5 + 4*nbits
	nbytes := (totalBits + 7) / 8

	buf := make([]byte, nbytes)
	buf[0] = first
	for i := 1; i < nbytes; i++ {
		if buf[i], err = r.ReadByte(); err != nil {
			return Rect{}, r.Fail(errors.PhaseContainer, "frame size", err)
		}
	}

	bitPos := 5
	field := func() int32 {
		var v uint32
		for i := 0; i < nbits; i++ {
			bit := (buf[bitPos/8] >> (7 - uint(bitPos%8))) & 1
			v = v<<1 | uint32(bit)
			bitPos++
		}
		if nbits > 0 && v&(1<<(nbits-1)) != 0 {
			v |= ^uint32(0) << nbits
		}
		return int32(v)
	}
	return Rect{XMin: field(), XMax: field(), YMin: field(), YMax: field()}, nil
}
