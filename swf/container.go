package swf

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"
	"go.uber.org/zap"

	"github.com/wippyai/abcdump/errors"
	bin "github.com/wippyai/abcdump/internal/binary"
)

// TagCode identifies a tag.
type TagCode uint16

const (
	TagEnd         TagCode = 0
	TagDoABC       TagCode = 72
	TagSymbolClass TagCode = 76
	TagDoABC2      TagCode = 82
)

// shortLengthMax in a tag header means a 32-bit length follows.
const shortLengthMax = 0x3f

// Tag records the position of one tag in the movie body.
type Tag struct {
	Offset int // offset of the tag header in the movie body
	Length uint32
	Code   TagCode
}

// ABC is an ABC payload found in a DoABC or DoABC2 tag.
type ABC struct {
	Name  string // DoABC2 only
	Data  []byte
	Flags uint32 // DoABC2 only
	Tag   TagCode
}

// Symbol is a SymbolClass entry linking a character id to a class name.
type Symbol struct {
	Name string
	ID   uint16
}

// Container is a demultiplexed SWF file.
type Container struct {
	Header  Header
	Tags    []Tag
	ABC     []ABC
	Symbols []Symbol
}

// ReadContainer parses a SWF file, inflating the body when compressed,
// and collects every ABC payload in tag order.
func ReadContainer(data []byte) (*Container, error) {
	if len(data) < headerSize {
		return nil, errors.Truncated(errors.PhaseContainer, "file header", 0)
	}
	if !IsSWF(data) {
		return nil, errors.BadSignature(data[:3])
	}

	c := &Container{}
	c.Header.Signature = Signature(data[:3])
	c.Header.Version = data[3]
	c.Header.FileLength = binary.LittleEndian.Uint32(data[4:8])

	if c.Header.FileLength < headerSize {
		return nil, errors.New(errors.PhaseContainer, errors.KindInvalidData).
			Offset(4).
			Detail("file length %d is shorter than the header", c.Header.FileLength).
			Value(c.Header.FileLength).
			Build()
	}

	body, err := movieBody(c.Header, data)
	if err != nil {
		return nil, err
	}

	Logger().Debug("swf header",
		zap.String("signature", string(c.Header.Signature)),
		zap.Uint8("version", c.Header.Version),
		zap.Uint32("file_length", c.Header.FileLength))

	if err := c.readTags(body); err != nil {
		return nil, err
	}
	return c, nil
}

// movieBody returns everything after the 8-byte header, inflated.
func movieBody(h Header, data []byte) ([]byte, error) {
	want := int64(h.FileLength) - headerSize

	switch h.Signature {
	case SignatureFWS:
		if int64(len(data)) < int64(h.FileLength) {
			return nil, errors.LengthExceeded(errors.PhaseContainer, "file header", int(h.FileLength), len(data))
		}
		return data[headerSize:h.FileLength], nil

	case SignatureCWS:
		zr, err := zlib.NewReader(bytes.NewReader(data[headerSize:]))
		if err != nil {
			return nil, errors.New(errors.PhaseContainer, errors.KindInvalidData).
				Offset(headerSize).
				Detail("zlib stream").
				Cause(err).
				Build()
		}
		defer zr.Close()
		return inflate(zr, want)

	case SignatureZWS:
		return inflateLZMA(data, want)
	}
	return nil, errors.BadSignature(data[:3])
}

// inflate reads exactly want bytes; a shorter stream means the declared
// length exceeds the data.
func inflate(r io.Reader, want int64) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, want))
	if int64(len(out)) < want {
		e := errors.LengthExceeded(errors.PhaseContainer, "compressed body", int(want), len(out))
		if err != nil {
			e.Cause = err
		}
		return nil, e
	}
	return out, nil
}

// inflateLZMA decodes a ZWS body. The file stores the compressed length
// and the 5 LZMA property bytes at offset 8; the classic LZMA header is
// rebuilt with the known uncompressed size.
func inflateLZMA(data []byte, want int64) ([]byte, error) {
	const propsOffset = headerSize + 4
	const dataOffset = propsOffset + 5
	if len(data) < dataOffset {
		return nil, errors.Truncated(errors.PhaseContainer, "lzma header", headerSize)
	}

	hdr := make([]byte, 13)
	copy(hdr, data[propsOffset:dataOffset])
	binary.LittleEndian.PutUint64(hdr[5:], uint64(want))

	lr, err := lzma.NewReader(io.MultiReader(bytes.NewReader(hdr), bytes.NewReader(data[dataOffset:])))
	if err != nil {
		return nil, errors.UnsupportedCompression("lzma", err)
	}
	return inflate(lr, want)
}

func (c *Container) readTags(body []byte) error {
	r := bin.NewReader(body)

	rect, err := readRect(r)
	if err != nil {
		return err
	}
	c.Header.FrameSize = rect
	rate, err := r.ReadU16()
	if err != nil {
		return r.Fail(errors.PhaseContainer, "frame rate", err)
	}
	c.Header.FrameRate = float64(rate) / 256
	if c.Header.FrameCount, err = r.ReadU16(); err != nil {
		return r.Fail(errors.PhaseContainer, "frame count", err)
	}

	for r.Len() > 0 {
		start := r.Position()
		if r.Len() < 2 {
			return errors.Truncated(errors.PhaseContainer, "tag header", start)
		}
		hdr, _ := r.ReadU16()
		code := TagCode(hdr >> 6)
		length := uint32(hdr & shortLengthMax)
		if length == shortLengthMax {
			if length, err = r.ReadU32LE(); err != nil {
				return r.Fail(errors.PhaseContainer, "long tag length", err)
			}
		}
		if int64(length) > int64(r.Len()) {
			e := errors.LengthExceeded(errors.PhaseContainer, fmt.Sprintf("tag %d", code), int(length), r.Len())
			e.Offset = start
			return e
		}

		c.Tags = append(c.Tags, Tag{Offset: start, Length: length, Code: code})
		if code == TagEnd {
			break
		}

		payload, _ := r.ReadBytes(int(length))
		if err := c.handleTag(code, payload, r.Position()-int(length)); err != nil {
			return err
		}
	}

	Logger().Debug("swf tags",
		zap.Int("tags", len(c.Tags)),
		zap.Int("abc", len(c.ABC)),
		zap.Int("symbols", len(c.Symbols)))
	return nil
}

func (c *Container) handleTag(code TagCode, payload []byte, offset int) error {
	switch code {
	case TagDoABC:
		c.ABC = append(c.ABC, ABC{Tag: code, Data: payload})

	case TagDoABC2:
		r := bin.NewReader(payload)
		flags, err := r.ReadU32LE()
		if err != nil {
			return errors.Truncated(errors.PhaseContainer, "DoABC2 flags", offset)
		}
		name, err := r.ReadCString()
		if err != nil {
			return errors.Truncated(errors.PhaseContainer, "DoABC2 name", offset+r.Position())
		}
		c.ABC = append(c.ABC, ABC{Tag: code, Flags: flags, Name: name, Data: r.ReadRemaining()})

	case TagSymbolClass:
		r := bin.NewReader(payload)
		n, err := r.ReadU16()
		if err != nil {
			return errors.Truncated(errors.PhaseContainer, "SymbolClass count", offset)
		}
		for i := 0; i < int(n); i++ {
			id, err := r.ReadU16()
			if err != nil {
				return errors.Truncated(errors.PhaseContainer, "SymbolClass id", offset+r.Position())
			}
			name, err := r.ReadCString()
			if err != nil {
				return errors.Truncated(errors.PhaseContainer, "SymbolClass name", offset+r.Position())
			}
			c.Symbols = append(c.Symbols, Symbol{ID: id, Name: name})
		}

	default:
		Logger().Debug("skip tag", zap.Uint16("code", uint16(code)), zap.Int("length", len(payload)))
	}
	return nil
}
