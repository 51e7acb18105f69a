package abctest

import (
	"bytes"

	"github.com/klauspost/compress/zip"
	"github.com/klauspost/compress/zlib"
	"github.com/ulikunitz/xz/lzma"
)

// Tag codes used by fixtures.
const (
	TagEnd         = 0
	TagShowFrame   = 1
	TagFileAttrs   = 69
	TagDoABC       = 72
	TagSymbolClass = 76
	TagDoABC2      = 82
)

// Tag encodes a tag with the short header when the body fits.
func Tag(code uint16, body []byte) []byte {
	if len(body) < 0x3f {
		w := &Writer{}
		w.U16(code<<6 | uint16(len(body)))
		w.Raw(body)
		return w.Bytes()
	}
	return LongTag(code, body)
}

// LongTag encodes a tag with the extended 32-bit length header.
func LongTag(code uint16, body []byte) []byte {
	w := &Writer{}
	w.U16(code<<6 | 0x3f)
	w.U32LE(uint32(len(body)))
	w.Raw(body)
	return w.Bytes()
}

// DoABC wraps an ABC blob in a DoABC tag.
func DoABC(abc []byte) []byte {
	return Tag(TagDoABC, abc)
}

// DoABC2 wraps an ABC blob in a DoABC2 tag with flags and a name.
func DoABC2(flags uint32, name string, abc []byte) []byte {
	w := &Writer{}
	w.U32LE(flags)
	w.CString(name)
	w.Raw(abc)
	return Tag(TagDoABC2, w.Bytes())
}

// SymbolClass builds a SymbolClass tag from id, name pairs.
func SymbolClass(ids []uint16, names []string) []byte {
	w := &Writer{}
	w.U16(uint16(len(ids)))
	for i, id := range ids {
		w.U16(id)
		w.CString(names[i])
	}
	return Tag(TagSymbolClass, w.Bytes())
}

// movieBody is everything after the 8-byte file header: an empty
// frame rectangle, 24 fps, one frame, the tags and an End tag.
func movieBody(tags ...[]byte) []byte {
	w := &Writer{}
	w.Byte(0x00) // RECT with nbits = 0
	w.U16(24 << 8)
	w.U16(1)
	for _, t := range tags {
		w.Raw(t)
	}
	w.U16(TagEnd)
	return w.Bytes()
}

// SWF builds an uncompressed FWS file.
func SWF(version byte, tags ...[]byte) []byte {
	body := movieBody(tags...)
	w := &Writer{}
	w.Raw([]byte("FWS"))
	w.Byte(version)
	w.U32LE(uint32(8 + len(body)))
	w.Raw(body)
	return w.Bytes()
}

// CompressedSWF builds a zlib-compressed CWS file.
func CompressedSWF(version byte, tags ...[]byte) []byte {
	body := movieBody(tags...)
	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	_, _ = zw.Write(body)
	_ = zw.Close()

	w := &Writer{}
	w.Raw([]byte("CWS"))
	w.Byte(version)
	w.U32LE(uint32(8 + len(body)))
	w.Raw(z.Bytes())
	return w.Bytes()
}

// LZMASWF builds an LZMA-compressed ZWS file. The stream header of the
// encoder (5 property bytes and an 8-byte size) is replaced by the ZWS
// layout: compressed length followed by the 5 property bytes.
func LZMASWF(version byte, tags ...[]byte) []byte {
	body := movieBody(tags...)
	var c bytes.Buffer
	cfg := lzma.WriterConfig{SizeInHeader: true, Size: int64(len(body))}
	lw, err := cfg.NewWriter(&c)
	if err != nil {
		panic(err)
	}
	_, _ = lw.Write(body)
	if err := lw.Close(); err != nil {
		panic(err)
	}
	enc := c.Bytes()
	props, data := enc[:5], enc[13:]

	w := &Writer{}
	w.Raw([]byte("ZWS"))
	w.Byte(version)
	w.U32LE(uint32(8 + len(body)))
	w.U32LE(uint32(len(data)))
	w.Raw(props)
	w.Raw(data)
	return w.Bytes()
}

// SWC builds a zip archive with a catalog and the given library.swf.
func SWC(library []byte) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if f, err := zw.Create("catalog.xml"); err == nil {
		_, _ = f.Write([]byte(`<?xml version="1.0" encoding="utf-8"?><swc xmlns="http://www.adobe.com/flash/swccatalog/9"/>`))
	}
	if f, err := zw.Create("library.swf"); err == nil {
		_, _ = f.Write(library)
	}
	_ = zw.Close()
	return buf.Bytes()
}

// Archive builds a zip archive from name, content pairs.
func Archive(files map[string][]byte, order ...string) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, name := range order {
		if f, err := zw.Create(name); err == nil {
			_, _ = f.Write(files[name])
		}
	}
	_ = zw.Close()
	return buf.Bytes()
}
