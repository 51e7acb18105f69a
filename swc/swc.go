// Package swc extracts the library.swf entry from compiled library archives.
package swc

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zip"

	"github.com/wippyai/abcdump/errors"
)

// LibraryEntry is the archive entry holding the compiled library.
const LibraryEntry = "library.swf"

// zipMagic starts every local file header of a zip archive.
var zipMagic = []byte{'P', 'K', 0x03, 0x04}

// IsArchive reports whether data looks like a zip archive.
func IsArchive(data []byte) bool {
	return bytes.HasPrefix(data, zipMagic)
}

// Extractor implements abcdump.LibraryExtractor for SWC archives.
type Extractor struct {
	// MaxSize bounds the uncompressed size of library.swf. Zero means
	// no limit.
	MaxSize int64
}

// ExtractLibrary returns the bytes of the library.swf entry.
func (e Extractor) ExtractLibrary(data []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.PhaseArchive, errors.KindInvalidData, err, "open swc archive")
	}

	for _, f := range zr.File {
		if f.Name != LibraryEntry {
			continue
		}
		if e.MaxSize > 0 && f.UncompressedSize64 > uint64(e.MaxSize) {
			return nil, errors.LengthExceeded(errors.PhaseArchive, LibraryEntry, int(f.UncompressedSize64), int(e.MaxSize))
		}
		rc, err := f.Open()
		if err != nil {
			return nil, errors.Wrap(errors.PhaseArchive, errors.KindInvalidData, err, "open "+LibraryEntry)
		}
		defer rc.Close()
		out, err := io.ReadAll(rc)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseArchive, errors.KindInvalidData, err, "read "+LibraryEntry)
		}
		return out, nil
	}
	return nil, errors.NotFound(errors.PhaseArchive, "entry", LibraryEntry)
}

// ExtractLibrary returns the bytes of the library.swf entry using the
// default Extractor.
func ExtractLibrary(data []byte) ([]byte, error) {
	return Extractor{}.ExtractLibrary(data)
}
