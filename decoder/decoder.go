// Package decoder runs the whole pipeline from file bytes to the text
// projections: archive extraction, SWF demultiplexing, ABC decoding and
// rendering.
package decoder

import (
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/abcdump"
	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/errors"
	"github.com/wippyai/abcdump/render"
	"github.com/wippyai/abcdump/swc"
	"github.com/wippyai/abcdump/swf"
)

// Options configures a decode.
type Options struct {
	// Archive extracts library.swf from zip input. Nil uses swc.Extractor{}.
	Archive    abcdump.LibraryExtractor
	Projection abcdump.Projection // empty renders both
	Mode       abc.Mode
}

// DefaultOptions returns lenient decoding with both projections.
func DefaultOptions() Options {
	return Options{Mode: abc.Lenient, Projection: abcdump.ProjectionBoth}
}

func (o Options) archive() abcdump.LibraryExtractor {
	if o.Archive != nil {
		return o.Archive
	}
	return swc.Extractor{}
}

// Diagnostic is a method body error kept in lenient mode: either a body
// that failed to decode or an unknown opcode inside one.
type Diagnostic struct {
	Err    error
	Label  string
	Blob   int // index into Result.Models
	Method uint32
}

// Result holds the decoded models and their rendered projections.
type Result struct {
	Container   *swf.Container // nil for raw ABC input
	Models      []*abc.Model   // one per ABC blob, in tag order
	Symbols     []swf.Symbol
	Diagnostics []Diagnostic
	Stub        string
	IL          string
}

// Histogram returns the opcode counts over every model.
func (r *Result) Histogram() []abc.OpcodeCount {
	hs := make([][]abc.OpcodeCount, len(r.Models))
	for i, m := range r.Models {
		hs[i] = m.OpcodeHistogram()
	}
	return abc.MergeHistograms(hs...)
}

// Decode turns SWC, SWF or raw ABC bytes into a Result. Input that is
// neither a zip archive nor a SWF is decoded as a single ABC blob.
//
// Container and pool errors abort the decode. Method body errors and
// unknown opcodes abort it in strict mode and are reported as
// Diagnostics in lenient mode.
// Decode keeps no state between calls and is safe for concurrent use.
func Decode(data []byte, opts Options) (*Result, error) {
	if swc.IsArchive(data) {
		lib, err := opts.archive().ExtractLibrary(data)
		if err != nil {
			return nil, err
		}
		Logger().Debug("extracted library", zap.Int("size", len(lib)))
		data = lib
	}

	res := &Result{}
	var blobs [][]byte
	if swf.IsSWF(data) {
		c, err := swf.ReadContainer(data)
		if err != nil {
			return nil, err
		}
		res.Container = c
		res.Symbols = c.Symbols
		for _, a := range c.ABC {
			blobs = append(blobs, a.Data)
		}
		Logger().Debug("swf container",
			zap.Int("tags", len(c.Tags)),
			zap.Int("abc_blobs", len(blobs)),
			zap.Int("symbols", len(c.Symbols)))
	} else {
		blobs = [][]byte{data}
	}

	res.Models = make([]*abc.Model, 0, len(blobs))
	for i, blob := range blobs {
		m, err := abc.Parse(blob, opts.Mode)
		if err != nil {
			return nil, errors.WithPath(err, "abc", strconv.Itoa(i))
		}
		res.Models = append(res.Models, m)

		for _, body := range m.Diagnostics() {
			label := m.MethodLabel(body.Method)
			for _, err := range body.Errors() {
				res.Diagnostics = append(res.Diagnostics, Diagnostic{Blob: i, Method: body.Method, Label: label, Err: err})
				Logger().Warn("method body diagnostic",
					zap.Int("blob", i),
					zap.String("method", label),
					zap.Error(err))
			}
		}
	}

	res.render(opts.Projection)
	return res, nil
}

// render concatenates the projections of every model in tag order.
func (r *Result) render(p abcdump.Projection) {
	if p.Stub() {
		var stubs []string
		for _, m := range r.Models {
			if s := render.InterfaceStub(m); s != "" {
				stubs = append(stubs, s)
			}
		}
		r.Stub = strings.Join(stubs, "\n")
	}
	if p.IL() {
		var b strings.Builder
		for _, m := range r.Models {
			b.WriteString(render.ILDump(m))
		}
		r.IL = b.String()
	}
}

// DecodeFile reads path and decodes it.
func DecodeFile(path string, opts Options) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Load("read "+path, err)
	}
	res, err := Decode(data, opts)
	if err != nil {
		return nil, err
	}
	Logger().Debug("decoded file",
		zap.String("path", path),
		zap.Int("models", len(res.Models)),
		zap.Int("diagnostics", len(res.Diagnostics)))
	return res, nil
}
