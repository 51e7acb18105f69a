// Package batch decodes every Flash library under a directory tree in
// parallel and writes the text projections next to each other in an
// output directory.
package batch

import (
	"bytes"
	"context"
	"crypto/sha256"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/wippyai/abcdump/decoder"
	"github.com/wippyai/abcdump/errors"
)

// Output file suffixes appended to the input's relative path.
const (
	StubSuffix = ".stub.as"
	ILSuffix   = ".il.txt"
)

// Options configures a Runner.
type Options struct {
	Root      string
	Output    string // empty disables writing
	Include   []string
	Exclude   []string
	Decode    decoder.Options
	Workers   int
	CacheSize int // number of results kept, keyed by content hash
	Debounce  time.Duration
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Err         error
	Rel         string // slash-separated path relative to Root
	Diagnostics []decoder.Diagnostic
	Models      int
	Cached      bool
}

// Summary is the outcome of one run, sorted by path.
type Summary struct {
	Files    []FileResult
	Duration time.Duration
}

// Failed returns the number of files that could not be decoded or written.
func (s *Summary) Failed() int {
	n := 0
	for i := range s.Files {
		if s.Files[i].Err != nil {
			n++
		}
	}
	return n
}

// DiagnosticCount returns the number of lenient method body errors.
func (s *Summary) DiagnosticCount() int {
	n := 0
	for i := range s.Files {
		n += len(s.Files[i].Diagnostics)
	}
	return n
}

// Runner decodes files under a root. A Runner is safe for concurrent use;
// results are cached across runs by content hash.
type Runner struct {
	cache *lru.Cache[[sha256.Size]byte, *decoder.Result]
	opts  Options
	mu    sync.Mutex // serializes output writes for the same path
}

// NewRunner validates opts and creates a Runner.
func NewRunner(opts Options) (*Runner, error) {
	if opts.Root == "" {
		return nil, errors.InvalidInput(errors.PhaseLoad, "batch root is empty")
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 128
	}
	if opts.Debounce <= 0 {
		opts.Debounce = 200 * time.Millisecond
	}
	if len(opts.Include) == 0 {
		opts.Include = []string{"**/*.swf", "**/*.swc", "**/*.abc"}
	}

	cache, err := lru.NewWithEvict(opts.CacheSize, func(key [sha256.Size]byte, _ *decoder.Result) {
		Logger().Debug("evicted cached result", zap.Binary("sha256", key[:]))
	})
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "create result cache")
	}
	return &Runner{cache: cache, opts: opts}, nil
}

// Options returns the effective options.
func (r *Runner) Options() Options {
	return r.opts
}

// Run discovers every matching file under Root and decodes it.
func (r *Runner) Run(ctx context.Context) (*Summary, error) {
	files, err := Discover(r.opts.Root, r.opts.Include, r.opts.Exclude)
	if err != nil {
		return nil, err
	}
	Logger().Info("discovered files", zap.String("root", r.opts.Root), zap.Int("files", len(files)))
	return r.RunFiles(ctx, files)
}

// RunFiles decodes the given root-relative files. Per-file failures are
// reported in the summary; only cancellation aborts the run.
func (r *Runner) RunFiles(ctx context.Context, rels []string) (*Summary, error) {
	start := time.Now()
	results := make([]FileResult, len(rels))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, rel := range rels {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.processFile(rel)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Rel < results[j].Rel })
	s := &Summary{Files: results, Duration: time.Since(start)}
	Logger().Info("batch complete",
		zap.Int("files", len(results)),
		zap.Int("failed", s.Failed()),
		zap.Int("diagnostics", s.DiagnosticCount()),
		zap.Duration("duration", s.Duration))
	return s, nil
}

func (r *Runner) processFile(rel string) FileResult {
	fr := FileResult{Rel: rel}
	path := filepath.Join(r.opts.Root, filepath.FromSlash(rel))

	res, cached, err := r.decode(path)
	if err != nil {
		fr.Err = errors.WithPath(err, rel)
		Logger().Warn("decode failed", zap.String("file", rel), zap.Error(err))
		return fr
	}
	fr.Cached = cached
	fr.Models = len(res.Models)
	fr.Diagnostics = res.Diagnostics

	if r.opts.Output != "" {
		if err := r.write(rel, res); err != nil {
			fr.Err = err
		}
	}
	return fr
}

// decode returns the result for path, reusing a cached result when a
// file with the same content was decoded before.
func (r *Runner) decode(path string) (*decoder.Result, bool, error) {
	f, err := openMapped(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	key := sha256.Sum256(f.Data)
	if res, ok := r.cache.Get(key); ok {
		return res, true, nil
	}

	// Decoded models keep slices of the input.
	data := bytes.Clone(f.Data)
	res, err := decoder.Decode(data, r.opts.Decode)
	if err != nil {
		return nil, false, err
	}
	r.cache.Add(key, res)
	return res, false, nil
}

// OutputPaths returns the stub and IL paths written for rel.
func (r *Runner) OutputPaths(rel string) (stub, il string) {
	base := filepath.Join(r.opts.Output, filepath.FromSlash(rel))
	return base + StubSuffix, base + ILSuffix
}

func (r *Runner) write(rel string, res *decoder.Result) error {
	stubPath, ilPath := r.OutputPaths(rel)
	p := r.opts.Decode.Projection

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(stubPath), 0o755); err != nil {
		return errors.Load("create output directory", err)
	}
	if p.Stub() {
		if err := os.WriteFile(stubPath, []byte(res.Stub), 0o644); err != nil {
			return errors.Load("write "+stubPath, err)
		}
	}
	if p.IL() {
		if err := os.WriteFile(ilPath, []byte(res.IL), 0o644); err != nil {
			return errors.Load("write "+ilPath, err)
		}
	}
	return nil
}
