package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/abcdump"
	"github.com/wippyai/abcdump/abc"
	"github.com/wippyai/abcdump/batch"
	"github.com/wippyai/abcdump/config"
	"github.com/wippyai/abcdump/decoder"
	"github.com/wippyai/abcdump/export"
	"github.com/wippyai/abcdump/swf"
)

type cliFlags struct {
	in          string
	projection  string
	out         string
	configPath  string
	dir         string
	cborPath    string
	strict      bool
	watch       bool
	stats       bool
	interactive bool
	verbose     bool
}

func main() {
	var f cliFlags
	flag.StringVar(&f.in, "in", "", "Path to a .swf, .swc or .abc file")
	flag.StringVar(&f.projection, "projection", "", "Output projection: stub, il or both")
	flag.StringVar(&f.out, "out", "", "Output directory (default: stdout for -in)")
	flag.StringVar(&f.configPath, "config", "", "Path to abcdump.toml (default: search upward)")
	flag.StringVar(&f.dir, "dir", "", "Decode every matching file under this directory")
	flag.StringVar(&f.cborPath, "cbor", "", "Write a CBOR snapshot of the decoded model")
	flag.BoolVar(&f.strict, "strict", false, "Fail on the first method body error")
	flag.BoolVar(&f.watch, "watch", false, "With -dir, re-decode files as they change")
	flag.BoolVar(&f.stats, "stats", false, "Print an opcode histogram")
	flag.BoolVar(&f.interactive, "i", false, "Interactive mode with TUI")
	flag.BoolVar(&f.verbose, "v", false, "Debug logging")
	flag.Parse()

	if f.in == "" && f.dir == "" {
		fmt.Fprintln(os.Stderr, "Usage: abcdump -in <file> [-projection stub|il|both] [-strict] [-out dir] [-cbor file] [-stats]")
		fmt.Fprintln(os.Stderr, "       abcdump -in <file> -i  (interactive mode)")
		fmt.Fprintln(os.Stderr, "       abcdump -dir <root> [-out dir] [-watch]")
		os.Exit(1)
	}

	if err := run(f); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(f cliFlags) error {
	cfg, err := loadConfig(f)
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	decoder.SetLogger(log.Named("decoder"))
	swf.SetLogger(log.Named("swf"))
	batch.SetLogger(log.Named("batch"))

	opts := decoder.Options{Mode: cfg.Mode(), Projection: cfg.Projection}

	if f.dir != "" {
		return runBatch(f, cfg, opts)
	}

	if f.interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			return fmt.Errorf("interactive mode requires a terminal")
		}
		return runInteractive(f.in, opts)
	}

	res, err := decoder.DecodeFile(f.in, opts)
	if err != nil {
		return err
	}

	for _, d := range res.Diagnostics {
		fmt.Fprintf(os.Stderr, "warning: %s: %v\n", d.Label, d.Err)
	}

	if f.out != "" {
		if err := writeOutputs(f.out, filepath.Base(f.in), res, opts.Projection); err != nil {
			return err
		}
	} else {
		printOutputs(os.Stdout, res, opts.Projection)
	}

	if f.cborPath != "" {
		if err := export.WriteFile(f.cborPath, res); err != nil {
			return err
		}
	}
	if f.stats {
		printStats(os.Stdout, res)
	}
	return nil
}

// loadConfig reads the configuration file and applies the flags that
// were set explicitly on top of it.
func loadConfig(f cliFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.FindAndLoad(".")
	}
	if err != nil {
		return nil, err
	}

	flag.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "projection":
			cfg.Projection = abcdump.Projection(f.projection)
		case "strict":
			cfg.Strict = f.strict
		case "out":
			cfg.Output = f.out
		case "v":
			if f.verbose {
				cfg.Log.Level = "debug"
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(l config.Log) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(l.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	var zc zap.Config
	if l.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = level
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}

func runBatch(f cliFlags, cfg *config.Config, opts decoder.Options) error {
	root := filepath.Clean(f.dir)
	out := cfg.Output
	if cfg.Dir != "" && !filepath.IsAbs(out) && f.out == "" {
		out = filepath.Join(cfg.Dir, out)
	}

	r, err := batch.NewRunner(batch.Options{
		Root:      root,
		Output:    out,
		Include:   cfg.Include,
		Exclude:   cfg.Exclude,
		Decode:    opts,
		Workers:   cfg.Workers,
		CacheSize: cfg.CacheSize,
		Debounce:  cfg.Debounce(),
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := r.Run(ctx)
	if err != nil {
		return err
	}
	printSummary(os.Stdout, s)

	if !f.watch {
		if n := s.Failed(); n > 0 {
			return fmt.Errorf("%d of %d files failed", n, len(s.Files))
		}
		return nil
	}

	w, err := batch.NewWatcher(r, func(s *batch.Summary) { printSummary(os.Stdout, s) })
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "watching %s (ctrl+c to stop)\n", root)
	return w.Run(ctx)
}

func writeOutputs(dir, name string, res *decoder.Result, p abcdump.Projection) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	base := filepath.Join(dir, name)
	if p.Stub() {
		if err := os.WriteFile(base+batch.StubSuffix, []byte(res.Stub), 0o644); err != nil {
			return fmt.Errorf("write stub: %w", err)
		}
	}
	if p.IL() {
		if err := os.WriteFile(base+batch.ILSuffix, []byte(res.IL), 0o644); err != nil {
			return fmt.Errorf("write il: %w", err)
		}
	}
	return nil
}

func printOutputs(w io.Writer, res *decoder.Result, p abcdump.Projection) {
	if p.Stub() {
		fmt.Fprint(w, res.Stub)
	}
	if p.Stub() && p.IL() && res.Stub != "" && res.IL != "" {
		fmt.Fprintln(w)
	}
	if p.IL() {
		fmt.Fprint(w, res.IL)
	}
}

func printStats(w io.Writer, res *decoder.Result) {
	h := res.Histogram()
	total := abc.TotalBytes(h)
	fmt.Fprintf(w, "\nOpcode histogram (%d blobs, %d code bytes):\n", len(res.Models), total)
	for _, c := range h {
		fmt.Fprintf(w, "  %-20s %8d %8d %6.2f%%\n", c.Name, c.Count, c.Bytes, c.Share(total))
	}
}

func printSummary(w io.Writer, s *batch.Summary) {
	for _, f := range s.Files {
		switch {
		case f.Err != nil:
			fmt.Fprintf(w, "FAIL  %s: %v\n", f.Rel, f.Err)
		case len(f.Diagnostics) > 0:
			fmt.Fprintf(w, "WARN  %s: %d method body diagnostics\n", f.Rel, len(f.Diagnostics))
			for _, d := range f.Diagnostics {
				fmt.Fprintf(w, "        %s: %v\n", d.Label, d.Err)
			}
		default:
			fmt.Fprintf(w, "ok    %s\n", f.Rel)
		}
	}
	fmt.Fprintf(w, "%d files, %d failed, %d diagnostics in %s\n",
		len(s.Files), s.Failed(), s.DiagnosticCount(), s.Duration.Round(time.Millisecond))
}
