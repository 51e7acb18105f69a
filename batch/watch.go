package batch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/abcdump/errors"
)

// Watcher re-decodes matching files under the runner's root when they
// change. Events for the same file within the debounce interval are
// coalesced into one decode.
type Watcher struct {
	runner   *Runner
	watcher  *fsnotify.Watcher
	onResult func(*Summary)
	timers   map[string]*time.Timer
	timersMu sync.Mutex
	wg       sync.WaitGroup
}

// NewWatcher creates a watcher over r's root. onResult is called from
// the watcher goroutines after each debounced run.
func NewWatcher(r *Runner, onResult func(*Summary)) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidInput, err, "create file watcher")
	}
	return &Watcher{
		runner:   r,
		watcher:  w,
		onResult: onResult,
		timers:   make(map[string]*time.Timer),
	}, nil
}

// Run watches until ctx is cancelled, then stops pending timers and
// closes the underlying watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.close()

	if err := w.addTree(w.runner.opts.Root); err != nil {
		return err
	}
	Logger().Info("watching", zap.String("root", w.runner.opts.Root))

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(ctx, ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			Logger().Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) close() {
	w.timersMu.Lock()
	for _, t := range w.timers {
		if t.Stop() {
			w.wg.Done()
		}
	}
	w.timers = make(map[string]*time.Timer)
	w.timersMu.Unlock()

	w.wg.Wait()
	if err := w.watcher.Close(); err != nil {
		Logger().Warn("close watcher", zap.Error(err))
	}
}

// addTree adds root and every non-excluded directory below it.
func (w *Watcher) addTree(root string) error {
	opts := w.runner.opts
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if rel, ok := w.rel(path); ok && rel != "." && matchAny(opts.Exclude, rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Load("watch "+path, err)
		}
		return nil
	})
}

func (w *Watcher) rel(path string) (string, bool) {
	rel, err := filepath.Rel(w.runner.opts.Root, path)
	if err != nil {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
		return
	}

	if ev.Has(fsnotify.Create) {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			if err := w.addTree(ev.Name); err != nil {
				Logger().Warn("watch new directory", zap.String("path", ev.Name), zap.Error(err))
			}
			return
		}
	}

	rel, ok := w.rel(ev.Name)
	if !ok || !Matches(rel, w.runner.opts.Include, w.runner.opts.Exclude) {
		return
	}
	Logger().Debug("file event", zap.String("op", ev.Op.String()), zap.String("file", rel))
	w.schedule(ctx, rel)
}

// schedule (re)starts the debounce timer for rel.
func (w *Watcher) schedule(ctx context.Context, rel string) {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()

	if t, ok := w.timers[rel]; ok && t.Stop() {
		w.wg.Done()
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.runner.opts.Debounce, func() {
		defer w.wg.Done()

		w.timersMu.Lock()
		if w.timers[rel] == t {
			delete(w.timers, rel)
		}
		w.timersMu.Unlock()

		s, err := w.runner.RunFiles(ctx, []string{rel})
		if err != nil {
			return
		}
		if w.onResult != nil {
			w.onResult(s)
		}
	})
	w.timers[rel] = t
}
