package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"

	"github.com/cmmoran/collectiongen/internal/generator"
	"github.com/cmmoran/collectiongen/pkg/action/generate"
)

// DefaultDebounce is the quiet period after the last change before a run.
const DefaultDebounce = 300 * time.Millisecond

// RunCallback receives the outcome of every run.
type RunCallback func(*generator.Result, error)

// Watcher regenerates whenever Go sources below the configured directory
// change.
type Watcher struct {
	opts     *generator.Options
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu            sync.Mutex
	callbacks     []RunCallback
	debounceTimer *time.Timer
	pending       chan struct{}
}

// New creates a watcher over every package directory below opts.Dir.
func New(opts *generator.Options, debounce time.Duration) (*Watcher, error) {
	o := generator.FromOptions(opts).Options()
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create fsnotify watcher")
	}
	w := &Watcher{
		opts:     &o,
		watcher:  fw,
		debounce: debounce,
		pending:  make(chan struct{}, 1),
	}
	if err := w.addTree(o.Dir); err != nil {
		_ = fw.Close()
		return nil, err
	}
	return w, nil
}

// OnRun registers a callback invoked after every run.
func (w *Watcher) OnRun(cb RunCallback) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.callbacks = append(w.callbacks, cb)
}

// Run generates once and then again after every debounced change until ctx
// is done. It closes the underlying watcher before returning.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()
	w.generate(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						slog.Warn("watch new directory", "dir", event.Name, "error", err)
					}
					w.schedule()
					continue
				}
			}
			if !w.relevant(event) {
				continue
			}
			slog.Debug("change detected", "file", event.Name, "op", event.Op.String())
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		case <-w.pending:
			w.generate(ctx)
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}

// schedule debounces rapid changes into one run.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounce, func() {
		select {
		case w.pending <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) generate(ctx context.Context) {
	res, err := generate.Generate(ctx, w.opts)
	if ctx.Err() != nil {
		return
	}

	w.mu.Lock()
	callbacks := make([]RunCallback, len(w.callbacks))
	copy(callbacks, w.callbacks)
	w.mu.Unlock()
	for _, cb := range callbacks {
		cb(res, err)
	}
}

// relevant reports whether event can change the generated output. Writes of
// the output file itself and of the manifest are ignored so that a run does
// not trigger the next one.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	base := filepath.Base(event.Name)
	switch {
	case base == w.opts.Output:
		return false
	case base == "go.mod":
		return true
	case strings.HasPrefix(base, "."), strings.HasPrefix(base, "_"):
		return false
	}
	return strings.HasSuffix(base, ".go")
}

// addTree watches dir and every directory below it the go tool would
// consider.
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "watch %s", path)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") ||
		name == "testdata" || name == "vendor" || name == "node_modules"
}
