// Package watch emits debounced change notifications for worker project
// directories, so the serve loop can re-discover projects and drop stale
// resolutions when wrangler configs or local state change.
package watch

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the default window for collapsing event bursts.
const DefaultDebounce = 300 * time.Millisecond

// Watcher wraps fsnotify with event debouncing. Bursts of filesystem
// events (a wrangler dev restart touches many files at once) collapse
// into one notification.
type Watcher struct {
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	debounce time.Duration
	events   chan struct{}

	mu    sync.Mutex
	timer *time.Timer

	closeOnce sync.Once
	done      chan struct{}
}

// New creates and starts a Watcher. Close must be called to release the
// underlying OS watches.
func New(log *zap.Logger, debounce time.Duration) (*Watcher, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		log:      log,
		fsw:      fsw,
		debounce: debounce,
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Add registers paths to watch. Directories are watched non-recursively;
// unwatchable paths are logged and skipped.
func (w *Watcher) Add(paths ...string) {
	for _, path := range paths {
		if err := w.fsw.Add(path); err != nil {
			w.log.Debug("failed to watch path", zap.String("path", path), zap.Error(err))
		}
	}
}

// Events delivers one notification per debounced burst of changes. The
// channel is never closed while the watcher is open; receivers should
// also select on their own shutdown signal.
func (w *Watcher) Events() <-chan struct{} {
	return w.events
}

// Close stops watching. Idempotent.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
		err = w.fsw.Close()
	})
	return err
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			w.bump()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

// bump restarts the debounce timer; when it fires, one notification is
// delivered (dropped if the receiver has not drained the previous one).
func (w *Watcher) bump() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.events <- struct{}{}:
		case <-w.done:
		default:
		}
	})
}
