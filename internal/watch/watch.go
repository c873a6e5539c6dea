// Package watch reports when another process rewrites the workspace, so a
// live preview can reload the snapshot.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"proposal-cli/internal/debounce"
)

const DefaultDelay = 200 * time.Millisecond

// Watcher watches one workspace directory (and its kv/ subdirectory when
// present) and calls onChange once per burst of writes.
type Watcher struct {
	dir      string
	match    func(path string) bool
	onChange func()
	deb      *debounce.Debouncer
	logger   *zap.Logger

	mu       sync.Mutex
	fw       *fsnotify.Watcher
	stopOnce sync.Once
	done     chan struct{}
}

type Option func(*Watcher)

func WithLogger(l *zap.Logger) Option {
	return func(w *Watcher) { w.logger = l }
}

func WithDelay(d time.Duration) Option {
	return func(w *Watcher) { w.deb = debounce.New(d) }
}

// WithMatch limits which paths trigger onChange. The default accepts the
// storage files of every backend and ignores temp files and sqlite journals.
func WithMatch(fn func(path string) bool) Option {
	return func(w *Watcher) { w.match = fn }
}

func New(dir string, onChange func(), opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		match:    StorageFile,
		onChange: onChange,
		logger:   zap.NewNop(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.deb == nil {
		w.deb = debounce.New(DefaultDelay)
	}
	return w
}

// StorageFile reports whether path is something a snapshot save rewrites.
func StorageFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasSuffix(base, ".tmp") || base == "tui_state.json" {
		return false
	}
	switch {
	case strings.HasSuffix(base, ".json"),
		strings.HasSuffix(base, ".bolt"),
		strings.HasSuffix(base, ".sqlite"),
		strings.HasSuffix(base, ".sqlite-wal"):
		return true
	}
	return false
}

// Start begins watching. It returns once the watch is registered; events are
// processed until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		_ = fw.Close()
		return err
	}
	kv := filepath.Join(w.dir, "kv")
	if err := fw.Add(kv); err != nil {
		w.logger.Debug("kv directory not watched", zap.String("path", kv), zap.Error(err))
	}
	w.mu.Lock()
	w.fw = fw
	w.mu.Unlock()
	w.logger.Debug("watching workspace", zap.String("dir", w.dir))
	go w.run(ctx, fw)
	return nil
}

func (w *Watcher) run(ctx context.Context, fw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return
	}
	if filepath.Base(ev.Name) == "kv" && ev.Has(fsnotify.Create) {
		w.mu.Lock()
		if w.fw != nil {
			_ = w.fw.Add(ev.Name)
		}
		w.mu.Unlock()
		return
	}
	if !w.match(ev.Name) {
		return
	}
	w.logger.Debug("workspace changed", zap.String("op", ev.Op.String()), zap.String("path", ev.Name))
	w.deb.Trigger("change", w.onChange)
}

// Stop ends the watch and drops any pending notification.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.deb.Stop(false)
		w.mu.Lock()
		if w.fw != nil {
			_ = w.fw.Close()
			w.fw = nil
		}
		w.mu.Unlock()
	})
}
