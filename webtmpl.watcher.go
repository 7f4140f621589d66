package webtmpl

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher invalidates a CachedSource when files under the template folder
// change. Rapid changes are grouped and flushed once the debounce delay
// has passed without new events.
type Watcher struct {
	watcher  *fsnotify.Watcher
	cache    *CachedSource
	root     string
	debounce time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	onChange []func(paths []string)
}

// NewWatcher watches root and all its sub folders. A zero debounce uses
// DefaultWatchDebounceMillis.
func NewWatcher(root string, cache *CachedSource, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if debounce <= 0 {
		debounce = DefaultWatchDebounceMillis * time.Millisecond
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		cache:    cache,
		root:     root,
		debounce: debounce,
		logger:   logger,
	}

	if err := w.addRecursive(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// OnChange registers fn to be called with the changed paths after every
// flush. Handlers run on the watcher goroutine.
func (w *Watcher) OnChange(fn func(paths []string)) {
	w.mu.Lock()
	w.onChange = append(w.onChange, fn)
	w.mu.Unlock()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn(LogMsgWatchDirFailed, zap.String(LogFieldPath, path), zap.Error(err))
			return err
		}
		return nil
	})
}

// Run processes file events until ctx is done, then releases the
// underlying watcher. It always returns nil once ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	w.logger.Info(LogMsgWatcherStarted, zap.String(LogFieldFolder, w.root))
	defer w.logger.Info(LogMsgWatcherStopped, zap.String(LogFieldFolder, w.root))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := make(map[string]struct{}, watchEventBuffer)
	dirChanged := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.logger.Debug(LogMsgWatcherEvent,
				zap.String(LogFieldPath, event.Name),
				zap.String(LogFieldOp, event.Op.String()),
			)
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = w.addRecursive(event.Name)
					dirChanged = true
				}
			}
			if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				// A removed folder takes its files with it.
				dirChanged = true
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn(LogMsgWatcherError, zap.Error(err))

		case <-timer.C:
			w.flush(pending, dirChanged)
			pending = make(map[string]struct{}, watchEventBuffer)
			dirChanged = false
		}
	}
}

func (w *Watcher) flush(pending map[string]struct{}, dirChanged bool) {
	if len(pending) == 0 {
		return
	}

	paths := make([]string, 0, len(pending))
	for p := range pending {
		paths = append(paths, p)
	}

	if w.cache != nil {
		if dirChanged {
			w.cache.InvalidateAll()
		} else {
			w.cache.Invalidate(paths...)
		}
	}
	w.logger.Debug(LogMsgCacheInvalidated, zap.Int(LogFieldEvents, len(paths)))

	w.mu.Lock()
	handlers := append([]func([]string){}, w.onChange...)
	w.mu.Unlock()
	for _, fn := range handlers {
		fn(paths)
	}
}
