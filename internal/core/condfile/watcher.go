package condfile

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/flowbuilder/branchkeeper/internal/core/logging"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period before a change is reloaded.
const DefaultDebounce = 100 * time.Millisecond

// ReloadFunc receives the freshly loaded configuration, or the load error.
type ReloadFunc func(config types.ConditionsConfig, err error)

// Watcher reloads one condition file when it changes.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename keep triggering reloads. Bursts of events
// inside the debounce interval produce a single reload.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *zap.Logger
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for path. debounce <= 0 uses DefaultDebounce.
func NewWatcher(path string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if _, err := FormatFor(path); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	logger = logging.OrNop(logger)

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		debounce: debounce,
		logger:   logger,
		watcher:  fw,
	}, nil
}

// Run blocks until ctx is cancelled, calling onReload after each settled
// change. onReload runs on the Run goroutine, one call at a time. The
// underlying fsnotify watcher is closed when Run returns.
func (w *Watcher) Run(ctx context.Context, onReload ReloadFunc) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()
	defer w.watcher.Close()

	w.logger.Info("watching condition file",
		zap.String("path", w.path),
		zap.Duration("debounce", w.debounce),
	)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("condition file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug("condition file event",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			config, err := Load(w.path)
			if err != nil {
				w.logger.Warn("condition file reload failed", zap.Error(err))
			}
			onReload(config, err)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("condition file watcher error", zap.Error(err))
		}
	}
}

// relevant reports whether event touches the watched file.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return false
	}
	return filepath.Clean(event.Name) == w.path
}

// Close releases the fsnotify watcher. Safe to call after Run has returned.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
