// Package storewatch notices writes to the SQLite store made by other
// processes, such as CLI commands run while the terminal UI is open.
package storewatch

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"pomotaro/internal/logfields"
)

// DefaultDebounce coalesces the burst of events a single transaction produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange at most once per debounce window after the database
// file or its journal changes.
type Watcher struct {
	dbPath   string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onChange func()
	logger   *slog.Logger
}

// New watches the directory holding dbPath.
func New(dbPath string, debounce time.Duration, onChange func(), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	absPath, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve database path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	// Watch the directory: SQLite replaces journal files rather than rewriting them.
	if err := fw.Add(filepath.Dir(absPath)); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filepath.Dir(absPath), err)
	}
	return &Watcher{dbPath: absPath, watcher: fw, debounce: debounce, onChange: onChange, logger: logger}, nil
}

// Watchable reports whether dsn names a file that can be watched.
func Watchable(dsn string) bool {
	return dsn != "" && !strings.Contains(dsn, ":memory:") && !strings.Contains(dsn, "mode=memory")
}

// Run blocks until ctx is cancelled and closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() { _ = w.watcher.Close() }()

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.logger.Debug("Store changed on disk", slog.String("path", w.dbPath))
			w.onChange()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Store watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return strings.HasPrefix(name, w.dbPath)
}
