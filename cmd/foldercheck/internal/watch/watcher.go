package watch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/check"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/snapshot"
	"github.com/albertocavalcante/foldercheck/internal/log"
)

// DefaultDebounce is the quiet period used when Config.Debounce is unset.
const DefaultDebounce = 2 * time.Second

// ErrWatchLimitReached is returned when the OS watch limit is exceeded.
var ErrWatchLimitReached = errors.New("filesystem watch limit reached")

// Runner performs one check.
type Runner interface {
	Run(ctx context.Context) (*check.Outcome, error)
}

// Config configures the watcher.
type Config struct {
	Root     string
	Debounce time.Duration
	// Exclude uses the same patterns as the check; matching changes are
	// not reported.
	Exclude []string
	Logger  *Logger
}

// Watcher re-runs a check whenever the tree under Root settles after a
// change.
type Watcher struct {
	config    Config
	runner    Runner
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	logger    *Logger
	debug     *slog.Logger

	// runMu serializes checks.
	runMu sync.Mutex
	ctx   context.Context
	fatal chan error
}

// New creates a watcher that calls runner on each settled batch.
func New(cfg Config, runner Runner) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	logger := cfg.Logger
	if logger == nil {
		logger = NewLogger(LoggerConfig{})
	}

	return &Watcher{
		config:    cfg,
		runner:    runner,
		fsWatcher: fsWatcher,
		logger:    logger,
		debug:     log.Component("watch"),
		fatal:     make(chan error, 1),
	}, nil
}

// Run performs an initial check, then watches until ctx is cancelled or
// the root becomes inaccessible.
func (w *Watcher) Run(ctx context.Context) error {
	w.ctx = ctx
	w.debouncer = NewDebouncer(w.config.Debounce, w.handleChanges)
	defer w.debouncer.Stop()

	w.runCheck(nil)
	select {
	case err := <-w.fatal:
		return err
	default:
	}

	dirs, err := w.addRecursive(w.config.Root)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.config.Root, err)
	}
	w.logger.Ready(dirs, w.config.Root)

	for {
		select {
		case <-ctx.Done():
			w.logger.Shutdown()
			return nil

		case err := <-w.fatal:
			return err

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error(err)
		}
	}
}

// addRecursive watches dir and every directory below it, returning how
// many were added.
func (w *Watcher) addRecursive(dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// The next check reports unreadable nodes; keep watching the rest.
			w.debug.Debug("walk error", "path", path, "error", err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := w.relative(path); ok && rel != "." && scan.Excluded(w.config.Exclude, rel) {
			return filepath.SkipDir
		}

		if err := w.fsWatcher.Add(path); err != nil {
			if isWatchLimitError(err) {
				return fmt.Errorf("%w at %s: %v\n"+
					"Increase limit with: sudo sysctl fs.inotify.max_user_watches=524288",
					ErrWatchLimitReached, path, err)
			}
			w.debug.Debug("failed to watch directory", "path", path, "error", err)
			return nil
		}
		count++
		return nil
	})
	return count, err
}

// isWatchLimitError checks if an error is due to inotify watch limits.
func isWatchLimitError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "no space left on device") ||
		strings.Contains(errStr, "too many open files")
}

// relative returns the slash path of p below the root.
func (w *Watcher) relative(p string) (string, bool) {
	rel, err := filepath.Rel(w.config.Root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// ignored reports whether a change at rel cannot affect the next snapshot:
// snapshot files and their staging files at the root, the marker file,
// and excluded paths. A directory named like the marker file is content.
func (w *Watcher) ignored(rel string) bool {
	base := filepath.Base(rel)
	if base == scan.MarkerFile {
		info, err := os.Stat(filepath.Join(w.config.Root, filepath.FromSlash(rel)))
		return err != nil || !info.IsDir()
	}
	if !strings.Contains(rel, "/") && (snapshot.IsName(rel) || snapshot.IsTemp(rel)) {
		return true
	}
	return scan.Excluded(w.config.Exclude, rel)
}

// handleEvent processes a single filesystem event.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	rel, ok := w.relative(event.Name)
	if !ok || rel == "." || w.ignored(rel) {
		return
	}

	var change ChangeType
	switch {
	case event.Has(fsnotify.Create):
		change = ChangeAdded
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if _, err := w.addRecursive(event.Name); err != nil {
				w.logger.Error(fmt.Errorf("failed to watch new directory %s: %w", rel, err))
			}
		}
	case event.Has(fsnotify.Write):
		change = ChangeModified
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		// Removed directories drop out of the watch list on their own.
		change = ChangeDeleted
	default:
		return
	}

	w.logger.FileChanged(rel, change)
	w.debouncer.Add(rel)
}

// handleChanges runs when the debouncer flushes.
func (w *Watcher) handleChanges(paths []string) {
	w.runCheck(paths)
}

func (w *Watcher) runCheck(paths []string) {
	w.runMu.Lock()
	defer w.runMu.Unlock()

	ctx := w.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if ctx.Err() != nil {
		return
	}

	w.logger.Checking(paths)
	outcome, err := w.runner.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		w.logger.Error(err)
		if errors.Is(err, scan.ErrRootInaccessible) {
			select {
			case w.fatal <- err:
			default:
			}
		}
		return
	}
	w.logger.Checked(outcome)
}

// Close closes the watcher and releases resources.
func (w *Watcher) Close() error {
	if w.fsWatcher != nil {
		return w.fsWatcher.Close()
	}
	return nil
}
