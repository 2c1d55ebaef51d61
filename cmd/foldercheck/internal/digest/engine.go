package digest

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/scan"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/snapshot"
	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/taskgroup"
	"github.com/albertocavalcante/foldercheck/internal/log"
)

// ProgressFunc observes hashing progress. It never affects results.
type ProgressFunc func(done, total int)

// Engine hashes scan entries in parallel.
type Engine struct {
	fsys      fs.FS
	algorithm Algorithm
	workers   int
	progress  ProgressFunc
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithAlgorithm selects the digest algorithm.
func WithAlgorithm(a Algorithm) Option {
	return func(e *Engine) { e.algorithm = a }
}

// WithWorkers bounds the number of files hashed at once. n <= 0 means one
// worker per CPU.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithProgress registers a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) { e.progress = fn }
}

// NewEngine creates an engine reading files from fsys.
func NewEngine(fsys fs.FS, opts ...Option) *Engine {
	e := &Engine{
		fsys:      fsys,
		algorithm: DefaultAlgorithm,
		logger:    log.Component("digest"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Hash digests every entry and returns the results sorted by path. Any
// unreadable file fails the whole call.
func (e *Engine) Hash(ctx context.Context, entries []scan.Entry) ([]snapshot.Entry, error) {
	workers := e.workers
	if workers <= 0 {
		workers = taskgroup.DefaultWorkers()
	}
	start := time.Now()

	results, err := taskgroup.Run(ctx, workers, entries, e.hashEntry, e.progress)
	if err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b snapshot.Entry) int {
		return strings.Compare(a.Path, b.Path)
	})

	e.logger.Debug("hashing complete",
		"entries", len(results),
		"workers", workers,
		"algorithm", string(e.algorithm),
		"elapsed", time.Since(start))
	return results, nil
}

func (e *Engine) hashEntry(_ context.Context, entry scan.Entry) (snapshot.Entry, error) {
	out := snapshot.Entry{Path: snapshot.DisplayPath(entry.Path)}

	switch entry.Kind {
	case scan.EmptyDirectory:
		out.Digest = snapshot.EmptyDirectoryDigest
	case scan.File:
		sum, err := File(e.fsys, entry.Path, e.algorithm)
		if err != nil {
			return snapshot.Entry{}, fmt.Errorf("%w: %s: %v", scan.ErrEntryUnreadable, entry.Path, err)
		}
		out.Digest = sum
	default:
		return snapshot.Entry{}, fmt.Errorf("%w: %s: cannot hash a %s", scan.ErrEntryUnreadable, entry.Path, entry.Kind)
	}

	log.Trace("hashed", "path", entry.Path, "digest", out.Digest)
	return out, nil
}
