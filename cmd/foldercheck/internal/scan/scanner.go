package scan

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/albertocavalcante/foldercheck/cmd/foldercheck/internal/snapshot"
	"github.com/albertocavalcante/foldercheck/internal/log"
)

// Scanner walks a root filesystem.
type Scanner struct {
	fsys    fs.FS
	exclude []string
	logger  *slog.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithExclude skips nodes whose root-relative slash path matches any of the
// doublestar patterns. Excluded directories are not descended into.
func WithExclude(patterns ...string) Option {
	return func(s *Scanner) {
		s.exclude = append(s.exclude, patterns...)
	}
}

// New creates a scanner over fsys, whose "." is the root.
func New(fsys fs.FS, opts ...Option) *Scanner {
	s := &Scanner{
		fsys:   fsys,
		logger: log.Component("scan"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ValidateExclude reports the first malformed pattern.
func ValidateExclude(patterns []string) error {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid exclude pattern %q", p)
		}
	}
	return nil
}

// Scan classifies every node below the root.
func (s *Scanner) Scan(ctx context.Context) (*Result, error) {
	children, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootInaccessible, err)
	}

	res := &Result{}
	if err := s.walk(ctx, ".", children, res); err != nil {
		return nil, err
	}

	s.logger.Debug("scan complete", "entries", len(res.Entries), "snapshots", len(res.Snapshots))
	return res, nil
}

// Snapshots lists the snapshot files in the root without walking the tree.
func (s *Scanner) Snapshots() ([]string, error) {
	children, err := fs.ReadDir(s.fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRootInaccessible, err)
	}
	var names []string
	for _, child := range children {
		if snapshot.IsName(child.Name()) && !child.IsDir() {
			names = append(names, child.Name())
		}
	}
	return names, nil
}

// walk visits the children of dir. Snapshot files are only recognized in the root.
func (s *Scanner) walk(ctx context.Context, dir string, children []fs.DirEntry, res *Result) error {
	for _, child := range children {
		if err := ctx.Err(); err != nil {
			return err
		}

		name := child.Name()
		// Root snapshot and staging files are recognized before exclude
		// patterns so a pattern like *.txt cannot hide the baseline.
		if dir == "." && !child.IsDir() {
			if snapshot.IsName(name) {
				res.Snapshots = append(res.Snapshots, name)
				continue
			}
			if snapshot.IsTemp(name) {
				continue
			}
		}

		p := path.Join(dir, name)
		if s.excluded(p) {
			s.logger.Debug("excluded", "path", p)
			continue
		}

		kind, grandchildren, err := s.classify(p)
		if err != nil {
			return err
		}

		switch kind {
		case File:
			if name == MarkerFile {
				continue
			}
			res.Entries = append(res.Entries, Entry{Path: p, Kind: File})
		case EmptyDirectory:
			res.Entries = append(res.Entries, Entry{Path: p, Kind: EmptyDirectory})
		case NonEmptyDirectory:
			if err := s.walk(ctx, p, grandchildren, res); err != nil {
				return err
			}
		}
	}
	return nil
}

// classify resolves the kind of p, following symlinks. For directories it
// also returns the children so they are listed only once.
func (s *Scanner) classify(p string) (Kind, []fs.DirEntry, error) {
	info, err := fs.Stat(s.fsys, p)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %s: %v", ErrEntryUnreadable, p, err)
	}

	switch {
	case info.IsDir():
		children, err := fs.ReadDir(s.fsys, p)
		if err != nil {
			return 0, nil, fmt.Errorf("%w: %s: %v", ErrEntryUnreadable, p, err)
		}
		if isEmpty(children) {
			return EmptyDirectory, nil, nil
		}
		return NonEmptyDirectory, children, nil
	case info.Mode().IsRegular():
		return File, nil, nil
	default:
		return 0, nil, fmt.Errorf("%w: %s: unsupported file type %s", ErrEntryUnreadable, p, info.Mode().Type())
	}
}

// isEmpty: no children, or only the marker file.
func isEmpty(children []fs.DirEntry) bool {
	switch len(children) {
	case 0:
		return true
	case 1:
		return children[0].Name() == MarkerFile && !children[0].IsDir()
	default:
		return false
	}
}

func (s *Scanner) excluded(p string) bool {
	return Excluded(s.exclude, p)
}

// Excluded reports whether the slash path p matches any pattern.
func Excluded(patterns []string, p string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, p); ok {
			return true
		}
	}
	return false
}
