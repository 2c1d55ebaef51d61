package snapshot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FS is the filesystem a run reads from and writes its snapshot to.
// Names are slash-separated and relative to the scanned root.
type FS interface {
	fs.ReadFileFS

	// WriteFileExclusive creates name with data. It fails with an error
	// matching fs.ErrExist if name already exists, and never leaves a
	// partially written file under name.
	WriteFileExclusive(name string, data []byte) error
}

// Clock supplies the time used to name new snapshots.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the local wall clock.
var SystemClock Clock = ClockFunc(time.Now)

type dirFS struct {
	fs.FS
	root string
}

// DirFS returns an FS rooted at the OS directory root.
func DirFS(root string) FS {
	return &dirFS{FS: os.DirFS(root), root: root}
}

func (d *dirFS) osPath(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return filepath.Join(d.root, filepath.FromSlash(name)), nil
}

func (d *dirFS) ReadFile(name string) ([]byte, error) {
	p, err := d.osPath("readfile", name)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFileExclusive writes to a hidden temp file in the same directory and
// hard-links it into place, so readers see either nothing or the full file.
// Filesystems without hard links fall back to an O_EXCL create.
func (d *dirFS) WriteFileExclusive(name string, data []byte) error {
	final, err := d.osPath("writefile", name)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(final), tempPattern)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	err = os.Link(tmpPath, final)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, fs.ErrExist):
		return err
	default:
		return writeExclusive(final, data)
	}
}

func writeExclusive(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}
