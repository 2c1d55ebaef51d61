package snapshot

import (
	"io/fs"
	"sync"
	"testing/fstest"
	"time"
)

// MemFS is an in-memory FS for tests and dry runs. Reads may run
// concurrently with WriteFileExclusive.
type MemFS struct {
	mu    sync.RWMutex
	files fstest.MapFS
}

// NewMemFS wraps files. The map must not be modified by the caller afterwards.
func NewMemFS(files fstest.MapFS) *MemFS {
	if files == nil {
		files = fstest.MapFS{}
	}
	return &MemFS{files: files}
}

func (m *MemFS) Open(name string) (fs.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.Open(name)
}

func (m *MemFS) ReadFile(name string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.ReadFile(name)
}

func (m *MemFS) ReadDir(name string) ([]fs.DirEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.ReadDir(name)
}

func (m *MemFS) Stat(name string) (fs.FileInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.files.Stat(name)
}

func (m *MemFS) WriteFileExclusive(name string, data []byte) error {
	if !fs.ValidPath(name) {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrInvalid}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.files[name]; ok {
		return &fs.PathError{Op: "writefile", Path: name, Err: fs.ErrExist}
	}
	m.files[name] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    0o644,
		ModTime: time.Now(),
	}
	return nil
}

// Set creates or replaces name. It is how tests mutate the tree between runs.
func (m *MemFS) Set(name string, file *fstest.MapFile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[name] = file
}

// Remove deletes name.
func (m *MemFS) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, name)
}
