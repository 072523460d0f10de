package storage

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing/fstest"
	"time"
)

// MockFileSystem is an in-memory FileSystem backed by fstest.MapFS.
// Setting one of the *Error fields makes that operation fail.
// Paths must be slash-separated and relative, as fs.ValidPath requires.
type MockFileSystem struct {
	mu   sync.Mutex
	fsys fstest.MapFS

	ReadFileError  error
	WriteFileError error
	RenameError    error
	MkdirAllError  error
}

// NewMockFileSystem creates an empty mock file system
func NewMockFileSystem() *MockFileSystem {
	return &MockFileSystem{fsys: fstest.MapFS{}}
}

// Stat implements FileSystem
func (m *MockFileSystem) Stat(name string) (fs.FileInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fs.Stat(m.fsys, filepath.ToSlash(name))
}

// ReadFile implements FileSystem
func (m *MockFileSystem) ReadFile(name string) ([]byte, error) {
	if m.ReadFileError != nil {
		return nil, m.ReadFileError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return fs.ReadFile(m.fsys, filepath.ToSlash(name))
}

// WriteFile implements FileSystem
func (m *MockFileSystem) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if m.WriteFileError != nil {
		return m.WriteFileError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fsys[filepath.ToSlash(name)] = &fstest.MapFile{
		Data:    append([]byte(nil), data...),
		Mode:    perm,
		ModTime: time.Now(),
	}
	return nil
}

// Rename implements FileSystem. Like os.Rename it replaces newpath.
func (m *MockFileSystem) Rename(oldpath, newpath string) error {
	if m.RenameError != nil {
		return m.RenameError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.fsys[filepath.ToSlash(oldpath)]
	if !ok {
		return &fs.PathError{Op: "rename", Path: oldpath, Err: fs.ErrNotExist}
	}
	m.fsys[filepath.ToSlash(newpath)] = file
	delete(m.fsys, filepath.ToSlash(oldpath))
	return nil
}

// Remove implements FileSystem
func (m *MockFileSystem) Remove(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.fsys[filepath.ToSlash(name)]; !ok {
		return &fs.PathError{Op: "remove", Path: name, Err: fs.ErrNotExist}
	}
	delete(m.fsys, filepath.ToSlash(name))
	return nil
}

// MkdirAll implements FileSystem. Parents of an explicit directory are
// implied by MapFS.
func (m *MockFileSystem) MkdirAll(path string, perm fs.FileMode) error {
	if m.MkdirAllError != nil {
		return m.MkdirAllError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fsys[filepath.ToSlash(filepath.Clean(path))] = &fstest.MapFile{Mode: fs.ModeDir | perm}
	return nil
}

// FileExists reports whether a regular file is stored under name
func (m *MockFileSystem) FileExists(name string) bool {
	info, err := m.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// DirExists reports whether name is a directory
func (m *MockFileSystem) DirExists(name string) bool {
	info, err := m.Stat(name)
	return err == nil && info.IsDir()
}

// GetFileContent returns a copy of the file's content
func (m *MockFileSystem) GetFileContent(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	file, ok := m.fsys[filepath.ToSlash(name)]
	if !ok || file.Mode.IsDir() {
		return nil, false
	}
	return append([]byte(nil), file.Data...), true
}

// FilesWithPrefix lists stored file names starting with prefix, sorted
func (m *MockFileSystem) FilesWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var names []string
	for name, file := range m.fsys {
		if !file.Mode.IsDir() && strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
