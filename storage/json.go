package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/arthur-debert/nanotodo/internal/logging"
	"github.com/arthur-debert/nanotodo/types"
)

// JSONStorage implements Storage using a single JSON file.
// Writes go to a temporary sibling file which is then renamed over
// the target, so readers never see a partially written document.
type JSONStorage struct {
	path        string
	fs          FileSystem
	lockFactory FileLockFactory
	fileLock    FileLock
	logger      *log.Logger
}

// JSONStorageOption is a function that modifies JSONStorage configuration
type JSONStorageOption func(*JSONStorage)

// WithFileSystem sets a custom FileSystem implementation
func WithFileSystem(fsys FileSystem) JSONStorageOption {
	return func(s *JSONStorage) {
		s.fs = fsys
	}
}

// WithFileLockFactory sets a custom FileLockFactory implementation
func WithFileLockFactory(factory FileLockFactory) JSONStorageOption {
	return func(s *JSONStorage) {
		s.lockFactory = factory
	}
}

// WithLogger sets the logger that receives corruption diagnostics
func WithLogger(logger *log.Logger) JSONStorageOption {
	return func(s *JSONStorage) {
		s.logger = logger
	}
}

// NewJSONStorage creates a JSON file storage for path. Nothing is read
// or created until Load or Save is called.
func NewJSONStorage(path string, opts ...JSONStorageOption) *JSONStorage {
	s := &JSONStorage{path: path}
	for _, opt := range opts {
		opt(s)
	}

	if s.fs == nil {
		s.fs = OSFileSystem{}
	}
	if s.lockFactory == nil {
		s.lockFactory = FlockFactory{}
	}
	if s.logger == nil {
		s.logger = logging.Default()
	}

	s.fileLock = s.lockFactory.New(s.lockPath())
	return s
}

// Path returns the JSON file path
func (s *JSONStorage) Path() string {
	return s.path
}

func (s *JSONStorage) lockPath() string {
	return s.path + ".lock"
}

// Load reads the document from disk. A missing file yields an empty
// document without creating anything. Unparseable or mistyped content
// is logged and also yields an empty document. Only I/O failures are
// returned as errors. When the lock file cannot be created in a read-only
// directory the store is read without the lock.
func (s *JSONStorage) Load() (*types.Document, error) {
	if _, err := s.fs.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return types.EmptyDocument(), nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", s.path, err)
	}

	unlock, err := acquireLock(s.fileLock)
	switch {
	case err == nil:
		defer unlock()
	case lockFileDenied(err):
		s.logger.Debug("cannot create lock file, reading without it", "path", s.lockPath(), "err", err)
	default:
		return nil, err
	}

	data, err := s.fs.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return types.EmptyDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		s.logger.Warn("task store is corrupted, starting with an empty task list",
			"path", s.path, "err", err)
		return types.EmptyDocument(), nil
	}

	s.logger.Debug("loaded task store", "path", s.path, "tasks", len(doc.Tasks), "next_id", doc.NextID)
	return doc, nil
}

// Save writes the whole document, creating parent directories as needed.
func (s *JSONStorage) Save(doc *types.Document) error {
	if doc == nil {
		return errors.New("cannot save a nil document")
	}

	if dir := filepath.Dir(s.path); dir != "." && dir != "" {
		if err := s.fs.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	unlock, err := acquireLock(s.fileLock)
	if err != nil {
		return err
	}
	defer unlock()

	out := doc
	if out.Tasks == nil {
		out = &types.Document{NextID: doc.NextID, Tasks: []types.Task{}}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	data = append(data, '\n')

	tmpFile := s.path + ".tmp-" + uuid.NewString()
	if err := s.fs.WriteFile(tmpFile, data, 0644); err != nil {
		_ = s.fs.Remove(tmpFile)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	// Rename is atomic on POSIX filesystems
	if err := s.fs.Rename(tmpFile, s.path); err != nil {
		_ = s.fs.Remove(tmpFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}

	s.logger.Debug("saved task store", "path", s.path, "tasks", len(out.Tasks), "next_id", out.NextID)
	return nil
}

// Close is a no-op. The lock file stays in place: removing it would let
// a later process lock a new inode while another still holds the old one.
func (s *JSONStorage) Close() error {
	return nil
}

func lockFileDenied(err error) bool {
	return errors.Is(err, fs.ErrPermission) || errors.Is(err, syscall.EROFS)
}
