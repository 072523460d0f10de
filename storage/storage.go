// Package storage provides the persistence layer for nanotodo.
// It reads and writes the task Document as a single JSON file and
// tolerates a missing or corrupted file by falling back to an empty
// document, so the application always starts in a usable state.
package storage

import (
	"github.com/arthur-debert/nanotodo/types"
)

// Storage defines the interface for whole-document persistence.
// The document is always loaded and saved as a single unit.
type Storage interface {
	// Load reads the document from the backend. Missing or malformed
	// data yields types.EmptyDocument(), never an error.
	Load() (*types.Document, error)

	// Save replaces the persisted document
	Save(doc *types.Document) error

	// Path returns the backing file path, or "" for non-file backends
	Path() string

	// Close releases any resources held by the storage
	Close() error
}

// Load reads the document at path using the default JSON file storage.
func Load(path string) (*types.Document, error) {
	return NewJSONStorage(path).Load()
}

// Save writes doc to path using the default JSON file storage.
func Save(path string, doc *types.Document) error {
	return NewJSONStorage(path).Save(doc)
}
