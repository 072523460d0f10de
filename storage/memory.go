package storage

import (
	"sync"

	"github.com/arthur-debert/nanotodo/types"
)

// MemoryStorage keeps the document in process memory only. It backs
// the registry's in-memory mode, where nothing survives the process.
type MemoryStorage struct {
	mu    sync.Mutex
	doc   *types.Document
	saves int
}

// NewMemoryStorage creates an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// Load returns a copy of the last saved document, or an empty one.
func (m *MemoryStorage) Load() (*types.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.doc == nil {
		return types.EmptyDocument(), nil
	}
	return m.doc.Clone(), nil
}

// Save keeps a copy of doc
func (m *MemoryStorage) Save(doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.doc = doc.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save has been called
func (m *MemoryStorage) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// Path returns "" since nothing is stored on disk
func (m *MemoryStorage) Path() string {
	return ""
}

// Close is a no-op
func (m *MemoryStorage) Close() error {
	return nil
}
