package registry

import (
	"github.com/charmbracelet/log"

	"github.com/arthur-debert/nanotodo/storage"
)

type options struct {
	path        string
	storage     storage.Storage
	memory      bool
	logger      *log.Logger
	storageOpts []storage.JSONStorageOption
}

// Option configures a Registry
type Option func(*options)

// WithPath uses the JSON file at path instead of the resolved default
func WithPath(path string) Option {
	return func(o *options) {
		o.path = path
	}
}

// WithStorage uses a custom storage backend
func WithStorage(s storage.Storage) Option {
	return func(o *options) {
		o.storage = s
	}
}

// InMemory keeps tasks in process memory only; nothing is read from or
// written to disk.
func InMemory() Option {
	return func(o *options) {
		o.memory = true
	}
}

// WithLogger sets the logger for registry and storage diagnostics
func WithLogger(logger *log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithStorageOptions passes options through to the JSON file storage,
// e.g. a mock file system in tests
func WithStorageOptions(opts ...storage.JSONStorageOption) Option {
	return func(o *options) {
		o.storageOpts = append(o.storageOpts, opts...)
	}
}
