// Package export renders a task list in a portable document format.
// Formats register themselves by name; the CLI picks one with --format
// or from the output file's extension.
package export

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/nanotodo/types"
)

// Format defines how a task list is encoded and decoded
type Format struct {
	// Name is the format identifier (lowercase alphanumeric, dashes, underscores)
	Name string

	// Extension is the file extension including the dot (e.g. ".json")
	Extension string

	// Encode writes tasks to w
	Encode func(w io.Writer, tasks []types.Task) error

	// Decode parses an encoded task list. It never returns a nil slice
	// without an error.
	Decode func(data []byte) ([]types.Task, error)
}

// registry holds all available formats
var registry = make(map[string]*Format)

// Register adds a format to the registry
func Register(format *Format) error {
	if !isValidFormatName(format.Name) {
		return fmt.Errorf("invalid format name %q: must be lowercase alphanumeric with dashes and underscores only", format.Name)
	}
	if format.Encode == nil || format.Decode == nil {
		return fmt.Errorf("format %q must define both Encode and Decode", format.Name)
	}

	if !strings.HasPrefix(format.Extension, ".") {
		format.Extension = "." + format.Extension
	}

	if _, exists := registry[format.Name]; exists {
		return fmt.Errorf("format %q already registered", format.Name)
	}

	registry[format.Name] = format
	return nil
}

// Get returns a format by name
func Get(name string) (*Format, error) {
	format, exists := registry[strings.ToLower(name)]
	if !exists {
		return nil, fmt.Errorf("unknown format %q (available: %s)", name, strings.Join(List(), ", "))
	}
	return format, nil
}

// ForPath returns the format whose extension matches path, e.g. "out.toml"
func ForPath(path string) (*Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return nil, fmt.Errorf("cannot infer format from %q: no file extension", path)
	}
	for _, name := range List() {
		format := registry[name]
		if format.Extension == ext || (ext == ".yml" && format.Name == "yaml") {
			return format, nil
		}
	}
	return nil, fmt.Errorf("cannot infer format from extension %q", ext)
}

// List returns all registered format names in sorted order
func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write encodes tasks in the named format
func Write(w io.Writer, name string, tasks []types.Task) error {
	format, err := Get(name)
	if err != nil {
		return err
	}
	if tasks == nil {
		tasks = []types.Task{}
	}
	if err := format.Encode(w, tasks); err != nil {
		return fmt.Errorf("failed to encode %s: %w", format.Name, err)
	}
	return nil
}

// Read decodes a task list in the named format
func Read(r io.Reader, name string) ([]types.Task, error) {
	format, err := Get(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	tasks, err := format.Decode(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", format.Name, err)
	}
	return tasks, nil
}

func isValidFormatName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

func mustRegister(format *Format) {
	if err := Register(format); err != nil {
		panic(fmt.Sprintf("failed to register %s format: %v", format.Name, err))
	}
}
