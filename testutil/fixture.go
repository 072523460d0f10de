// Package testutil provides fixtures shared by the nanotodo test suites.
package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/nanotodo/types"
)

// UniverseData provides typed access to the fixture tasks. The fixture
// has gaps in its IDs (3 and 6 were deleted) and next_id 7, so tests can
// check that deleted IDs are never reissued.
type UniverseData struct {
	BuyGroceries types.Task // ID 1, incomplete, with description
	CallDentist  types.Task // ID 2, complete
	WriteReport  types.Task // ID 4, incomplete, multiline description
	UnicodeEmoji types.Task // ID 5, complete, non-ASCII title
	NextID       int
	DeletedIDs   []int
	ByID         map[int]types.Task
}

// Universe returns the fixture document and its typed view.
func Universe() (*types.Document, *UniverseData) {
	u := &UniverseData{
		BuyGroceries: types.Task{ID: 1, Title: "Buy groceries", Description: "Milk, bread, eggs", Status: types.StatusIncomplete},
		CallDentist:  types.Task{ID: 2, Title: "Call dentist", Description: "", Status: types.StatusComplete},
		WriteReport:  types.Task{ID: 4, Title: "Write report", Description: "Q3 summary\n- revenue\n- churn", Status: types.StatusIncomplete},
		UnicodeEmoji: types.Task{ID: 5, Title: "Café ☕ 日本語 🎉", Description: "Ünïcödé", Status: types.StatusComplete},
		NextID:       7,
		DeletedIDs:   []int{3, 6},
	}

	doc := &types.Document{
		NextID: u.NextID,
		Tasks:  []types.Task{u.BuyGroceries, u.CallDentist, u.WriteReport, u.UnicodeEmoji},
	}

	u.ByID = make(map[int]types.Task, len(doc.Tasks))
	for _, task := range doc.Tasks {
		u.ByID[task.ID] = task
	}
	return doc, u
}

// LoadUniverse writes the fixture to a fresh store file and returns its path.
func LoadUniverse(t *testing.T) (string, *UniverseData) {
	t.Helper()

	doc, u := Universe()
	path := StorePath(t)
	WriteDocument(t, path, doc)
	return path, u
}

// StorePath returns a store path inside a fresh temp dir. The file does
// not exist yet.
func StorePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "tasks.json")
}

// WriteRaw writes content to path verbatim, creating parent directories.
func WriteRaw(t *testing.T, path, content string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

// WriteDocument writes doc to path as JSON.
func WriteDocument(t *testing.T, path string, doc *types.Document) {
	t.Helper()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		t.Fatalf("failed to marshal document: %v", err)
	}
	WriteRaw(t, path, string(data))
}

// ReadDocument decodes the store file at path, failing the test if it is
// missing or malformed.
func ReadDocument(t *testing.T, path string) *types.Document {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}

	var doc types.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("store file %s is not a valid document: %v\n%s", path, err, data)
	}
	return &doc
}

// FileExists reports whether path exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Isolate points HOME at a temp dir and clears the TODO_* variables so
// tests never touch the real ~/.todo. It returns the fake home.
func Isolate(t *testing.T) string {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, key := range []string{"TODO_FILE", "TODO_MEMORY", "TODO_LOG_LEVEL", "TODO_CONFIG"} {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	return home
}
