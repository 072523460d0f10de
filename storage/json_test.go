package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/arthur-debert/nanotodo/internal/logging"
	"github.com/arthur-debert/nanotodo/types"
)

func newTestStorage(t *testing.T, path string) (*JSONStorage, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	s := NewJSONStorage(path, WithLogger(logging.New(&buf, logging.DefaultOptions())))
	t.Cleanup(func() { _ = s.Close() })
	return s, &buf
}

func sampleDocument() *types.Document {
	return &types.Document{
		NextID: 3,
		Tasks: []types.Task{
			{ID: 1, Title: "Task 1", Description: "Desc 1", Status: types.StatusComplete},
			{ID: 2, Title: "Task 2", Description: "", Status: types.StatusIncomplete},
		},
	}
}

func TestJSONStorageLoad(t *testing.T) {
	t.Run("missing file returns empty document without creating it", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		s, _ := newTestStorage(t, path)

		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if diff := cmp.Diff(types.EmptyDocument(), doc); diff != "" {
			t.Errorf("unexpected document (-want +got):\n%s", diff)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Errorf("Load should not create %s", path)
		}
		if _, err := os.Stat(path + ".lock"); !os.IsNotExist(err) {
			t.Errorf("Load should not create a lock file for a missing store")
		}
	})

	t.Run("missing parent directory returns empty document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "dir", "tasks.json")
		s, _ := newTestStorage(t, path)

		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if doc.NextID != 1 || len(doc.Tasks) != 0 {
			t.Errorf("expected empty document, got %+v", doc)
		}
		if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
			t.Error("Load should not create parent directories")
		}
	})

	t.Run("reads a valid document", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		raw := `{"next_id": 3, "tasks": [
			{"id": 1, "title": "Task 1", "description": "Desc 1", "status": "complete"},
			{"id": 2, "title": "Task 2", "description": "", "status": "incomplete"}
		]}`
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatal(err)
		}

		s, logs := newTestStorage(t, path)
		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if diff := cmp.Diff(sampleDocument(), doc); diff != "" {
			t.Errorf("unexpected document (-want +got):\n%s", diff)
		}
		if logs.Len() != 0 {
			t.Errorf("valid document should not log, got %q", logs.String())
		}
	})

	t.Run("inconsistent but well-typed document is returned as is", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		raw := `{"next_id": 1, "tasks": [{"id": 5, "title": "", "status": "incomplete"}]}`
		if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
			t.Fatal(err)
		}

		s, _ := newTestStorage(t, path)
		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		want := &types.Document{NextID: 1, Tasks: []types.Task{{ID: 5, Title: "", Status: types.StatusIncomplete}}}
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("unexpected document (-want +got):\n%s", diff)
		}
	})

	corrupted := []struct {
		name    string
		content string
	}{
		{"invalid syntax", "{invalid json content"},
		{"empty file", ""},
		{"whitespace only", "   \n"},
		{"missing next_id", `{"tasks": []}`},
		{"missing tasks", `{"next_id": 4}`},
		{"next_id is a string", `{"next_id": "not a number", "tasks": []}`},
		{"next_id is fractional", `{"next_id": 2.5, "tasks": []}`},
		{"tasks is not a list", `{"next_id": 1, "tasks": "not a list"}`},
		{"both fields mistyped", `{"next_id": "not a number", "tasks": "not a list"}`},
		{"top level is an array", `[1, 2, 3]`},
		{"task id is a string", `{"next_id": 2, "tasks": [{"id": "1", "title": "a", "status": "incomplete"}]}`},
		{"task without title", `{"next_id": 2, "tasks": [{"id": 1, "status": "incomplete"}]}`},
		{"unknown status", `{"next_id": 2, "tasks": [{"id": 1, "title": "a", "status": "done"}]}`},
		{"trailing garbage", `{"next_id": 1, "tasks": []} extra`},
	}

	for _, tc := range corrupted {
		t.Run("corrupted: "+tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "tasks.json")
			if err := os.WriteFile(path, []byte(tc.content), 0644); err != nil {
				t.Fatal(err)
			}

			s, logs := newTestStorage(t, path)
			doc, err := s.Load()
			if err != nil {
				t.Fatalf("Load should not fail on corrupted content: %v", err)
			}
			if diff := cmp.Diff(types.EmptyDocument(), doc); diff != "" {
				t.Errorf("expected empty document (-want +got):\n%s", diff)
			}
			if !strings.Contains(strings.ToLower(logs.String()), "corrupted") {
				t.Errorf("expected a corruption diagnostic, got %q", logs.String())
			}

			// The corrupted file is left alone until the next save
			data, _ := os.ReadFile(path)
			if string(data) != tc.content {
				t.Error("Load must not rewrite the corrupted file")
			}
		})
	}

	t.Run("read errors are returned", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		_ = mockFS.WriteFile("tasks.json", []byte(`{"next_id": 1, "tasks": []}`), 0644)
		mockFS.ReadFileError = errors.New("disk read error")

		s := NewJSONStorage("tasks.json",
			WithFileSystem(mockFS),
			WithFileLockFactory(NewMockFileLockFactory()),
			WithLogger(logging.Discard()),
		)
		_, err := s.Load()
		if !errors.Is(err, mockFS.ReadFileError) {
			t.Fatalf("expected read error, got %v", err)
		}
	})

	t.Run("lock failure is returned", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		_ = mockFS.WriteFile("tasks.json", []byte(`{"next_id": 1, "tasks": []}`), 0644)
		locks := NewMockFileLockFactory()
		locks.DefaultLockError = errors.New("lock unavailable")

		s := NewJSONStorage("tasks.json", WithFileSystem(mockFS), WithFileLockFactory(locks))
		if _, err := s.Load(); !errors.Is(err, locks.DefaultLockError) {
			t.Fatalf("expected lock error, got %v", err)
		}
	})

	t.Run("unwritable lock file falls back to an unlocked read", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		_ = mockFS.WriteFile("tasks.json", []byte(`{"next_id": 2, "tasks": [{"id": 1, "title": "a", "description": "", "status": "incomplete"}]}`), 0644)
		locks := NewMockFileLockFactory()
		locks.DefaultLockError = &fs.PathError{Op: "open", Path: "tasks.json.lock", Err: fs.ErrPermission}

		s := NewJSONStorage("tasks.json",
			WithFileSystem(mockFS),
			WithFileLockFactory(locks),
			WithLogger(logging.Discard()),
		)
		doc, err := s.Load()
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		want := &types.Document{
			NextID: 2,
			Tasks:  []types.Task{{ID: 1, Title: "a", Status: types.StatusIncomplete}},
		}
		if diff := cmp.Diff(want, doc); diff != "" {
			t.Errorf("unexpected document (-want +got):\n%s", diff)
		}

		if err := s.Save(doc); !errors.Is(err, fs.ErrPermission) {
			t.Errorf("Save should still require the lock, got %v", err)
		}
	})
}

func TestJSONStorageSave(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		docs := []*types.Document{
			types.EmptyDocument(),
			sampleDocument(),
			{NextID: 10, Tasks: []types.Task{{ID: 9, Title: "日本語 ☕", Description: "line 1\nline 2", Status: types.StatusIncomplete}}},
		}

		for _, want := range docs {
			path := filepath.Join(t.TempDir(), "tasks.json")
			s, _ := newTestStorage(t, path)

			if err := s.Save(want); err != nil {
				t.Fatalf("Save: %v", err)
			}
			got, err := s.Load()
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("creates missing parent directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "subdir", "deeper", "tasks.json")
		s, _ := newTestStorage(t, path)

		if err := s.Save(types.EmptyDocument()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Errorf("expected %s to exist: %v", path, err)
		}
	})

	t.Run("writes the documented JSON layout", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		s, _ := newTestStorage(t, path)
		if err := s.Save(sampleDocument()); err != nil {
			t.Fatalf("Save: %v", err)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		var got map[string]interface{}
		if err := json.Unmarshal(data, &got); err != nil {
			t.Fatalf("saved file is not valid JSON: %v", err)
		}
		want := map[string]interface{}{
			"next_id": float64(3),
			"tasks": []interface{}{
				map[string]interface{}{"id": float64(1), "title": "Task 1", "description": "Desc 1", "status": "complete"},
				map[string]interface{}{"id": float64(2), "title": "Task 2", "description": "", "status": "incomplete"},
			},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("unexpected file content (-want +got):\n%s", diff)
		}
	})

	t.Run("nil task slice is written as an empty list", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		s, _ := newTestStorage(t, path)
		if err := s.Save(&types.Document{NextID: 4}); err != nil {
			t.Fatalf("Save: %v", err)
		}
		data, _ := os.ReadFile(path)
		if !strings.Contains(string(data), `"tasks": []`) {
			t.Errorf("expected empty tasks list in %s", data)
		}
	})

	t.Run("overwrites existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		s, _ := newTestStorage(t, path)

		if err := s.Save(types.EmptyDocument()); err != nil {
			t.Fatal(err)
		}
		if err := s.Save(sampleDocument()); err != nil {
			t.Fatal(err)
		}
		got, _ := s.Load()
		if diff := cmp.Diff(sampleDocument(), got); diff != "" {
			t.Errorf("expected second save to win (-want +got):\n%s", diff)
		}
	})

	t.Run("leaves no temp files behind", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "tasks.json")
		s := NewJSONStorage(path, WithLogger(logging.Discard()))

		for i := 0; i < 3; i++ {
			if err := s.Save(sampleDocument()); err != nil {
				t.Fatal(err)
			}
		}
		_ = s.Close()

		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatal(err)
		}
		for _, e := range entries {
			if e.Name() != "tasks.json" && e.Name() != "tasks.json.lock" {
				t.Errorf("unexpected file left in store directory: %s", e.Name())
			}
		}
	})

	t.Run("close keeps the lock file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tasks.json")
		s := NewJSONStorage(path, WithLogger(logging.Discard()))
		if err := s.Save(sampleDocument()); err != nil {
			t.Fatal(err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}
		if _, err := os.Stat(path + ".lock"); err != nil {
			t.Errorf("lock file should survive Close: %v", err)
		}
	})

	t.Run("rejects nil document", func(t *testing.T) {
		s, _ := newTestStorage(t, filepath.Join(t.TempDir(), "tasks.json"))
		if err := s.Save(nil); err == nil {
			t.Error("expected error saving nil document")
		}
	})
}

func TestJSONStorageWithMockFS(t *testing.T) {
	newMockStorage := func(mockFS *MockFileSystem) *JSONStorage {
		return NewJSONStorage("data/tasks.json",
			WithFileSystem(mockFS),
			WithFileLockFactory(NewMockFileLockFactory()),
			WithLogger(logging.Discard()),
		)
	}

	t.Run("atomic write renames temp file into place", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		s := newMockStorage(mockFS)

		if err := s.Save(sampleDocument()); err != nil {
			t.Fatalf("Save: %v", err)
		}
		if !mockFS.DirExists("data") {
			t.Error("expected parent directory to be created")
		}
		if !mockFS.FileExists("data/tasks.json") {
			t.Fatal("expected store file to exist")
		}
		if tmp := mockFS.FilesWithPrefix("data/tasks.json.tmp-"); len(tmp) != 0 {
			t.Errorf("temp files left behind: %v", tmp)
		}
	})

	t.Run("rename failure keeps the old content and cleans up", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		s := newMockStorage(mockFS)
		if err := s.Save(types.EmptyDocument()); err != nil {
			t.Fatal(err)
		}
		before, _ := mockFS.GetFileContent("data/tasks.json")

		mockFS.RenameError = errors.New("rename failed")
		err := s.Save(sampleDocument())
		if !errors.Is(err, mockFS.RenameError) {
			t.Fatalf("expected rename error, got %v", err)
		}

		after, _ := mockFS.GetFileContent("data/tasks.json")
		if !bytes.Equal(before, after) {
			t.Error("failed save must not change the existing file")
		}
		if tmp := mockFS.FilesWithPrefix("data/tasks.json.tmp-"); len(tmp) != 0 {
			t.Errorf("temp files left behind: %v", tmp)
		}
	})

	t.Run("write failure is returned", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		mockFS.WriteFileError = errors.New("disk full")
		s := newMockStorage(mockFS)

		if err := s.Save(sampleDocument()); !errors.Is(err, mockFS.WriteFileError) {
			t.Fatalf("expected write error, got %v", err)
		}
		if mockFS.FileExists("data/tasks.json") {
			t.Error("store file should not exist after failed write")
		}
	})

	t.Run("mkdir failure is returned", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		mockFS.MkdirAllError = errors.New("permission denied")
		s := newMockStorage(mockFS)

		if err := s.Save(sampleDocument()); !errors.Is(err, mockFS.MkdirAllError) {
			t.Fatalf("expected mkdir error, got %v", err)
		}
	})

	t.Run("lock is released after each operation", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		locks := NewMockFileLockFactory()
		s := NewJSONStorage("tasks.json", WithFileSystem(mockFS), WithFileLockFactory(locks), WithLogger(logging.Discard()))

		if err := s.Save(sampleDocument()); err != nil {
			t.Fatal(err)
		}
		if _, err := s.Load(); err != nil {
			t.Fatal(err)
		}

		lock := locks.GetLock("tasks.json.lock")
		if lock == nil {
			t.Fatal("expected a lock for tasks.json.lock")
		}
		if lock.IsLocked() {
			t.Error("lock should be released")
		}
		if lock.LockAttempts != 2 || lock.UnlockAttempts != 2 {
			t.Errorf("lock attempts = %d, unlock attempts = %d, want 2 and 2", lock.LockAttempts, lock.UnlockAttempts)
		}
	})

	t.Run("held lock fails the save", func(t *testing.T) {
		mockFS := NewMockFileSystem()
		locks := NewMockFileLockFactory()
		s := NewJSONStorage("tasks.json", WithFileSystem(mockFS), WithFileLockFactory(locks), WithLogger(logging.Discard()))

		// Another holder
		if ok, _ := locks.GetLock("tasks.json.lock").TryLockContext(context.Background(), 0); !ok {
			t.Fatal("failed to take the lock")
		}

		if err := s.Save(sampleDocument()); !errors.Is(err, errLockBusy) {
			t.Fatalf("expected errLockBusy, got %v", err)
		}
		if mockFS.FileExists("tasks.json") {
			t.Error("nothing should be written without the lock")
		}
	})
}

func TestPackageLoadSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")

	if err := Save(path, sampleDocument()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(sampleDocument(), got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}
