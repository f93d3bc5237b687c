package kv

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	if _, ok, err := store.Get("tabs"); err != nil || ok {
		t.Fatalf("expected missing key, ok=%v err=%v", ok, err)
	}
	if err := store.Apply(Batch{Set: map[string]string{"tabs": "[]", "active-tab": "tab-0"}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	value, ok, err := store.Get("active-tab")
	if err != nil || !ok || value != "tab-0" {
		t.Fatalf("unexpected get: %q ok=%v err=%v", value, ok, err)
	}
	if err := Set(store, "active-tab", "tab-1"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if value, _, _ := store.Get("active-tab"); value != "tab-1" {
		t.Fatalf("expected overwrite, got %q", value)
	}
	if err := Delete(store, "tabs"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get("tabs"); ok {
		t.Fatalf("expected tabs deleted")
	}
	if err := store.Apply(Batch{}); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, store)

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600, got %v", info.Mode().Perm())
	}

	reopened, err := OpenFile(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if value, ok, _ := reopened.Get("active-tab"); !ok || value != "tab-1" {
		t.Fatalf("expected persisted value, got %q ok=%v", value, ok)
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := OpenFile(path, nil); err == nil {
		t.Fatalf("expected corrupt file error")
	}
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.sqlite")
	store, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	exerciseStore(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if value, ok, _ := reopened.Get("active-tab"); !ok || value != "tab-1" {
		t.Fatalf("expected persisted value, got %q ok=%v", value, ok)
	}
}

func TestOpenDriver(t *testing.T) {
	dir := t.TempDir()
	if _, err := Open(DriverMemory, "", nil); err != nil {
		t.Fatalf("memory: %v", err)
	}
	if _, err := Open(DriverFile, filepath.Join(dir, "s.json"), nil); err != nil {
		t.Fatalf("file: %v", err)
	}
	if _, err := Open("redis", "", nil); !errors.Is(err, ErrUnsupportedDriver) {
		t.Fatalf("expected unsupported driver, got %v", err)
	}
}
