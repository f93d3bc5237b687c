package persist

import (
	"encoding/json"
	"reflect"
	"testing"

	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/schema"
)

func newTestStore(t *testing.T, seed map[string]string) (*Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	if len(seed) > 0 {
		if err := mem.Apply(kv.Batch{Set: seed}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	store, err := NewStore(mem)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store, mem
}

func TestLoadFirstLaunch(t *testing.T) {
	store, _ := newTestStore(t, nil)
	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Tabs) != 1 || state.Tabs[0].ID != SeedTabID {
		t.Fatalf("expected seeded tab, got %+v", state.Tabs)
	}
	if state.ActiveTab != SeedTabID || !state.Highlighting || state.DevMode {
		t.Fatalf("unexpected defaults: %+v", state)
	}
}

func TestLoadMigratesLegacyContent(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		KeyContent:  "print('hi')",
		KeyLanguage: "python",
	})
	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !state.Migrated {
		t.Fatalf("expected migration flag")
	}
	tab := state.Tabs[0]
	if tab.Content != "print('hi')" || tab.LanguageID() != "python" {
		t.Fatalf("unexpected migrated tab: %+v", tab)
	}
}

func TestLoadCorruptTabsFallsBackToLegacy(t *testing.T) {
	store, _ := newTestStore(t, map[string]string{
		KeyContent:  "legacy text",
		KeyLanguage: "go",
		KeyTabs:     "{not json",
	})
	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Tabs) != 1 || state.Tabs[0].ID != SeedTabID {
		t.Fatalf("expected single seeded tab, got %+v", state.Tabs)
	}
	if state.Tabs[0].Content != "legacy text" || state.Tabs[0].Language != nil {
		t.Fatalf("expected legacy content with auto language, got %+v", state.Tabs[0])
	}
}

func TestLoadClearsShortNamesAndRestoresActive(t *testing.T) {
	records := []TabRecord{
		NewTabRecord("tab-a", "A", "one", ""),
		NewTabRecord("tab-b", "notes", "two", "go"),
		NewTabRecord("tab-b", "dup", "three", ""),
		{ID: "", Name: "orphan"},
	}
	raw, _ := json.Marshal(records)
	store, _ := newTestStore(t, map[string]string{
		KeyTabs:         string(raw),
		KeyActiveTab:    "tab-b",
		KeyHighlighting: "false",
		KeyDevMode:      "true",
	})
	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(state.Tabs) != 2 {
		t.Fatalf("expected 2 tabs, got %+v", state.Tabs)
	}
	if state.Tabs[0].Name != "" || state.Tabs[1].Name != "notes" {
		t.Fatalf("unexpected names: %+v", state.Tabs)
	}
	if state.ActiveTab != "tab-b" || state.Highlighting || !state.DevMode {
		t.Fatalf("unexpected state: %+v", state)
	}
}

func TestLoadUnknownActiveFallsBackToFirst(t *testing.T) {
	raw, _ := json.Marshal([]TabRecord{NewTabRecord("tab-a", "", "", ""), NewTabRecord("tab-b", "", "", "")})
	store, _ := newTestStore(t, map[string]string{KeyTabs: string(raw), KeyActiveTab: "tab-zzz"})
	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if state.ActiveTab != "tab-a" {
		t.Fatalf("expected first tab active, got %q", state.ActiveTab)
	}
}

func TestSaveRoundTripAndLegacyMirror(t *testing.T) {
	store, mem := newTestStore(t, nil)
	tabs := []TabRecord{
		NewTabRecord("tab-0", "scratch", "SELECT 1", "sql"),
		NewTabRecord("tab-1", "", "hello", ""),
	}
	if err := store.Save(Snapshot{Tabs: tabs, ActiveTab: "tab-1", Content: "hello"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if value, _, _ := mem.Get(KeyContent); value != "hello" {
		t.Fatalf("expected legacy content mirror, got %q", value)
	}
	if _, ok, _ := mem.Get(KeyLanguage); ok {
		t.Fatalf("expected legacy language removed for auto")
	}
	raw, _, _ := mem.Get(KeyTabs)
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded[1]["language"] != nil {
		t.Fatalf("expected null language, got %v", decoded[1]["language"])
	}

	state, err := store.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(state.Tabs, tabs) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", state.Tabs, tabs)
	}
	if state.ActiveTab != "tab-1" {
		t.Fatalf("expected active tab-1, got %q", state.ActiveTab)
	}

	if err := store.Save(Snapshot{Tabs: tabs, ActiveTab: "tab-0", Content: "SELECT 1", Language: "sql"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if value, _, _ := mem.Get(KeyLanguage); value != "sql" {
		t.Fatalf("expected legacy language mirror, got %q", value)
	}
}

func TestSaveFlags(t *testing.T) {
	store, mem := newTestStore(t, nil)
	if err := store.SaveHighlighting(false); err != nil {
		t.Fatalf("save highlighting: %v", err)
	}
	if err := store.SaveDevMode(true); err != nil {
		t.Fatalf("save dev mode: %v", err)
	}
	if value, _, _ := mem.Get(KeyHighlighting); value != "false" {
		t.Fatalf("unexpected highlighting value %q", value)
	}
	if value, _, _ := mem.Get(KeyDevMode); value != "true" {
		t.Fatalf("unexpected dev mode value %q", value)
	}
}

func TestNewTabRecordStoresAutoAsNull(t *testing.T) {
	rec := NewTabRecord("tab-x", "", "", "")
	if rec.Language != nil {
		t.Fatalf("expected nil language")
	}
	rec = NewTabRecord("tab-x", "", "", schema.LanguagePlaintext)
	if rec.LanguageID() != schema.LanguagePlaintext {
		t.Fatalf("expected plaintext override")
	}
}
