package persist

import (
	"encoding/json"
	"errors"
	"unicode/utf8"

	"pkt.systems/blackboard/internal/kv"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// Keys in the backing key/value store.
const (
	KeyContent      = "content"
	KeyLanguage     = "language"
	KeyHighlighting = "highlighting"
	KeyTabs         = "tabs"
	KeyActiveTab    = "active-tab"
	KeyDevMode      = "dev-mode"
)

// SeedTabID is the id of the tab created on first launch or migration.
const SeedTabID schema.TabID = "tab-0"

// TabRecord is the persisted form of a tab.
type TabRecord struct {
	ID       schema.TabID       `json:"id"`
	Name     schema.TabName     `json:"name"`
	Content  string             `json:"content"`
	Language *schema.LanguageID `json:"language"`
}

// LanguageID returns the override, or the empty auto value.
func (r TabRecord) LanguageID() schema.LanguageID {
	if r.Language == nil {
		return ""
	}
	return *r.Language
}

// NewTabRecord builds a record, storing auto-detect as null.
func NewTabRecord(id schema.TabID, name schema.TabName, content string, lang schema.LanguageID) TabRecord {
	rec := TabRecord{ID: id, Name: name, Content: content}
	if !lang.IsAuto() {
		l := lang
		rec.Language = &l
	}
	return rec
}

// State is the session state restored at startup.
type State struct {
	Tabs         []TabRecord
	ActiveTab    schema.TabID
	Highlighting bool
	DevMode      bool
	// Migrated is set when tabs were seeded from legacy keys.
	Migrated bool
}

// Snapshot is what every tab mutation writes.
type Snapshot struct {
	Tabs      []TabRecord
	ActiveTab schema.TabID
	// Content is mirrored under the legacy single-buffer key.
	Content string
	// Language is mirrored under the legacy language key; auto removes it.
	Language schema.LanguageID
}

// Store reads and writes session state through a kv.Store.
type Store struct {
	kv  kv.Store
	log pslog.Logger
}

// NewStore constructs a state store.
func NewStore(store kv.Store) (*Store, error) {
	return NewStoreWithLogger(store, nil)
}

// NewStoreWithLogger constructs a state store with logging.
func NewStoreWithLogger(store kv.Store, logger pslog.Logger) (*Store, error) {
	if store == nil {
		return nil, errors.New("key/value store is required")
	}
	return &Store{kv: store, log: logger}, nil
}

// Load restores tabs and flags, migrating legacy single-buffer state.
func (s *Store) Load() (State, error) {
	state := State{Highlighting: true}
	if value, ok, err := s.kv.Get(KeyHighlighting); err != nil {
		return State{}, err
	} else if ok && value == "false" {
		state.Highlighting = false
	}
	if value, ok, err := s.kv.Get(KeyDevMode); err != nil {
		return State{}, err
	} else if ok && value == "true" {
		state.DevMode = true
	}

	legacyContent, _, err := s.kv.Get(KeyContent)
	if err != nil {
		return State{}, err
	}
	raw, ok, err := s.kv.Get(KeyTabs)
	if err != nil {
		return State{}, err
	}
	switch {
	case !ok:
		legacyLang, _, err := s.kv.Get(KeyLanguage)
		if err != nil {
			return State{}, err
		}
		state.Tabs = []TabRecord{NewTabRecord(SeedTabID, "", legacyContent, schema.LanguageID(legacyLang))}
		state.Migrated = true
		if s.log != nil {
			s.log.Info("state migrated legacy buffer", "length", len(legacyContent))
		}
	default:
		var records []TabRecord
		if err := json.Unmarshal([]byte(raw), &records); err != nil {
			if s.log != nil {
				s.log.Warn("state tabs corrupt", "err", err)
			}
			records = nil
		}
		state.Tabs = cleanRecords(records)
		if len(state.Tabs) == 0 {
			state.Tabs = []TabRecord{NewTabRecord(SeedTabID, "", legacyContent, "")}
			state.Migrated = true
		}
	}

	state.ActiveTab = state.Tabs[0].ID
	if active, ok, err := s.kv.Get(KeyActiveTab); err != nil {
		return State{}, err
	} else if ok {
		for _, rec := range state.Tabs {
			if rec.ID == schema.TabID(active) {
				state.ActiveTab = rec.ID
				break
			}
		}
	}
	if s.log != nil {
		s.log.Debug("state load ok", "tabs", len(state.Tabs), "active", state.ActiveTab)
	}
	return state, nil
}

// Save writes the tab collection, active id and legacy mirrors together.
func (s *Store) Save(snapshot Snapshot) error {
	data, err := json.Marshal(snapshot.Tabs)
	if err != nil {
		return err
	}
	batch := kv.Batch{Set: map[string]string{
		KeyTabs:      string(data),
		KeyActiveTab: string(snapshot.ActiveTab),
		KeyContent:   snapshot.Content,
	}}
	if snapshot.Language.IsAuto() {
		batch.Delete = append(batch.Delete, KeyLanguage)
	} else {
		batch.Set[KeyLanguage] = string(snapshot.Language)
	}
	if err := s.kv.Apply(batch); err != nil {
		return err
	}
	if s.log != nil {
		s.log.Trace("state save ok", "tabs", len(snapshot.Tabs))
	}
	return nil
}

// SaveHighlighting persists the highlighting flag.
func (s *Store) SaveHighlighting(enabled bool) error {
	return kv.Set(s.kv, KeyHighlighting, formatBool(enabled))
}

// SaveDevMode persists the developer mode flag.
func (s *Store) SaveDevMode(enabled bool) error {
	return kv.Set(s.kv, KeyDevMode, formatBool(enabled))
}

func formatBool(v bool) string {
	if v {
		return "true"
	}
	return "false"
}

// cleanRecords drops records without ids or with duplicate ids and clears
// single-character names left by older versions.
func cleanRecords(records []TabRecord) []TabRecord {
	seen := make(map[schema.TabID]struct{}, len(records))
	out := make([]TabRecord, 0, len(records))
	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		if _, dup := seen[rec.ID]; dup {
			continue
		}
		seen[rec.ID] = struct{}{}
		if utf8.RuneCountInString(string(rec.Name)) <= 1 {
			rec.Name = ""
		}
		if rec.Language != nil && rec.Language.IsAuto() {
			rec.Language = nil
		}
		out = append(out, rec)
	}
	return out
}
