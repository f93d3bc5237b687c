package core

import (
	"strings"
	"unicode/utf8"

	"pkt.systems/blackboard/internal/persist"
	"pkt.systems/blackboard/schema"
)

// tab tracks the state of a single buffer.
type tab struct {
	ID       schema.TabID
	Name     schema.TabName
	Content  string
	Language schema.LanguageID
}

func tabFromRecord(rec persist.TabRecord) *tab {
	return &tab{ID: rec.ID, Name: rec.Name, Content: rec.Content, Language: rec.LanguageID()}
}

func (t *tab) record() persist.TabRecord {
	return persist.NewTabRecord(t.ID, t.Name, t.Content, t.Language)
}

// Snapshot returns a transport-friendly view of the tab.
func (t *tab) Snapshot(active bool) schema.TabSnapshot {
	return schema.TabSnapshot{
		ID:       t.ID,
		Name:     t.Name,
		Language: t.Language,
		Length:   utf8.RuneCountInString(t.Content),
		Active:   active,
	}
}

// tabBarVisible reports whether the tab strip should be shown.
func tabBarVisible(tabs []*tab) bool {
	if len(tabs) > 1 {
		return true
	}
	for _, t := range tabs {
		if strings.TrimSpace(string(t.Name)) != "" {
			return true
		}
	}
	return false
}
