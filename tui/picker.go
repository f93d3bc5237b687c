package tui

import (
	"github.com/charmbracelet/bubbles/list"

	"pkt.systems/blackboard/internal/detect"
	"pkt.systems/blackboard/schema"
)

// languageItem is one row of the language picker. An empty id means auto.
type languageItem struct {
	id    schema.LanguageID
	label string
}

func (i languageItem) Title() string { return i.label }

func (i languageItem) Description() string {
	if i.id.IsAuto() {
		return "detect automatically"
	}
	return string(i.id)
}

func (i languageItem) FilterValue() string { return i.label + " " + string(i.id) }

func languageItems() []list.Item {
	items := []list.Item{languageItem{label: "Auto"}}
	for _, id := range detect.ManualLanguages() {
		label := string(id)
		if lang, ok := detect.Lookup(id); ok && lang.Label != "" {
			label = lang.Label
		}
		if id.IsPlaintext() {
			label = "Plain text"
		}
		items = append(items, languageItem{id: id, label: label})
	}
	return items
}

func newPicker(width, height int) list.Model {
	delegate := list.NewDefaultDelegate()
	l := list.New(languageItems(), delegate, width, height)
	l.Title = "Language"
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.DisableQuitKeybindings()
	return l
}

// selectLanguage moves the picker cursor to the current override.
func selectLanguage(l *list.Model, current schema.LanguageID) {
	for i, item := range l.Items() {
		if it, ok := item.(languageItem); ok && it.id == current {
			l.Select(i)
			return
		}
	}
}
