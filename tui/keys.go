package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	newTab        key.Binding
	closeTab      key.Binding
	nextTab       key.Binding
	prevTab       key.Binding
	moveRight     key.Binding
	moveLeft      key.Binding
	rename        key.Binding
	language      key.Binding
	highlighting  key.Binding
	devMode       key.Binding
	format        key.Binding
	copyBuffer    key.Binding
	openLink      key.Binding
	togglePreview key.Binding
	toggleHelp    key.Binding
	cancel        key.Binding
	quit          key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		newTab: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "new tab"),
		),
		closeTab: key.NewBinding(
			key.WithKeys("ctrl+w"),
			key.WithHelp("ctrl+w", "close tab"),
		),
		nextTab: key.NewBinding(
			key.WithKeys("alt+right", "ctrl+pgdown"),
			key.WithHelp("alt+→", "next tab"),
		),
		prevTab: key.NewBinding(
			key.WithKeys("alt+left", "ctrl+pgup"),
			key.WithHelp("alt+←", "prev tab"),
		),
		moveRight: key.NewBinding(
			key.WithKeys("ctrl+shift+right"),
			key.WithHelp("ctrl+shift+→", "move tab right"),
		),
		moveLeft: key.NewBinding(
			key.WithKeys("ctrl+shift+left"),
			key.WithHelp("ctrl+shift+←", "move tab left"),
		),
		rename: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "rename tab"),
		),
		language: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "language"),
		),
		highlighting: key.NewBinding(
			key.WithKeys("ctrl+j"),
			key.WithHelp("ctrl+j", "syntax on/off"),
		),
		devMode: key.NewBinding(
			key.WithKeys("ctrl+d"),
			key.WithHelp("ctrl+d", "dev metrics"),
		),
		format: key.NewBinding(
			key.WithKeys("ctrl+f"),
			key.WithHelp("ctrl+f", "format"),
		),
		copyBuffer: key.NewBinding(
			key.WithKeys("alt+c"),
			key.WithHelp("alt+c", "copy buffer"),
		),
		openLink: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "open link"),
		),
		togglePreview: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "preview"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.newTab, k.language, k.format, k.toggleHelp, k.quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.newTab, k.closeTab, k.nextTab, k.prevTab, k.moveRight, k.moveLeft, k.rename},
		{k.language, k.highlighting, k.devMode, k.format, k.togglePreview},
		{k.copyBuffer, k.openLink, k.toggleHelp, k.cancel, k.quit},
	}
}
