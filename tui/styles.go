package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	tabsRow, tabActive, tabInactive lipgloss.Style
	editor, preview                 lipgloss.Style
	statusBar, statusSeg            lipgloss.Style
	statusHint, statusError         lipgloss.Style
	metrics, overlay, overlayTitle  lipgloss.Style
}

func newStyles() styles {
	base := lipgloss.NewStyle()
	border := lipgloss.NormalBorder()
	accent := lipgloss.Color("63")

	return styles{
		tabsRow:      base.Padding(0, 1),
		tabActive:    base.Copy().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("230")).Background(accent),
		tabInactive:  base.Copy().Padding(0, 1).Faint(true),
		editor:       base.Copy().BorderStyle(border),
		preview:      base.Copy().BorderStyle(border).BorderForeground(accent),
		statusBar:    base.Padding(0, 1),
		statusSeg:    base.Copy().Padding(0, 1).MarginRight(1).Bold(true),
		statusHint:   base.Copy().Faint(true),
		statusError:  base.Copy().Foreground(lipgloss.Color("203")),
		metrics:      base.Copy().BorderStyle(border).Padding(0, 1).Faint(true),
		overlay:      base.Copy().Border(lipgloss.RoundedBorder()).Padding(1, 2),
		overlayTitle: base.Copy().Bold(true),
	}
}
