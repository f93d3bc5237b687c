// Package tui is the terminal front end: a tab strip, the editing buffer,
// the rendered preview and a status bar, all driven by core.Service.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/internal/eventbus"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

type mode int

const (
	modeEdit mode = iota
	modePicker
	modeRename
)

// Options tunes the front end.
type Options struct {
	// Preview shows the rendered pane next to the editor.
	Preview bool
	// Opener opens links; nil uses SystemOpener.
	Opener Opener
	// Clipboard copies text; nil uses the system clipboard.
	Clipboard func(string) error
}

type busMsg struct {
	event eventbus.Event
}

type formatDoneMsg struct {
	resp schema.FormatResponse
	err  error
}

// Model is the bubbletea model for one editing session.
type Model struct {
	ctx     context.Context
	log     pslog.Logger
	svc     core.Service
	linker  *render.Linker
	opener  Opener
	copyFn  func(string) error
	events  <-chan eventbus.Event
	unsub   func()
	keys    keyMap
	styles  styles
	help    help.Model
	editor  textarea.Model
	preview viewport.Model
	picker  list.Model
	rename  textinput.Model

	mode        mode
	showPreview bool
	width       int
	height      int

	tabs         []schema.TabSnapshot
	active       schema.TabID
	tabBar       bool
	frame        schema.Frame
	metrics      schema.Metrics
	highlighting bool
	devMode      bool
	manual       schema.LanguageID
	formatter    schema.FormatterStatus
	formatting   bool
	status       string
	err          error
}

// New builds the model and loads the current session state.
func New(ctx context.Context, svc core.Service, bus *eventbus.Bus, linker *render.Linker, opts Options) *Model {
	if ctx == nil {
		ctx = context.Background()
	}
	if linker == nil {
		linker = render.NewLinker(render.FormatTerminal, "")
	}
	m := &Model{
		ctx:         ctx,
		log:         pslog.Ctx(ctx),
		svc:         svc,
		linker:      linker,
		opener:      opts.Opener,
		copyFn:      opts.Clipboard,
		keys:        newKeyMap(),
		styles:      newStyles(),
		help:        help.New(),
		showPreview: opts.Preview,
		width:       80,
		height:      24,
	}
	if m.opener == nil {
		m.opener = SystemOpener
	}
	if m.copyFn == nil {
		m.copyFn = clipboard.WriteAll
	}
	if bus != nil {
		m.events, m.unsub = bus.Subscribe("tui")
	}

	m.editor = textarea.New()
	m.editor.Prompt = ""
	m.editor.Placeholder = "Type or paste anything…"
	m.editor.ShowLineNumbers = false
	m.editor.CharLimit = 0
	m.editor.MaxHeight = 0
	m.editor.Focus()

	m.preview = viewport.New(40, 10)
	m.picker = newPicker(40, 20)
	m.rename = textinput.New()
	m.rename.Prompt = "name: "
	m.rename.CharLimit = 64

	m.reloadTabs()
	m.reloadBuffer()
	m.reloadFrame()
	m.layout()
	return m
}

// Close releases the event subscription.
func (m *Model) Close() {
	if m.unsub != nil {
		m.unsub()
		m.unsub = nil
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	if m.events == nil {
		return nil
	}
	ch := m.events
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return busMsg{event: event}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case busMsg:
		m.handleEvent(msg.event)
		return m, m.waitForEvent()
	case formatDoneMsg:
		m.formatting = false
		m.handleFormatDone(msg)
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modePicker:
			return m.updatePicker(msg)
		case modeRename:
			return m.updateRename(msg)
		default:
			return m.updateEdit(msg)
		}
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m *Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status, m.err = "", nil
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.cancel):
		m.help.ShowAll = false
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.newTab):
		if _, err := m.svc.CreateTab(m.ctx, schema.CreateTabRequest{}); err != nil {
			m.err = err
			return m, nil
		}
		m.reloadAll()
		return m, nil
	case key.Matches(msg, m.keys.closeTab):
		if len(m.tabs) <= 1 {
			return m, nil
		}
		if _, err := m.svc.CloseTab(m.ctx, schema.CloseTabRequest{TabID: m.active}); err != nil {
			m.err = err
			return m, nil
		}
		m.reloadAll()
		return m, nil
	case key.Matches(msg, m.keys.nextTab):
		m.switchBy(1)
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.switchBy(-1)
		return m, nil
	case key.Matches(msg, m.keys.moveRight):
		m.moveBy(1)
		return m, nil
	case key.Matches(msg, m.keys.moveLeft):
		m.moveBy(-1)
		return m, nil
	case key.Matches(msg, m.keys.rename):
		m.mode = modeRename
		m.rename.SetValue(string(m.activeTab().Name))
		m.rename.CursorEnd()
		m.editor.Blur()
		return m, m.rename.Focus()
	case key.Matches(msg, m.keys.language):
		m.mode = modePicker
		m.picker.ResetFilter()
		selectLanguage(&m.picker, m.manual)
		m.editor.Blur()
		return m, nil
	case key.Matches(msg, m.keys.highlighting):
		resp, err := m.svc.SetHighlighting(m.ctx, schema.SetHighlightingRequest{Enabled: !m.highlighting})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.highlighting = resp.Enabled
		m.applyFrame(resp.Frame)
		return m, nil
	case key.Matches(msg, m.keys.devMode):
		resp, err := m.svc.SetDevMode(m.ctx, schema.SetDevModeRequest{Enabled: !m.devMode})
		if err != nil {
			m.err = err
			return m, nil
		}
		m.devMode = resp.Enabled
		m.metrics = resp.Metrics
		m.layout()
		return m, nil
	case key.Matches(msg, m.keys.format):
		return m, m.startFormat()
	case key.Matches(msg, m.keys.copyBuffer):
		text := m.editor.Value()
		if err := m.copyFn(text); err != nil {
			m.err = fmt.Errorf("copy failed: %w", err)
			return m, nil
		}
		m.status = fmt.Sprintf("copied %d chars", len([]rune(text)))
		return m, nil
	case key.Matches(msg, m.keys.openLink):
		m.openLinkAtCursor()
		return m, nil
	case key.Matches(msg, m.keys.togglePreview):
		m.showPreview = !m.showPreview
		m.layout()
		return m, nil
	}

	before := m.editor.Value()
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	if after := m.editor.Value(); after != before {
		resp, err := m.svc.SetContent(m.ctx, schema.SetContentRequest{TabID: m.active, Text: after})
		if err != nil {
			m.err = err
			return m, cmd
		}
		m.applyFrame(resp.Frame)
	}
	return m, cmd
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.picker.FilterState() != list.Filtering {
		switch msg.String() {
		case "esc":
			m.leaveOverlay()
			return m, nil
		case "enter":
			item, ok := m.picker.SelectedItem().(languageItem)
			m.leaveOverlay()
			if !ok {
				return m, nil
			}
			resp, err := m.svc.SetLanguage(m.ctx, schema.SetLanguageRequest{TabID: m.active, Language: item.id})
			if err != nil {
				m.err = err
				return m, nil
			}
			m.manual = item.id
			m.applyFrame(resp.Frame)
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m *Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.leaveOverlay()
		return m, nil
	case "enter":
		name := schema.TabName(m.rename.Value())
		m.leaveOverlay()
		if _, err := m.svc.RenameTab(m.ctx, schema.RenameTabRequest{TabID: m.active, Name: name}); err != nil {
			m.err = err
			return m, nil
		}
		m.reloadTabs()
		m.layout()
		return m, nil
	}
	var cmd tea.Cmd
	m.rename, cmd = m.rename.Update(msg)
	return m, cmd
}

func (m *Model) leaveOverlay() {
	m.mode = modeEdit
	m.rename.Blur()
	m.editor.Focus()
}

func (m *Model) handleEvent(event eventbus.Event) {
	switch event.Type {
	case eventbus.EventFrame:
		if event.Frame.Frame.TabID != m.active {
			return
		}
		m.metrics = event.Frame.Metrics
		m.applyFrame(event.Frame.Frame)
	case eventbus.EventContent:
		if event.Content.TabID != m.active || event.Content.Text == m.editor.Value() {
			return
		}
		m.setEditorText(event.Content.Text, event.Content.Cursor)
		if event.Content.Origin == schema.OriginControl {
			m.status = "buffer updated externally"
		}
	case eventbus.EventTab:
		previous := m.active
		m.reloadTabs()
		if m.active != previous {
			m.reloadBuffer()
			m.reloadFrame()
		}
		m.layout()
	}
}

func (m *Model) startFormat() tea.Cmd {
	if m.formatting {
		return nil
	}
	status := m.refreshFormatter()
	switch {
	case status.Formatter == "":
		m.status = "no formatter for this language"
		return nil
	case !status.Offered:
		return nil
	case !status.Available:
		m.status = fmt.Sprintf("%s not installed: %s", status.Formatter, status.Hint)
		return nil
	}
	m.formatting = true
	m.status = "formatting with " + status.Formatter + "…"
	svc, ctx, cursor := m.svc, m.ctx, m.cursorOffset()
	return func() tea.Msg {
		resp, err := svc.Format(ctx, schema.FormatRequest{Cursor: cursor})
		return formatDoneMsg{resp: resp, err: err}
	}
}

func (m *Model) handleFormatDone(msg formatDoneMsg) {
	switch {
	case msg.err != nil:
		m.status = ""
		m.err = msg.err
	case !msg.resp.Applied:
		m.status = msg.resp.Formatter + " could not format this buffer"
	default:
		m.status = "formatted with " + msg.resp.Formatter
		if msg.resp.TabID == m.active && msg.resp.Text != m.editor.Value() {
			m.setEditorText(msg.resp.Text, msg.resp.Cursor)
		}
	}
}

func (m *Model) openLinkAtCursor() {
	if m.frame.Mode != schema.RenderAutolink || !m.frame.HasLinks {
		m.status = "links open in plaintext mode only"
		return
	}
	text := m.editor.Value()
	link, ok := m.linker.LinkAt(text, byteOffset(text, m.cursorOffset()))
	if !ok {
		m.status = "no link under cursor"
		return
	}
	if err := m.opener(m.ctx, link.Href); err != nil {
		m.err = fmt.Errorf("open %s: %w", link.Href, err)
		return
	}
	m.log.Debug("tui link opened", "kind", link.Kind)
	m.status = "opened " + link.Href
}

func (m *Model) switchBy(delta int) {
	if len(m.tabs) < 2 {
		return
	}
	idx := m.activeIndex()
	next := (idx + delta + len(m.tabs)) % len(m.tabs)
	if _, err := m.svc.ActivateTab(m.ctx, schema.ActivateTabRequest{TabID: m.tabs[next].ID}); err != nil {
		m.err = err
		return
	}
	m.reloadAll()
}

func (m *Model) moveBy(delta int) {
	if len(m.tabs) < 2 {
		return
	}
	if _, err := m.svc.ReorderTab(m.ctx, schema.ReorderTabRequest{TabID: m.active, Index: m.activeIndex() + delta}); err != nil {
		m.err = err
		return
	}
	m.reloadTabs()
}

func (m *Model) reloadAll() {
	m.reloadTabs()
	m.reloadBuffer()
	m.reloadFrame()
	m.layout()
}

func (m *Model) reloadTabs() {
	resp, err := m.svc.ListTabs(m.ctx, schema.ListTabsRequest{})
	if err != nil {
		m.err = err
		return
	}
	m.tabs = resp.Tabs
	m.active = resp.ActiveTab
	m.tabBar = resp.TabBarVisible
}

func (m *Model) reloadBuffer() {
	resp, err := m.svc.GetBuffer(m.ctx, schema.GetBufferRequest{})
	if err != nil {
		m.err = err
		return
	}
	m.editor.SetValue(resp.Text)
}

func (m *Model) reloadFrame() {
	resp, err := m.svc.GetFrame(m.ctx, schema.GetFrameRequest{})
	if err != nil {
		m.err = err
		return
	}
	m.metrics = resp.Metrics
	m.highlighting = resp.Highlighting
	m.devMode = resp.DevMode
	m.manual = resp.Manual
	m.formatter = resp.Formatter
	m.frame = resp.Frame
	m.preview.SetContent(resp.Frame.Markup)
}

func (m *Model) refreshFormatter() schema.FormatterStatus {
	resp, err := m.svc.FormatterStatus(m.ctx, schema.FormatterStatusRequest{})
	if err == nil {
		m.formatter = resp.Status
	}
	return m.formatter
}

func (m *Model) applyFrame(frame schema.Frame) {
	if frame.TabID != "" && frame.TabID != m.active {
		return
	}
	m.frame = frame
	m.preview.SetContent(frame.Markup)
	m.refreshFormatter()
}

func (m *Model) setEditorText(text string, cursor int) {
	m.editor.SetValue(text)
	row, col := rowCol(text, cursor)
	for i := m.editor.LineCount() - 1; i > row; i-- {
		m.editor, _ = m.editor.Update(tea.KeyMsg{Type: tea.KeyUp})
	}
	m.editor.SetCursor(col)
}

func (m *Model) cursorOffset() int {
	info := m.editor.LineInfo()
	return runeOffset(m.editor.Value(), m.editor.Line(), info.StartColumn+info.ColumnOffset)
}

func (m *Model) activeIndex() int {
	for i, t := range m.tabs {
		if t.ID == m.active {
			return i
		}
	}
	return 0
}

func (m *Model) activeTab() schema.TabSnapshot {
	idx := m.activeIndex()
	if idx < len(m.tabs) {
		return m.tabs[idx]
	}
	return schema.TabSnapshot{}
}

func (m *Model) layout() {
	bodyHeight := m.height - 2
	if m.tabBar {
		bodyHeight--
	}
	if m.devMode {
		bodyHeight -= len(core.MetricsLines(m.metrics)) + 2
	}
	if m.help.ShowAll {
		bodyHeight -= 8
	}
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	editorWidth := m.width
	if m.showPreview {
		editorWidth = m.width / 2
	}
	m.editor.SetWidth(max(editorWidth-2, 10))
	m.editor.SetHeight(bodyHeight - 2)
	m.preview.Width = max(m.width-editorWidth-2, 10)
	m.preview.Height = max(bodyHeight-2, 1)
	m.picker.SetSize(max(m.width-6, 20), max(bodyHeight-2, 5))
	m.help.Width = m.width
}

func (m *Model) View() string {
	var rows []string
	if m.tabBar {
		rows = append(rows, m.viewTabs())
	}
	switch m.mode {
	case modePicker:
		rows = append(rows, m.styles.overlay.Render(m.picker.View()))
	case modeRename:
		body := m.styles.overlayTitle.Render("Rename tab") + "\n\n" + m.rename.View()
		rows = append(rows, m.styles.overlay.Render(body))
	default:
		editor := m.styles.editor.Render(m.editor.View())
		if m.showPreview {
			preview := m.styles.preview.Render(m.preview.View())
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, editor, preview))
		} else {
			rows = append(rows, editor)
		}
	}
	if m.devMode {
		rows = append(rows, m.styles.metrics.Render(strings.Join(core.MetricsLines(m.metrics), "\n")))
	}
	rows = append(rows, m.viewStatus())
	rows = append(rows, m.help.View(m.keys))
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m *Model) viewTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, t := range m.tabs {
		label := strings.TrimSpace(string(t.Name))
		if label == "" {
			label = fmt.Sprintf("%d", i+1)
		}
		if t.ID == m.active {
			parts = append(parts, m.styles.tabActive.Render(label))
		} else {
			parts = append(parts, m.styles.tabInactive.Render(label))
		}
	}
	return m.styles.tabsRow.Render(lipgloss.JoinHorizontal(lipgloss.Top, parts...))
}

func (m *Model) viewStatus() string {
	segs := []string{m.styles.statusSeg.Render(m.frame.Indicator)}
	syntax := "syntax off"
	if m.highlighting {
		syntax = "syntax on"
	}
	segs = append(segs, m.styles.statusHint.Render(syntax))
	if f := m.formatter; f.Offered {
		if f.Available {
			segs = append(segs, m.styles.statusHint.Render("ctrl+f: "+f.Formatter))
		} else {
			segs = append(segs, m.styles.statusHint.Render(f.Formatter+" not installed"))
		}
	}
	switch {
	case m.err != nil:
		segs = append(segs, m.styles.statusError.Render(errorText(m.err)))
	case m.status != "":
		segs = append(segs, m.styles.statusHint.Render(m.status))
	}
	return m.styles.statusBar.Render(strings.Join(segs, "  "))
}

func errorText(err error) string {
	switch {
	case errors.Is(err, schema.ErrEmptyBuffer):
		return "nothing to format"
	case errors.Is(err, schema.ErrFormatterUnavailable):
		return err.Error()
	default:
		return "error: " + err.Error()
	}
}
