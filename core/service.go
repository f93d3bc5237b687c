package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"pkt.systems/blackboard/internal/debounce"
	"pkt.systems/blackboard/internal/detect"
	"pkt.systems/blackboard/internal/logx"
	"pkt.systems/blackboard/internal/persist"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// service implements the core service behavior.
type service struct {
	cfg        schema.ServiceConfig
	store      *persist.Store
	coord      *Coordinator
	formatters FormatterRegistry
	sink       EventSink
	debounce   *debounce.Debouncer
	logger     pslog.Logger

	// persistMu orders snapshot+save so the newest state is written last.
	persistMu sync.Mutex

	mu           sync.Mutex
	tabs         []*tab
	active       schema.TabID
	highlighting bool
	devMode      bool
	frame        schema.Frame
	metrics      schema.Metrics
	// seq is bumped on every change to render inputs.
	seq uint64
}

// NewService constructs the core service and restores persisted state.
func NewService(cfg schema.ServiceConfig, deps ServiceDeps) (Service, error) {
	normalized, err := schema.NormalizeServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	cfg = normalized
	if deps.Detector == nil || deps.Highlighter == nil || deps.Linker == nil {
		return nil, errors.New("detector, highlighter and linker are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	s := &service{
		cfg:          cfg,
		store:        deps.Store,
		coord:        NewCoordinator(deps.Detector, deps.Highlighter, deps.Linker, logger),
		formatters:   deps.Formatters,
		sink:         deps.EventSink,
		debounce:     debounce.New(cfg.DebounceInterval),
		logger:       logger,
		highlighting: true,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	s.renderActive(pslog.ContextWithLogger(context.Background(), logger))
	return s, nil
}

func (s *service) load() error {
	if s.store == nil {
		s.tabs = []*tab{{ID: persist.SeedTabID}}
		s.active = persist.SeedTabID
		return nil
	}
	state, err := s.store.Load()
	if err != nil {
		s.logger.Warn("service state load failed", "err", err)
		return err
	}
	s.tabs = make([]*tab, 0, len(state.Tabs))
	for _, rec := range state.Tabs {
		s.tabs = append(s.tabs, tabFromRecord(rec))
	}
	s.active = state.ActiveTab
	s.highlighting = state.Highlighting
	s.devMode = state.DevMode
	s.logger.Info("service state loaded", "tabs", len(s.tabs), "active", s.active, "migrated", state.Migrated)
	if state.Migrated {
		s.persist(s.logger)
	}
	return nil
}

func (s *service) CreateTab(ctx context.Context, req schema.CreateTabRequest) (schema.CreateTabResponse, error) {
	if ctx == nil {
		return schema.CreateTabResponse{}, errors.New("missing context")
	}
	t := &tab{ID: newTabID(), Name: schema.TabName(strings.TrimSpace(string(req.Name)))}
	log := logx.WithTab(ctx, t.ID)

	s.mu.Lock()
	s.tabs = append(s.tabs, t)
	s.active = t.ID
	s.seq++
	snapshot := t.Snapshot(true)
	s.mu.Unlock()

	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventCreated, Tab: snapshot, ActiveTab: t.ID})
	s.renderActive(ctx)
	log.Info("service tab created")
	return schema.CreateTabResponse{Tab: snapshot}, nil
}

func (s *service) CloseTab(ctx context.Context, req schema.CloseTabRequest) (schema.CloseTabResponse, error) {
	log := logx.WithTab(ctx, req.TabID)

	s.mu.Lock()
	idx := s.indexLocked(req.TabID)
	if idx < 0 {
		s.mu.Unlock()
		log.Warn("service tab close failed", "err", schema.ErrTabNotFound)
		return schema.CloseTabResponse{}, schema.ErrTabNotFound
	}
	closed := s.tabs[idx]
	if len(s.tabs) == 1 {
		active := s.active
		snapshot := closed.Snapshot(true)
		s.mu.Unlock()
		log.Debug("service tab close ignored", "reason", "last tab")
		return schema.CloseTabResponse{Tab: snapshot, Closed: false, ActiveTab: active}, nil
	}
	wasActive := closed.ID == s.active
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	if wasActive {
		next := idx
		if next > len(s.tabs)-1 {
			next = len(s.tabs) - 1
		}
		s.active = s.tabs[next].ID
		s.seq++
	}
	active := s.active
	snapshot := closed.Snapshot(false)
	s.mu.Unlock()

	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventClosed, Tab: snapshot, ActiveTab: active})
	if wasActive {
		s.renderActive(ctx)
	}
	log.Info("service tab closed", "active", active)
	return schema.CloseTabResponse{Tab: snapshot, Closed: true, ActiveTab: active}, nil
}

func (s *service) ListTabs(ctx context.Context, req schema.ListTabsRequest) (schema.ListTabsResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.tabs) == 0 {
		return schema.ListTabsResponse{}, schema.ErrNoTabs
	}
	return schema.ListTabsResponse{
		Tabs:          s.snapshotsLocked(),
		ActiveTab:     s.active,
		TabBarVisible: tabBarVisible(s.tabs),
	}, nil
}

func (s *service) ActivateTab(ctx context.Context, req schema.ActivateTabRequest) (schema.ActivateTabResponse, error) {
	log := logx.WithTab(ctx, req.TabID)

	s.mu.Lock()
	idx := s.indexLocked(req.TabID)
	if idx < 0 {
		s.mu.Unlock()
		log.Warn("service tab activate failed", "err", schema.ErrTabNotFound)
		return schema.ActivateTabResponse{}, schema.ErrTabNotFound
	}
	t := s.tabs[idx]
	if t.ID == s.active {
		resp := schema.ActivateTabResponse{Tab: t.Snapshot(true), Frame: s.frame}
		s.mu.Unlock()
		return resp, nil
	}
	s.active = t.ID
	s.seq++
	snapshot := t.Snapshot(true)
	s.mu.Unlock()

	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventActivated, Tab: snapshot, ActiveTab: t.ID})
	frame := s.renderActive(ctx)
	log.Info("service tab activated")
	return schema.ActivateTabResponse{Tab: snapshot, Frame: frame}, nil
}

func (s *service) RenameTab(ctx context.Context, req schema.RenameTabRequest) (schema.RenameTabResponse, error) {
	log := logx.WithTab(ctx, req.TabID)
	name := schema.TabName(strings.TrimSpace(string(req.Name)))

	s.mu.Lock()
	idx := s.indexLocked(req.TabID)
	if idx < 0 {
		s.mu.Unlock()
		log.Warn("service tab rename failed", "err", schema.ErrTabNotFound)
		return schema.RenameTabResponse{}, schema.ErrTabNotFound
	}
	t := s.tabs[idx]
	t.Name = name
	snapshot := t.Snapshot(t.ID == s.active)
	active := s.active
	s.mu.Unlock()

	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventUpdated, Tab: snapshot, ActiveTab: active})
	log.Info("service tab renamed", "name", name)
	return schema.RenameTabResponse{Tab: snapshot}, nil
}

func (s *service) ReorderTab(ctx context.Context, req schema.ReorderTabRequest) (schema.ReorderTabResponse, error) {
	log := logx.WithTab(ctx, req.TabID)

	s.mu.Lock()
	idx := s.indexLocked(req.TabID)
	if idx < 0 {
		s.mu.Unlock()
		log.Warn("service tab reorder failed", "err", schema.ErrTabNotFound)
		return schema.ReorderTabResponse{}, schema.ErrTabNotFound
	}
	target := req.Index
	if target < 0 {
		target = 0
	}
	if target > len(s.tabs)-1 {
		target = len(s.tabs) - 1
	}
	moved := s.tabs[idx]
	s.tabs = append(s.tabs[:idx], s.tabs[idx+1:]...)
	s.tabs = append(s.tabs[:target], append([]*tab{moved}, s.tabs[target:]...)...)
	snapshots := s.snapshotsLocked()
	active := s.active
	s.mu.Unlock()

	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventReordered, Tab: moved.Snapshot(moved.ID == active), ActiveTab: active})
	log.Debug("service tab reordered", "from", idx, "to", target)
	return schema.ReorderTabResponse{Tabs: snapshots}, nil
}

func (s *service) SetContent(ctx context.Context, req schema.SetContentRequest) (schema.SetContentResponse, error) {
	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.SetContentResponse{}, schema.ErrNoTabs
	}
	if req.TabID != "" && req.TabID != t.ID {
		idx := s.indexLocked(req.TabID)
		if idx < 0 {
			s.mu.Unlock()
			return schema.SetContentResponse{}, schema.ErrTabNotFound
		}
		s.tabs[idx].Content = req.Text
		s.mu.Unlock()
		s.persist(logx.WithTab(ctx, req.TabID))
		return schema.SetContentResponse{TabID: req.TabID}, nil
	}
	t.Content = req.Text
	s.seq++
	seq := s.seq
	in := s.renderInputLocked(t)
	prev := s.frame
	tabID := t.ID
	s.mu.Unlock()

	log := logx.WithTab(ctx, tabID)
	s.persist(log)

	frame := s.coord.Immediate(in, prev)
	frame.TabID = tabID
	frame.Seq = seq
	if !s.applyFrame(seq, frame, nil) {
		log.Trace("service immediate render stale", "seq", seq)
	}
	s.scheduleRender(ctx)
	return schema.SetContentResponse{TabID: tabID, Frame: frame}, nil
}

func (s *service) GetBuffer(ctx context.Context, req schema.GetBufferRequest) (schema.GetBufferResponse, error) {
	_ = ctx
	_ = req
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.activeLocked()
	if t == nil {
		return schema.GetBufferResponse{}, schema.ErrNoTabs
	}
	return schema.GetBufferResponse{TabID: t.ID, Text: t.Content}, nil
}

func (s *service) WriteBuffer(ctx context.Context, req schema.WriteBufferRequest) (schema.WriteBufferResponse, error) {
	mode := req.Mode
	if mode == "" {
		mode = schema.WriteAppend
	}
	if mode != schema.WriteAppend && mode != schema.WriteReplace {
		return schema.WriteBufferResponse{}, fmt.Errorf("%w: write mode %q", schema.ErrInvalidRequest, mode)
	}

	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.WriteBufferResponse{}, schema.ErrNoTabs
	}
	t.Content = applyWrite(t.Content, req.Text, mode)
	s.seq++
	tabID := t.ID
	text := t.Content
	s.mu.Unlock()

	log := logx.WithTab(ctx, tabID)
	s.persist(log)
	s.emitContent(schema.ContentEvent{TabID: tabID, Text: text, Cursor: len([]rune(text)), Origin: schema.OriginControl})
	frame := s.renderActive(ctx)
	log.Info("service buffer written", "mode", mode, "length", len(req.Text))
	return schema.WriteBufferResponse{TabID: tabID, Text: text, Frame: frame}, nil
}

func (s *service) SetLanguage(ctx context.Context, req schema.SetLanguageRequest) (schema.SetLanguageResponse, error) {
	lang := schema.LanguageID(strings.ToLower(strings.TrimSpace(string(req.Language))))
	if !lang.IsAuto() && !detect.IsKnown(lang) {
		return schema.SetLanguageResponse{}, fmt.Errorf("%w: %s", schema.ErrUnknownLanguage, lang)
	}

	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.SetLanguageResponse{}, schema.ErrNoTabs
	}
	if req.TabID != "" && req.TabID != t.ID {
		idx := s.indexLocked(req.TabID)
		if idx < 0 {
			s.mu.Unlock()
			return schema.SetLanguageResponse{}, schema.ErrTabNotFound
		}
		t = s.tabs[idx]
	}
	t.Language = lang
	isActive := t.ID == s.active
	if isActive {
		s.seq++
	}
	snapshot := t.Snapshot(isActive)
	active := s.active
	s.mu.Unlock()

	log := logx.WithLanguage(logx.WithTab(ctx, snapshot.ID), lang)
	s.persist(log)
	s.emitTabEvent(schema.TabEvent{Type: schema.TabEventUpdated, Tab: snapshot, ActiveTab: active})
	if !isActive {
		log.Info("service language set", "auto", lang.IsAuto())
		return schema.SetLanguageResponse{Tab: snapshot}, nil
	}
	frame := s.renderActive(ctx)
	log.Info("service language set", "auto", lang.IsAuto())
	return schema.SetLanguageResponse{Tab: snapshot, Frame: frame}, nil
}

func (s *service) SetHighlighting(ctx context.Context, req schema.SetHighlightingRequest) (schema.SetHighlightingResponse, error) {
	log := pslog.Ctx(ctx)
	s.mu.Lock()
	s.highlighting = req.Enabled
	s.seq++
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveHighlighting(req.Enabled); err != nil {
			log.Warn("service persist failed", "err", err)
		}
	}
	frame := s.renderActive(ctx)
	log.Info("service highlighting set", "enabled", req.Enabled)
	return schema.SetHighlightingResponse{Enabled: req.Enabled, Frame: frame}, nil
}

func (s *service) SetDevMode(ctx context.Context, req schema.SetDevModeRequest) (schema.SetDevModeResponse, error) {
	log := pslog.Ctx(ctx)
	s.mu.Lock()
	s.devMode = req.Enabled
	metrics := s.metrics
	s.mu.Unlock()

	if s.store != nil {
		if err := s.store.SaveDevMode(req.Enabled); err != nil {
			log.Warn("service persist failed", "err", err)
		}
	}
	log.Info("service dev mode set", "enabled", req.Enabled)
	return schema.SetDevModeResponse{Enabled: req.Enabled, Metrics: metrics}, nil
}

func (s *service) GetFrame(ctx context.Context, req schema.GetFrameRequest) (schema.GetFrameResponse, error) {
	_ = req
	status, _ := s.FormatterStatus(ctx, schema.FormatterStatusRequest{})
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.activeLocked()
	if t == nil {
		return schema.GetFrameResponse{}, schema.ErrNoTabs
	}
	return schema.GetFrameResponse{
		Frame:        s.frame,
		Metrics:      s.metrics,
		Highlighting: s.highlighting,
		DevMode:      s.devMode,
		Manual:       t.Language,
		Formatter:    status.Status,
	}, nil
}

func (s *service) Flush(ctx context.Context) {
	_ = ctx
	s.debounce.Flush()
}

func (s *service) Close() error {
	s.debounce.Flush()
	return nil
}

// renderActive runs the full decision table for the active tab outside the
// lock and applies the result unless render inputs changed meanwhile.
func (s *service) renderActive(ctx context.Context) schema.Frame {
	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.Frame{}
	}
	in := s.renderInputLocked(t)
	seq := s.seq
	tabID := t.ID
	s.mu.Unlock()

	frame, metrics := s.coord.Render(in)
	frame.TabID = tabID
	frame.Seq = seq
	log := logx.WithFrame(logx.WithTab(ctx, tabID), frame)
	if !s.applyFrame(seq, frame, &metrics) {
		log.Trace("service render stale")
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.frame
	}
	log.Trace("service render applied", "indicator", frame.Indicator)
	return frame
}

func (s *service) scheduleRender(ctx context.Context) {
	base := pslog.ContextWithLogger(context.Background(), pslog.Ctx(ctx))
	base = logx.CopyContextFields(base, ctx)
	s.debounce.Schedule(func() {
		s.renderActive(base)
	})
}

// applyFrame stores the frame if seq is still current and emits it.
// Nil metrics keep the previous metrics.
func (s *service) applyFrame(seq uint64, frame schema.Frame, metrics *schema.Metrics) bool {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return false
	}
	s.frame = frame
	if metrics != nil {
		s.metrics = *metrics
	}
	event := schema.FrameEvent{Frame: s.frame, Metrics: s.metrics}
	s.mu.Unlock()
	if s.sink != nil {
		s.sink.OnFrame(event)
	}
	return true
}

func (s *service) renderInputLocked(t *tab) RenderInput {
	return RenderInput{Text: t.Content, Manual: t.Language, Highlighting: s.highlighting}
}

func (s *service) activeLocked() *tab {
	for _, t := range s.tabs {
		if t.ID == s.active {
			return t
		}
	}
	if len(s.tabs) > 0 {
		s.active = s.tabs[0].ID
		return s.tabs[0]
	}
	return nil
}

func (s *service) indexLocked(id schema.TabID) int {
	for i, t := range s.tabs {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s *service) snapshotsLocked() []schema.TabSnapshot {
	out := make([]schema.TabSnapshot, 0, len(s.tabs))
	for _, t := range s.tabs {
		out = append(out, t.Snapshot(t.ID == s.active))
	}
	return out
}

func (s *service) emitTabEvent(event schema.TabEvent) {
	if s.sink != nil {
		s.sink.OnTabEvent(event)
	}
}

func (s *service) emitContent(event schema.ContentEvent) {
	if s.sink != nil {
		s.sink.OnContent(event)
	}
}

func (s *service) persist(log pslog.Logger) {
	if s.store == nil {
		return
	}
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	snapshot, ok := s.snapshot()
	if !ok {
		if log != nil {
			log.Debug("service persist skipped", "reason", "no tabs")
		}
		return
	}
	if err := s.store.Save(snapshot); err != nil {
		if log != nil {
			log.Warn("service persist failed", "err", err)
		}
		return
	}
	if log != nil {
		log.Trace("service state persisted", "tabs", len(snapshot.Tabs))
	}
}

func (s *service) snapshot() (persist.Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.activeLocked()
	if t == nil {
		return persist.Snapshot{}, false
	}
	records := make([]persist.TabRecord, 0, len(s.tabs))
	for _, tab := range s.tabs {
		records = append(records, tab.record())
	}
	return persist.Snapshot{
		Tabs:      records,
		ActiveTab: s.active,
		Content:   t.Content,
		Language:  t.Language,
	}, true
}
