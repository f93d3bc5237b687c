package core

import (
	"context"
	"fmt"
	"strings"

	"pkt.systems/blackboard/internal/logx"
	"pkt.systems/blackboard/schema"
)

// effectiveLanguageLocked is the manual override, or the language the last
// render trusted.
func (s *service) effectiveLanguageLocked(t *tab) schema.LanguageID {
	if !t.Language.IsAuto() {
		return t.Language
	}
	return s.frame.Language
}

func (s *service) FormatterStatus(ctx context.Context, req schema.FormatterStatusRequest) (schema.FormatterStatusResponse, error) {
	_ = req
	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.FormatterStatusResponse{}, schema.ErrNoTabs
	}
	lang := s.effectiveLanguageLocked(t)
	blank := schema.IsBlank(t.Content)
	s.mu.Unlock()

	status := schema.FormatterStatus{Language: lang}
	if s.formatters == nil || lang == "" {
		return schema.FormatterStatusResponse{Status: status}, nil
	}
	f, ok := s.formatters.For(lang)
	if !ok {
		return schema.FormatterStatusResponse{Status: status}, nil
	}
	status.Formatter = f.Name()
	status.Available = f.Available(ctx)
	status.Offered = !blank
	if !status.Available {
		status.Hint = f.Hint()
	}
	return schema.FormatterStatusResponse{Status: status}, nil
}

// Format runs the formatter for the active language. Output replaces the
// tab that is active when the formatter finishes. A failing tool is logged
// and leaves the buffer untouched.
func (s *service) Format(ctx context.Context, req schema.FormatRequest) (schema.FormatResponse, error) {
	s.mu.Lock()
	t := s.activeLocked()
	if t == nil {
		s.mu.Unlock()
		return schema.FormatResponse{}, schema.ErrNoTabs
	}
	lang := s.effectiveLanguageLocked(t)
	text := t.Content
	tabID := t.ID
	s.mu.Unlock()

	log := logx.WithLanguage(logx.WithTab(ctx, tabID), lang)
	if schema.IsBlank(text) {
		return schema.FormatResponse{TabID: tabID}, schema.ErrEmptyBuffer
	}
	if s.formatters == nil {
		return schema.FormatResponse{TabID: tabID}, schema.ErrNoFormatter
	}
	f, ok := s.formatters.For(lang)
	if !ok {
		return schema.FormatResponse{TabID: tabID}, fmt.Errorf("%w: %s", schema.ErrNoFormatter, lang)
	}
	if !f.Available(ctx) {
		log.Info("service formatter unavailable", "formatter", f.Name())
		return schema.FormatResponse{TabID: tabID, Formatter: f.Name()}, fmt.Errorf("%w: %s", schema.ErrFormatterUnavailable, f.Hint())
	}

	log.Debug("service format start", "formatter", f.Name())
	out, err := f.Format(ctx, text)
	if err != nil {
		log.Warn("service format failed", "formatter", f.Name(), "err", err)
		return schema.FormatResponse{TabID: tabID, Formatter: f.Name(), Text: text, Cursor: req.Cursor}, nil
	}
	if strings.TrimSpace(out) == "" {
		log.Warn("service format empty output", "formatter", f.Name())
		return schema.FormatResponse{TabID: tabID, Formatter: f.Name(), Text: text, Cursor: req.Cursor}, nil
	}

	s.mu.Lock()
	target := s.activeLocked()
	if target == nil {
		s.mu.Unlock()
		return schema.FormatResponse{}, schema.ErrNoTabs
	}
	before := target.Content
	target.Content = out
	s.seq++
	targetID := target.ID
	s.mu.Unlock()

	cursor := mapCursor(req.Cursor, before, out)
	s.persist(log)
	s.emitContent(schema.ContentEvent{TabID: targetID, Text: out, Cursor: cursor, Origin: schema.OriginFormatter})
	s.renderActive(ctx)
	log.Info("service format applied", "formatter", f.Name(), "length", len(out))
	return schema.FormatResponse{TabID: targetID, Formatter: f.Name(), Applied: true, Text: out, Cursor: cursor}, nil
}
