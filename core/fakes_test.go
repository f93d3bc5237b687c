package core

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
)

type fakeDetector struct {
	mu      sync.Mutex
	results map[string]schema.DetectionResult
	calls   []string
	panics  bool
}

func newFakeDetector() *fakeDetector {
	return &fakeDetector{results: map[string]schema.DetectionResult{}}
}

func (d *fakeDetector) set(text string, lang schema.LanguageID, relevance float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.results[text] = schema.DetectionResult{Language: lang, Relevance: relevance}
}

func (d *fakeDetector) Detect(text string) schema.DetectionResult {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, text)
	if d.panics {
		panic("grammar exploded")
	}
	return d.results[text]
}

func (d *fakeDetector) Relevance(text string, lang schema.LanguageID) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if res, ok := d.results[text]; ok && res.Language == lang {
		return res.Relevance, false
	}
	return 0, false
}

func (d *fakeDetector) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *fakeDetector) lastCall() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.calls) == 0 {
		return ""
	}
	return d.calls[len(d.calls)-1]
}

// fakeHighlighter wraps text in a marker and fails for listed languages.
type fakeHighlighter struct {
	failing map[schema.LanguageID]bool
}

func (h fakeHighlighter) Highlight(text string, lang schema.LanguageID) (string, error) {
	if lang == "" || lang == schema.LanguagePlaintext {
		return "", schema.ErrUnknownLanguage
	}
	if h.failing[lang] {
		return "", schema.ErrHighlightFailed
	}
	return "<hl:" + string(lang) + ">" + text, nil
}

type fakeFormatter struct {
	name      string
	available bool
	out       string
	err       error
}

func (f fakeFormatter) Name() string                       { return f.name }
func (f fakeFormatter) Available(ctx context.Context) bool { return f.available }
func (f fakeFormatter) Hint() string                       { return "install " + f.name }
func (f fakeFormatter) Format(ctx context.Context, text string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.out, nil
}

type fakeRegistry map[schema.LanguageID]Formatter

func (r fakeRegistry) For(lang schema.LanguageID) (Formatter, bool) {
	f, ok := r[lang]
	return f, ok
}

type recordingSink struct {
	mu       sync.Mutex
	tabs     []schema.TabEvent
	frames   []schema.FrameEvent
	contents []schema.ContentEvent
}

func (r *recordingSink) OnTabEvent(event schema.TabEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tabs = append(r.tabs, event)
}

func (r *recordingSink) OnFrame(event schema.FrameEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, event)
}

func (r *recordingSink) OnContent(event schema.ContentEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contents = append(r.contents, event)
}

func newTestCoordinator(d *fakeDetector, failing ...schema.LanguageID) *Coordinator {
	h := fakeHighlighter{failing: map[schema.LanguageID]bool{}}
	for _, lang := range failing {
		h.failing[lang] = true
	}
	return NewCoordinator(d, h, render.NewLinker(render.FormatHTML, ""), nil)
}

var errToolCrashed = errors.New("tool crashed")
