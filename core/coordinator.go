package core

import (
	"context"
	"unicode/utf8"

	"pkt.systems/blackboard/internal/detect"
	"pkt.systems/blackboard/internal/render"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// IndicatorPlaintext is shown when no language is in effect.
const IndicatorPlaintext = "plaintext"

// RenderInput is the state a render decision depends on.
type RenderInput struct {
	Text         string
	Manual       schema.LanguageID
	Highlighting bool
}

// Coordinator decides how buffer text is rendered. It holds no session
// state; callers pass the inputs and keep the resulting frame.
type Coordinator struct {
	detector    Detector
	highlighter Highlighter
	linker      Linker
	log         pslog.Logger
}

// NewCoordinator constructs a Coordinator.
func NewCoordinator(detector Detector, highlighter Highlighter, linker Linker, logger pslog.Logger) *Coordinator {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Coordinator{detector: detector, highlighter: highlighter, linker: linker, log: logger}
}

// Render runs the full decision table, including detection, and computes
// developer metrics.
func (c *Coordinator) Render(in RenderInput) (schema.Frame, schema.Metrics) {
	text := in.Text
	if schema.IsBlank(text) {
		return clearFrame(), schema.Metrics{CharCount: utf8.RuneCountInString(text)}
	}
	manual := in.Manual
	switch {
	case manual.IsPlaintext():
		return c.autolinkFrame(text), schema.Metrics{
			Language:  schema.LanguagePlaintext,
			CharCount: utf8.RuneCountInString(text),
		}
	case !manual.IsAuto():
		metrics := c.manualMetrics(text, manual)
		if !in.Highlighting {
			return c.escapedFrame(text, string(manual), manual), metrics
		}
		if frame, ok := c.highlightFrame(text, manual, string(manual)); ok {
			return frame, metrics
		}
		return c.autolinkFrame(text), metrics
	}

	result := c.detect(text)
	metrics := detectionMetrics(text, result)
	if result.Language == "" || !metrics.MeetsThreshold {
		return c.autolinkFrame(text), metrics
	}
	indicator := "auto: " + string(result.Language)
	if !in.Highlighting {
		return c.escapedFrame(text, indicator, result.Language), metrics
	}
	if frame, ok := c.highlightFrame(text, result.Language, indicator); ok {
		return frame, metrics
	}
	return c.autolinkFrame(text), metrics
}

// Immediate renders without running the detector, reusing the language of
// the previous frame. The indicator and language are carried over.
func (c *Coordinator) Immediate(in RenderInput, prev schema.Frame) schema.Frame {
	var frame schema.Frame
	text := in.Text
	lang := in.Manual
	if lang.IsAuto() {
		lang = prev.Language
	}
	plaintext := in.Manual.IsPlaintext() || (in.Manual.IsAuto() && prev.Language == "")
	switch {
	case schema.IsBlank(text):
		frame = clearFrame()
	case plaintext:
		frame = c.autolinkFrame(text)
	case !in.Highlighting:
		frame = c.escapedFrame(text, "", "")
	default:
		if highlighted, ok := c.highlightFrame(text, lang, ""); ok {
			frame = highlighted
		} else {
			frame = c.autolinkFrame(text)
		}
	}
	frame.Indicator = prev.Indicator
	frame.Language = prev.Language
	return frame
}

func clearFrame() schema.Frame {
	return schema.Frame{Mode: schema.RenderClear, Indicator: IndicatorPlaintext}
}

func (c *Coordinator) autolinkFrame(text string) schema.Frame {
	markup, found := c.linker.Autolink(text)
	return schema.Frame{
		Mode:      schema.RenderAutolink,
		Markup:    markup,
		Indicator: IndicatorPlaintext,
		HasLinks:  found,
	}
}

func (c *Coordinator) escapedFrame(text, indicator string, lang schema.LanguageID) schema.Frame {
	return schema.Frame{
		Mode:      schema.RenderEscaped,
		Markup:    c.linker.Escape(text),
		Indicator: indicator,
		Language:  lang,
	}
}

func (c *Coordinator) highlightFrame(text string, lang schema.LanguageID, indicator string) (schema.Frame, bool) {
	markup, err := c.highlight(text, lang)
	if err != nil {
		c.log.Debug("render highlight fallback", "language", lang, "err", err)
		return schema.Frame{}, false
	}
	return schema.Frame{
		Mode:      schema.RenderHighlight,
		Markup:    markup,
		Class:     render.ClassFor(lang),
		Indicator: indicator,
		Language:  lang,
	}, true
}

func (c *Coordinator) highlight(text string, lang schema.LanguageID) (markup string, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("render highlight panic", "language", lang, "panic", r)
			markup, err = "", schema.ErrHighlightFailed
		}
	}()
	return c.highlighter.Highlight(text, lang)
}

func (c *Coordinator) detect(text string) (result schema.DetectionResult) {
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("render detect panic", "panic", r)
			result = schema.DetectionResult{}
		}
	}()
	return c.detector.Detect(text)
}

func (c *Coordinator) manualMetrics(text string, lang schema.LanguageID) (metrics schema.Metrics) {
	metrics = schema.Metrics{Language: lang, CharCount: utf8.RuneCountInString(text)}
	defer func() {
		if r := recover(); r != nil {
			c.log.Warn("render relevance panic", "language", lang, "panic", r)
		}
	}()
	rel, illegal := c.detector.Relevance(text, lang)
	metrics.Relevance = rel
	metrics.RelevancePerChar = detect.PerChar(rel, text)
	metrics.MeetsThreshold = detect.MeetsConfidenceThreshold(rel, text)
	metrics.Illegal = illegal
	return metrics
}

func detectionMetrics(text string, result schema.DetectionResult) schema.Metrics {
	return schema.Metrics{
		Language:         result.Language,
		Relevance:        result.Relevance,
		RelevancePerChar: detect.PerChar(result.Relevance, text),
		MeetsThreshold:   result.Language != "" && detect.MeetsConfidenceThreshold(result.Relevance, text),
		SecondBest:       result.SecondBest.Language,
		SecondRelevance:  result.SecondBest.Relevance,
		SecondPerChar:    detect.PerChar(result.SecondBest.Relevance, text),
		Illegal:          result.Illegal,
		CharCount:        utf8.RuneCountInString(text),
	}
}
