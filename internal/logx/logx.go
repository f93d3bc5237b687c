package logx

import (
	"context"

	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

type contextKey int

const (
	tabKey contextKey = iota
)

// Ctx returns the logger bound to the provided context.
func Ctx(ctx context.Context) pslog.Logger {
	return pslog.Ctx(ctx)
}

// WithTab annotates the logger with the tab id unless the context already
// carries it.
func WithTab(ctx context.Context, tabID schema.TabID) pslog.Logger {
	log := pslog.Ctx(ctx)
	if tabID != "" {
		if current, ok := ctx.Value(tabKey).(schema.TabID); ok && current == tabID {
			return log
		}
		log = log.With("tab", tabID)
	}
	return log
}

// WithLanguage annotates the logger with a language when set.
func WithLanguage(log pslog.Logger, lang schema.LanguageID) pslog.Logger {
	if lang != "" {
		log = log.With("language", lang)
	}
	return log
}

// WithFrame annotates the logger with render outcome fields.
func WithFrame(log pslog.Logger, frame schema.Frame) pslog.Logger {
	log = log.With("mode", frame.Mode, "seq", frame.Seq)
	return WithLanguage(log, frame.Language)
}

// ContextWithTab stores the tab marker on the context for log de-duplication.
func ContextWithTab(ctx context.Context, tabID schema.TabID) context.Context {
	if ctx == nil || tabID == "" {
		return ctx
	}
	return context.WithValue(ctx, tabKey, tabID)
}

// ContextWithTabLogger attaches the logger and tab marker to the context.
func ContextWithTabLogger(ctx context.Context, log pslog.Logger, tabID schema.TabID) context.Context {
	ctx = pslog.ContextWithLogger(ctx, log)
	return ContextWithTab(ctx, tabID)
}

// CopyContextFields copies the tab marker from src to dst.
func CopyContextFields(dst context.Context, src context.Context) context.Context {
	if src == nil {
		return dst
	}
	if tab, ok := src.Value(tabKey).(schema.TabID); ok && tab != "" {
		dst = ContextWithTab(dst, tab)
	}
	return dst
}
