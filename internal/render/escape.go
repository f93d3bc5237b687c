package render

import (
	"html"
	"strings"
)

// Format selects the markup a renderer emits.
type Format int

const (
	// FormatHTML emits HTML fragments with CSS classes.
	FormatHTML Format = iota
	// FormatTerminal emits ANSI sequences for a 256 colour terminal.
	FormatTerminal
)

// ParseFormat maps a config value onto a Format.
func ParseFormat(value string) Format {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "terminal", "ansi", "terminal256":
		return FormatTerminal
	default:
		return FormatHTML
	}
}

// Escape makes text safe to embed in the given format.
func Escape(format Format, text string) string {
	if format == FormatTerminal {
		return stripControl(text)
	}
	return html.EscapeString(text)
}

// stripControl drops C0 controls and DEL except newline and tab, so pasted
// escape sequences cannot drive the terminal.
func stripControl(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' {
			b.WriteRune(r)
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
