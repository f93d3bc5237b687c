package schema

import "strings"

// TabID identifies a buffer tab.
type TabID string

// TabName is the user-facing name of a tab. Empty means unnamed.
type TabName string

// LanguageID identifies a syntax grammar (e.g. "go", "python").
// The empty value means automatic detection.
type LanguageID string

// LanguagePlaintext is the manual override that disables highlighting and
// enables autolinking.
const LanguagePlaintext LanguageID = "plaintext"

// IsAuto reports whether the language selects automatic detection.
func (l LanguageID) IsAuto() bool {
	return strings.TrimSpace(string(l)) == ""
}

// IsPlaintext reports whether the language is the plaintext override.
func (l LanguageID) IsPlaintext() bool {
	return l == LanguagePlaintext
}

// RenderMode describes how a frame was produced.
type RenderMode string

const (
	// RenderClear means the overlay is empty.
	RenderClear RenderMode = "clear"
	// RenderEscaped means the raw text was escaped and shown as-is.
	RenderEscaped RenderMode = "escaped"
	// RenderAutolink means the text was escaped with links wrapped.
	RenderAutolink RenderMode = "autolink"
	// RenderHighlight means the text was syntax highlighted.
	RenderHighlight RenderMode = "highlight"
)

// WriteMode selects how external writes are applied to the active buffer.
type WriteMode string

const (
	// WriteAppend appends to the active buffer.
	WriteAppend WriteMode = "append"
	// WriteReplace replaces the active buffer.
	WriteReplace WriteMode = "replace"
)

// ParseWriteMode maps a header value to a write mode. Anything other than
// "replace" appends.
func ParseWriteMode(value string) WriteMode {
	if strings.EqualFold(strings.TrimSpace(value), string(WriteReplace)) {
		return WriteReplace
	}
	return WriteAppend
}

// IsBlank reports whether text is empty after trimming whitespace.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}
