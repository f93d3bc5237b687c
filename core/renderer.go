package core

import (
	"context"

	"pkt.systems/blackboard/schema"
)

// Detector scores text against the grammars allowed for auto detection.
type Detector interface {
	Detect(text string) schema.DetectionResult
	// Relevance scores text against one grammar and reports illegal input.
	Relevance(text string, lang schema.LanguageID) (float64, bool)
}

// Highlighter renders text with a named grammar. It fails for unknown
// grammars and for input the grammar cannot lex.
type Highlighter interface {
	Highlight(text string, lang schema.LanguageID) (string, error)
}

// Linker renders plaintext with links wrapped, or escaped only.
type Linker interface {
	Autolink(text string) (string, bool)
	Escape(text string) string
}

// Formatter rewrites buffer text for one language.
type Formatter interface {
	Name() string
	Available(ctx context.Context) bool
	Format(ctx context.Context, text string) (string, error)
	// Hint tells the user how to install the tool.
	Hint() string
}

// FormatterRegistry resolves the formatter for a language.
type FormatterRegistry interface {
	For(lang schema.LanguageID) (Formatter, bool)
}
