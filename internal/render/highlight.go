package render

import (
	"bytes"
	"fmt"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"

	"pkt.systems/blackboard/internal/detect"
	"pkt.systems/blackboard/schema"
)

// DefaultStyle is the chroma style used when none is configured.
const DefaultStyle = "monokai"

// Highlighter renders text with a named grammar.
type Highlighter struct {
	format    Format
	style     *chroma.Style
	formatter chroma.Formatter
}

// NewHighlighter constructs a Highlighter. Unknown styles fall back to the
// chroma default.
func NewHighlighter(format Format, styleName string) *Highlighter {
	if styleName == "" {
		styleName = DefaultStyle
	}
	style := styles.Get(styleName)
	if style == nil {
		style = styles.Fallback
	}
	var formatter chroma.Formatter
	if format == FormatTerminal {
		formatter = formatters.Get("terminal256")
	} else {
		formatter = html.New(html.WithClasses(true), html.PreventSurroundingPre(true))
	}
	if formatter == nil {
		formatter = formatters.Fallback
	}
	return &Highlighter{format: format, style: style, formatter: formatter}
}

// Highlight renders text in the given language. It fails for unknown
// grammars and for text the grammar cannot lex.
func (h *Highlighter) Highlight(text string, lang schema.LanguageID) (string, error) {
	lexer, err := detect.LexerFor(lang)
	if err != nil {
		return "", fmt.Errorf("%w: %s", schema.ErrUnknownLanguage, lang)
	}
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrHighlightFailed, err)
	}
	tokens := it.Tokens()
	for _, tok := range tokens {
		if tok.Type == chroma.Error {
			return "", fmt.Errorf("%w: illegal input for %s", schema.ErrHighlightFailed, lang)
		}
	}
	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, chroma.Literator(tokens...)); err != nil {
		return "", fmt.Errorf("%w: %v", schema.ErrHighlightFailed, err)
	}
	return buf.String(), nil
}

// ClassFor returns the container class for a highlighted language.
func ClassFor(lang schema.LanguageID) string {
	return "hljs language-" + string(lang)
}

// CSS returns the stylesheet for class-based HTML output.
func (h *Highlighter) CSS() (string, error) {
	f, ok := h.formatter.(*html.Formatter)
	if !ok {
		return "", nil
	}
	var buf bytes.Buffer
	if err := f.WriteCSS(&buf, h.style); err != nil {
		return "", err
	}
	return buf.String(), nil
}
