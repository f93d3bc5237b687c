package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/blackboard/schema"
)

func TestEscape(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;&amp;", Escape(FormatHTML, "<b>&"))
	assert.Equal(t, "a[31mb\n\tc", Escape(FormatTerminal, "a\x1b[31mb\n\tc\x7f"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatTerminal, ParseFormat("terminal"))
	assert.Equal(t, FormatTerminal, ParseFormat(" ANSI "))
	assert.Equal(t, FormatHTML, ParseFormat("html"))
	assert.Equal(t, FormatHTML, ParseFormat(""))
}

func TestAutolinkEmail(t *testing.T) {
	l := NewLinker(FormatHTML, "")
	out, found := l.Autolink("mail a@b.com now")
	assert.True(t, found)
	assert.Equal(t, `mail <a href="mailto:a@b.com" class="autolink">a@b.com</a> now`, out)
}

func TestAutolinkURLs(t *testing.T) {
	l := NewLinker(FormatHTML, "")
	out, found := l.Autolink("see example.com/x and https://go.dev <here>")
	assert.True(t, found)
	assert.Contains(t, out, `<a href="http://example.com/x" class="autolink">example.com/x</a>`)
	assert.Contains(t, out, `<a href="https://go.dev" class="autolink">https://go.dev</a>`)
	assert.Contains(t, out, "&lt;here&gt;")
}

func TestAutolinkPhone(t *testing.T) {
	l := NewLinker(FormatHTML, "US")
	links := l.Parse("call +1 650 253 0000 today")
	require.Len(t, links, 1)
	assert.Equal(t, LinkPhone, links[0].Kind)
	assert.Equal(t, "tel:+16502530000", links[0].Href)
}

func TestAutolinkNoLinks(t *testing.T) {
	l := NewLinker(FormatHTML, "")
	out, found := l.Autolink("hello <world>")
	assert.False(t, found)
	assert.Equal(t, "hello &lt;world&gt;", out)
}

func TestAutolinkTerminal(t *testing.T) {
	l := NewLinker(FormatTerminal, "")
	out, found := l.Autolink("go to https://go.dev")
	assert.True(t, found)
	assert.Contains(t, out, "\x1b]8;;https://go.dev\x1b\\")
	assert.True(t, strings.HasPrefix(out, "go to "))
}

func TestLinkAt(t *testing.T) {
	l := NewLinker(FormatHTML, "")
	text := "x https://go.dev y"
	link, ok := l.LinkAt(text, 5)
	require.True(t, ok)
	assert.Equal(t, "https://go.dev", link.Href)
	_, ok = l.LinkAt(text, 0)
	assert.False(t, ok)
}

func TestHighlightHTML(t *testing.T) {
	h := NewHighlighter(FormatHTML, "")
	out, err := h.Highlight("package main\n", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "package")
	assert.Contains(t, out, "<span")
	assert.Equal(t, "hljs language-go", ClassFor("go"))

	css, err := h.CSS()
	require.NoError(t, err)
	assert.NotEmpty(t, css)
}

func TestHighlightTerminal(t *testing.T) {
	h := NewHighlighter(FormatTerminal, "no-such-style")
	out, err := h.Highlight("package main\n", "go")
	require.NoError(t, err)
	assert.Contains(t, out, "\x1b[")
}

func TestHighlightUnknownLanguage(t *testing.T) {
	h := NewHighlighter(FormatHTML, "")
	_, err := h.Highlight("x", "cobol")
	assert.ErrorIs(t, err, schema.ErrUnknownLanguage)
	_, err = h.Highlight("x", schema.LanguagePlaintext)
	assert.ErrorIs(t, err, schema.ErrUnknownLanguage)
}
