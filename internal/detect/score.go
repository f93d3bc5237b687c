package detect

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
)

// Words that grammars tag as keywords or builtins but that are just as
// likely in prose or as plain identifiers. They carry no weight.
var commonWords = map[string]struct{}{
	"of": {}, "and": {}, "or": {}, "then": {}, "is": {}, "as": {}, "to": {},
	"at": {}, "by": {}, "on": {}, "the": {}, "a": {}, "an": {}, "it": {},
	"parent": {}, "list": {}, "value": {}, "name": {},
}

// Keywords that read as English but still lean towards code.
var softWords = map[string]struct{}{
	"for": {}, "in": {}, "if": {}, "not": {},
}

var (
	wordPattern   = regexp.MustCompile(`^[A-Za-z_][\w\-]*$`)
	symbolPattern = regexp.MustCompile(`^[{}\[\]();=<>+*&|%^~]+$`)
)

// Tally is the score of one grammar over a text. Lexical counts keywords,
// declarations, tags and similar grammar-specific tokens and ranks grammars
// against each other. Structure counts code punctuation and only adds to
// the winner's relevance.
type Tally struct {
	Lexical   float64
	Structure float64
	Illegal   bool
}

// Relevance is the combined score. Structure alone never makes text code.
func (t Tally) Relevance() float64 {
	if t.Lexical <= 0 {
		return 0
	}
	return t.Lexical + t.Structure
}

// Score weighs the tokens lang's lexer produced. Any error token marks the
// grammar illegal. Text without a single code symbol has its lexical score
// halved unless the grammar is tag based.
func Score(lang Language, tokens []chroma.Token) Tally {
	var tally Tally
	sig := make([]chroma.Token, 0, len(tokens))
	lineStart := make([]bool, 0, len(tokens))
	atLineStart := true
	for _, tok := range tokens {
		if tok.Type == chroma.Error {
			tally.Illegal = true
		}
		if strings.TrimSpace(tok.Value) != "" {
			sig = append(sig, tok)
			lineStart = append(lineStart, atLineStart)
		}
		switch i := strings.LastIndexByte(tok.Value, '\n'); {
		case i >= 0:
			atLineStart = strings.TrimSpace(tok.Value[i+1:]) == ""
		case strings.TrimSpace(tok.Value) != "":
			atLineStart = false
		}
	}

	declaring := false
	var prev chroma.TokenType
	for i, tok := range sig {
		value := strings.TrimSpace(tok.Value)
		var next chroma.TokenType
		if i+1 < len(sig) {
			next = sig[i+1].Type
		}
		pair := false
		switch t := tok.Type; {
		case t == chroma.CommentPreproc, t == chroma.CommentHashbang:
			tally.Lexical += 2
		case isKeyword(t), t == chroma.NameBuiltin, t == chroma.NameBuiltinPseudo:
			w := keywordWeight(lang, value)
			if !isKeyword(t) && startsUpper(value) {
				w = 0
			}
			if _, soft := softWords[strings.ToLower(value)]; w > 0 && !soft && isKeyword(t) && declares(t, next) {
				w, pair = 2, true
			}
			tally.Lexical += w
		case t == chroma.NameFunction, t == chroma.NameClass, t == chroma.Name, t == chroma.NameOther:
			if declaring || (prev == chroma.KeywordType && (t == chroma.NameFunction || t == chroma.NameClass)) {
				tally.Lexical++
			}
		case t == chroma.NameTag:
			if lang.Tags {
				tally.Lexical++
			}
		case t == chroma.NameAttribute:
			if lang.Tags {
				tally.Lexical += 0.5
			}
		case t == chroma.NameDecorator:
			if !lang.Selectors && lineStart[i] {
				tally.Lexical++
			}
		case t == chroma.GenericHeading, t == chroma.GenericSubheading:
			tally.Lexical++
		case t == chroma.GenericStrong, t == chroma.GenericEmph:
			tally.Lexical += 0.5
		case t.InCategory(chroma.Punctuation), t.InCategory(chroma.Operator):
			if symbolPattern.MatchString(value) {
				tally.Structure += 0.5
			}
		}
		prev, declaring = tok.Type, pair
	}
	if tally.Structure == 0 && !lang.Tags {
		tally.Lexical /= 2
	}
	return tally
}

// isKeyword excludes type keywords: several grammars tag any capitalised
// word as a type.
func isKeyword(t chroma.TokenType) bool {
	return t.InCategory(chroma.Keyword) && t != chroma.KeywordType
}

func keywordWeight(lang Language, value string) float64 {
	word := strings.ToLower(value)
	if !wordPattern.MatchString(value) {
		return 0
	}
	if _, ok := commonWords[word]; ok {
		return 0
	}
	w := 1.0
	if _, ok := softWords[word]; ok {
		w = 0.5
	}
	if lang.CaseInsensitive && value != strings.ToUpper(value) {
		w /= 2
	}
	return w
}

// declares reports a keyword that introduces a named function, class or
// binding.
func declares(t, next chroma.TokenType) bool {
	switch next {
	case chroma.NameFunction, chroma.NameClass:
		return true
	case chroma.Name, chroma.NameOther:
		return t == chroma.KeywordDeclaration
	}
	return false
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
