package detect

import (
	"sort"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"

	"pkt.systems/blackboard/schema"
)

// Language maps a language id onto the chroma lexer and the linguist name
// go-enry uses for it.
type Language struct {
	ID    schema.LanguageID
	Label string
	// Lexer is the chroma alias.
	Lexer string
	// Enry is the linguist language name.
	Enry string
	// Auto marks languages eligible for automatic detection.
	Auto bool
	// Tags marks grammars whose element and key names are the signal.
	Tags bool
	// CaseInsensitive grammars only fully count upper-case keywords.
	CaseInsensitive bool
	// Selectors marks grammars whose decorator tokens are selectors.
	Selectors bool
	// Extends names the language this one is a superset of.
	Extends schema.LanguageID
}

var languageTable = []Language{
	{ID: "javascript", Label: "JavaScript", Lexer: "javascript", Enry: "JavaScript", Auto: true},
	{ID: "typescript", Label: "TypeScript", Lexer: "typescript", Enry: "TypeScript", Auto: true, Extends: "javascript"},
	{ID: "python", Label: "Python", Lexer: "python", Enry: "Python", Auto: true},
	{ID: "html", Label: "HTML", Lexer: "html", Enry: "HTML", Auto: true, Tags: true},
	{ID: "css", Label: "CSS", Lexer: "css", Enry: "CSS", Auto: true, Selectors: true},
	{ID: "json", Label: "JSON", Lexer: "json", Enry: "JSON", Auto: true, Tags: true},
	{ID: "bash", Label: "Bash", Lexer: "bash", Enry: "Shell", Auto: true},
	{ID: "shell", Label: "Shell Session", Lexer: "shell-session", Enry: "ShellSession", Auto: true},
	{ID: "sql", Label: "SQL", Lexer: "sql", Enry: "SQL", Auto: true, CaseInsensitive: true},
	{ID: "go", Label: "Go", Lexer: "go", Enry: "Go", Auto: true},
	{ID: "rust", Label: "Rust", Lexer: "rust", Enry: "Rust", Auto: true},
	{ID: "java", Label: "Java", Lexer: "java", Enry: "Java", Auto: true},
	{ID: "c", Label: "C", Lexer: "c", Enry: "C", Auto: true},
	{ID: "cpp", Label: "C++", Lexer: "cpp", Enry: "C++", Auto: true, Extends: "c"},
	{ID: "ruby", Label: "Ruby", Lexer: "ruby", Enry: "Ruby", Auto: true},
	{ID: "php", Label: "PHP", Lexer: "php", Enry: "PHP", Auto: true},
	{ID: "swift", Label: "Swift", Lexer: "swift", Enry: "Swift", Auto: true},
	{ID: "kotlin", Label: "Kotlin", Lexer: "kotlin", Enry: "Kotlin", Auto: true},
	{ID: "yaml", Label: "YAML", Lexer: "yaml", Enry: "YAML", Auto: true, Tags: true},
	{ID: "markdown", Label: "Markdown", Lexer: "markdown", Enry: "Markdown", Auto: true},
	{ID: "scala", Label: "Scala", Lexer: "scala", Enry: "Scala", Auto: true},
	{ID: "haskell", Label: "Haskell", Lexer: "haskell", Enry: "Haskell", Auto: true},
	{ID: "lua", Label: "Lua", Lexer: "lua", Enry: "Lua", Auto: true},
	{ID: "r", Label: "R", Lexer: "r", Enry: "R", Auto: true},
	{ID: "perl", Label: "Perl", Lexer: "perl", Enry: "Perl", Auto: true},
}

var (
	languagesByID   = map[schema.LanguageID]Language{}
	languagesByEnry = map[string][]schema.LanguageID{}
)

func init() {
	for _, lang := range languageTable {
		languagesByID[lang.ID] = lang
		languagesByEnry[lang.Enry] = append(languagesByEnry[lang.Enry], lang.ID)
	}
}

// Lookup returns the table entry for a language id.
func Lookup(id schema.LanguageID) (Language, bool) {
	lang, ok := languagesByID[id]
	return lang, ok
}

// AutoLanguages returns the languages automatic detection may choose, in
// table order.
func AutoLanguages() []schema.LanguageID {
	out := make([]schema.LanguageID, 0, len(languageTable))
	for _, lang := range languageTable {
		if lang.Auto {
			out = append(out, lang.ID)
		}
	}
	return out
}

// ManualLanguages returns the languages offered for manual override,
// alphabetically, including plaintext.
func ManualLanguages() []schema.LanguageID {
	out := make([]schema.LanguageID, 0, len(languageTable)+1)
	for _, lang := range languageTable {
		out = append(out, lang.ID)
	}
	out = append(out, schema.LanguagePlaintext)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// IsKnown reports whether id names a grammar or plaintext.
func IsKnown(id schema.LanguageID) bool {
	if id.IsPlaintext() {
		return true
	}
	_, ok := languagesByID[id]
	return ok
}

// LexerFor returns the chroma lexer for a language id.
func LexerFor(id schema.LanguageID) (chroma.Lexer, error) {
	lang, ok := languagesByID[id]
	if !ok {
		return nil, schema.ErrUnknownLanguage
	}
	lexer := lexers.Get(lang.Lexer)
	if lexer == nil {
		return nil, schema.ErrUnknownLanguage
	}
	return lexer, nil
}

func fromEnry(names []string) []schema.LanguageID {
	var out []schema.LanguageID
	for _, name := range names {
		out = append(out, languagesByEnry[name]...)
	}
	return out
}
