package detect

import (
	"strings"
	"testing"

	"github.com/alecthomas/chroma/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pkt.systems/blackboard/schema"
)

func TestMeetsConfidenceThreshold(t *testing.T) {
	testCases := []struct {
		name      string
		relevance float64
		text      string
		want      bool
	}{
		{name: "empty text never passes", relevance: 100, text: "", want: false},
		{name: "dense enough", relevance: 8, text: strings.Repeat("x", 24), want: true},
		{name: "below absolute minimum", relevance: 4, text: strings.Repeat("x", 24), want: false},
		{name: "exactly minimum", relevance: 5, text: strings.Repeat("x", 100), want: true},
		{name: "too sparse", relevance: 5, text: strings.Repeat("x", 300), want: false},
		{name: "density must exceed ratio", relevance: 5, text: strings.Repeat("x", 250), want: false},
		{name: "runes not bytes", relevance: 5, text: strings.Repeat("é", 200), want: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, MeetsConfidenceThreshold(tc.relevance, tc.text))
		})
	}
}

func TestPerChar(t *testing.T) {
	assert.Equal(t, 0.0, PerChar(3, ""))
	assert.InDelta(t, 0.5, PerChar(2, "abcd"), 1e-9)
}

func TestScoreWeights(t *testing.T) {
	goLang, _ := Lookup("go")
	tally := Score(goLang, []chroma.Token{
		{Type: chroma.KeywordDeclaration, Value: "func"},
		{Type: chroma.Text, Value: " "},
		{Type: chroma.NameFunction, Value: "main"},
		{Type: chroma.Punctuation, Value: "()"},
		{Type: chroma.Text, Value: " "},
		{Type: chroma.Punctuation, Value: "{"},
		{Type: chroma.Keyword, Value: "for"},
		{Type: chroma.NameBuiltin, Value: "len"},
		{Type: chroma.NameBuiltin, Value: "String"},
		{Type: chroma.KeywordType, Value: "int"},
		{Type: chroma.Operator, Value: ":="},
		{Type: chroma.Punctuation, Value: "}"},
	})
	assert.False(t, tally.Illegal)
	// func+main 3, for 0.5, len 1.
	assert.Equal(t, 4.5, tally.Lexical)
	assert.Equal(t, 1.5, tally.Structure)
	assert.Equal(t, 6.0, tally.Relevance())
}

func TestScoreCommonWordsAndNoStructure(t *testing.T) {
	pyLang, _ := Lookup("python")
	tally := Score(pyLang, []chroma.Token{
		{Type: chroma.Keyword, Value: "if"},
		{Type: chroma.Keyword, Value: "and"},
		{Type: chroma.Keyword, Value: "else"},
		{Type: chroma.Keyword, Value: ":"},
		{Type: chroma.NameBuiltin, Value: "name"},
	})
	// if 0.5 and else 1, halved for lack of any code symbol.
	assert.Equal(t, 0.75, tally.Lexical)
	assert.Equal(t, 0.0, tally.Structure)
}

func TestScoreTagsOnlyForTagGrammars(t *testing.T) {
	tokens := []chroma.Token{
		{Type: chroma.NameTag, Value: "contact"},
		{Type: chroma.Text, Value: " "},
		{Type: chroma.NameTag, Value: "me"},
		{Type: chroma.NameAttribute, Value: "class"},
	}
	css, _ := Lookup("css")
	assert.Equal(t, 0.0, Score(css, tokens).Relevance())
	html, _ := Lookup("html")
	assert.Equal(t, 2.5, Score(html, tokens).Relevance())
}

func TestScoreDecoratorsAtLineStart(t *testing.T) {
	tokens := []chroma.Token{
		{Type: chroma.NameDecorator, Value: "@cache"},
		{Type: chroma.Text, Value: "\n"},
		{Type: chroma.Name, Value: "a"},
		{Type: chroma.NameDecorator, Value: "@b"},
		{Type: chroma.Operator, Value: "="},
	}
	py, _ := Lookup("python")
	assert.Equal(t, 1.0, Score(py, tokens).Lexical)
	css, _ := Lookup("css")
	assert.Equal(t, 0.0, Score(css, tokens).Lexical)
}

func TestScoreCaseInsensitiveKeywords(t *testing.T) {
	sql, _ := Lookup("sql")
	tally := Score(sql, []chroma.Token{
		{Type: chroma.Keyword, Value: "SELECT"},
		{Type: chroma.Keyword, Value: "from"},
		{Type: chroma.Punctuation, Value: ";"},
	})
	assert.Equal(t, 1.5, tally.Lexical)
}

func TestScoreIllegalToken(t *testing.T) {
	goLang, _ := Lookup("go")
	tally := Score(goLang, []chroma.Token{
		{Type: chroma.Keyword, Value: "func"},
		{Type: chroma.Error, Value: "$"},
	})
	assert.True(t, tally.Illegal)
}

func TestDetectProseFailsGate(t *testing.T) {
	d := New()
	testCases := map[string]string{
		"email":     "contact me at a@b.com",
		"url":       "see the docs at https://example.com/path for more details",
		"bare url":  "see https://example.com",
		"greeting":  "hello world",
		"sentences": "The meeting moved to Thursday afternoon. Please bring the quarterly numbers and\nany notes you have on the vendor contract, if it is not already signed.\n",
		"thanks":    "I think we should go for it. Let me know if you need anything else from me,\nand thanks again for all the help on this one.\n",
		"mail and url": "Hi Sam, the report is at https://example.com/reports/q3 and the raw data\n" +
			"is on the shared drive. Ping me at sam@example.org if you cannot open it.\n",
		"recipe": "Preheat the oven to 200 degrees. Mix the flour, sugar and butter in a large bowl,\n" +
			"then add two eggs and stir until smooth. Bake for 25 minutes.\n",
		"standup": "Notes from standup\nAlice: finished the import job, waiting on review\n" +
			"Bob: looking into the login bug, might need help\nCarol: out tomorrow\n",
		"else": "Let me know if you need anything else from me, and thanks for all the help with this.",
	}
	for name, text := range testCases {
		t.Run(name, func(t *testing.T) {
			result := d.Detect(text)
			assert.False(t, MeetsConfidenceThreshold(result.Relevance, text),
				"detected %s at %.2f", result.Language, result.Relevance)
		})
	}
}

func TestDetectCodeSnippets(t *testing.T) {
	d := New()
	testCases := []struct {
		name string
		text string
		want schema.LanguageID
	}{
		{name: "python function", want: "python", text: "def f(x):\n    return x + 1\n"},
		{name: "python loop", want: "python", text: "def greet(name):\n    \"\"\"Say hello.\"\"\"\n    if not name:\n        return None\n" +
			"    for part in name.split():\n        print(f\"hello {part}\")\n    return True\n"},
		{name: "python class", want: "python", text: "import os\n\nclass Config:\n    def __init__(self, path):\n        self.path = path\n\n" +
			"    def load(self):\n        with open(self.path) as fh:\n            return fh.read()\n"},
		{name: "go main", want: "go", text: "package main\n\nimport \"fmt\"\n\nfunc main() {\n\tfor i := 0; i < 3; i++ {\n\t\tfmt.Println(i)\n\t}\n}\n"},
		{name: "go method", want: "go", text: "type Server struct {\n\tAddr string\n\tmu   sync.Mutex\n}\n\n" +
			"func (s *Server) Start() error {\n\tif s.Addr == \"\" {\n\t\treturn errors.New(\"missing addr\")\n\t}\n\treturn nil\n}\n"},
		{name: "sql table", want: "sql", text: "CREATE TABLE users (\n  id INTEGER PRIMARY KEY,\n  email TEXT NOT NULL UNIQUE\n);\n"},
		{name: "sql writes", want: "sql", text: "UPDATE accounts SET balance = balance - 100 WHERE id = 42;\n" +
			"INSERT INTO audit (account_id, delta) VALUES (42, -100);\n"},
		{name: "html page", want: "html", text: "<!DOCTYPE html>\n<html>\n  <body>\n    <div class=\"box\"><p>Hello</p></div>\n  </body>\n</html>\n"},
		{name: "html fragment", want: "html", text: "<div class=\"card\">\n  <h2>Title</h2>\n  <p>Body text</p>\n</div>\n"},
		{name: "json array", want: "json", text: "[{\"id\": 1, \"ok\": true}, {\"id\": 2, \"ok\": false, \"note\": null}]\n"},
		{name: "json nested", want: "json", text: "{\"user\": {\"name\": \"ada\", \"roles\": [\"admin\"]}}\n"},
		{name: "javascript", want: "javascript", text: "const items = [1, 2, 3];\nfunction total(list) {\n  let sum = 0;\n" +
			"  for (const n of list) {\n    sum += n;\n  }\n  return sum;\n}\nconsole.log(total(items));\n"},
		{name: "css rules", want: "css", text: "body {\n  margin: 0;\n  color: #333;\n}\n.box { display: flex; padding: 4px; }\n"},
		{name: "rust", want: "rust", text: "fn main() {\n    let v: Vec<i32> = vec![1, 2, 3];\n    for x in &v {\n        println!(\"{}\", x);\n    }\n}\n"},
		{name: "bash", want: "bash", text: "#!/bin/bash\nset -euo pipefail\nfor f in *.txt; do\n  echo \"$f\"\ndone\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := d.Detect(tc.text)
			require.Equal(t, tc.want, result.Language, "second best %s", result.SecondBest.Language)
			assert.True(t, MeetsConfidenceThreshold(result.Relevance, tc.text), "relevance %.2f", result.Relevance)
		})
	}
}

func TestDetectBlank(t *testing.T) {
	d := New()
	assert.Equal(t, schema.DetectionResult{}, d.Detect(""))
	assert.Equal(t, schema.DetectionResult{}, d.Detect("  \n\t"))
}

func TestDetectShebangHint(t *testing.T) {
	d := New()
	result := d.Detect("#!/usr/bin/env python\nprint('hi')\n")
	assert.Equal(t, schema.LanguageID("python"), result.Language)
	assert.GreaterOrEqual(t, result.Relevance, hintBonus)
}

func TestDetectRestrictedLanguages(t *testing.T) {
	d := New(WithLanguages("go", "nope"))
	require.Len(t, d.languages, 1)
	result := d.Detect("package main\n\nfunc main() {\n\tvar x int\n\t_ = x\n}\n")
	assert.Equal(t, schema.LanguageID("go"), result.Language)
	assert.Greater(t, result.Relevance, 0.0)
	assert.Empty(t, result.SecondBest.Language)
}

func TestRelevanceForManualLanguage(t *testing.T) {
	d := New()
	rel, illegal := d.Relevance("package main\n\nfunc main() {\n\treturn\n}\n", "go")
	assert.False(t, illegal)
	assert.Greater(t, rel, 0.0)

	rel, illegal = d.Relevance("", "go")
	assert.False(t, illegal)
	assert.Equal(t, 0.0, rel)

	rel, _ = d.Relevance("select 1", "klingon")
	assert.Equal(t, 0.0, rel)
}

func TestLanguageLists(t *testing.T) {
	auto := AutoLanguages()
	assert.Len(t, auto, 25)
	assert.NotContains(t, auto, schema.LanguagePlaintext)

	manual := ManualLanguages()
	assert.Len(t, manual, 26)
	assert.Contains(t, manual, schema.LanguagePlaintext)
	for i := 1; i < len(manual); i++ {
		assert.Less(t, string(manual[i-1]), string(manual[i]))
	}
	assert.True(t, IsKnown("plaintext"))
	assert.True(t, IsKnown("go"))
	assert.False(t, IsKnown("cobol"))
}

func TestLexerForEveryLanguage(t *testing.T) {
	for _, id := range AutoLanguages() {
		lexer, err := LexerFor(id)
		require.NoError(t, err, "language %s", id)
		require.NotNil(t, lexer, "language %s", id)
	}
	_, err := LexerFor("cobol")
	assert.ErrorIs(t, err, schema.ErrUnknownLanguage)
}
