package detect

import (
	"slices"
	"sort"

	"github.com/go-enry/go-enry/v2"

	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// hintBonus is added to a language named by a shebang or editor modeline.
const hintBonus = 10.0

// Detector scores text against a fixed set of grammars.
type Detector struct {
	languages []schema.LanguageID
	log       pslog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLanguages restricts detection to the given languages. Unknown ids are
// ignored.
func WithLanguages(ids ...schema.LanguageID) Option {
	return func(d *Detector) {
		var out []schema.LanguageID
		for _, id := range ids {
			if _, ok := Lookup(id); ok {
				out = append(out, id)
			}
		}
		d.languages = out
	}
}

// WithLogger sets the logger for lexer failures.
func WithLogger(logger pslog.Logger) Option {
	return func(d *Detector) {
		d.log = logger
	}
}

// New constructs a Detector over the automatic-detection allow-list.
func New(opts ...Option) *Detector {
	d := &Detector{languages: AutoLanguages()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type candidate struct {
	id    schema.LanguageID
	tally Tally
}

// Detect returns the best and runner-up language for text. Grammars are
// ranked on their lexical score. A grammar that hits illegal input scores
// zero. Illegal on the result reports whether the highest raw-scoring
// grammar was discarded that way.
func (d *Detector) Detect(text string) schema.DetectionResult {
	if schema.IsBlank(text) {
		return schema.DetectionResult{}
	}
	content := []byte(text)
	hinted := map[schema.LanguageID]bool{}
	for _, id := range fromEnry(enry.GetLanguagesByShebang("", content, nil)) {
		hinted[id] = true
	}
	for _, id := range fromEnry(enry.GetLanguagesByModeline("", content, nil)) {
		hinted[id] = true
	}

	scored := make([]candidate, 0, len(d.languages))
	var rawBest Tally
	for _, id := range d.languages {
		tally := d.score(text, id)
		if tally.Relevance() > rawBest.Relevance() {
			rawBest = tally
		}
		if tally.Illegal {
			tally = Tally{Illegal: true}
		}
		if hinted[id] {
			tally.Lexical += hintBonus
		}
		scored = append(scored, candidate{id: id, tally: tally})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].tally.Lexical > scored[j].tally.Lexical
	})
	scored = breakTie(content, scored)

	result := schema.DetectionResult{Illegal: rawBest.Illegal}
	if len(scored) > 0 && scored[0].tally.Relevance() > 0 {
		result.Language = scored[0].id
		result.Relevance = scored[0].tally.Relevance()
	}
	if len(scored) > 1 && scored[1].tally.Relevance() > 0 {
		result.SecondBest = schema.LanguageScore{Language: scored[1].id, Relevance: scored[1].tally.Relevance()}
	}
	return result
}

// Relevance scores text against one grammar, as used for a manual override.
func (d *Detector) Relevance(text string, id schema.LanguageID) (float64, bool) {
	if schema.IsBlank(text) {
		return 0, false
	}
	tally := d.score(text, id)
	if tally.Illegal {
		return 0, true
	}
	return tally.Relevance(), false
}

func (d *Detector) score(text string, id schema.LanguageID) (tally Tally) {
	defer func() {
		if r := recover(); r != nil {
			if d.log != nil {
				d.log.Warn("detect lexer panic", "language", id, "panic", r)
			}
			tally = Tally{Illegal: true}
		}
	}()
	lang, ok := Lookup(id)
	if !ok {
		return Tally{}
	}
	lexer, err := LexerFor(id)
	if err != nil {
		return Tally{}
	}
	it, err := lexer.Tokenise(nil, text)
	if err != nil {
		if d.log != nil {
			d.log.Debug("detect tokenise failed", "language", id, "err", err)
		}
		return Tally{Illegal: true}
	}
	return Score(lang, it.Tokens())
}

// breakTie settles candidates that share the top lexical score. A superset
// language yields to its base, then the enry classifier picks among the
// rest.
func breakTie(content []byte, scored []candidate) []candidate {
	if len(scored) < 2 || scored[0].tally.Lexical <= 0 || scored[0].tally.Lexical != scored[1].tally.Lexical {
		return scored
	}
	top := scored[0].tally.Lexical
	var tied []schema.LanguageID
	for _, c := range scored {
		if c.tally.Lexical != top {
			break
		}
		tied = append(tied, c.id)
	}
	var group []schema.LanguageID
	for _, id := range tied {
		lang, _ := Lookup(id)
		if lang.Extends != "" && slices.Contains(tied, lang.Extends) {
			continue
		}
		group = append(group, id)
	}

	winner := group[0]
	if len(group) > 1 {
		byEnry := map[string]schema.LanguageID{}
		var names []string
		for _, id := range group {
			lang, _ := Lookup(id)
			if _, seen := byEnry[lang.Enry]; seen {
				continue
			}
			byEnry[lang.Enry] = id
			names = append(names, lang.Enry)
		}
		if ranked := enry.GetLanguagesByClassifier("", content, names); len(ranked) > 0 {
			if id, ok := byEnry[ranked[0]]; ok {
				winner = id
			}
		}
	}
	out := make([]candidate, 0, len(scored))
	for _, c := range scored {
		if c.id == winner {
			out = append(out, c)
		}
	}
	for _, c := range scored {
		if c.id != winner {
			out = append(out, c)
		}
	}
	return out
}
