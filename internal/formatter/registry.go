// Package formatter provides the per-language code formatters offered by
// the editor: external tools probed at startup and in-process json/yaml.
package formatter

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"pkt.systems/blackboard/core"
	"pkt.systems/blackboard/schema"
	"pkt.systems/pslog"
)

// Install hints shown when a tool is missing.
const (
	RuffHint      = "https://docs.astral.sh/ruff/installation/"
	SQLFormatHint = "uv tool install --from sqlparse sqlformat (or: pip install sqlparse)"
	PrettierHint  = "npm install -g prettier"
)

// DefaultSearchPaths are searched before $PATH for external tools.
var DefaultSearchPaths = []string{
	"~/.local/bin",
	"~/.cargo/bin",
	"~/.pyenv/shims",
	"/usr/local/bin",
	"/opt/homebrew/bin",
}

const probeTimeout = 5 * time.Second

// prettierParsers maps languages to prettier --parser values.
var prettierParsers = map[schema.LanguageID]string{
	"javascript": "babel",
	"typescript": "typescript",
	"html":       "html",
	"css":        "css",
	"markdown":   "markdown",
}

// Config selects the external commands and where to find them.
type Config struct {
	SearchPaths []string
	Ruff        string
	SQLFormat   string
	Prettier    string
}

// Registry maps languages to formatters.
type Registry struct {
	byLang map[schema.LanguageID]core.Formatter
	execs  []*Exec
}

// NewRegistry builds the registry. External tools are not probed until
// Probe or their first Available call.
func NewRegistry(cfg Config) *Registry {
	paths := cfg.SearchPaths
	if len(paths) == 0 {
		paths = DefaultSearchPaths
	}
	r := &Registry{byLang: make(map[schema.LanguageID]core.Formatter)}

	ruff := NewExec("ruff", cfg.Ruff, []string{"format", "-"}, RuffHint, paths)
	sqlformat := NewExec("sqlformat", cfg.SQLFormat, []string{"-r", "-k", "upper", "-"}, SQLFormatHint, paths)
	r.byLang["python"] = ruff
	r.byLang["sql"] = sqlformat
	r.execs = append(r.execs, ruff, sqlformat)

	for lang, parser := range prettierParsers {
		p := NewExec("prettier", cfg.Prettier, prettierArgs(parser), PrettierHint, paths)
		r.byLang[lang] = p
		r.execs = append(r.execs, p)
	}

	r.byLang["json"] = JSON{}
	r.byLang["yaml"] = YAML{}
	return r
}

func prettierArgs(parser string) []string {
	return []string{
		"--parser", parser,
		"--tab-width", "2",
		"--single-quote",
		"--trailing-comma", "es5",
		"--print-width", "100",
	}
}

// For returns the formatter registered for lang.
func (r *Registry) For(lang schema.LanguageID) (core.Formatter, bool) {
	if r == nil {
		return nil, false
	}
	f, ok := r.byLang[lang]
	return f, ok
}

// Languages lists the languages that have a formatter.
func (r *Registry) Languages() []schema.LanguageID {
	out := make([]schema.LanguageID, 0, len(r.byLang))
	for lang := range r.byLang {
		out = append(out, lang)
	}
	return out
}

// Probe checks every external tool concurrently. Missing tools are not an
// error; they are reported as unavailable with an install hint.
func (r *Registry) Probe(ctx context.Context) error {
	log := pslog.Ctx(ctx)
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	for _, e := range r.execs {
		g.Go(func() error {
			_ = e.Probe(gctx)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	available := 0
	for _, e := range r.execs {
		if e.Available(ctx) {
			available++
		}
	}
	log.Info("formatter probe complete", "external", len(r.execs), "available", available)
	return nil
}
