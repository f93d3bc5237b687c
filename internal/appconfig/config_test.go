package appconfig

import (
	"testing"
	"time"

	"pkt.systems/blackboard/internal/kv"
)

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	if cfg.Control.Addr != DefaultControlAddr || !cfg.Control.Enabled {
		t.Fatalf("unexpected control defaults: %+v", cfg.Control)
	}
	if cfg.Storage.Driver != string(kv.DriverFile) || cfg.Storage.Path == "" {
		t.Fatalf("unexpected storage defaults: %+v", cfg.Storage)
	}
	if cfg.Editor.DebounceMS != 300 || cfg.Editor.HighlightStyle != "monokai" {
		t.Fatalf("unexpected editor defaults: %+v", cfg.Editor)
	}
	if len(cfg.Formatters.SearchPaths) == 0 || cfg.Formatters.Ruff != "ruff" {
		t.Fatalf("unexpected formatter defaults: %+v", cfg.Formatters)
	}
}

func TestServiceConfigConversion(t *testing.T) {
	cfg := Config{Editor: EditorConfig{DebounceMS: 150}}
	if got := cfg.ServiceConfig().DebounceInterval; got != 150*time.Millisecond {
		t.Fatalf("expected 150ms, got %v", got)
	}
	cfg.Editor.DebounceMS = 0
	if got := cfg.ServiceConfig().DebounceInterval; got != 0 {
		t.Fatalf("expected zero to defer to service default, got %v", got)
	}
	cfg.Formatters = FormattersConfig{SearchPaths: []string{"/x"}, Prettier: "/opt/prettier"}
	fc := cfg.FormatterConfig()
	if fc.Prettier != "/opt/prettier" || len(fc.SearchPaths) != 1 {
		t.Fatalf("unexpected formatter config: %+v", fc)
	}
}
