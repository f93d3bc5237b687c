package schema

import "testing"

func TestParseWriteMode(t *testing.T) {
	cases := map[string]WriteMode{
		"replace":   WriteReplace,
		" Replace ": WriteReplace,
		"append":    WriteAppend,
		"":          WriteAppend,
		"bogus":     WriteAppend,
	}
	for input, want := range cases {
		if got := ParseWriteMode(input); got != want {
			t.Fatalf("ParseWriteMode(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestIsBlank(t *testing.T) {
	if !IsBlank("") || !IsBlank(" \n\t ") {
		t.Fatalf("expected whitespace to be blank")
	}
	if IsBlank(" x ") {
		t.Fatalf("expected text to be non-blank")
	}
}

func TestLanguageIDPredicates(t *testing.T) {
	if !LanguageID("").IsAuto() {
		t.Fatalf("expected empty language to be auto")
	}
	if LanguageID("go").IsAuto() {
		t.Fatalf("expected go to be manual")
	}
	if !LanguagePlaintext.IsPlaintext() {
		t.Fatalf("expected plaintext predicate")
	}
}

func TestNormalizeServiceConfig(t *testing.T) {
	cfg, err := NormalizeServiceConfig(ServiceConfig{})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.DebounceInterval != DefaultDebounceInterval {
		t.Fatalf("expected default interval, got %v", cfg.DebounceInterval)
	}
	if _, err := NormalizeServiceConfig(ServiceConfig{DebounceInterval: -1}); err == nil {
		t.Fatalf("expected error for negative interval")
	}
}
