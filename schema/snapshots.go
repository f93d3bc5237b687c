package schema

// TabSnapshot is a read-only view of tab state for transports.
type TabSnapshot struct {
	ID       TabID      `json:"id"`
	Name     TabName    `json:"name"`
	Language LanguageID `json:"language,omitempty"`
	Length   int        `json:"length"`
	Active   bool       `json:"active"`
}

// LanguageScore pairs a language with its detector relevance.
type LanguageScore struct {
	Language  LanguageID `json:"language"`
	Relevance float64    `json:"relevance"`
}

// DetectionResult is the outcome of one detector run.
type DetectionResult struct {
	Language   LanguageID    `json:"language"`
	Relevance  float64       `json:"relevance"`
	SecondBest LanguageScore `json:"second_best"`
	// Illegal is set when the winning grammar hit input it cannot lex.
	Illegal bool `json:"illegal"`
}

// Frame is the output of one render cycle for the active tab.
type Frame struct {
	TabID     TabID      `json:"tab_id"`
	Seq       uint64     `json:"seq"`
	Mode      RenderMode `json:"mode"`
	Markup    string     `json:"markup"`
	Class     string     `json:"class,omitempty"`
	Indicator string     `json:"indicator"`
	Language  LanguageID `json:"language,omitempty"`
	HasLinks  bool       `json:"has_links"`
}

// Metrics captures detector diagnostics for developer mode.
type Metrics struct {
	Language         LanguageID `json:"language,omitempty"`
	Relevance        float64    `json:"relevance"`
	RelevancePerChar float64    `json:"relevance_per_char"`
	MeetsThreshold   bool       `json:"meets_threshold"`
	SecondBest       LanguageID `json:"second_best,omitempty"`
	SecondRelevance  float64    `json:"second_relevance"`
	SecondPerChar    float64    `json:"second_per_char"`
	Illegal          bool       `json:"illegal"`
	CharCount        int        `json:"char_count"`
}

// FormatterStatus describes the formatter offered for the active tab.
type FormatterStatus struct {
	Language  LanguageID `json:"language,omitempty"`
	Formatter string     `json:"formatter,omitempty"`
	Available bool       `json:"available"`
	// Offered is true when the buffer is non-blank and a formatter exists.
	Offered bool   `json:"offered"`
	Hint    string `json:"hint,omitempty"`
}
