package detect

import "unicode/utf8"

const (
	// MinRelevance is the absolute relevance a detection must reach.
	MinRelevance = 5.0
	// MinRelevancePerChar is the density a detection must exceed.
	MinRelevancePerChar = 0.02
)

// MeetsConfidenceThreshold decides whether a detected language is trusted.
// Empty text never passes. Length is counted in runes.
func MeetsConfidenceThreshold(relevance float64, text string) bool {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return false
	}
	return relevance >= MinRelevance && relevance/float64(n) > MinRelevancePerChar
}

// PerChar returns relevance divided by the rune length of text, or 0 for
// empty text.
func PerChar(relevance float64, text string) float64 {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return relevance / float64(n)
}
