package core

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"pkt.systems/blackboard/schema"
)

// MetricsLines formats developer metrics for display, one field per line.
func MetricsLines(m schema.Metrics) []string {
	lang := "-"
	if m.Language != "" {
		lang = string(m.Language)
	}
	threshold := "✗ fail"
	if m.MeetsThreshold {
		threshold = "✓ pass"
	}
	second := "-"
	if m.SecondBest != "" {
		second = fmt.Sprintf("%s (%.1f, %.4f)", m.SecondBest, m.SecondRelevance, m.SecondPerChar)
	}
	illegal := "no"
	if m.Illegal {
		illegal = "yes"
	}
	return []string{
		"language: " + lang,
		fmt.Sprintf("relevance: %.1f", m.Relevance),
		fmt.Sprintf("per char: %.4f", m.RelevancePerChar),
		"threshold: " + threshold,
		"second best: " + second,
		"illegal: " + illegal,
		"chars: " + humanize.Comma(int64(m.CharCount)),
	}
}
