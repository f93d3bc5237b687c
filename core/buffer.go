package core

import (
	"unicode/utf8"

	"pkt.systems/blackboard/schema"
)

// applyWrite merges an external write into the current buffer text.
func applyWrite(current, text string, mode schema.WriteMode) string {
	if mode == schema.WriteReplace {
		return text
	}
	return current + text
}

// mapCursor keeps the cursor at the same relative position after the text
// length changes. Offsets are in runes.
func mapCursor(cursor int, before, after string) int {
	oldLen := utf8.RuneCountInString(before)
	newLen := utf8.RuneCountInString(after)
	if cursor <= 0 || oldLen == 0 {
		return 0
	}
	if cursor >= oldLen {
		return newLen
	}
	mapped := int(float64(cursor) / float64(oldLen) * float64(newLen))
	if mapped > newLen {
		mapped = newLen
	}
	return mapped
}
