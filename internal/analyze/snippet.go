package analyze

import (
	"strings"
	"unicode/utf8"
)

// DefaultContextRadius is the number of characters kept on each side of a
// misspelling when building its context snippet.
const DefaultContextRadius = 30

// Snippet returns the whitespace-normalized window of text around [start, end).
// The window extends radius runes on each side, clamped to the text bounds.
func Snippet(text string, start, end, radius int) string {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		return ""
	}
	if radius < 0 {
		radius = 0
	}
	from := start
	for i := 0; i < radius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for i := 0; i < radius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return Normalize(text[from:to])
}

// Normalize trims s and collapses every internal whitespace run to one space.
func Normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
