package report

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Highlighter wraps every exact occurrence of a word inside a snippet.
type Highlighter struct {
	Prefix string
	Suffix string
}

// Mark returns snippet with each case-sensitive occurrence of word wrapped in
// the highlighter's markers. Occurrences embedded in a longer token ("Helo" in
// "Helot") are skipped unless no standalone occurrence exists, in which case
// every raw occurrence is marked.
func (h Highlighter) Mark(snippet, word string) string {
	if word == "" {
		return snippet
	}
	matches := findAll(snippet, word)
	if len(matches) == 0 {
		return snippet
	}

	standalone := make([][2]int, 0, len(matches))
	for _, m := range matches {
		if isBoundary(snippet, m[0], m[1]) {
			standalone = append(standalone, m)
		}
	}
	if len(standalone) > 0 {
		matches = standalone
	}

	var b strings.Builder
	b.Grow(len(snippet) + len(matches)*(len(h.Prefix)+len(h.Suffix)))
	last := 0
	for _, m := range matches {
		b.WriteString(snippet[last:m[0]])
		b.WriteString(h.Prefix)
		b.WriteString(snippet[m[0]:m[1]])
		b.WriteString(h.Suffix)
		last = m[1]
	}
	b.WriteString(snippet[last:])
	return b.String()
}

// findAll returns the byte ranges of every non-overlapping occurrence of word,
// scanning left to right.
func findAll(s, word string) [][2]int {
	var matches [][2]int
	for offset := 0; offset <= len(s)-len(word); {
		i := strings.Index(s[offset:], word)
		if i < 0 {
			break
		}
		start := offset + i
		matches = append(matches, [2]int{start, start + len(word)})
		offset = start + len(word)
	}
	return matches
}

func isBoundary(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
