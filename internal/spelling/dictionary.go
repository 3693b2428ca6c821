// Package spelling provides a word-list backed misspelling checker.
package spelling

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// DefaultDictionaryPath is the system word list consulted when none is configured.
const DefaultDictionaryPath = "/usr/share/dict/words"

// Config tunes which tokens are considered.
type Config struct {
	// MinWordLength skips tokens shorter than this many runes.
	MinWordLength int
	// ExtraWords are accepted in addition to the dictionary (brand names, jargon).
	ExtraWords []string
}

// Dictionary implements crawler.Checker against a set of known words.
// Lookups are case-folded. It is safe for concurrent use once built.
type Dictionary struct {
	words  map[string]struct{}
	minLen int
}

// Load reads a newline-separated word list from path.
func Load(path string, cfg Config) (*Dictionary, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only handle

	return New(f, cfg)
}

// New builds a Dictionary from r, one word per line. Blank lines and lines
// starting with '#' are ignored.
func New(r io.Reader, cfg Config) (*Dictionary, error) {
	if cfg.MinWordLength <= 0 {
		cfg.MinWordLength = 2
	}
	folder := cases.Fold()
	d := &Dictionary{
		words:  make(map[string]struct{}),
		minLen: cfg.MinWordLength,
	}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		d.words[folder.String(line)] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}
	for _, w := range cfg.ExtraWords {
		if w = strings.TrimSpace(w); w != "" {
			d.words[folder.String(w)] = struct{}{}
		}
	}
	if len(d.words) == 0 {
		return nil, fmt.Errorf("dictionary is empty")
	}
	return d, nil
}

// Size returns the number of distinct folded words.
func (d *Dictionary) Size() int {
	return len(d.words)
}

// Known reports whether word is in the dictionary.
func (d *Dictionary) Known(word string) bool {
	return d.known(cases.Fold(), word)
}

// Check returns the spans of every unknown token in text, in text order.
func (d *Dictionary) Check(text string) []crawler.Span {
	// Casers are stateful; each call gets its own.
	folder := cases.Fold()
	var spans []crawler.Span
	for _, tok := range Tokenize(text) {
		word := text[tok.Start:tok.End]
		if utf8.RuneCountInString(word) < d.minLen {
			continue
		}
		if !d.known(folder, word) {
			spans = append(spans, tok)
		}
	}
	return spans
}

func (d *Dictionary) known(folder cases.Caser, word string) bool {
	folded := folder.String(word)
	if _, ok := d.words[folded]; ok {
		return true
	}
	// Accept possessives of known words.
	for _, suffix := range []string{"'s", "’s"} {
		if base, ok := strings.CutSuffix(folded, suffix); ok {
			if _, found := d.words[base]; found {
				return true
			}
		}
	}
	return false
}

// Tokenize splits text into letter runs. Apostrophes are kept when they sit
// between letters ("don't"). Tokens containing digits are dropped.
func Tokenize(text string) []crawler.Span {
	var (
		spans    []crawler.Span
		start    = -1
		hasDigit bool
	)
	flush := func(end int) {
		if start >= 0 && !hasDigit {
			spans = append(spans, crawler.Span{Start: start, End: end})
		}
		start = -1
		hasDigit = false
	}
	for i, r := range text {
		switch {
		case unicode.IsLetter(r):
			if start < 0 {
				start = i
			}
		case unicode.IsDigit(r):
			if start < 0 {
				start = i
			}
			hasDigit = true
		case isApostrophe(r) && start >= 0 && nextIsLetter(text, i+utf8.RuneLen(r)):
		default:
			flush(i)
		}
	}
	flush(len(text))
	return spans
}

func isApostrophe(r rune) bool {
	return r == '\'' || r == '’'
}

func nextIsLetter(text string, at int) bool {
	if at >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[at:])
	return unicode.IsLetter(r)
}
