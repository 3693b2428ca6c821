// Package aggregate folds per-record results into the cross-page index of
// misspelled words used for reporting.
package aggregate

import (
	"sort"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// Index maps word → target → contexts. Words and, per word, targets keep
// insertion order. The zero value is an empty index. An Index returned by
// Fold or Build is never mutated afterwards.
type Index struct {
	words []string
	pages map[string]*wordPages
}

type wordPages struct {
	targets  []string
	contexts map[string][]string
}

func (w *wordPages) clone() *wordPages {
	out := &wordPages{
		targets:  append([]string(nil), w.targets...),
		contexts: make(map[string][]string, len(w.contexts)),
	}
	for target, contexts := range w.contexts {
		out.contexts[target] = contexts
	}
	return out
}

// Fold returns a new index with result merged into idx; idx is left untouched.
// A (word, target) pair that already exists is replaced by result's contexts.
func Fold(idx Index, result *crawler.RecordResult) Index {
	out := idx.clone()
	out.merge(result)
	return out
}

// Build folds every successful outcome, in order, into a fresh index and
// computes the run summary.
func Build(outcomes []crawler.Outcome) (Index, Summary) {
	var idx Index
	summary := Summary{RecordsAttempted: len(outcomes)}
	for _, outcome := range outcomes {
		if !outcome.OK() {
			summary.RecordsFailed++
			continue
		}
		summary.RecordsProcessed++
		// idx is owned here, so merging in place is the same as Fold.
		idx.merge(outcome.Result)
	}
	summary.TotalOccurrences = idx.Occurrences()
	summary.UniqueWords = idx.Len()
	return idx, summary
}

func (idx *Index) merge(result *crawler.RecordResult) {
	if result == nil {
		return
	}
	if idx.pages == nil {
		idx.pages = make(map[string]*wordPages)
	}
	for _, word := range orderedWords(result) {
		contexts := result.MisspellingsByWord[word]
		entry, ok := idx.pages[word]
		if !ok {
			entry = &wordPages{contexts: make(map[string][]string)}
			idx.pages[word] = entry
			idx.words = append(idx.words, word)
		}
		if _, seen := entry.contexts[result.Target]; !seen {
			entry.targets = append(entry.targets, result.Target)
		}
		entry.contexts[result.Target] = append([]string(nil), contexts...)
	}
}

// orderedWords follows the result's first-occurrence order, then appends any
// map keys it does not list in sorted order.
func orderedWords(result *crawler.RecordResult) []string {
	words := make([]string, 0, len(result.MisspellingsByWord))
	listed := make(map[string]bool, len(result.Words))
	for _, w := range result.Words {
		if _, ok := result.MisspellingsByWord[w]; ok && !listed[w] {
			listed[w] = true
			words = append(words, w)
		}
	}
	var extra []string
	for w := range result.MisspellingsByWord {
		if !listed[w] {
			extra = append(extra, w)
		}
	}
	sort.Strings(extra)
	return append(words, extra...)
}

func (idx Index) clone() Index {
	out := Index{
		words: append([]string(nil), idx.words...),
		pages: make(map[string]*wordPages, len(idx.pages)),
	}
	for word, entry := range idx.pages {
		out.pages[word] = entry.clone()
	}
	return out
}

// Len returns the number of distinct misspelled words.
func (idx Index) Len() int {
	return len(idx.words)
}

// Words returns the words in first-insertion order.
func (idx Index) Words() []string {
	return append([]string(nil), idx.words...)
}

// Targets returns the pages a word appears on, in insertion order.
func (idx Index) Targets(word string) []string {
	entry, ok := idx.pages[word]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.targets...)
}

// PageCount returns how many distinct pages contain word.
func (idx Index) PageCount(word string) int {
	entry, ok := idx.pages[word]
	if !ok {
		return 0
	}
	return len(entry.targets)
}

// Contexts returns the snippets recorded for word on target.
func (idx Index) Contexts(word, target string) []string {
	entry, ok := idx.pages[word]
	if !ok {
		return nil
	}
	return append([]string(nil), entry.contexts[target]...)
}

// Occurrences sums the length of every context list.
func (idx Index) Occurrences() int {
	total := 0
	for _, entry := range idx.pages {
		for _, contexts := range entry.contexts {
			total += len(contexts)
		}
	}
	return total
}

// Snapshot returns the index as plain nested maps, dropping order.
func (idx Index) Snapshot() map[string]map[string][]string {
	out := make(map[string]map[string][]string, len(idx.pages))
	for word, entry := range idx.pages {
		targets := make(map[string][]string, len(entry.contexts))
		for target, contexts := range entry.contexts {
			targets[target] = append([]string(nil), contexts...)
		}
		out[word] = targets
	}
	return out
}
