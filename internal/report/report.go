package report

import (
	"sort"

	"github.com/JakeFAU/site-spellcheck/internal/aggregate"
	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// Report is the ordered, render-ready view of a run.
type Report struct {
	Summary aggregate.Summary `json:"summary"`
	Words   []WordEntry       `json:"words"`
}

// WordEntry lists every page a misspelled word was found on.
type WordEntry struct {
	Word        string      `json:"word"`
	PageCount   int         `json:"page_count"`
	Occurrences int         `json:"occurrences"`
	Pages       []PageEntry `json:"pages"`
}

// PageEntry holds the contexts for one word on one page.
type PageEntry struct {
	Label    string   `json:"label,omitempty"`
	Target   string   `json:"target"`
	Contexts []string `json:"contexts"`
}

// Build orders idx for rendering. Words are ranked by descending page count;
// ties keep first-insertion order. Pages keep insertion order. records is used
// only to attach labels to targets.
func Build(idx aggregate.Index, summary aggregate.Summary, records []crawler.Record) Report {
	labels := make(map[string]string, len(records))
	for _, rec := range records {
		if _, ok := labels[rec.Target]; !ok {
			labels[rec.Target] = rec.Label
		}
	}

	words := idx.Words()
	sort.SliceStable(words, func(i, j int) bool {
		return idx.PageCount(words[i]) > idx.PageCount(words[j])
	})

	entries := make([]WordEntry, 0, len(words))
	for _, word := range words {
		entry := WordEntry{Word: word}
		for _, target := range idx.Targets(word) {
			contexts := idx.Contexts(word, target)
			entry.Occurrences += len(contexts)
			entry.Pages = append(entry.Pages, PageEntry{
				Label:    labels[target],
				Target:   target,
				Contexts: contexts,
			})
		}
		entry.PageCount = len(entry.Pages)
		entries = append(entries, entry)
	}
	return Report{Summary: summary, Words: entries}
}
