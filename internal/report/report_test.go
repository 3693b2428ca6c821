package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/site-spellcheck/internal/aggregate"
	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

func outcome(label, target string, pairs ...string) crawler.Outcome {
	rec := crawler.Record{Label: label, Target: target}
	res := crawler.NewRecordResult(rec)
	for i := 0; i+1 < len(pairs); i += 2 {
		res.Add(crawler.Occurrence{Word: pairs[i], Context: pairs[i+1]})
	}
	return crawler.Outcome{Record: rec, Result: res}
}

func buildReport(outcomes ...crawler.Outcome) Report {
	records := make([]crawler.Record, 0, len(outcomes))
	for _, o := range outcomes {
		records = append(records, o.Record)
	}
	idx, summary := aggregate.Build(outcomes)
	return Build(idx, summary, records)
}

func TestBuild_RanksByPageCountThenInsertion(t *testing.T) {
	t.Parallel()

	r := buildReport(
		outcome("A", "http://a", "wrold", "a wrold", "teh", "teh a"),
		outcome("B", "http://b", "Helo", "Helo b", "teh", "teh b"),
		outcome("C", "http://c", "Helo", "Helo c"),
	)

	var words []string
	for _, w := range r.Words {
		words = append(words, w.Word)
	}
	// teh and Helo both span two pages; teh was seen first.
	require.Equal(t, []string{"teh", "Helo", "wrold"}, words)
	require.Equal(t, 2, r.Words[0].PageCount)
	require.Equal(t, "A", r.Words[0].Pages[0].Label)
	require.Equal(t, "http://b", r.Words[0].Pages[1].Target)
}

func TestBuild_DoesNotMutateIndex(t *testing.T) {
	t.Parallel()

	idx, summary := aggregate.Build([]crawler.Outcome{
		outcome("A", "http://a", "zzz", "zzz"),
		outcome("B", "http://b", "yyy", "yyy"),
		outcome("C", "http://c", "yyy", "yyy"),
	})
	before := idx.Words()
	_ = Build(idx, summary, nil)
	require.Equal(t, before, idx.Words())
}

func TestHighlighter_Mark(t *testing.T) {
	t.Parallel()

	hl := Highlighter{Prefix: "[", Suffix: "]"}
	tests := []struct {
		name    string
		snippet string
		word    string
		want    string
	}{
		{"single", "Helo wrold", "Helo", "[Helo] wrold"},
		{"every occurrence", "Helo and Helo", "Helo", "[Helo] and [Helo]"},
		{"case sensitive", "helo Helo", "Helo", "helo [Helo]"},
		{"skips embedded token", "Helot Helo", "Helo", "Helot [Helo]"},
		{"falls back to substring", "Helot only", "Helo", "[Helo]t only"},
		{"regexp metacharacters", "a.b axb", "a.b", "[a.b] axb"},
		{"non-overlapping", "aaaa", "aa", "[aa][aa]"},
		{"word longer than snippet", "He", "Helo", "He"},
		{"absent", "nothing here", "Helo", "nothing here"},
		{"empty word", "Helo", "", "Helo"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, hl.Mark(tt.snippet, tt.word))
		})
	}
}

func TestTextWriter(t *testing.T) {
	t.Parallel()

	r := buildReport(
		outcome("A", "http://a", "Helo", "Helo wrold", "wrold", "Helo wrold"),
		outcome("B", "http://b", "Helo", "say Helo"),
	)
	var buf bytes.Buffer
	w, err := NewWriter(FormatText, &buf, Highlighter{})
	require.NoError(t, err)
	require.NoError(t, w.Write(r))

	out := buf.String()
	require.Contains(t, out, "Spellcheck summary")
	require.Contains(t, out, "Unique words")
	require.Contains(t, out, "1. Helo (2 pages, 2 occurrences)")
	require.Contains(t, out, "2. wrold (1 page, 1 occurrence)")
	require.Contains(t, out, "A <http://a>")
	require.Contains(t, out, "- [[Helo]] wrold")
	require.Contains(t, out, "- Helo [[wrold]]")
	require.Less(t, strings.Index(out, "Spellcheck summary"), strings.Index(out, "Misspellings by word"))
}

func TestTextWriter_Empty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewTextWriter(&buf, Highlighter{}).Write(buildReport()))
	require.Contains(t, buf.String(), "Records attempted")
	require.Contains(t, buf.String(), "No misspellings found.")
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	r := buildReport(outcome("Home", "http://a", "Helo", "Helo wrold"))
	var buf bytes.Buffer
	w, err := NewWriter(FormatMarkdown, &buf, Highlighter{})
	require.NoError(t, err)
	require.NoError(t, w.Write(r))

	out := buf.String()
	require.Contains(t, out, "# Spellcheck Report")
	require.Contains(t, out, "| Records processed | 1 |")
	require.Contains(t, out, "### `Helo` (1 page)")
	require.Contains(t, out, "**Home (http://a)**")
	require.Contains(t, out, "- **Helo** wrold")
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	r := buildReport(outcome("A", "http://x", "Helo", "Helo wrold", "wrold", "Helo wrold"))
	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter(&buf).Write(r))

	var decoded Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, 2, decoded.Summary.UniqueWords)
	require.Equal(t, 2, decoded.Summary.TotalOccurrences)
	require.Len(t, decoded.Words, 2)
	require.Equal(t, []string{"Helo wrold"}, decoded.Words[0].Pages[0].Contexts)
}

func TestJSONWriter_EmptyWordsIsArray(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewJSONWriter(&buf).Write(Report{}))
	require.Contains(t, buf.String(), `"words": []`)
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatText, "Markdown": FormatMarkdown, " json ": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	require.Error(t, err)
	_, err = NewWriter("xml", &bytes.Buffer{}, Highlighter{})
	require.Error(t, err)
}

func TestMultiWriter(t *testing.T) {
	t.Parallel()

	var a, b bytes.Buffer
	multi := NewMultiWriter(NewTextWriter(&a, Highlighter{}), NewJSONWriter(&b))
	require.NoError(t, multi.Write(buildReport()))
	require.NotZero(t, a.Len())
	require.NotZero(t, b.Len())

	failing := NewMultiWriter(failWriter{}, NewJSONWriter(&b))
	require.Error(t, failing.Write(Report{}))
}

type failWriter struct{}

func (failWriter) Write(Report) error { return errors.New("boom") }
