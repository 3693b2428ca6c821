package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter renders the report as GitHub-flavored Markdown.
type MarkdownWriter struct {
	out io.Writer
	hl  Highlighter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(out io.Writer, hl Highlighter) *MarkdownWriter {
	return &MarkdownWriter{out: out, hl: hl}
}

// Write renders r.
func (w *MarkdownWriter) Write(r Report) error {
	md := markdown.NewMarkdown(w.out)

	md.H1("Spellcheck Report")
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Records attempted", strconv.Itoa(r.Summary.RecordsAttempted)},
			{"Records processed", strconv.Itoa(r.Summary.RecordsProcessed)},
			{"Records failed", strconv.Itoa(r.Summary.RecordsFailed)},
			{"Total occurrences", strconv.Itoa(r.Summary.TotalOccurrences)},
			{"Unique words", strconv.Itoa(r.Summary.UniqueWords)},
		},
	})
	md.PlainText("")

	md.H2("Misspellings")
	md.PlainText("")
	if len(r.Words) == 0 {
		md.PlainText("No misspellings found.")
		md.PlainText("")
	}
	for _, entry := range r.Words {
		md.H3f("%s (%s)", markdown.Code(entry.Word), plural(entry.PageCount, "page"))
		md.PlainText("")
		for _, page := range entry.Pages {
			title := page.Target
			if page.Label != "" {
				title = fmt.Sprintf("%s (%s)", page.Label, page.Target)
			}
			md.PlainText(markdown.Bold(title))
			md.PlainText("")
			items := make([]string, 0, len(page.Contexts))
			for _, ctx := range page.Contexts {
				items = append(items, w.hl.Mark(ctx, entry.Word))
			}
			md.BulletList(items...)
			md.PlainText("")
		}
	}

	if err := md.Build(); err != nil {
		return fmt.Errorf("write markdown report: %w", err)
	}
	return nil
}
