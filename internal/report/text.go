package report

import (
	"bufio"
	"fmt"
	"io"

	"github.com/rodaine/table"
)

// TextWriter renders a console report: a summary table followed by each word,
// its pages, and highlighted contexts.
type TextWriter struct {
	out io.Writer
	hl  Highlighter
}

// NewTextWriter creates a TextWriter.
func NewTextWriter(out io.Writer, hl Highlighter) *TextWriter {
	return &TextWriter{out: out, hl: hl}
}

// Write renders r.
func (w *TextWriter) Write(r Report) error {
	buf := bufio.NewWriter(w.out)

	fmt.Fprintln(buf, "Spellcheck summary")
	tbl := table.New("Metric", "Value").WithWriter(buf)
	tbl.AddRow("Records attempted", r.Summary.RecordsAttempted)
	tbl.AddRow("Records processed", r.Summary.RecordsProcessed)
	tbl.AddRow("Records failed", r.Summary.RecordsFailed)
	tbl.AddRow("Total occurrences", r.Summary.TotalOccurrences)
	tbl.AddRow("Unique words", r.Summary.UniqueWords)
	tbl.Print()

	if len(r.Words) == 0 {
		fmt.Fprintln(buf, "No misspellings found.")
		return flush(buf)
	}

	fmt.Fprintln(buf, "Misspellings by word")
	for i, entry := range r.Words {
		fmt.Fprintf(buf, "\n%d. %s (%s, %s)\n",
			i+1, entry.Word, plural(entry.PageCount, "page"), plural(entry.Occurrences, "occurrence"))
		for _, page := range entry.Pages {
			if page.Label != "" {
				fmt.Fprintf(buf, "   %s <%s>\n", page.Label, page.Target)
			} else {
				fmt.Fprintf(buf, "   <%s>\n", page.Target)
			}
			for _, ctx := range page.Contexts {
				fmt.Fprintf(buf, "     - %s\n", w.hl.Mark(ctx, entry.Word))
			}
		}
	}
	return flush(buf)
}

func flush(buf *bufio.Writer) error {
	if err := buf.Flush(); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func plural(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
