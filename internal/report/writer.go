package report

import (
	"fmt"
	"io"
	"strings"
)

// Format names a report encoding.
type Format string

// Supported report formats.
const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// Writer renders a Report to its destination.
type Writer interface {
	Write(r Report) error
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatText, FormatMarkdown, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q", name)
	}
}

// NewWriter returns the Writer for format. A zero Highlighter falls back to the
// format's default markers.
func NewWriter(format Format, out io.Writer, hl Highlighter) (Writer, error) {
	switch format {
	case FormatText, "":
		if hl == (Highlighter{}) {
			hl = Highlighter{Prefix: "[[", Suffix: "]]"}
		}
		return NewTextWriter(out, hl), nil
	case FormatMarkdown:
		if hl == (Highlighter{}) {
			hl = Highlighter{Prefix: "**", Suffix: "**"}
		}
		return NewMarkdownWriter(out, hl), nil
	case FormatJSON:
		return NewJSONWriter(out), nil
	default:
		return nil, fmt.Errorf("unknown report format %q", format)
	}
}

// MultiWriter renders the same report to several writers, stopping at the
// first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter combines writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders r with every writer in order.
func (m *MultiWriter) Write(r Report) error {
	for _, w := range m.writers {
		if err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
