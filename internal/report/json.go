package report

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONWriter renders the report as indented JSON.
type JSONWriter struct {
	out io.Writer
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(out io.Writer) *JSONWriter {
	return &JSONWriter{out: out}
}

// Write renders r.
func (w *JSONWriter) Write(r Report) error {
	if r.Words == nil {
		r.Words = []WordEntry{}
	}
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("write json report: %w", err)
	}
	return nil
}
