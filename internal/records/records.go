// Package records reads the label,target CSV that drives a spellcheck run.
package records

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

// ErrMalformedInput marks any input problem; the run must not start.
var ErrMalformedInput = errors.New("malformed input")

// Load opens path and parses it with Parse.
func Load(path string) ([]crawler.Record, error) {
	f, err := os.Open(path) // #nosec G304 -- operator-supplied input file
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Parse reads a header row followed by label,target rows. The header is
// always skipped and blank lines are ignored. Every row must carry exactly two
// fields and an absolute http or https target; the first bad row fails the
// whole input. An empty label falls back to the target.
func Parse(r io.Reader) ([]crawler.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []crawler.Record{}, nil
		}
		return nil, fmt.Errorf("%w: header: %w", ErrMalformedInput, err)
	}

	out := []crawler.Record{}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedInput, err)
		}
		line, _ := reader.FieldPos(0)
		record, err := newRecord(len(out), row[0], row[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformedInput, line, err)
		}
		out = append(out, record)
	}
}

func newRecord(index int, label, target string) (crawler.Record, error) {
	label = strings.TrimSpace(label)
	target = strings.TrimSpace(target)
	if err := ValidateTarget(target); err != nil {
		return crawler.Record{}, err
	}
	if label == "" {
		label = target
	}
	return crawler.Record{Index: index, Label: label, Target: target}, nil
}

// ValidateTarget accepts absolute http and https URLs with a host.
func ValidateTarget(target string) error {
	if target == "" {
		return errors.New("target is empty")
	}
	u, err := url.Parse(target)
	if err != nil {
		return fmt.Errorf("target %q: %w", target, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("target %q: scheme must be http or https", target)
	}
	if u.Host == "" {
		return fmt.Errorf("target %q: missing host", target)
	}
	return nil
}
