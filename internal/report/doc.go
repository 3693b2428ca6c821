// Package report orders the aggregated index and renders it as console text,
// Markdown, or JSON. Every format prints the run summary before the per-word
// breakdown, and rendering never mutates the index.
package report
