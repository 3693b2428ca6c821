package telemetry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInitTracerProviderDisabled(t *testing.T) {
	t.Parallel()

	tp, shutdown, err := InitTracerProvider(context.Background(), Options{ServiceName: "spellcheck"})
	require.NoError(t, err)
	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	require.False(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, shutdown(context.Background()))
}

func TestInitTracerProviderWritesSpans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	tp, shutdown, err := InitTracerProvider(context.Background(), Options{
		ServiceName: "spellcheck",
		Version:     "test",
		RunID:       "run-1",
		TraceFile:   path,
	})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "record")
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, shutdown(context.Background()))

	// #nosec G304 -- test reads from its own temp directory.
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), `"Name":"record"`)
	require.Contains(t, string(raw), "run-1")
}

func TestInitTracerProviderBadPath(t *testing.T) {
	t.Parallel()

	_, _, err := InitTracerProvider(context.Background(), Options{
		TraceFile: filepath.Join(t.TempDir(), "missing", "trace.json"),
	})
	require.ErrorContains(t, err, "create trace file")
}
