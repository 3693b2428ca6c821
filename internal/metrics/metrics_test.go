package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSite(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"standard http", "http://example.com/path", "example.com"},
		{"standard https", "https://Example.com/path", "example.com"},
		{"no scheme", "example.com/path", "example.com"},
		{"host with port", "example.com:8080", "example.com"},
		{"invalid url", "http://%", "unknown"},
		{"empty string", "", "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SanitizeSite(tc.input); got != tc.expected {
				t.Errorf("SanitizeSite(%q) = %q; want %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestObserveRecord(t *testing.T) {
	before := testutil.ToFloat64(spellcheckRecordsTotal.WithLabelValues("metrics.test", "success"))
	misspellBefore := testutil.ToFloat64(spellcheckMisspellingsTotal.WithLabelValues("metrics.test"))

	ObserveRecord("https://metrics.test/page", "success", 10*time.Millisecond, 3)
	ObserveRecord("https://metrics.test/other", "success", 10*time.Millisecond, 0)

	require.Equal(t, before+2, testutil.ToFloat64(spellcheckRecordsTotal.WithLabelValues("metrics.test", "success")))
	require.Equal(t, misspellBefore+3, testutil.ToFloat64(spellcheckMisspellingsTotal.WithLabelValues("metrics.test")))
}

func TestOpenSessionsGauge(t *testing.T) {
	before := testutil.ToFloat64(spellcheckOpenSessions)
	IncOpenSessions()
	IncOpenSessions()
	require.Equal(t, before+2, testutil.ToFloat64(spellcheckOpenSessions))
	DecOpenSessions()
	DecOpenSessions()
	require.Equal(t, before, testutil.ToFloat64(spellcheckOpenSessions))
}

func TestWriteTextfile(t *testing.T) {
	ObserveBatch(3)

	path := filepath.Join(t.TempDir(), "spellcheck.prom")
	require.NoError(t, WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.Contains(string(data), "spellcheck_batches_total"))

	require.Error(t, WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom")))
}

// Fuzz test for SanitizeSite.
func FuzzSanitizeSite(f *testing.F) {
	testcases := []string{"http://example.com", "https://google.com", "ftp://example.com"}
	for _, tc := range testcases {
		f.Add(tc)
	}
	f.Fuzz(func(t *testing.T, orig string) {
		sanitized := SanitizeSite(orig)
		if sanitized == "" {
			t.Errorf("SanitizeSite(%q) returned an empty string", orig)
		}
	})
}
