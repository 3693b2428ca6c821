package records

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/site-spellcheck/internal/crawler"
)

func TestParse(t *testing.T) {
	t.Parallel()

	input := "title,url\n" +
		"Home, https://example.com/\n" +
		"\n" +
		"\"About, us\",http://example.com/about\n" +
		",https://example.com/blank-label\n"

	got, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, []crawler.Record{
		{Index: 0, Label: "Home", Target: "https://example.com/"},
		{Index: 1, Label: "About, us", Target: "http://example.com/about"},
		{Index: 2, Label: "https://example.com/blank-label", Target: "https://example.com/blank-label"},
	}, got)
}

func TestParseHeaderOnly(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "title,url\n", "title,url"} {
		got, err := Parse(strings.NewReader(input))
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Empty(t, got)
	}
}

func TestParseRejectsMalformedRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"three fields", "title,url\nA,https://a.example,extra\n", "wrong number of fields"},
		{"one field", "title,url\nA,https://a.example\nB\n", "wrong number of fields"},
		{"relative target", "title,url\nA,/about\n", "line 2"},
		{"ftp target", "title,url\nA,https://a.example\nB,ftp://b.example\n", "line 3"},
		{"empty target", "title,url\nA, \n", "target is empty"},
		{"missing host", "title,url\nA,https:///x\n", "missing host"},
		{"bad quote", "title,url\n\"A,https://a.example\n", "malformed input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse(strings.NewReader(tt.input))
			require.ErrorIs(t, err, ErrMalformedInput)
			require.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "urls.csv")
	require.NoError(t, os.WriteFile(path, []byte("title,url\nHome,https://example.com\n"), 0o600))

	got, err := Load(path)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"))
	require.ErrorContains(t, err, "open input")
}

func TestValidateTarget(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateTarget("https://example.com/path?q=1"))
	require.NoError(t, ValidateTarget("http://localhost:8080"))
	require.Error(t, ValidateTarget("example.com"))
	require.Error(t, ValidateTarget("mailto:a@example.com"))
	require.Error(t, ValidateTarget("http://[::1"))
}
