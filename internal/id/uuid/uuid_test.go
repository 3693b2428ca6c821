package uuid

import (
	"testing"
	"time"

	goUUID "github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// TestNewRunID ensures generated IDs are unique, valid v7 UUIDs.
func TestNewRunID(t *testing.T) {
	t.Parallel()

	id1, err := NewRunID()
	require.NoError(t, err)
	id2, err := NewRunID()
	require.NoError(t, err)
	require.NotEqual(t, id1, id2)

	parsed, err := goUUID.Parse(id1)
	require.NoError(t, err)
	require.Equal(t, goUUID.Version(7), parsed.Version())
}

func TestStartedAt(t *testing.T) {
	t.Parallel()

	before := time.Now().Add(-time.Second)
	id, err := NewRunID()
	require.NoError(t, err)

	started, err := StartedAt(id)
	require.NoError(t, err)
	require.WithinRange(t, started, before, time.Now().Add(time.Second))

	_, err = StartedAt(goUUID.NewString())
	require.ErrorContains(t, err, "want 7")
	_, err = StartedAt("not-a-uuid")
	require.ErrorContains(t, err, "parse run id")
}
