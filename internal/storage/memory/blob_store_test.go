package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlobStorePutObjectCopiesData(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	payload := []byte("Helo wrold")
	uri, err := store.PutObject(context.Background(), "pages/abc.txt", "text/plain", payload)
	require.NoError(t, err)
	require.Equal(t, "memory://pages/abc.txt", uri)

	payload[0] = 'J'
	stored, ok := store.Object("pages/abc.txt")
	require.True(t, ok)
	require.Equal(t, "Helo wrold", string(stored))
}

func TestBlobStorePaths(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	for _, p := range []string{"b.txt", "a.txt"} {
		_, err := store.PutObject(context.Background(), p, "", []byte("x"))
		require.NoError(t, err)
	}
	require.Equal(t, []string{"a.txt", "b.txt"}, store.Paths())

	_, ok := store.Object("missing.txt")
	require.False(t, ok)
}

func TestBlobStoreCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBlobStore().PutObject(ctx, "a.txt", "", nil)
	require.ErrorIs(t, err, context.Canceled)
}
