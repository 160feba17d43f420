package storage

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob/memblob"
)

func TestBlobFileStore_SaveOpenDelete(t *testing.T) {
	t.Parallel()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	store := NewBlobFileStoreFromBucket(bucket, slog.Default())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "docs/a.pdf", "application/pdf", strings.NewReader("%PDF-1.7")))

	rc, err := store.Open(ctx, "docs/a.pdf")
	require.NoError(t, err)
	buf, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "%PDF-1.7", string(buf))

	require.NoError(t, store.Delete(ctx, "docs/a.pdf"))

	_, err = store.Open(ctx, "docs/a.pdf")
	assert.Error(t, err)
}

func TestBlobFileStore_DeleteMissingKeyIsNoop(t *testing.T) {
	t.Parallel()

	bucket := memblob.OpenBucket(nil)
	t.Cleanup(func() { _ = bucket.Close() })

	store := NewBlobFileStoreFromBucket(bucket, slog.Default())

	assert.NoError(t, store.Delete(context.Background(), "never-saved"))
}
