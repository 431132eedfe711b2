package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilesystemStoreRoundTrip(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	data := []byte("%PDF-1.7 fake content")

	require.NoError(t, store.Put(ctx, "documents", "abc-report.pdf", data))

	got, err := store.Get(ctx, "documents", "abc-report.pdf")
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestFilesystemStoreOverwrite(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.Put(ctx, "documents", "doc.pdf", []byte("v1")))
	require.NoError(t, store.Put(ctx, "documents", "doc.pdf", []byte("v2")))

	got, err := store.Get(ctx, "documents", "doc.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)
}

func TestFilesystemStoreMissingObject(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "documents", "nope.pdf")
	assert.Error(t, err)
}

func TestFilesystemStoreRejectsTraversal(t *testing.T) {
	store, err := NewFilesystemStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	assert.Error(t, store.Put(ctx, "documents", "../../etc/passwd", []byte("x")))

	_, err = store.Get(ctx, "documents", "../secret")
	assert.Error(t, err)
}
