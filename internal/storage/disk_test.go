package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	name := NewImageName()
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}

	require.NoError(t, store.Put(ctx, name, data))

	ok, err := store.Exists(ctx, name)
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := store.Get(ctx, name)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	require.NoError(t, store.Delete(ctx, name))

	ok, err = store.Exists(ctx, name)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, name)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiskStoreDeleteMissingIsNoop(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, store.Delete(context.Background(), "nunca-existio.bin"))
}

func TestDiskStoreRejectsTraversal(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, name := range []string{"", "../fuera.bin", "a/b.bin", `a\b.bin`} {
		assert.Error(t, store.Put(ctx, name, []byte("x")), "name %q", name)
	}
}

func TestNewImageNameIsUnique(t *testing.T) {
	a := NewImageName()
	b := NewImageName()
	assert.NotEqual(t, a, b)
	assert.Contains(t, a, ".bin")
}
