package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal_WriteCreatesParentDirectories(t *testing.T) {
	root := t.TempDir()
	store := NewLocal(root)
	ctx := context.Background()

	err := store.Write(ctx, "symbols/nasdaq/nasdaq_symbols.txt", []byte("AAPL\n"))
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "symbols", "nasdaq", "nasdaq_symbols.txt"))
	require.NoError(t, err)
	assert.Equal(t, "AAPL\n", string(raw))

	exists, err := store.Exists(ctx, "symbols/nasdaq/nasdaq_symbols.txt")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestLocal_WriteOverwrites(t *testing.T) {
	store := NewLocal(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, "a.txt", []byte("first")))
	require.NoError(t, store.Write(ctx, "a.txt", []byte("second")))

	data, err := store.Read(ctx, "a.txt")
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestLocal_ReadMissing(t *testing.T) {
	store := NewLocal(t.TempDir())

	_, err := store.Read(context.Background(), "symbols/all/all_symbols.txt")
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrNotFound)
	assert.NotErrorIs(t, err, entity.ErrStorage)

	exists, err := store.Exists(context.Background(), "symbols/all/all_symbols.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocal_ExistsOnDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "symbols", "nyse"), 0o755))

	exists, err := NewLocal(root).Exists(context.Background(), "symbols/nyse")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocal_WriteFailureIsStorageError(t *testing.T) {
	root := t.TempDir()
	// a regular file where a directory is expected
	require.NoError(t, os.WriteFile(filepath.Join(root, "symbols"), []byte("x"), 0o644))

	err := NewLocal(root).Write(context.Background(), "symbols/nasdaq/nasdaq_symbols.txt", []byte("AAPL\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, entity.ErrStorage)
}

func TestLocal_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := NewLocal(t.TempDir()).Write(ctx, "a.txt", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_RejectsPathsOutsideRoot(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "data")
	store := NewLocal(root)
	ctx := context.Background()

	for _, path := range []string{
		"symbols/../../escaped_symbols.txt",
		"../escaped.txt",
		"..",
	} {
		err := store.Write(ctx, path, []byte("AAPL\n"))
		assert.ErrorIs(t, err, entity.ErrStorage, path)

		_, err = store.Read(ctx, path)
		assert.ErrorIs(t, err, entity.ErrStorage, path)

		_, err = store.Exists(ctx, path)
		assert.ErrorIs(t, err, entity.ErrStorage, path)
	}

	entries, err := os.ReadDir(base)
	require.NoError(t, err)
	assert.Empty(t, entries)

	target, err := store.Resolve("symbols/nasdaq/../nyse/nyse_symbols.txt")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "symbols", "nyse", "nyse_symbols.txt"), target)
}
