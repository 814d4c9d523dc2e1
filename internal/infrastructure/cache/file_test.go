package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtracker/backend/internal/domain"
)

func TestFileCache_SetAndGet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cache.json")
	cache, err := NewFileCache(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Get(ctx, "product_1")
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	require.NoError(t, cache.Set(ctx, "product_1", []byte(`{"timestamp":1}`)))
	require.NoError(t, cache.Set(ctx, "recentScans", []byte(`[]`)))

	got, err := cache.Get(ctx, "product_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":1}`, string(got))
	assert.FileExists(t, path)
}

func TestFileCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	ctx := context.Background()

	first, err := NewFileCache(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "product_1", []byte(`{"a":1}`)))
	require.NoError(t, first.Set(ctx, "product_1", []byte(`{"a":2}`)))

	second, err := NewFileCache(path)
	require.NoError(t, err)
	got, err := second.Get(ctx, "product_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(got))
}

func TestFileCache_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))
	cache, err := NewFileCache(path)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = cache.Get(ctx, "product_1")
	assert.ErrorIs(t, err, domain.ErrCacheFailure)

	require.NoError(t, cache.Set(ctx, "product_1", []byte(`{"a":1}`)))
	got, err := cache.Get(ctx, "product_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(got))
}

func TestFileCache_WithStore(t *testing.T) {
	cache, err := NewFileCache(filepath.Join(t.TempDir(), "cache.json"))
	require.NoError(t, err)
	store := NewStore(cache, nil, nil)
	ctx := context.Background()

	store.Set(ctx, "recentScans", []domain.Product{{Code: "123", Name: "Oat milk"}})

	var scans []domain.Product
	require.True(t, store.Get(ctx, "recentScans", &scans))
	require.Len(t, scans, 1)
	assert.Equal(t, "Oat milk", scans[0].Name)
}

func TestNewFileCache_RequiresPath(t *testing.T) {
	_, err := NewFileCache("")
	assert.Error(t, err)
}

func TestDefaultFilePath(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	path, err := DefaultFilePath()
	require.NoError(t, err)
	assert.Equal(t, DefaultFileName, filepath.Base(path))
	assert.Equal(t, "foodtracker", filepath.Base(filepath.Dir(path)))
}
