package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/cache"
)

func TestRecentScans_EmptyByDefault(t *testing.T) {
	scans := NewRecentScans(cache.NewStore(cache.NewMemoryCache(), nil, nil))

	list := scans.List(context.Background())

	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestRecentScans_NewestFirstAndUnique(t *testing.T) {
	ctx := context.Background()
	scans := NewRecentScans(cache.NewStore(cache.NewMemoryCache(), nil, nil))

	scans.Add(ctx, domain.Product{Code: "1", Name: "old name"})
	scans.Add(ctx, domain.Product{Code: "2"})
	scans.Add(ctx, domain.Product{Code: "3"})
	list := scans.Add(ctx, domain.Product{Code: "1", Name: "new name"})

	assert.Equal(t, []string{"1", "3", "2"}, codes(list))
	assert.Equal(t, "new name", list[0].Name)
	assert.Equal(t, list, scans.List(ctx))
}

func TestRecentScans_CappedAtTen(t *testing.T) {
	ctx := context.Background()
	scans := NewRecentScans(cache.NewStore(cache.NewMemoryCache(), nil, nil))

	for i := 0; i < 15; i++ {
		scans.Add(ctx, domain.Product{Code: fmt.Sprintf("%d", i)})
	}

	list := scans.List(ctx)
	require.Len(t, list, MaxRecentScans)
	assert.Equal(t, "14", list[0].Code)
	assert.Equal(t, "5", list[MaxRecentScans-1].Code)
}

func TestRecentScans_PersistedAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := cache.NewStore(cache.NewMemoryCache(), nil, nil)

	NewRecentScans(store).Add(ctx, domain.Product{Code: "42"})

	assert.Equal(t, []string{"42"}, codes(NewRecentScans(store).List(ctx)))
}

func TestRecentScans_CorruptedListIsEmpty(t *testing.T) {
	ctx := context.Background()
	backend := cache.NewMemoryCache()
	require.NoError(t, backend.Set(ctx, RecentScansKey, []byte(`{"not": "a list"}`)))
	scans := NewRecentScans(cache.NewStore(backend, nil, nil))

	assert.Empty(t, scans.List(ctx))

	list := scans.Add(ctx, domain.Product{Code: "1"})
	assert.Equal(t, []string{"1"}, codes(list))
}
