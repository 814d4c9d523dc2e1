package usecase

import (
	"context"
	"sync"

	"github.com/foodtracker/backend/internal/domain"
)

// RecentScansKey is the cache key holding the recent scans list
const RecentScansKey = "recentScans"

// MaxRecentScans caps the recent scans list
const MaxRecentScans = 10

// RecentScans keeps the most recently scanned products, newest first and
// unique by code
type RecentScans struct {
	store domain.JSONStore
	mu    sync.Mutex
}

// NewRecentScans creates a recent scans list persisted in store
func NewRecentScans(store domain.JSONStore) *RecentScans {
	return &RecentScans{store: store}
}

// List returns the stored list, or an empty one
func (r *RecentScans) List(ctx context.Context) []domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Add moves product to the front of the list, dropping any earlier entry
// with the same code, and persists the result
func (r *RecentScans) Add(ctx context.Context, product domain.Product) []domain.Product {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.load(ctx)

	scans := make([]domain.Product, 0, len(existing)+1)
	scans = append(scans, product)
	for _, scan := range existing {
		if scan.Code != product.Code {
			scans = append(scans, scan)
		}
	}
	if len(scans) > MaxRecentScans {
		scans = scans[:MaxRecentScans]
	}

	r.store.Set(ctx, RecentScansKey, scans)
	return scans
}

func (r *RecentScans) load(ctx context.Context) []domain.Product {
	var scans []domain.Product
	if !r.store.Get(ctx, RecentScansKey, &scans) || scans == nil {
		return []domain.Product{}
	}
	return scans
}
