package domain

import "context"

// KeyValueStore is the persistence backend behind the product cache.
// Values are opaque serialized bytes; the store has no notion of expiry.
type KeyValueStore interface {
	// Get returns ErrCacheMiss when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// ProductProvider defines the interface for the Open Food Facts API
type ProductProvider interface {
	SearchProducts(ctx context.Context, term string, page int) (*SearchResponse, error)
	GetProduct(ctx context.Context, barcode string) (*ProviderRecord, error)
}

// JSONStore is a never-failing JSON key-value cache. Get reports whether a
// value was found and decoded into dst; Set silently drops failed writes.
type JSONStore interface {
	Get(ctx context.Context, key string, dst any) bool
	Set(ctx context.Context, key string, value any)
}
