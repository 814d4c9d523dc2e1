package usecase

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
	"github.com/foodtracker/backend/internal/infrastructure/openfoodfacts"
)

// DefaultCacheDuration is how long a barcode lookup stays fresh
const DefaultCacheDuration = time.Hour

// productKeyPrefix prefixes the barcode in product cache keys
const productKeyPrefix = "product_"

// ProductServiceConfig holds configuration for the product service
type ProductServiceConfig struct {
	CacheDuration time.Duration
	// Now is the clock used for cache timestamps; defaults to time.Now
	Now func() time.Time
}

// ProductService searches and looks up products, serving barcode lookups
// from cache while they are fresh. None of its operations return errors:
// failures degrade to empty or absent results.
type ProductService struct {
	provider      domain.ProductProvider
	cache         domain.JSONStore
	alternatives  *AlternativesService
	recentScans   *RecentScans
	cacheDuration time.Duration
	now           func() time.Time
	logger        *zap.Logger
	metrics       *metrics.Metrics
}

// NewProductService creates a new product service with dependencies
func NewProductService(
	provider domain.ProductProvider,
	cache domain.JSONStore,
	config ProductServiceConfig,
	logger *zap.Logger,
	m *metrics.Metrics,
) *ProductService {
	cacheDuration := config.CacheDuration
	if cacheDuration <= 0 {
		cacheDuration = DefaultCacheDuration
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	s := &ProductService{
		provider:      provider,
		cache:         cache,
		recentScans:   NewRecentScans(cache),
		cacheDuration: cacheDuration,
		now:           now,
		logger:        logger.Named("products"),
		metrics:       m,
	}
	s.alternatives = NewAlternativesService(s, logger, m)

	return s
}

// Search runs a full-text product search. A blank term returns an empty
// result without calling the provider.
func (s *ProductService) Search(ctx context.Context, term string, page int) domain.SearchResult {
	if strings.TrimSpace(term) == "" {
		return domain.EmptySearchResult()
	}
	if page < 1 {
		page = 1
	}

	resp, err := s.provider.SearchProducts(ctx, term, page)
	if err != nil || resp == nil {
		s.logger.Warn("search degraded to empty result", zap.String("term", term), zap.Error(err))
		return domain.EmptySearchResult()
	}

	return domain.SearchResult{
		Products: openfoodfacts.NormalizeAll(resp.Products),
		Count:    resp.Count,
	}
}

// GetByBarcode returns the product for a barcode.
// Flow: check cache -> fetch from provider -> normalize -> cache -> return
func (s *ProductService) GetByBarcode(ctx context.Context, code string) (domain.Product, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return domain.Product{}, false
	}

	key := cacheKey(code)

	if cached, ok := s.getFresh(ctx, key); ok {
		return cached, true
	}

	record, err := s.provider.GetProduct(ctx, code)
	if err != nil || record == nil {
		s.logger.Debug("barcode lookup returned nothing", zap.String("barcode", code), zap.Error(err))
		return domain.Product{}, false
	}

	product := openfoodfacts.Normalize(*record)

	// Always overwrite, whether the previous entry was missing or stale
	s.cache.Set(ctx, key, domain.CacheEntry{
		Data:      product,
		Timestamp: s.now().UnixMilli(),
	})

	return product, true
}

// RecordScan looks up a scanned barcode and records it in the recent scans
func (s *ProductService) RecordScan(ctx context.Context, code string) (domain.Product, bool) {
	product, ok := s.GetByBarcode(ctx, code)
	if !ok {
		return domain.Product{}, false
	}
	s.recentScans.Add(ctx, product)
	return product, true
}

// RecentScans returns the recently scanned products, most recent first
func (s *ProductService) RecentScans(ctx context.Context) []domain.Product {
	return s.recentScans.List(ctx)
}

// Alternatives looks up a barcode and ranks better-scoring alternatives for it
func (s *ProductService) Alternatives(ctx context.Context, code string) ([]domain.Product, bool) {
	product, ok := s.GetByBarcode(ctx, code)
	if !ok {
		return nil, false
	}
	return s.alternatives.FindAlternatives(ctx, product), true
}

// getFresh returns the cached product for key if it is younger than the
// cache duration
func (s *ProductService) getFresh(ctx context.Context, key string) (domain.Product, bool) {
	var entry domain.CacheEntry
	if !s.cache.Get(ctx, key, &entry) {
		s.metrics.RecordCacheLookup("miss")
		return domain.Product{}, false
	}

	age := s.now().UnixMilli() - entry.Timestamp
	if entry.Timestamp <= 0 || age >= s.cacheDuration.Milliseconds() {
		s.metrics.RecordCacheLookup("stale")
		return domain.Product{}, false
	}

	s.metrics.RecordCacheLookup("hit")
	return entry.Data, true
}

func cacheKey(code string) string {
	return productKeyPrefix + code
}
