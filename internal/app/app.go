// Package app wires configuration into the product service shared by the
// HTTP server and the CLI.
package app

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/foodtracker/backend/config"
	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/cache"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
	"github.com/foodtracker/backend/internal/infrastructure/openfoodfacts"
	"github.com/foodtracker/backend/internal/usecase"
)

// App is the assembled product lookup stack
type App struct {
	Products *usecase.ProductService
	Client   *openfoodfacts.Client
	Metrics  *metrics.Metrics

	closers []func() error
}

// New builds the cache backend, provider client and product service
// described by cfg. Metrics may be nil.
func New(cfg *config.Config, logger *zap.Logger, m *metrics.Metrics) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	a := &App{Metrics: m}

	backend, err := a.newBackend(cfg.Cache, logger)
	if err != nil {
		return nil, err
	}

	a.Client = openfoodfacts.NewClient(openfoodfacts.ClientConfig{
		BaseURL:       cfg.OpenFoodFacts.BaseURL,
		UserAgent:     cfg.OpenFoodFacts.UserAgent,
		RatePerSecond: cfg.OpenFoodFacts.RatePerSecond,
		Burst:         cfg.OpenFoodFacts.Burst,
		Timeout:       cfg.OpenFoodFacts.Timeout,
	}, logger, m)

	a.Products = usecase.NewProductService(
		a.Client,
		cache.NewStore(backend, logger, m),
		usecase.ProductServiceConfig{CacheDuration: cfg.Cache.Duration},
		logger,
		m,
	)

	return a, nil
}

func (a *App) newBackend(cfg config.CacheConfig, logger *zap.Logger) (domain.KeyValueStore, error) {
	switch cfg.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		a.closers = append(a.closers, redisCache.Close)
		logger.Info("using redis cache", zap.String("prefix", cfg.KeyPrefix))
		return redisCache, nil
	case "postgres":
		pgCache, err := cache.NewPostgresCache(cfg.PostgresDSN, cfg.KeyPrefix)
		if err != nil {
			return nil, fmt.Errorf("connect postgres cache: %w", err)
		}
		a.closers = append(a.closers, pgCache.Close)
		logger.Info("using postgres cache", zap.String("prefix", cfg.KeyPrefix))
		return pgCache, nil
	case "file":
		path := cfg.FilePath
		if path == "" {
			defaultPath, err := cache.DefaultFilePath()
			if err != nil {
				return nil, err
			}
			path = defaultPath
		}
		fileCache, err := cache.NewFileCache(path)
		if err != nil {
			return nil, fmt.Errorf("open file cache: %w", err)
		}
		logger.Info("using file cache", zap.String("path", path))
		return fileCache, nil
	case "memory", "":
		logger.Info("using in-memory cache")
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type: %s", cfg.Type)
	}
}

// Close releases the cache backend
func (a *App) Close() error {
	var firstErr error
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
