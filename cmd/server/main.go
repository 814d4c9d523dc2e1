package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/foodtracker/backend/config"
	"github.com/foodtracker/backend/internal/app"
	httpDelivery "github.com/foodtracker/backend/internal/delivery/http"
	"github.com/foodtracker/backend/internal/infrastructure/logger"
	"github.com/foodtracker/backend/internal/infrastructure/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	os.Exit(serve(cfg, zlog))
}

// serve runs the server and returns the process exit code. The logger is
// synced before returning so nothing is lost on os.Exit.
func serve(cfg *config.Config, zlog *zap.Logger) int {
	defer zlog.Sync() //nolint:errcheck

	if err := run(cfg, zlog); err != nil {
		zlog.Error("server stopped", zap.Error(err))
		return 1
	}
	return 0
}

func run(cfg *config.Config, zlog *zap.Logger) error {
	zlog.Info("Starting FoodTracker Backend v1.0.0",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
		zap.String("cache_type", cfg.Cache.Type),
		zap.Duration("cache_duration", cfg.Cache.Duration),
		zap.String("openfoodfacts_url", cfg.OpenFoodFacts.BaseURL))

	m := metrics.New()

	// Initialize infrastructure and usecase layers
	a, err := app.New(cfg, zlog, m)
	if err != nil {
		return err
	}
	defer a.Close()

	// Enable debug mode in development environment
	if cfg.IsDevelopment() {
		a.Client.SetDebug(true)
		zlog.Info("Open Food Facts client debug mode enabled")
	}

	handler := httpDelivery.NewHandler(a.Products)
	router := httpDelivery.SetupRouter(cfg, handler, zlog, m)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	zlog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
