// Package cli implements the foodtracker command-line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/foodtracker/backend/config"
	"github.com/foodtracker/backend/internal/app"
	"github.com/foodtracker/backend/internal/domain"
	"github.com/foodtracker/backend/internal/infrastructure/logger"
)

// Products is the product lookup façade used by the commands
type Products interface {
	Search(ctx context.Context, term string, page int) domain.SearchResult
	GetByBarcode(ctx context.Context, code string) (domain.Product, bool)
	Alternatives(ctx context.Context, code string) ([]domain.Product, bool)
	RecordScan(ctx context.Context, code string) (domain.Product, bool)
	RecentScans(ctx context.Context) []domain.Product
}

// Factory builds the Products façade once flags have been parsed. The
// returned cleanup runs after the command finishes, whether or not it failed.
type Factory func(debug bool) (Products, func(), error)

// options holds the global flags
type options struct {
	debug   bool
	asJSON  bool
	out     io.Writer
	factory Factory

	products Products
	cleanup  func()
}

// NewRootCommand creates the root command. A nil factory builds the
// product service from configuration.
func NewRootCommand(out io.Writer, factory Factory) *cobra.Command {
	if out == nil {
		out = os.Stdout
	}
	if factory == nil {
		factory = configFactory
	}
	opts := &options{out: out, factory: factory}

	root := &cobra.Command{
		Use:   "foodtracker",
		Short: "Look up food products on Open Food Facts",
		Long: `foodtracker searches Open Food Facts, looks up products by barcode and
suggests healthier alternatives in the same category.

Configuration is read from config.yaml, .env and FOODTRACKER_* variables.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			products, cleanup, err := opts.factory(opts.debug)
			if err != nil {
				return err
			}
			opts.products = products
			opts.cleanup = cleanup
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging of upstream requests")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	root.AddCommand(
		newSearchCommand(opts),
		newLookupCommand(opts),
		newAlternativesCommand(opts),
		newMacrosCommand(opts),
		newScanCommand(opts),
		newRecentCommand(opts),
	)
	for _, cmd := range root.Commands() {
		withCleanup(opts, cmd)
	}

	return root
}

// withCleanup runs the factory cleanup when cmd returns. Cobra skips
// post-run hooks on error, so the cleanup is deferred inside RunE instead.
func withCleanup(opts *options, cmd *cobra.Command) {
	runE := cmd.RunE
	if runE == nil {
		return
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		defer opts.runCleanup()
		return runE(cmd, args)
	}
}

func (o *options) runCleanup() {
	if o.cleanup == nil {
		return
	}
	cleanup := o.cleanup
	o.cleanup = nil
	cleanup()
}

// Execute runs the CLI against the configured services
func Execute() error {
	return NewRootCommand(os.Stdout, nil).ExecuteContext(context.Background())
}

func configFactory(debug bool) (Products, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// a memory cache would not outlive the command
	if cfg.Cache.Type == "memory" {
		cfg.Cache.Type = "file"
	}

	zlog, err := logger.New(cliLogLevel(cfg.Log.Level, debug), true)
	if err != nil {
		return nil, nil, err
	}

	a, err := app.New(cfg, zlog, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	a.Client.SetDebug(debug)

	cleanup := func() {
		if err := a.Close(); err != nil {
			zlog.Warn("closing cache backend", zap.Error(err))
		}
		_ = zlog.Sync()
	}
	return a.Products, cleanup, nil
}

// cliLogLevel keeps the CLI quiet: warn unless --debug is set, or error when
// configured that strictly
func cliLogLevel(configured string, debug bool) string {
	switch {
	case debug:
		return "debug"
	case configured == "error":
		return "error"
	default:
		return "warn"
	}
}
