package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/foodtracker/backend/internal/domain"
)

func newSearchCommand(opts *options) *cobra.Command {
	var page int

	cmd := &cobra.Command{
		Use:   "search <term>...",
		Short: "Search products by name",
		Example: `  foodtracker search "oat milk"
  foodtracker search chocolate --page 2`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := strings.Join(args, " ")
			result := opts.products.Search(cmd.Context(), term, page)
			if opts.asJSON {
				return writeJSON(opts, result)
			}
			renderProducts(opts.out, fmt.Sprintf("Search results for %q", term), result.Products,
				fmt.Sprintf("%d of %d", len(result.Products), result.Count))
			return nil
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "result page, starting at 1")

	return cmd
}

func newLookupCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <barcode>",
		Short: "Show a product by barcode",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, ok := opts.products.GetByBarcode(cmd.Context(), args[0])
			if !ok {
				return notFound(args[0])
			}
			if opts.asJSON {
				return writeJSON(opts, product)
			}
			renderProduct(opts.out, product)
			return nil
		},
	}
}

func newAlternativesCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "alternatives <barcode>",
		Short: "Suggest better-scoring products from the same category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alternatives, ok := opts.products.Alternatives(cmd.Context(), args[0])
			if !ok {
				return notFound(args[0])
			}
			if opts.asJSON {
				return writeJSON(opts, alternatives)
			}
			renderProducts(opts.out, "Alternatives for "+args[0], alternatives,
				fmt.Sprintf("%d", len(alternatives)))
			return nil
		},
	}
}

func newMacrosCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "macros <barcode>",
		Short: "Show the macronutrient breakdown per 100g",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, ok := opts.products.GetByBarcode(cmd.Context(), args[0])
			if !ok {
				return notFound(args[0])
			}
			macros := product.Macros()
			if opts.asJSON {
				return writeJSON(opts, macros)
			}
			renderMacros(opts.out, product.Name, macros)
			return nil
		},
	}
}

func newScanCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <barcode>",
		Short: "Look up a barcode and add it to the recent scans",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			product, ok := opts.products.RecordScan(cmd.Context(), args[0])
			if !ok {
				return notFound(args[0])
			}
			if opts.asJSON {
				return writeJSON(opts, product)
			}
			renderProduct(opts.out, product)
			return nil
		},
	}
}

func newRecentCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "List recently scanned products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			scans := opts.products.RecentScans(cmd.Context())
			if opts.asJSON {
				return writeJSON(opts, scans)
			}
			renderProducts(opts.out, "Recent scans", scans, fmt.Sprintf("%d", len(scans)))
			return nil
		},
	}
}

func notFound(barcode string) error {
	return fmt.Errorf("%w: %s", domain.ErrProductNotFound, barcode)
}

func writeJSON(opts *options, v any) error {
	enc := json.NewEncoder(opts.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
