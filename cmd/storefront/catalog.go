package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fjod/go_cart/storefront-service/internal/catalog"
	"github.com/fjod/go_cart/storefront-service/internal/config"
	"github.com/fjod/go_cart/storefront-service/internal/domain"
	"github.com/fjod/go_cart/storefront-service/internal/logger"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	catalogCategory string
	catalogSearch   string
	catalogAPIURL   string
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the product catalog",
	Long: `Fetch products from the product API and print them as a table.

Use --category to show a single category or --search to filter by a
case-insensitive match on title, description and category.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVar(&catalogCategory, "category", "", "only show products in this category")
	catalogCmd.Flags().StringVar(&catalogSearch, "search", "", "only show products matching this query")
	catalogCmd.Flags().StringVar(&catalogAPIURL, "api-url", "", "product API base URL (overrides PRODUCT_API_URL)")
}

func runCatalog(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if catalogAPIURL != "" {
		cfg.ProductAPI.URL = catalogAPIURL
	}

	log, err := logger.New(cfg.LogLevel, cfg.Development())
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	svc := catalog.NewService(catalog.NewClient(cfg.ProductAPI.URL, cfg.ProductAPI.Timeout), catalog.NewMemoryCache(cfg.Catalog.CacheTTL), log)
	ctx := cmd.Context()

	var products []domain.Product
	switch {
	case catalogCategory != "":
		var exists bool
		products, exists = svc.ByCategory(ctx, catalogCategory)
		if !exists {
			return fmt.Errorf("category %q not found", catalogCategory)
		}
	case catalogSearch != "":
		products = svc.Search(ctx, catalogSearch)
	default:
		products = svc.Products(ctx)
	}

	renderProducts(cmd.OutOrStdout(), products)
	return nil
}

func renderProducts(w io.Writer, products []domain.Product) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Price", "Rating"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 48},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	for _, p := range products {
		t.AppendRow(table.Row{
			p.ID,
			strings.TrimSpace(p.Title),
			p.Category,
			p.Price.StringFixed(2),
			fmt.Sprintf("%.1f (%d)", p.Rating.Rate, p.Rating.Count),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "Products", len(products)})
	t.Render()
}
