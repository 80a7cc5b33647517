package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/badno/metaops/internal/filter"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/internal/output"
	outputfile "github.com/badno/metaops/internal/output/file"
	"github.com/badno/metaops/internal/prefs"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	listSearch      string
	listVendors     []string
	listTypes       []string
	listTags        []string
	listStatuses    []string
	listMissingFlat bool
	listSaveFilters bool
	listLimit       int
	listPending     bool

	exportFormat     string
	exportOutput     string
	exportAllColumns bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Browse and export products",
	Long:  `List, filter, and export products with their managed metafields.`,
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Long: `List products matching the saved or given filters. Flags override the
saved filters; --save-filters stores them for later runs.`,
	RunE: runProductsList,
}

var productsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the product grid",
	Long:  `Export filtered products with the visible metafield columns to CSV, XLSX or JSON.`,
	RunE:  runProductsExport,
}

var productsFacetsCmd = &cobra.Command{
	Use:   "facets",
	Short: "Show filter options",
	Long:  `Show the distinct vendors, product types, tags and statuses in the catalog.`,
	RunE:  runProductsFacets,
}

func init() {
	for _, c := range []*cobra.Command{productsListCmd, productsExportCmd} {
		c.Flags().StringVar(&listSearch, "search", "", "Match title, handle or vendor")
		c.Flags().StringSliceVar(&listVendors, "vendor", nil, "Only these vendors")
		c.Flags().StringSliceVar(&listTypes, "type", nil, "Only these product types")
		c.Flags().StringSliceVar(&listTags, "tag", nil, "Only products with any of these tags")
		c.Flags().StringSliceVar(&listStatuses, "status", nil, "Only these statuses")
		c.Flags().BoolVar(&listMissingFlat, "missing-flat", false, "Only products without a flat image")
		c.Flags().BoolVar(&listSaveFilters, "save-filters", false, "Remember these filters")
		c.Flags().BoolVar(&listPending, "pending", false, "Show values with pending edits applied")
	}
	productsListCmd.Flags().IntVar(&listLimit, "limit", 50, "Maximum rows to show (0 = all)")

	productsExportCmd.Flags().StringVar(&exportFormat, "format", "csv", "Export format (csv, xlsx, json)")
	productsExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: generated in the output dir)")
	productsExportCmd.Flags().BoolVar(&exportAllColumns, "all-columns", false, "Export every metafield, not just visible columns")

	productsCmd.AddCommand(productsListCmd)
	productsCmd.AddCommand(productsExportCmd)
	productsCmd.AddCommand(productsFacetsCmd)
}

// resolveFilters merges flag values over the saved filters
func resolveFilters(cmd *cobra.Command, store *prefs.Store) filter.Filters {
	f := store.Filters()
	flags := cmd.Flags()
	if flags.Changed("search") {
		f.Search = listSearch
	}
	if flags.Changed("vendor") {
		f.Vendors = listVendors
	}
	if flags.Changed("type") {
		f.ProductTypes = listTypes
	}
	if flags.Changed("tag") {
		f.Tags = listTags
	}
	if flags.Changed("status") {
		f.Statuses = listStatuses
	}
	if flags.Changed("missing-flat") {
		f.MissingFlat = listMissingFlat
	}
	if listSaveFilters {
		store.SetFilters(f)
	}
	return f
}

// filteredProducts loads the snapshot and applies filters and pending edits
func filteredProducts(ctx context.Context, cmd *cobra.Command, store *prefs.Store) ([]models.Product, filter.Filters, error) {
	snap, err := loadSnapshot(ctx)
	if err != nil {
		return nil, filter.Filters{}, err
	}

	products := snap.Products
	if listPending {
		drafts, err := openDrafts()
		if err != nil {
			return nil, filter.Filters{}, err
		}
		products = drafts.ApplyTo(products)
	}

	f := resolveFilters(cmd, store)
	return f.Apply(products), f, nil
}

func runProductsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printHeader("Products")

	store := openPrefs()
	products, f, err := filteredProducts(ctx, cmd, store)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if f.IsActive() {
		color.Yellow("  Filters active\n\n")
	}

	vendors := make([]string, 0, len(products))
	for _, p := range products {
		vendors = append(vendors, p.Vendor)
	}
	columns := prefs.ColumnsFor(store.VisibleColumns(), vendors)

	headers := []string{"Title", "Vendor", "Status"}
	for _, key := range columns {
		if d, ok := metafields.Lookup(key); ok {
			headers = append(headers, d.Label)
		}
	}
	table := newTable(headers...)

	shown := products
	if listLimit > 0 && len(shown) > listLimit {
		shown = shown[:listLimit]
	}
	for _, p := range shown {
		row := []string{truncate(p.Title, 35), p.Vendor, strings.ToLower(p.Status)}
		for _, key := range columns {
			row = append(row, cellDisplay(p, key))
		}
		table.Append(row)
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ %d products", len(products))
	if len(shown) < len(products) {
		color.Yellow("  Showing first %d (use --limit 0 for all)", len(shown))
	}
	fmt.Println()
	return nil
}

// cellDisplay renders a metafield value for the list table
func cellDisplay(p models.Product, key models.MetafieldKey) string {
	value := p.Metafield(key)
	d, ok := metafields.Lookup(key)
	if !ok || value == "" {
		return color.HiBlackString("-")
	}
	if d.IsList() {
		return fmt.Sprintf("%d linked", len(metafields.ParseGIDList(value)))
	}
	if d.IsReference() {
		return metafields.ExtractID(value)
	}
	return truncate(strings.ReplaceAll(value, "\n", " "), 30)
}

func runProductsExport(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printHeader("Exporting products")

	store := openPrefs()
	products, _, err := filteredProducts(ctx, cmd, store)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	registry := output.NewRegistry()
	if err := outputfile.Register(registry, outputfile.Config{OutputDir: cfg.Output.Dir, Pretty: cfg.Output.Pretty}); err != nil {
		return err
	}
	defer registry.CloseAll()

	var columns []models.MetafieldKey
	if !exportAllColumns {
		columns = store.VisibleColumns()
	}

	result, err := registry.Export(ctx, products, output.ExportOptions{
		Format:     output.Format(exportFormat),
		OutputPath: exportOutput,
		Columns:    columns,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Green("  ✓ Exported %d products", result.ProductsExported)
	color.Green("  ✓ %s", result.Destination)
	fmt.Println()
	return nil
}

func runProductsFacets(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printHeader("Filter options")

	snap, err := loadSnapshot(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	facets := filter.ComputeFacets(snap.Products)
	table := newTable("Facet", "Values")
	table.SetAutoWrapText(true)
	table.Append([]string{"Vendors", strings.Join(facets.Vendors, ", ")})
	table.Append([]string{"Product types", strings.Join(facets.ProductTypes, ", ")})
	table.Append([]string{"Tags", strings.Join(facets.Tags, ", ")})
	table.Append([]string{"Statuses", strings.Join(facets.Statuses, ", ")})
	table.Render()
	fmt.Println()

	active := openPrefs().Filters()
	if active.IsActive() {
		color.Yellow("  Saved filters: %s", describeFilters(active))
		fmt.Println()
	}
	return nil
}

// describeFilters renders active filters on one line
func describeFilters(f filter.Filters) string {
	var parts []string
	if f.Search != "" {
		parts = append(parts, fmt.Sprintf("search=%q", f.Search))
	}
	if len(f.Vendors) > 0 {
		parts = append(parts, "vendor="+strings.Join(f.Vendors, ","))
	}
	if len(f.ProductTypes) > 0 {
		parts = append(parts, "type="+strings.Join(f.ProductTypes, ","))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tag="+strings.Join(f.Tags, ","))
	}
	if len(f.Statuses) > 0 {
		parts = append(parts, "status="+strings.Join(f.Statuses, ","))
	}
	if f.MissingFlat {
		parts = append(parts, "missing-flat")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}
