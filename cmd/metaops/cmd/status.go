package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/badno/metaops/internal/output"
	outputfile "github.com/badno/metaops/internal/output/file"
	"github.com/badno/metaops/internal/source"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var cacheHistory int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connections and local state",
	Long:  `Test the snapshot sources and export adapters and show pending edits and cache freshness.`,
	RunE:  runStatus,
}

var productsCacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Show the snapshot cache",
	RunE:  runProductsCache,
}

func init() {
	productsCacheCmd.Flags().IntVar(&cacheHistory, "history", 10, "History entries to show (0 = all)")
	productsCmd.AddCommand(productsCacheCmd)
	rootCmd.AddCommand(statusCmd)
}

func printResults(results map[string]error) {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := results[name]; err != nil {
			color.Red("  ✗ %-10s %v", name, err)
			continue
		}
		color.Green("  ✓ %s", name)
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	printHeader("Sources")

	registry, err := sources()
	if err != nil {
		return err
	}
	defer registry.CloseAll()

	var names []string
	for _, c := range registry.ListByCapability(source.CapabilityProducts) {
		names = append(names, c.Name())
	}
	fmt.Printf("  Product sources: %s\n\n", strings.Join(names, ", "))

	if err := registry.ConnectAll(ctx); err != nil {
		color.Red("  ✗ %v", err)
	} else {
		printResults(registry.TestAll(ctx))
	}
	fmt.Println()

	printHeader("Export adapters")

	outputs := output.NewRegistry()
	if err := outputfile.Register(outputs, outputfile.Config{OutputDir: cfg.Output.Dir}); err != nil {
		return err
	}
	printResults(outputs.TestAll(ctx))
	fmt.Println()

	printHeader("Local state")

	drafts, err := openDrafts()
	if err != nil {
		color.Red("  ✗ %v", err)
	} else {
		fmt.Printf("  Pending edits: %d across %d products\n", drafts.Len(), len(drafts.ProductIDs()))
	}

	cache := openCache()
	if cache.Fresh() {
		fmt.Printf("  Snapshot:      %s\n", color.GreenString("fresh"))
	} else {
		fmt.Printf("  Snapshot:      %s\n", color.YellowString("stale"))
	}
	fmt.Println()
	return nil
}

func runProductsCache(cmd *cobra.Command, args []string) error {
	printHeader("Snapshot cache")

	cache := openCache()
	snap, fetchedAt := cache.Stale()
	fmt.Printf("  File:     %s\n", cfg.Cache.File)
	switch {
	case snap == nil:
		fmt.Printf("  Snapshot: %s\n", color.YellowString("none"))
	case cache.Fresh():
		fmt.Printf("  Snapshot: %s (%d products, fetched %s ago)\n", color.GreenString("fresh"),
			len(snap.Products), time.Since(fetchedAt).Round(time.Second))
	default:
		fmt.Printf("  Snapshot: %s (%d products)\n", color.YellowString("stale"), len(snap.Products))
	}
	fmt.Println()

	history := cache.GetRecentHistory(cacheHistory)
	if len(history) == 0 {
		return nil
	}

	table := newTable("Time", "Action", "Count", "Details")
	for _, h := range history {
		table.Append([]string{h.Timestamp.Local().Format("2006-01-02 15:04:05"), h.Action, fmt.Sprintf("%d", h.Count), truncate(h.Details, 50)})
	}
	table.Render()
	fmt.Println()
	return nil
}
