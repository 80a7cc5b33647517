package cmd

import (
	"fmt"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/internal/prefs"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	columnsToggle []string
	columnsAll    bool
	columnsReset  bool
	filtersReset  bool
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Manage saved view preferences",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show saved filters and columns",
	RunE:  runPrefsShow,
}

var prefsColumnsCmd = &cobra.Command{
	Use:   "columns",
	Short: "Choose visible metafield columns",
	RunE:  runPrefsColumns,
}

var prefsFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Show or reset saved product filters",
	Long:  `Show or reset saved product filters. Set them with 'metaops products list --save-filters'.`,
	RunE:  runPrefsFilters,
}

func init() {
	prefsColumnsCmd.Flags().StringSliceVar(&columnsToggle, "toggle", nil, "Show or hide these columns")
	prefsColumnsCmd.Flags().BoolVar(&columnsAll, "all", false, "Show every column")
	prefsColumnsCmd.Flags().BoolVar(&columnsReset, "reset", false, "Restore the default columns")
	prefsFiltersCmd.Flags().BoolVar(&filtersReset, "reset", false, "Clear the saved filters")

	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsColumnsCmd)
	prefsCmd.AddCommand(prefsFiltersCmd)
}

func runPrefsShow(cmd *cobra.Command, args []string) error {
	printHeader("Preferences")

	store := openPrefs()
	color.Yellow("  File: %s\n\n", store.Path())
	fmt.Printf("  Filters: %s\n\n", describeFilters(store.Filters()))
	printColumns(store)
	return nil
}

// printColumns lists every field with its visibility
func printColumns(store *prefs.Store) {
	visible := map[models.MetafieldKey]bool{}
	for _, k := range store.VisibleColumns() {
		visible[k] = true
	}

	table := newTable("Field", "Label", "Type", "Visible")
	for _, d := range metafields.All() {
		mark := color.HiBlackString("-")
		if visible[d.Key] {
			mark = color.GreenString("✓")
		}
		label := d.Label
		if d.Vendor != "" {
			label += " (" + d.Vendor + ")"
		}
		table.Append([]string{string(d.Key), label, d.Type, mark})
	}
	table.Render()
	fmt.Println()
}

func runPrefsColumns(cmd *cobra.Command, args []string) error {
	printHeader("Visible columns")

	store := openPrefs()
	switch {
	case columnsReset:
		store.ResetColumns()
	case columnsAll:
		store.ShowAllColumns()
	}
	for _, name := range columnsToggle {
		key, err := metafields.ParseKey(name)
		if err != nil {
			color.Red("  Error: %v", err)
			return err
		}
		store.ToggleColumn(key)
	}

	printColumns(store)
	return nil
}

func runPrefsFilters(cmd *cobra.Command, args []string) error {
	store := openPrefs()
	if filtersReset {
		store.ResetFilters()
		color.Green("  ✓ Filters cleared")
		fmt.Println()
		return nil
	}

	fmt.Printf("  Filters: %s\n\n", describeFilters(store.Filters()))
	return nil
}
