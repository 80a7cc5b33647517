package cmd

import (
	"fmt"
	"strings"

	"github.com/badno/metaops/internal/filter"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/internal/output"
	outputfile "github.com/badno/metaops/internal/output/file"
	"github.com/badno/metaops/internal/parser"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	editProducts []string
	editFiltered bool
	editAdd      []string
	editRemove   []string
	editClear    bool
	editModel    string

	discardProducts []string
	discardField    string

	planOutput string
)

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Stage metafield edits",
	Long: `Stage metafield edits locally. Nothing is written to Shopify until
'metaops save' runs. Setting a field back to its stored value drops the edit.`,
}

var editSetCmd = &cobra.Command{
	Use:   "set [field] [value]",
	Short: "Set a field on one or more products",
	Long: `Set a field on the products given with --product, or on every product
matching the saved filters with --filtered. List fields also accept --add
and --remove with product ids; model_info accepts --model.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runEditSet,
}

var editImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Stage edits from an edited CSV or XLSX grid",
	Args:  cobra.ExactArgs(1),
	RunE:  runEditImport,
}

var editShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show pending edits",
	RunE:  runEditShow,
}

var editDiscardCmd = &cobra.Command{
	Use:   "discard",
	Short: "Discard pending edits",
	RunE:  runEditDiscard,
}

var editPlanCmd = &cobra.Command{
	Use:   "plan",
	Short: "Write the pending updates to a JSON plan",
	RunE:  runEditPlan,
}

func init() {
	editSetCmd.Flags().StringSliceVarP(&editProducts, "product", "p", nil, "Product id, numeric id or handle (repeatable)")
	editSetCmd.Flags().BoolVar(&editFiltered, "filtered", false, "Apply to every product matching the saved filters")
	editSetCmd.Flags().StringSliceVar(&editAdd, "add", nil, "Add ids to a list field")
	editSetCmd.Flags().StringSliceVar(&editRemove, "remove", nil, "Remove ids from a list field")
	editSetCmd.Flags().BoolVar(&editClear, "clear", false, "Clear the field")
	editSetCmd.Flags().StringVar(&editModel, "model", "", "Model id or handle for model_info")

	editDiscardCmd.Flags().StringSliceVarP(&discardProducts, "product", "p", nil, "Only discard edits of these products")
	editDiscardCmd.Flags().StringVar(&discardField, "field", "", "Only discard edits of this field")

	editPlanCmd.Flags().StringVarP(&planOutput, "output", "o", "", "Output file (default: generated in the output dir)")

	editCmd.AddCommand(editSetCmd)
	editCmd.AddCommand(editImportCmd)
	editCmd.AddCommand(editShowCmd)
	editCmd.AddCommand(editDiscardCmd)
	editCmd.AddCommand(editPlanCmd)
}

// editTargets resolves the products an edit applies to
func editTargets(snap *models.Snapshot) ([]models.Product, error) {
	if editFiltered {
		return openPrefs().Filters().Apply(snap.Products), nil
	}
	if len(editProducts) == 0 {
		return nil, fmt.Errorf("use --product or --filtered to choose products")
	}

	ids := make([]string, 0, len(editProducts))
	for _, ref := range editProducts {
		p, ok := findProduct(snap.Products, ref)
		if !ok {
			return nil, fmt.Errorf("product not found: %s", ref)
		}
		ids = append(ids, p.ID)
	}
	return filter.ByIDs(snap.Products, ids), nil
}

// resolveModelInfo renders the model_info text for a model reference
func resolveModelInfo(snap *models.Snapshot, ref string) (string, error) {
	for _, m := range snap.Models {
		if m.ID == ref || strings.EqualFold(m.Handle, ref) || strings.EqualFold(m.Name, ref) {
			return metafields.ModelInfoText(m.Height, m.SizeWorn), nil
		}
	}
	return "", fmt.Errorf("model not found: %s", ref)
}

func runEditSet(cmd *cobra.Command, args []string) error {
	printHeader("Staging edits")

	field, err := metafields.ParseKey(args[0])
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	def, _ := metafields.Lookup(field)

	ctx, cancel := signalContext()
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	drafts, err := openDrafts()
	if err != nil {
		return err
	}

	targets, err := editTargets(snap)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	listEdit := len(editAdd) > 0 || len(editRemove) > 0
	if listEdit && !def.IsList() {
		return fmt.Errorf("%s is not a list field", field)
	}

	var value string
	switch {
	case editClear:
	case editModel != "":
		if field != models.KeyModelInfo {
			return fmt.Errorf("--model only applies to %s", models.KeyModelInfo)
		}
		if value, err = resolveModelInfo(snap, editModel); err != nil {
			return err
		}
	case len(args) == 2:
		value = args[1]
	case !listEdit:
		return fmt.Errorf("a value, --add, --remove, --clear or --model is required")
	}

	add, remove := editAdd, editRemove
	if def.Type == metafields.TypeProductReferenceList {
		add, remove = toGIDs(editAdd), toGIDs(editRemove)
	}

	staged, skipped := 0, 0
	for _, p := range targets {
		if !def.AppliesTo(p.Vendor) {
			skipped++
			continue
		}
		next := value
		if listEdit {
			next = drafts.EffectiveValue(p, field)
			if len(add) > 0 {
				next = metafields.AddToList(next, add...)
			}
			if len(remove) > 0 {
				next = metafields.RemoveFromList(next, remove...)
			}
		}
		drafts.SetCell(p.ID, field, next, p.Metafield(field))
		staged++
	}

	if err := saveDrafts(drafts); err != nil {
		return err
	}

	color.Green("  ✓ Staged %s on %d products", def.Label, staged)
	if skipped > 0 {
		color.Yellow("  ⚠ Skipped %d products (%s is only for %s)", skipped, def.Label, def.Vendor)
	}
	color.Green("  ✓ %d pending changes", drafts.Len())
	fmt.Println()
	return nil
}

// toGIDs expands numeric ids to product gids
func toGIDs(refs []string) []string {
	out := make([]string, 0, len(refs))
	for _, r := range refs {
		out = append(out, metafields.ToProductGID(r))
	}
	return out
}

func runEditImport(cmd *cobra.Command, args []string) error {
	printHeader("Importing grid")

	grid, err := parser.ParseFile(args[0])
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	drafts, err := openDrafts()
	if err != nil {
		return err
	}

	stats := grid.Apply(snap.Products, drafts)
	if err := saveDrafts(drafts); err != nil {
		return err
	}

	fmt.Printf("  Columns: %d metafields", len(grid.Columns))
	if len(grid.Ignored) > 0 {
		fmt.Printf(" (ignored: %s)", strings.Join(grid.Ignored, ", "))
	}
	fmt.Println()
	fmt.Println()

	color.Green("  ✓ Matched %d of %d rows", stats.Matched, stats.Rows)
	color.Green("  ✓ %d cells changed", stats.Changed)
	if stats.Reverted > 0 {
		color.Yellow("  %d pending edits reverted to stored values", stats.Reverted)
	}
	if len(stats.Unmatched) > 0 {
		color.Yellow("  ⚠ %d rows did not match a product:", len(stats.Unmatched))
		for _, u := range stats.Unmatched {
			fmt.Printf("    • %s\n", u)
		}
	}
	color.Green("  ✓ %d pending changes", drafts.Len())
	fmt.Println()
	return nil
}

func runEditShow(cmd *cobra.Command, args []string) error {
	printHeader("Pending edits")

	drafts, err := openDrafts()
	if err != nil {
		return err
	}
	if drafts.Len() == 0 {
		color.Green("  ✓ No pending edits")
		fmt.Println()
		return nil
	}

	var products []models.Product
	ctx, cancel := signalContext()
	defer cancel()
	if snap, err := loadSnapshot(ctx); err == nil {
		products = snap.Products
	} else {
		log.Warnf("showing ids only: %v", err)
	}

	table := newTable("Product", "Field", "Current", "New")
	for _, c := range drafts.Cells() {
		current := ""
		if p, ok := findProduct(products, c.ProductID); ok {
			current = p.Metafield(c.Field)
		}
		next := c.Value
		if next == "" {
			next = color.RedString("(clear)")
		}
		table.Append([]string{
			truncate(productLabel(products, c.ProductID), 30),
			string(c.Field),
			truncate(current, 30),
			truncate(next, 30),
		})
	}
	table.Render()
	fmt.Println()

	color.Yellow("  %d changes across %d products", drafts.Len(), len(drafts.ProductIDs()))
	fmt.Println()
	return nil
}

func runEditDiscard(cmd *cobra.Command, args []string) error {
	drafts, err := openDrafts()
	if err != nil {
		return err
	}
	before := drafts.Len()

	switch {
	case len(discardProducts) == 0 && discardField == "":
		drafts.Clear()
	default:
		var keys []string
		for _, c := range drafts.Cells() {
			if len(discardProducts) > 0 && !containsProduct(discardProducts, c.ProductID) {
				continue
			}
			if discardField != "" && string(c.Field) != discardField {
				continue
			}
			keys = append(keys, c.Key())
		}
		drafts.Remove(keys...)
	}

	if err := saveDrafts(drafts); err != nil {
		return err
	}
	color.Green("  ✓ Discarded %d pending changes", before-drafts.Len())
	fmt.Println()
	return nil
}

func containsProduct(refs []string, id string) bool {
	for _, r := range refs {
		if metafields.ToProductGID(r) == id {
			return true
		}
	}
	return false
}

func runEditPlan(cmd *cobra.Command, args []string) error {
	drafts, err := openDrafts()
	if err != nil {
		return err
	}

	registry := output.NewRegistry()
	if err := outputfile.Register(registry, outputfile.Config{OutputDir: cfg.Output.Dir, Pretty: true}); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, err := registry.Export(ctx, nil, output.ExportOptions{
		Format:     output.FormatPlan,
		OutputPath: planOutput,
		Updates:    drafts.Updates(),
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	color.Green("  ✓ Wrote plan for %d products to %s", result.ProductsExported, result.Destination)
	fmt.Println()
	return nil
}
