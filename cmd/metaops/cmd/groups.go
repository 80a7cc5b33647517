package cmd

import (
	"fmt"
	"sort"

	"github.com/badno/metaops/internal/grouping"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	groupsVendor   string
	groupsStatus   string
	autolinkApply  bool
	autolinkVendor []string
)

var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Detect and link product groups",
	Long: `Products of the same vendor and type whose titles share a leading
word prefix form a group. Linking a group points every member's
same_product field at its siblings.`,
}

var groupsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List detected groups",
	RunE:  runGroupsList,
}

var groupsLinkCmd = &cobra.Command{
	Use:   "link [group-id or base name]",
	Short: "Stage same_product links for one group",
	Args:  cobra.ExactArgs(1),
	RunE:  runGroupsLink,
}

var groupsAutolinkCmd = &cobra.Command{
	Use:   "autolink",
	Short: "Suggest missing same_product links",
	Long: `Suggest same_product additions for groups of the auto-link vendors.
Existing links are kept; only missing siblings are appended. Use --apply to
stage the suggestions as pending edits.`,
	RunE: runGroupsAutolink,
}

func init() {
	groupsListCmd.Flags().StringVar(&groupsVendor, "vendor", "", "Only groups of this vendor")
	groupsListCmd.Flags().StringVar(&groupsStatus, "status", "", "Only groups with this link status (linked, partially_linked, not_linked)")
	groupsAutolinkCmd.Flags().BoolVar(&autolinkApply, "apply", false, "Stage the suggestions as pending edits")
	groupsAutolinkCmd.Flags().StringSliceVar(&autolinkVendor, "vendor", nil, "Vendors to auto-link (default from config)")

	groupsCmd.AddCommand(groupsListCmd)
	groupsCmd.AddCommand(groupsLinkCmd)
	groupsCmd.AddCommand(groupsAutolinkCmd)
}

// effectiveProducts loads the snapshot with pending edits applied
func effectiveProducts() ([]models.Product, error) {
	ctx, cancel := signalContext()
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return nil, err
	}
	drafts, err := openDrafts()
	if err != nil {
		return nil, err
	}
	return drafts.ApplyTo(snap.Products), nil
}

func linkStatusColor(s models.LinkStatus) string {
	switch s {
	case models.LinkStatusLinked:
		return color.GreenString(string(s))
	case models.LinkStatusPartiallyLinked:
		return color.YellowString(string(s))
	default:
		return color.RedString(string(s))
	}
}

func runGroupsList(cmd *cobra.Command, args []string) error {
	printHeader("Product groups")

	products, err := effectiveProducts()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	groups := grouping.DetectProductGroups(products)
	table := newTable("Group", "Vendor", "Type", "Members", "Status")
	counts := map[models.LinkStatus]int{}
	shown := 0
	for _, g := range groups {
		if groupsVendor != "" && g.Vendor != groupsVendor {
			continue
		}
		if groupsStatus != "" && string(g.LinkStatus) != groupsStatus {
			continue
		}
		counts[g.LinkStatus]++
		shown++
		table.Append([]string{
			truncate(g.BaseName, 35),
			g.Vendor,
			g.ProductType,
			fmt.Sprintf("%d", len(g.Members)),
			linkStatusColor(g.LinkStatus),
		})
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ %d groups", shown)
	if counts[models.LinkStatusNotLinked]+counts[models.LinkStatusPartiallyLinked] > 0 {
		color.Yellow("  ⚠ %d not linked, %d partially linked",
			counts[models.LinkStatusNotLinked], counts[models.LinkStatusPartiallyLinked])
	}
	fmt.Println()
	return nil
}

func runGroupsLink(cmd *cobra.Command, args []string) error {
	printHeader("Linking group")

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

	groups := grouping.DetectProductGroups(drafts.ApplyTo(snap.Products))
	g, ok := grouping.FindGroup(groups, args[0])
	if !ok {
		color.Red("  Error: no group %q", args[0])
		return fmt.Errorf("group not found: %s", args[0])
	}

	originals := make(map[string]models.Product, len(snap.Products))
	for _, p := range snap.Products {
		originals[p.ID] = p
	}

	values := grouping.LinkGroup(g)
	for _, m := range g.Members {
		orig := originals[m.ID]
		drafts.SetCell(m.ID, models.KeySameProduct, values[m.ID], orig.Metafield(models.KeySameProduct))
		fmt.Printf("  • %s\n", m.Title)
	}
	if err := saveDrafts(drafts); err != nil {
		return err
	}

	fmt.Println()
	color.Green("  ✓ Staged links for %d products in %s", len(g.Members), g.BaseName)
	color.Green("  ✓ %d pending changes (run 'metaops save' to apply)", drafts.Len())
	fmt.Println()
	return nil
}

func runGroupsAutolink(cmd *cobra.Command, args []string) error {
	printHeader("Auto-link suggestions")

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

	vendors := cfg.Grouping.AutoLinkVendors
	if len(autolinkVendor) > 0 {
		vendors = autolinkVendor
	}

	effective := drafts.ApplyTo(snap.Products)
	suggestions := grouping.DetectAutoLinks(effective, vendors)
	if len(suggestions) == 0 {
		color.Green("  ✓ All groups are fully linked")
		fmt.Println()
		return nil
	}

	ids := make([]string, 0, len(suggestions))
	for id := range suggestions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	originals := make(map[string]models.Product, len(snap.Products))
	for _, p := range snap.Products {
		originals[p.ID] = p
	}

	table := newTable("Product", "Links", "Proposed")
	for _, id := range ids {
		current := metafields.ParseGIDList(drafts.EffectiveValue(originals[id], models.KeySameProduct))
		table.Append([]string{
			truncate(productLabel(effective, id), 40),
			fmt.Sprintf("%d", len(current)),
			fmt.Sprintf("%d", len(suggestions[id])),
		})
		if autolinkApply {
			orig := originals[id]
			drafts.SetCell(id, models.KeySameProduct, metafields.SerializeGIDList(suggestions[id]), orig.Metafield(models.KeySameProduct))
		}
	}
	table.Render()
	fmt.Println()

	if !autolinkApply {
		color.Yellow("  %d products can be linked (use --apply to stage)", len(ids))
		fmt.Println()
		return nil
	}

	if err := saveDrafts(drafts); err != nil {
		return err
	}
	color.Green("  ✓ Staged links for %d products", len(ids))
	color.Green("  ✓ %d pending changes (run 'metaops save' to apply)", drafts.Len())
	fmt.Println()
	return nil
}
