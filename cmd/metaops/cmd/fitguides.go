package cmd

import (
	"fmt"

	"github.com/badno/metaops/internal/matcher"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	fitguideApply  bool
	fitguideSeason []string
)

var fitguidesCmd = &cobra.Command{
	Use:   "fitguides",
	Short: "Match products to fitguide and care pages",
}

var fitguidesMatchCmd = &cobra.Command{
	Use:   "match",
	Short: "Suggest fitguide pages by handle",
	Long: `Match products to "{handle-prefix}-fitguide" pages, longest prefix first.
Products tagged with a season use "{prefix}-{season}-fitguide" and may
replace an existing fitguide. Use --apply to stage the matches.`,
	RunE: runFitguidesMatch,
}

var fitguidesPagesCmd = &cobra.Command{
	Use:   "pages",
	Short: "List fitguide and care pages",
	RunE:  runFitguidesPages,
}

func init() {
	fitguidesMatchCmd.Flags().BoolVar(&fitguideApply, "apply", false, "Stage the matches as pending edits")
	fitguidesMatchCmd.Flags().StringSliceVar(&fitguideSeason, "season", nil, "Season tags in priority order (default from config)")

	fitguidesCmd.AddCommand(fitguidesMatchCmd)
	fitguidesCmd.AddCommand(fitguidesPagesCmd)
}

func runFitguidesMatch(cmd *cobra.Command, args []string) error {
	printHeader("Fitguide matching")

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

	seasons := cfg.Fitguide.SeasonTags
	if len(fitguideSeason) > 0 {
		seasons = fitguideSeason
	}

	effective := drafts.ApplyTo(snap.Products)
	m := matcher.NewFitguideMatcher(matcher.FitguidePages(snap.Pages), seasons)
	matches := m.Match(effective)

	originals := make(map[string]models.Product, len(snap.Products))
	for _, p := range snap.Products {
		originals[p.ID] = p
	}

	table := newTable("Product", "Fitguide", "Season", "")
	for _, match := range matches {
		note := ""
		if match.IsOverride {
			note = color.YellowString("replaces current")
		}
		table.Append([]string{truncate(match.Product.Title, 40), match.Page.Handle, match.Season, note})
		if fitguideApply {
			p := originals[match.Product.ID]
			drafts.SetCell(p.ID, models.KeyFitguide, match.Page.ID, p.Metafield(models.KeyFitguide))
		}
	}
	if len(matches) > 0 {
		table.Render()
		fmt.Println()
	}

	actionable := m.Actionable(effective)
	color.Green("  ✓ %d of %d candidate products matched", len(matches), actionable)
	if unmatched := actionable - len(matches); unmatched > 0 {
		color.Yellow("  ⚠ %d products have no matching page", unmatched)
	}

	if fitguideApply && len(matches) > 0 {
		if err := saveDrafts(drafts); err != nil {
			return err
		}
		color.Green("  ✓ %d pending changes (run 'metaops save' to apply)", drafts.Len())
	} else if len(matches) > 0 {
		color.Yellow("  Use --apply to stage these matches")
	}
	fmt.Println()
	return nil
}

func runFitguidesPages(cmd *cobra.Command, args []string) error {
	printHeader("Reference pages")

	ctx, cancel := signalContext()
	defer cancel()

	snap, err := loadSnapshot(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	table := newTable("Kind", "Title", "Handle")
	fitguides := matcher.FitguidePages(snap.Pages)
	care := matcher.CarePages(snap.Pages)
	for _, p := range fitguides {
		table.Append([]string{"fitguide", p.Title, p.Handle})
	}
	for _, p := range care {
		table.Append([]string{"care", p.Title, p.Handle})
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ %d fitguide pages, %d care pages", len(fitguides), len(care))
	fmt.Println()
	return nil
}
