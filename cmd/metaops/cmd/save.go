package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/badno/metaops/internal/orchestrator"
	outputfile "github.com/badno/metaops/internal/output/file"
	outputshopify "github.com/badno/metaops/internal/output/shopify"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	saveClear  string
	saveDryRun bool
)

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save pending edits to Shopify",
	Long: `Send every pending edit to Shopify. Each product is saved in turn with
metafield writes batched 25 at a time; empty values delete the metafield.
Press Ctrl-C to stop after the current product, twice to abort the request.`,
	RunE: runSave,
}

func init() {
	saveCmd.Flags().StringVar(&saveClear, "clear", "", "Which edits to drop afterwards: all (only on full success) or succeeded (default from config)")
	saveCmd.Flags().BoolVar(&saveDryRun, "dry-run", false, "Show what would be sent without saving")
}

func runSave(cmd *cobra.Command, args []string) error {
	printHeader("Saving metafields")

	policyName := cfg.Save.ClearPolicy
	if saveClear != "" {
		policyName = saveClear
	}
	policy, err := orchestrator.ParseClearPolicy(policyName)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	drafts, err := openDrafts()
	if err != nil {
		return err
	}
	if drafts.Len() == 0 {
		color.Green("  ✓ No changes to save")
		fmt.Println()
		return nil
	}

	if saveDryRun {
		plan := outputfile.NewPlan(drafts.Updates())
		color.Yellow("  Dry run: %d products, %d sets, %d deletes", plan.Products, plan.Sets, plan.Deletes)
		fmt.Println()
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	cache := openCache()
	opts := []orchestrator.Option{
		orchestrator.WithCache(cache),
		orchestrator.WithLogger(log),
	}

	if cfg.Journal.Enabled {
		journal, closeJournal, err := openJournal(ctx)
		if err != nil {
			color.Yellow("  ⚠ Save journal unavailable: %v", err)
		} else {
			defer closeJournal()
			opts = append(opts, orchestrator.WithRecorder(journal, cfg.Shopify.Store))
		}
	}

	writer := outputshopify.NewWriter(client, cfg.Save.BatchSize, log)
	orch := orchestrator.New(drafts, writer, opts...)

	sigs := make(chan os.Signal, 2)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go watchInterrupts(ctx, sigs, func() {
		color.Yellow("\n  Stopping after the current product (Ctrl-C again to abort)")
		orch.Cancel()
	}, cancel)

	updates := drafts.Updates()
	fmt.Printf("  %d changes across %d products\n\n", drafts.Len(), len(updates))

	bar := newProgressBar(len(updates), "Saving")
	result, err := orch.Save(ctx, orchestrator.SaveOptions{
		ClearPolicy: policy,
		OnProgress: func(p orchestrator.Progress) {
			bar.Set(p.Completed)
		},
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	bar.Finish()
	fmt.Println()
	fmt.Println()

	if err := saveDrafts(drafts); err != nil {
		color.Red("  Warning: %v", err)
	}
	cache.AddHistory("save", result.Completed, result.Summary())
	if err := cache.Save(); err != nil {
		log.Warnf("failed to write snapshot cache: %v", err)
	}

	switch {
	case len(result.Errors) > 0:
		color.Red("  ✗ %d errors:", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    • %s\n", e)
		}
		fmt.Println()
		color.Yellow("  Saved %d of %d products, %d batches", len(result.SavedProducts), result.Updates, result.BatchesProcessed)
	case result.Cancelled:
		color.Yellow("  %s", result.Summary())
	default:
		color.Green("  ✓ %s", result.Summary())
		color.Green("  ✓ %d products, %d batches", result.Updates, result.BatchesProcessed)
	}
	if drafts.Len() > 0 {
		color.Yellow("  %d changes still pending", drafts.Len())
	}
	fmt.Println()

	return result.Err()
}

// watchInterrupts calls stop on the first signal and abort on the second.
// It returns once ctx is done.
func watchInterrupts(ctx context.Context, sigs <-chan os.Signal, stop, abort func()) {
	select {
	case <-sigs:
	case <-ctx.Done():
		return
	}
	stop()
	select {
	case <-sigs:
		abort()
	case <-ctx.Done():
	}
}
