package cmd

import (
	"fmt"

	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	modelName     string
	modelHeight   string
	modelSizeWorn string
	modelNotes    string
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Manage model metaobjects",
	Long: `Manage the "model" metaobjects used to fill model_info. The metaobject
definition is created on first write if it does not exist.`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List models",
	RunE:  runModelsList,
}

var modelsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a model",
	RunE:  runModelsCreate,
}

var modelsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsUpdate,
}

var modelsDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a model",
	Args:  cobra.ExactArgs(1),
	RunE:  runModelsDelete,
}

func init() {
	for _, c := range []*cobra.Command{modelsCreateCmd, modelsUpdateCmd} {
		c.Flags().StringVar(&modelName, "name", "", "Model name")
		c.Flags().StringVar(&modelHeight, "height", "", "Height, e.g. 180 cm")
		c.Flags().StringVar(&modelSizeWorn, "size", "", "Size worn, e.g. M")
		c.Flags().StringVar(&modelNotes, "notes", "", "Free-form notes")
	}
	modelsCreateCmd.MarkFlagRequired("name")

	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsCreateCmd)
	modelsCmd.AddCommand(modelsUpdateCmd)
	modelsCmd.AddCommand(modelsDeleteCmd)
}

func runModelsList(cmd *cobra.Command, args []string) error {
	printHeader("Models")

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	list, err := client.Models(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	table := newTable("ID", "Name", "Height", "Size", "Notes")
	for _, m := range list {
		table.Append([]string{m.ID, m.Name, m.Height, m.SizeWorn, truncate(m.Notes, 30)})
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ %d models", len(list))
	fmt.Println()
	return nil
}

func runModelsCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	created, err := client.CreateModel(ctx, models.Model{
		Name:     modelName,
		Height:   modelHeight,
		SizeWorn: modelSizeWorn,
		Notes:    modelNotes,
	})
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("model created")
	color.Green("  ✓ Created %s (%s)", created.Name, created.ID)
	fmt.Println()
	return nil
}

func runModelsUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	list, err := client.Models(ctx)
	if err != nil {
		return err
	}
	var current *models.Model
	for i := range list {
		if list[i].ID == args[0] || list[i].Handle == args[0] {
			current = &list[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("model not found: %s", args[0])
	}

	flags := cmd.Flags()
	if flags.Changed("name") {
		current.Name = modelName
	}
	if flags.Changed("height") {
		current.Height = modelHeight
	}
	if flags.Changed("size") {
		current.SizeWorn = modelSizeWorn
	}
	if flags.Changed("notes") {
		current.Notes = modelNotes
	}

	if err := client.UpdateModel(ctx, *current); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("model updated")
	color.Green("  ✓ Updated %s", current.Name)
	fmt.Println()
	return nil
}

func runModelsDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	if err := client.DeleteModel(ctx, args[0]); err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("model deleted")
	color.Green("  ✓ Deleted %s", args[0])
	fmt.Println()
	return nil
}

// invalidateCache marks the cached snapshot stale after a direct write
func invalidateCache(reason string) {
	cache := openCache()
	cache.Invalidate(reason)
	if err := cache.Save(); err != nil {
		log.Warnf("failed to write snapshot cache: %v", err)
	}
}
