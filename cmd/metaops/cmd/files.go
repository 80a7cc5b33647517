package cmd

import (
	"fmt"

	"github.com/badno/metaops/internal/images"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	filesAttach string
	filesField  string
)

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Resolve and create store files",
}

var filesResolveCmd = &cobra.Command{
	Use:   "resolve [id...]",
	Short: "Show what reference ids point at",
	Long:  `Resolve file, page, collection, product and metaobject ids to titles and URLs.`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runFilesResolve,
}

var filesCreateCmd = &cobra.Command{
	Use:   "create [file or url...]",
	Short: "Upload files for file reference fields",
	Long: `Upload images as store files. With --attach the new file ids are staged
into a file field of that product (flat, men_images or women_images).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFilesCreate,
}

func init() {
	filesCreateCmd.Flags().StringVar(&filesAttach, "attach", "", "Product to stage the files on")
	filesCreateCmd.Flags().StringVar(&filesField, "field", string(models.KeyFlat), "File field to stage into")

	filesCmd.AddCommand(filesResolveCmd)
	filesCmd.AddCommand(filesCreateCmd)
}

func runFilesResolve(cmd *cobra.Command, args []string) error {
	printHeader("Resolving references")

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	var ids []string
	for _, a := range args {
		if list := metafields.ParseGIDList(a); len(list) > 0 {
			ids = append(ids, list...)
			continue
		}
		ids = append(ids, a)
	}

	nodes, err := client.Nodes(ctx, ids)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	table := newTable("ID", "Type", "Title", "URL")
	found := 0
	for i, n := range nodes {
		if n == nil {
			table.Append([]string{ids[i], color.RedString("not found"), "", ""})
			continue
		}
		found++
		title := n.Title
		if title == "" {
			title = n.Alt
		}
		if title == "" {
			title = n.Handle
		}
		table.Append([]string{metafields.ExtractID(n.ID), n.Typename, truncate(title, 30), truncate(n.URL, 50)})
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ Resolved %d of %d", found, len(ids))
	fmt.Println()
	return nil
}

func runFilesCreate(cmd *cobra.Command, args []string) error {
	printHeader("Creating files")

	var field models.MetafieldKey
	if filesAttach != "" {
		key, err := metafields.ParseKey(filesField)
		if err != nil {
			return err
		}
		def, _ := metafields.Lookup(key)
		if def.Type != metafields.TypeFileReference && def.Type != metafields.TypeFileReferenceList {
			return fmt.Errorf("%s is not a file field", key)
		}
		field = key
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	files, cleanup, err := prepareUploads(ctx, args)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer cleanup()

	bar := newProgressBar(len(files), "Uploading")
	ids, err := images.NewUploader(client, nil, log).UploadFiles(ctx, files, uploadAlt, func(completed, total int) {
		bar.Set(completed)
	})
	fmt.Println()
	fmt.Println()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	for _, id := range ids {
		fmt.Printf("  • %s\n", id)
	}
	fmt.Println()
	color.Green("  ✓ Created %d files", len(ids))

	if filesAttach == "" || len(ids) == 0 {
		fmt.Println()
		return nil
	}

	snap, err := loadSnapshot(ctx)
	if err != nil {
		return err
	}
	p, ok := findProduct(snap.Products, filesAttach)
	if !ok {
		return fmt.Errorf("product not found: %s", filesAttach)
	}
	drafts, err := openDrafts()
	if err != nil {
		return err
	}

	def, _ := metafields.Lookup(field)
	value := ids[0]
	if def.IsList() {
		value = metafields.AddToList(drafts.EffectiveValue(p, field), ids...)
	}
	drafts.SetCell(p.ID, field, value, p.Metafield(field))
	if err := saveDrafts(drafts); err != nil {
		return err
	}

	color.Green("  ✓ Staged %s on %s", def.Label, p.Title)
	fmt.Println()
	return nil
}
