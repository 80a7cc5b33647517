package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/badno/metaops/internal/images"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	uploadAlt     string
	uploadMaxEdge int
	uploadSquare  int
)

var mediaCmd = &cobra.Command{
	Use:   "media",
	Short: "Manage product images",
}

var mediaListCmd = &cobra.Command{
	Use:   "list [product]",
	Short: "List a product's images",
	Args:  cobra.ExactArgs(1),
	RunE:  runMediaList,
}

var mediaUploadCmd = &cobra.Command{
	Use:   "upload [product] [file or url...]",
	Short: "Upload images to a product",
	Long: `Upload local images or image URLs to a product through staged uploads.
Images can be downscaled or cropped square before upload.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runMediaUpload,
}

var mediaDeleteCmd = &cobra.Command{
	Use:   "delete [product] [media-id...]",
	Short: "Delete product images",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMediaDelete,
}

var mediaReorderCmd = &cobra.Command{
	Use:   "reorder [product] [media-id:position...]",
	Short: "Move product images",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runMediaReorder,
}

func init() {
	for _, c := range []*cobra.Command{mediaUploadCmd, filesCreateCmd} {
		c.Flags().StringVar(&uploadAlt, "alt", "", "Alt text")
		c.Flags().IntVar(&uploadMaxEdge, "max-edge", 0, "Downscale so no side exceeds this many pixels")
		c.Flags().IntVar(&uploadSquare, "square", 0, "Center-crop to a square of this size")
	}

	mediaCmd.AddCommand(mediaListCmd)
	mediaCmd.AddCommand(mediaUploadCmd)
	mediaCmd.AddCommand(mediaDeleteCmd)
	mediaCmd.AddCommand(mediaReorderCmd)
}

// productRef turns a numeric id into a product gid
func productRef(ref string) string {
	return metafields.ToProductGID(ref)
}

func runMediaList(cmd *cobra.Command, args []string) error {
	printHeader("Product media")

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	media, err := client.ProductMedia(ctx, productRef(args[0]))
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	table := newTable("#", "ID", "Size", "Status", "Alt")
	for i, m := range media {
		size := ""
		if m.Width > 0 {
			size = fmt.Sprintf("%dx%d", m.Width, m.Height)
		}
		table.Append([]string{fmt.Sprintf("%d", i), metafields.ExtractID(m.ID), size, strings.ToLower(m.Status), truncate(m.Alt, 30)})
	}
	table.Render()
	fmt.Println()

	color.Green("  ✓ %d images", len(media))
	fmt.Println()
	return nil
}

// prepareUploads downloads URLs and validates and resizes every file
func prepareUploads(ctx context.Context, refs []string) ([]models.UploadFile, func(), error) {
	workDir, err := os.MkdirTemp("", "metaops-upload-")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() { os.RemoveAll(workDir) }

	fetcher := images.NewFetcher(nil, workDir)
	opts := images.ResizeOptions{MaxEdge: uploadMaxEdge, Square: uploadSquare, WorkDir: workDir}

	files := make([]models.UploadFile, 0, len(refs))
	for _, ref := range refs {
		path := ref
		if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
			if path, err = fetcher.Download(ctx, ref); err != nil {
				cleanup()
				return nil, nil, err
			}
		}
		f, err := images.Prepare(path, opts)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		fmt.Printf("  • %s (%s, %s)\n", f.Filename, f.MimeType, images.FormatSize(f.FileSize))
		files = append(files, f)
	}
	fmt.Println()
	return files, cleanup, nil
}

func runMediaUpload(cmd *cobra.Command, args []string) error {
	printHeader("Uploading images")

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	files, cleanup, err := prepareUploads(ctx, args[1:])
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}
	defer cleanup()

	bar := newProgressBar(len(files), "Uploading")
	uploader := images.NewUploader(client, nil, log)
	media, err := uploader.UploadProductMedia(ctx, productRef(args[0]), files, uploadAlt, func(completed, total int) {
		bar.Set(completed)
	})
	fmt.Println()
	fmt.Println()
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("media uploaded")
	color.Green("  ✓ Attached %d images", len(media))
	fmt.Println()
	return nil
}

func runMediaDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	ids := make([]string, 0, len(args)-1)
	for _, id := range args[1:] {
		ids = append(ids, mediaGID(id))
	}

	deleted, err := client.ProductDeleteMedia(ctx, productRef(args[0]), ids)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("media deleted")
	color.Green("  ✓ Deleted %d images", len(deleted))
	fmt.Println()
	return nil
}

func runMediaReorder(cmd *cobra.Command, args []string) error {
	moves := make([]models.MediaMove, 0, len(args)-1)
	for _, arg := range args[1:] {
		id, pos, ok := strings.Cut(arg, ":")
		if !ok || id == "" || pos == "" {
			return fmt.Errorf("invalid move %q, expected media-id:position", arg)
		}
		moves = append(moves, models.MediaMove{ID: mediaGID(id), NewPosition: pos})
	}

	ctx, cancel := signalContext()
	defer cancel()

	client, err := connectedClient(ctx)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	job, err := client.ProductReorderMedia(ctx, productRef(args[0]), moves)
	if err != nil {
		color.Red("  Error: %v", err)
		return err
	}

	invalidateCache("media reordered")
	color.Green("  ✓ Reorder queued (%s)", job)
	fmt.Println()
	return nil
}

// mediaGID expands a numeric media id
func mediaGID(id string) string {
	if strings.HasPrefix(id, "gid://") {
		return id
	}
	return "gid://shopify/MediaImage/" + id
}
