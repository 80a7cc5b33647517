package shopify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
)

// StagedUploadsCreate requests one pre-signed upload target per file
func (c *Client) StagedUploadsCreate(ctx context.Context, files []models.UploadFile) ([]models.StagedTarget, error) {
	input := make([]map[string]any, 0, len(files))
	for _, f := range files {
		input = append(input, map[string]any{
			"filename":   f.Filename,
			"mimeType":   f.MimeType,
			"resource":   "IMAGE",
			"fileSize":   strconv.FormatInt(f.FileSize, 10),
			"httpMethod": "POST",
		})
	}

	var out struct {
		StagedUploadsCreate struct {
			StagedTargets []models.StagedTarget `json:"stagedTargets"`
			UserErrors    UserErrors            `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	if err := c.Do(ctx, stagedUploadsCreateMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, fmt.Errorf("failed to stage uploads: %w", err)
	}
	if err := out.StagedUploadsCreate.UserErrors.Err(); err != nil {
		return nil, err
	}
	if len(out.StagedUploadsCreate.StagedTargets) != len(files) {
		return nil, fmt.Errorf("expected %d staged targets, got %d", len(files), len(out.StagedUploadsCreate.StagedTargets))
	}
	return out.StagedUploadsCreate.StagedTargets, nil
}

// ProductCreateMedia attaches uploaded resources to a product as images
func (c *Client) ProductCreateMedia(ctx context.Context, productID string, resourceURLs []string, alt string) ([]models.MediaItem, error) {
	media := make([]map[string]any, 0, len(resourceURLs))
	for _, u := range resourceURLs {
		media = append(media, map[string]any{
			"originalSource":   u,
			"mediaContentType": "IMAGE",
			"alt":              alt,
		})
	}

	var out struct {
		ProductCreateMedia struct {
			Media           []rawNode  `json:"media"`
			MediaUserErrors UserErrors `json:"mediaUserErrors"`
		} `json:"productCreateMedia"`
	}
	vars := map[string]any{"productId": metafields.ToProductGID(productID), "media": media}
	if err := c.Do(ctx, productCreateMediaMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("failed to create media: %w", err)
	}
	if err := out.ProductCreateMedia.MediaUserErrors.Err(); err != nil {
		return nil, err
	}

	items := make([]models.MediaItem, 0, len(out.ProductCreateMedia.Media))
	for _, n := range out.ProductCreateMedia.Media {
		items = append(items, models.MediaItem{ID: n.ID, Alt: n.Alt, URL: n.url(), Status: n.Status})
	}
	return items, nil
}

// ProductDeleteMedia removes media from a product and returns the deleted ids
func (c *Client) ProductDeleteMedia(ctx context.Context, productID string, mediaIDs []string) ([]string, error) {
	var out struct {
		ProductDeleteMedia struct {
			DeletedMediaIDs []string   `json:"deletedMediaIds"`
			MediaUserErrors UserErrors `json:"mediaUserErrors"`
		} `json:"productDeleteMedia"`
	}
	vars := map[string]any{"productId": metafields.ToProductGID(productID), "mediaIds": mediaIDs}
	if err := c.Do(ctx, productDeleteMediaMutation, vars, &out); err != nil {
		return nil, fmt.Errorf("failed to delete media: %w", err)
	}
	if err := out.ProductDeleteMedia.MediaUserErrors.Err(); err != nil {
		return nil, err
	}
	return out.ProductDeleteMedia.DeletedMediaIDs, nil
}

// ProductReorderMedia moves media to new positions and returns the job id
func (c *Client) ProductReorderMedia(ctx context.Context, productID string, moves []models.MediaMove) (string, error) {
	var out struct {
		ProductReorderMedia struct {
			Job *struct {
				ID string `json:"id"`
			} `json:"job"`
			MediaUserErrors UserErrors `json:"mediaUserErrors"`
		} `json:"productReorderMedia"`
	}
	vars := map[string]any{"id": metafields.ToProductGID(productID), "moves": moves}
	if err := c.Do(ctx, productReorderMediaMutation, vars, &out); err != nil {
		return "", fmt.Errorf("failed to reorder media: %w", err)
	}
	if err := out.ProductReorderMedia.MediaUserErrors.Err(); err != nil {
		return "", err
	}
	if out.ProductReorderMedia.Job == nil {
		return "", nil
	}
	return out.ProductReorderMedia.Job.ID, nil
}

// FileCreate turns uploaded resources into permanent image files
func (c *Client) FileCreate(ctx context.Context, resourceURLs []string, alt string) ([]models.FileRecord, error) {
	files := make([]map[string]any, 0, len(resourceURLs))
	for _, u := range resourceURLs {
		f := map[string]any{"originalSource": u, "contentType": "IMAGE"}
		if alt != "" {
			f["alt"] = alt
		}
		files = append(files, f)
	}

	var out struct {
		FileCreate struct {
			Files      []models.FileRecord `json:"files"`
			UserErrors UserErrors          `json:"userErrors"`
		} `json:"fileCreate"`
	}
	if err := c.Do(ctx, fileCreateMutation, map[string]any{"files": files}, &out); err != nil {
		return nil, fmt.Errorf("failed to create files: %w", err)
	}
	if len(out.FileCreate.UserErrors) > 0 {
		return nil, fmt.Errorf("failed to create files: %s", strings.Join(out.FileCreate.UserErrors.Messages(), ", "))
	}
	return out.FileCreate.Files, nil
}
