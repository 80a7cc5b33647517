// Package images validates, resizes and uploads image files through the
// staged upload protocol.
package images

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	"github.com/badno/metaops/pkg/models"
	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
)

// ResizeOptions controls how Prepare rewrites an image before upload
type ResizeOptions struct {
	MaxEdge int    // Downscale so neither side exceeds this, 0 = keep
	Square  int    // Center-crop to a square of this size, 0 = keep
	WorkDir string // Where rewritten images are written
}

// Prepare validates path as an image and returns its upload descriptor.
// When resizing applies, the descriptor points at the rewritten copy.
func Prepare(path string, opts ResizeOptions) (models.UploadFile, error) {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return models.UploadFile{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	mimeType := mt.String()
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return models.UploadFile{}, fmt.Errorf("%s is not an image (%s)", filepath.Base(path), mimeType)
	}

	src := path
	if opts.MaxEdge > 0 || opts.Square > 0 {
		src, err = resize(path, opts)
		if err != nil {
			return models.UploadFile{}, fmt.Errorf("failed to resize %s: %w", filepath.Base(path), err)
		}
	}

	info, err := os.Stat(src)
	if err != nil {
		return models.UploadFile{}, err
	}

	return models.UploadFile{
		Path:     src,
		Filename: filepath.Base(path),
		MimeType: mimeType,
		FileSize: info.Size(),
	}, nil
}

// resize writes a rewritten copy into opts.WorkDir and returns its path.
// Images already within bounds are returned unchanged.
func resize(srcPath string, opts ResizeOptions) (string, error) {
	src, err := imaging.Open(srcPath)
	if err != nil {
		return "", err
	}

	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var out image.Image
	switch {
	case opts.Square > 0:
		var cropped image.Image
		if width > height {
			offset := (width - height) / 2
			cropped = imaging.Crop(src, image.Rect(offset, 0, offset+height, height))
		} else if height > width {
			offset := (height - width) / 2
			cropped = imaging.Crop(src, image.Rect(0, offset, width, offset+width))
		} else {
			cropped = src
		}
		out = imaging.Resize(cropped, opts.Square, opts.Square, imaging.Lanczos)
	case width > opts.MaxEdge || height > opts.MaxEdge:
		out = imaging.Fit(src, opts.MaxEdge, opts.MaxEdge, imaging.Lanczos)
	default:
		return srcPath, nil
	}

	dir := opts.WorkDir
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "metaops-uploads")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	destPath := filepath.Join(dir, filepath.Base(srcPath))
	if err := imaging.Save(out, destPath); err != nil {
		return "", err
	}
	return destPath, nil
}

// FormatSize renders a byte count for display
func FormatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
