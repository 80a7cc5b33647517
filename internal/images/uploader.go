package images

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/badno/metaops/pkg/models"
	"github.com/sirupsen/logrus"
)

// StagingAPI is the subset of the Admin client used by uploads
type StagingAPI interface {
	StagedUploadsCreate(ctx context.Context, files []models.UploadFile) ([]models.StagedTarget, error)
	ProductCreateMedia(ctx context.Context, productID string, resourceURLs []string, alt string) ([]models.MediaItem, error)
	FileCreate(ctx context.Context, resourceURLs []string, alt string) ([]models.FileRecord, error)
}

// Uploader runs the three-phase staged upload: stage targets, POST each
// file to its target, then confirm the resource URLs.
type Uploader struct {
	api    StagingAPI
	client *http.Client
	log    logrus.FieldLogger
}

// NewUploader creates an uploader; client may be nil
func NewUploader(api StagingAPI, client *http.Client, log logrus.FieldLogger) *Uploader {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Minute}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Uploader{api: api, client: client, log: log.WithField("component", "uploader")}
}

// Stage requests targets and uploads every file, returning resource URLs in
// file order. onProgress is called after each file.
func (u *Uploader) Stage(ctx context.Context, files []models.UploadFile, onProgress func(completed, total int)) ([]string, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to upload")
	}

	targets, err := u.api.StagedUploadsCreate(ctx, files)
	if err != nil {
		return nil, fmt.Errorf("failed to create staged uploads: %w", err)
	}
	if len(targets) != len(files) {
		return nil, fmt.Errorf("expected %d staged targets, got %d", len(files), len(targets))
	}

	resourceURLs := make([]string, 0, len(files))
	for i, target := range targets {
		if err := u.post(ctx, target, files[i]); err != nil {
			return nil, err
		}
		resourceURLs = append(resourceURLs, target.ResourceURL)
		u.log.WithFields(logrus.Fields{"file": files[i].Filename, "size": files[i].FileSize}).Debug("staged")
		if onProgress != nil {
			onProgress(i+1, len(files))
		}
	}
	return resourceURLs, nil
}

// UploadProductMedia uploads files and attaches them to a product
func (u *Uploader) UploadProductMedia(ctx context.Context, productID string, files []models.UploadFile, alt string, onProgress func(completed, total int)) ([]models.MediaItem, error) {
	urls, err := u.Stage(ctx, files, onProgress)
	if err != nil {
		return nil, err
	}
	media, err := u.api.ProductCreateMedia(ctx, productID, urls, alt)
	if err != nil {
		return nil, fmt.Errorf("failed to confirm upload: %w", err)
	}
	return media, nil
}

// UploadFiles uploads files as standalone store files and returns their ids
func (u *Uploader) UploadFiles(ctx context.Context, files []models.UploadFile, alt string, onProgress func(completed, total int)) ([]string, error) {
	urls, err := u.Stage(ctx, files, onProgress)
	if err != nil {
		return nil, err
	}
	records, err := u.api.FileCreate(ctx, urls, alt)
	if err != nil {
		return nil, fmt.Errorf("failed to create files: %w", err)
	}
	ids := make([]string, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}
	return ids, nil
}

// post sends the target parameters followed by the file as multipart form data
func (u *Uploader) post(ctx context.Context, target models.StagedTarget, file models.UploadFile) error {
	f, err := os.Open(file.Path)
	if err != nil {
		return err
	}
	defer f.Close()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, p := range target.Parameters {
		if err := form.WriteField(p.Name, p.Value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("file", file.Filename)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, f); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", file.Filename, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("failed to upload %s: HTTP %d", file.Filename, resp.StatusCode)
	}
	return nil
}
