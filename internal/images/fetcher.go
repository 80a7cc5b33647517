package images

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

// Fetcher downloads remote images so they can be re-uploaded
type Fetcher struct {
	client    *http.Client
	outputDir string
}

// NewFetcher creates a fetcher writing into outputDir
func NewFetcher(client *http.Client, outputDir string) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if outputDir == "" {
		outputDir = filepath.Join(os.TempDir(), "metaops-downloads")
	}
	return &Fetcher{client: client, outputDir: outputDir}
}

// Download saves rawURL to the output directory and returns the local path
func (f *Fetcher) Download(ctx context.Context, rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "/" || name == "." {
		name = "download"
	}

	if err := os.MkdirAll(f.outputDir, 0755); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download: HTTP %d", resp.StatusCode)
	}

	destPath := filepath.Join(f.outputDir, name)
	out, err := os.Create(destPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", err
	}
	return destPath, nil
}
