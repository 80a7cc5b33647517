package file

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/badno/metaops/internal/output"
)

// Config holds file output configuration
type Config struct {
	OutputDir string // Directory for output files
	Pretty    bool   // Pretty-print JSON
}

// dirAdapter holds the behaviour shared by the file adapters
type dirAdapter struct {
	*output.BaseAdapter
	config Config
}

func newDirAdapter(name string, formats []output.Format, cfg Config) dirAdapter {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	return dirAdapter{
		BaseAdapter: output.NewBaseAdapter(name, formats),
		config:      cfg,
	}
}

// Connect creates the output directory
func (a *dirAdapter) Connect(ctx context.Context) error {
	if err := os.MkdirAll(a.config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	a.SetConnected(true)
	return nil
}

// Close cleans up resources
func (a *dirAdapter) Close() error {
	a.SetConnected(false)
	return nil
}

// Test verifies the output directory is writable
func (a *dirAdapter) Test(ctx context.Context) error {
	testFile := filepath.Join(a.config.OutputDir, ".test")
	f, err := os.Create(testFile)
	if err != nil {
		return fmt.Errorf("output directory not writable: %w", err)
	}
	f.Close()
	os.Remove(testFile)
	return nil
}

// ensure connects on first use
func (a *dirAdapter) ensure(ctx context.Context) error {
	if a.IsConnected() {
		return nil
	}
	return a.Connect(ctx)
}

// destination returns opts.OutputPath or a timestamped file in the output dir
func (a *dirAdapter) destination(opts output.ExportOptions, prefix, ext string) string {
	if opts.OutputPath != "" {
		return opts.OutputPath
	}
	timestamp := time.Now().Format("2006-01-02_150405")
	return filepath.Join(a.config.OutputDir, fmt.Sprintf("%s_%s.%s", prefix, timestamp, ext))
}

// Register adds every file adapter to r
func Register(r *output.Registry, cfg Config) error {
	for _, a := range []output.Adapter{NewCSVAdapter(cfg), NewXLSXAdapter(cfg), NewJSONAdapter(cfg)} {
		if err := r.Register(a); err != nil {
			return err
		}
	}
	return nil
}
