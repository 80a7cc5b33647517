// Package file reads snapshots from JSON exports for offline work.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/badno/metaops/internal/source"
	"github.com/badno/metaops/pkg/models"
)

const ConnectorName = "file"

// Connector implements source.Connector over a JSON file holding either a
// full snapshot object or a bare products array.
type Connector struct {
	*source.BaseConnector
	path string
}

// NewConnector creates a connector for path
func NewConnector(path string) *Connector {
	return &Connector{
		BaseConnector: source.NewBaseConnector(ConnectorName, []source.Capability{
			source.CapabilityProducts,
			source.CapabilityPages,
			source.CapabilityCollections,
			source.CapabilityModels,
		}),
		path: path,
	}
}

// Connect checks the file exists
func (c *Connector) Connect(ctx context.Context) error {
	if _, err := os.Stat(c.path); err != nil {
		return fmt.Errorf("snapshot file not readable: %w", err)
	}
	c.SetConnected(true)
	return nil
}

// Close cleans up resources
func (c *Connector) Close() error {
	c.SetConnected(false)
	return nil
}

// Test checks the file exists
func (c *Connector) Test(ctx context.Context) error {
	return c.Connect(ctx)
}

// Snapshot reads and normalises the file
func (c *Connector) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	snap := &models.Snapshot{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &snap.Products); err != nil {
			return nil, fmt.Errorf("failed to parse products file: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file: %w", err)
	}
	return source.Normalize(snap), nil
}
