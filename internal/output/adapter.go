package output

import (
	"context"
	"time"

	"github.com/badno/metaops/pkg/models"
)

// Format specifies the output format
type Format string

const (
	FormatCSV  Format = "csv"  // Grid CSV, one row per product
	FormatXLSX Format = "xlsx" // Grid spreadsheet
	FormatJSON Format = "json" // Product snapshot
	FormatPlan Format = "plan" // Pending updates, as they would be sent
)

// ExportOptions configures export behavior
type ExportOptions struct {
	Format     Format                       // Output format
	OutputPath string                       // File path, generated when empty
	Columns    []models.MetafieldKey        // Metafield columns, all when empty
	Updates    []models.BulkMetafieldUpdate // Pending updates for FormatPlan
	DryRun     bool                         // Preview without writing
}

// ExportResult represents the result of an export operation
type ExportResult struct {
	Destination      string // Where data was exported
	ProductsExported int    // Number of products (or updates) exported
	Success          bool
	Error            error
	StartedAt        time.Time
	CompletedAt      time.Time
	Details          string // Human-readable details
}

// Adapter writes products to a file destination
type Adapter interface {
	// Name returns the adapter's unique identifier
	Name() string

	// Connect prepares the destination
	Connect(ctx context.Context) error

	// Close cleans up any resources
	Close() error

	// ExportProducts exports products to the destination
	ExportProducts(ctx context.Context, products []models.Product, opts ExportOptions) (*ExportResult, error)

	// Test verifies the destination is usable
	Test(ctx context.Context) error

	// SupportsFormat checks if the adapter supports a specific format
	SupportsFormat(format Format) bool
}

// MetafieldWriter persists grouped metafield updates upstream.
// The returned error covers failures of the call as a whole; per-batch
// failures are reported in MutationResult.Errors.
type MetafieldWriter interface {
	UpdateMetafields(ctx context.Context, updates []models.BulkMetafieldUpdate) (models.MutationResult, error)
}

// BaseAdapter provides common functionality for adapters
type BaseAdapter struct {
	name      string
	connected bool
	formats   []Format
}

// NewBaseAdapter creates a new base adapter
func NewBaseAdapter(name string, formats []Format) *BaseAdapter {
	return &BaseAdapter{
		name:    name,
		formats: formats,
	}
}

func (b *BaseAdapter) Name() string {
	return b.name
}

func (b *BaseAdapter) IsConnected() bool {
	return b.connected
}

func (b *BaseAdapter) SetConnected(connected bool) {
	b.connected = connected
}

func (b *BaseAdapter) SupportsFormat(format Format) bool {
	for _, f := range b.formats {
		if f == format {
			return true
		}
	}
	return false
}
