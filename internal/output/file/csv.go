package file

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/badno/metaops/internal/output"
	"github.com/badno/metaops/pkg/models"
)

const CSVAdapterName = "csv"

// CSVAdapter writes the product grid as CSV
type CSVAdapter struct {
	dirAdapter
}

// NewCSVAdapter creates a new CSV file adapter
func NewCSVAdapter(cfg Config) *CSVAdapter {
	return &CSVAdapter{newDirAdapter(CSVAdapterName, []output.Format{output.FormatCSV}, cfg)}
}

// ExportProducts writes one row per product with the selected metafield columns
func (a *CSVAdapter) ExportProducts(ctx context.Context, products []models.Product, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{StartedAt: time.Now()}

	if err := a.ensure(ctx); err != nil {
		result.Error = err
		return result, err
	}

	filename := a.destination(opts, "products", "csv")
	if opts.DryRun {
		result.ProductsExported = len(products)
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d products to %s", len(products), filename)
		result.CompletedAt = time.Now()
		return result, nil
	}

	f, err := os.Create(filename)
	if err != nil {
		result.Error = err
		return result, err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(output.GridHeader(opts.Columns)); err != nil {
		result.Error = err
		return result, err
	}
	for _, p := range products {
		if err := w.Write(output.GridRow(p, opts.Columns)); err != nil {
			result.Error = err
			return result, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		result.Error = err
		return result, err
	}

	result.Destination = filename
	result.ProductsExported = len(products)
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d products to %s", len(products), filename)
	result.CompletedAt = time.Now()
	return result, nil
}
