package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/badno/metaops/internal/output"
	"github.com/badno/metaops/pkg/models"
)

const JSONAdapterName = "json"

// JSONAdapter writes product snapshots and pending-update plans as JSON
type JSONAdapter struct {
	dirAdapter
}

// NewJSONAdapter creates a new JSON file adapter
func NewJSONAdapter(cfg Config) *JSONAdapter {
	return &JSONAdapter{newDirAdapter(JSONAdapterName, []output.Format{output.FormatJSON, output.FormatPlan}, cfg)}
}

// Plan is the dry-run document describing what a save would send
type Plan struct {
	GeneratedAt time.Time                    `json:"generated_at"`
	Products    int                          `json:"products"`
	Sets        int                          `json:"sets"`
	Deletes     int                          `json:"deletes"`
	Updates     []models.BulkMetafieldUpdate `json:"updates"`
}

// NewPlan summarises updates, counting empty values as deletes
func NewPlan(updates []models.BulkMetafieldUpdate) Plan {
	plan := Plan{
		GeneratedAt: time.Now(),
		Products:    len(updates),
		Updates:     updates,
	}
	if plan.Updates == nil {
		plan.Updates = []models.BulkMetafieldUpdate{}
	}
	for _, u := range updates {
		for _, mf := range u.Metafields {
			if mf.Value == "" {
				plan.Deletes++
			} else {
				plan.Sets++
			}
		}
	}
	return plan
}

// ExportProducts writes the products, or the plan of opts.Updates for FormatPlan
func (a *JSONAdapter) ExportProducts(ctx context.Context, products []models.Product, opts output.ExportOptions) (*output.ExportResult, error) {
	result := &output.ExportResult{StartedAt: time.Now()}

	if err := a.ensure(ctx); err != nil {
		result.Error = err
		return result, err
	}

	var (
		doc      any
		count    int
		prefix   = "products"
		noun     = "products"
		filename string
	)
	if opts.Format == output.FormatPlan {
		doc = NewPlan(opts.Updates)
		count = len(opts.Updates)
		prefix = "plan"
		noun = "updates"
	} else {
		doc = products
		count = len(products)
	}
	filename = a.destination(opts, prefix, "json")

	if opts.DryRun {
		result.ProductsExported = count
		result.Success = true
		result.Details = fmt.Sprintf("Dry run: would export %d %s to %s", count, noun, filename)
		result.CompletedAt = time.Now()
		return result, nil
	}

	var (
		data []byte
		err  error
	)
	if a.config.Pretty {
		data, err = json.MarshalIndent(doc, "", "  ")
	} else {
		data, err = json.Marshal(doc)
	}
	if err != nil {
		result.Error = err
		return result, err
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		result.Error = err
		return result, err
	}

	result.Destination = filename
	result.ProductsExported = count
	result.Success = true
	result.Details = fmt.Sprintf("Exported %d %s to %s", count, noun, filename)
	result.CompletedAt = time.Now()
	return result, nil
}
