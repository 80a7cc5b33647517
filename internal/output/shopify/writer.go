// Package shopify persists metafield updates through the Admin GraphQL API.
package shopify

import (
	"context"
	"fmt"

	"github.com/badno/metaops/internal/output"
	admin "github.com/badno/metaops/internal/shopify"
	"github.com/badno/metaops/pkg/models"
	"github.com/sirupsen/logrus"
)

const WriterName = "shopify"

// MetafieldAPI is the subset of the Admin client used for writes
type MetafieldAPI interface {
	MetafieldsSet(ctx context.Context, inputs []models.MetafieldInput) (admin.UserErrors, error)
	MetafieldsDelete(ctx context.Context, inputs []models.MetafieldInput) (admin.UserErrors, error)
}

// Writer splits updates into set and delete streams and sends them in
// bounded batches.
type Writer struct {
	api       MetafieldAPI
	batchSize int
	log       logrus.FieldLogger
}

var _ output.MetafieldWriter = (*Writer)(nil)

// NewWriter creates a writer; batchSize is capped at the API limit
func NewWriter(api MetafieldAPI, batchSize int, log logrus.FieldLogger) *Writer {
	if batchSize <= 0 || batchSize > admin.MaxMetafieldsPerSet {
		batchSize = admin.MaxMetafieldsPerSet
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Writer{api: api, batchSize: batchSize, log: log.WithField("component", "metafield-writer")}
}

// Split flattens updates into set inputs and delete inputs. Empty values
// are deletes.
func Split(updates []models.BulkMetafieldUpdate) (sets, deletes []models.MetafieldInput) {
	for _, u := range updates {
		for _, mf := range u.Metafields {
			in := models.MetafieldInput{
				OwnerID:   u.ProductID,
				Namespace: mf.Namespace,
				Key:       mf.Key,
				Value:     mf.Value,
				Type:      mf.Type,
			}
			if mf.Value == "" {
				deletes = append(deletes, in)
			} else {
				sets = append(sets, in)
			}
		}
	}
	return sets, deletes
}

// UpdateMetafields writes every update. User errors and failed delete
// batches are collected in the result; a failed set batch aborts the call.
func (w *Writer) UpdateMetafields(ctx context.Context, updates []models.BulkMetafieldUpdate) (models.MutationResult, error) {
	if len(updates) == 0 {
		return models.MutationResult{Errors: []string{}}, fmt.Errorf("no updates provided")
	}

	sets, deletes := Split(updates)
	errs := []string{}

	for i, batch := range chunk(sets, w.batchSize) {
		w.log.WithFields(logrus.Fields{"batch": i + 1, "size": len(batch)}).Debug("metafieldsSet")

		userErrs, err := w.api.MetafieldsSet(ctx, batch)
		if err != nil {
			return models.MutationResult{Errors: errs}, fmt.Errorf("failed to set metafields: %w", err)
		}
		errs = append(errs, userErrs.Strings()...)
	}

	for i, batch := range chunk(deletes, w.batchSize) {
		w.log.WithFields(logrus.Fields{"batch": i + 1, "size": len(batch)}).Debug("metafieldsDelete")

		userErrs, err := w.api.MetafieldsDelete(ctx, batch)
		if err != nil {
			errs = append(errs, "Failed to clear metafields: "+err.Error())
			continue
		}
		errs = append(errs, userErrs.Strings()...)
	}

	return models.MutationResult{
		Success:          len(errs) == 0,
		BatchesProcessed: batches(len(sets), w.batchSize) + batches(len(deletes), w.batchSize),
		Errors:           errs,
	}, nil
}

func chunk(inputs []models.MetafieldInput, size int) [][]models.MetafieldInput {
	var out [][]models.MetafieldInput
	for i := 0; i < len(inputs); i += size {
		end := i + size
		if end > len(inputs) {
			end = len(inputs)
		}
		out = append(out, inputs[i:end])
	}
	return out
}

func batches(n, size int) int {
	return (n + size - 1) / size
}
