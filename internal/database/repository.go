// Package database holds the optional save journal. Only run metadata is
// stored; product data stays upstream.
package database

import (
	"context"
	"time"

	"github.com/badno/metaops/pkg/models"
)

// SaveRunRepository stores save run records
type SaveRunRepository interface {
	Add(ctx context.Context, run models.SaveRun) error
	GetRecent(ctx context.Context, limit int) ([]models.SaveRun, error)
	Since(ctx context.Context, since time.Time) ([]models.SaveRun, error)
	Count(ctx context.Context) (int64, error)
}

// RunMirror receives copies of save runs for analytics
type RunMirror interface {
	InsertSaveRuns(ctx context.Context, runs []models.SaveRun) error
}
