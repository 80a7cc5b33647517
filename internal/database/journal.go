package database

import (
	"context"
	"fmt"

	"github.com/badno/metaops/pkg/models"
	"github.com/hashicorp/go-multierror"
)

// Journal records save runs to the primary repository and, when set, the
// analytics mirror.
type Journal struct {
	repo   SaveRunRepository
	mirror RunMirror
}

// NewJournal creates a journal; mirror may be nil
func NewJournal(repo SaveRunRepository, mirror RunMirror) *Journal {
	return &Journal{repo: repo, mirror: mirror}
}

// RecordSave stores run everywhere, attempting each destination even if
// an earlier one fails.
func (j *Journal) RecordSave(ctx context.Context, run models.SaveRun) error {
	var result *multierror.Error

	if j.repo != nil {
		if err := j.repo.Add(ctx, run); err != nil {
			result = multierror.Append(result, fmt.Errorf("postgres: %w", err))
		}
	}
	if j.mirror != nil {
		if err := j.mirror.InsertSaveRuns(ctx, []models.SaveRun{run}); err != nil {
			result = multierror.Append(result, fmt.Errorf("clickhouse: %w", err))
		}
	}
	return result.ErrorOrNil()
}

// Recent returns the latest runs from the primary repository
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.SaveRun, error) {
	if j.repo == nil {
		return nil, fmt.Errorf("journal repository not configured")
	}
	return j.repo.GetRecent(ctx, limit)
}
