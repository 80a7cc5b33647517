package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/badno/metaops/internal/database"
	"github.com/badno/metaops/pkg/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SaveRunRepo implements database.SaveRunRepository for PostgreSQL
type SaveRunRepo struct {
	client *Client
}

var _ database.SaveRunRepository = (*SaveRunRepo)(nil)

// NewSaveRunRepo creates a new PostgreSQL save run repository
func NewSaveRunRepo(client *Client) *SaveRunRepo {
	return &SaveRunRepo{client: client}
}

// Add inserts a save run, assigning an id when it has none
func (r *SaveRunRepo) Add(ctx context.Context, run models.SaveRun) error {
	if r.client.pool == nil {
		return fmt.Errorf("database not connected")
	}

	id, err := uuid.Parse(run.ID)
	if err != nil {
		id = uuid.New()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.Errors == nil {
		run.Errors = []string{}
	}

	query := `
		INSERT INTO save_runs (id, store, started_at, completed_at, changes, updates,
			completed, batches_processed, success, cancelled, errors)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.client.pool.Exec(ctx, query,
		id,
		run.Store,
		run.StartedAt,
		nullTime(run.CompletedAt),
		run.Changes,
		run.Updates,
		run.Completed,
		run.BatchesProcessed,
		run.Success,
		run.Cancelled,
		run.Errors,
	)
	if err != nil {
		return fmt.Errorf("failed to add save run: %w", err)
	}
	return nil
}

// GetRecent retrieves the most recent save runs, newest first
func (r *SaveRunRepo) GetRecent(ctx context.Context, limit int) ([]models.SaveRun, error) {
	if r.client.pool == nil {
		return nil, fmt.Errorf("database not connected")
	}

	query := `
		SELECT id, store, started_at, completed_at, changes, updates,
			completed, batches_processed, success, cancelled, errors
		FROM save_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.client.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query save runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Since retrieves runs started at or after since, oldest first
func (r *SaveRunRepo) Since(ctx context.Context, since time.Time) ([]models.SaveRun, error) {
	if r.client.pool == nil {
		return nil, fmt.Errorf("database not connected")
	}

	query := `
		SELECT id, store, started_at, completed_at, changes, updates,
			completed, batches_processed, success, cancelled, errors
		FROM save_runs
		WHERE started_at >= $1
		ORDER BY started_at
	`

	rows, err := r.client.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query save runs: %w", err)
	}
	defer rows.Close()

	return scanRuns(rows)
}

// Count returns the number of recorded runs
func (r *SaveRunRepo) Count(ctx context.Context) (int64, error) {
	if r.client.pool == nil {
		return 0, fmt.Errorf("database not connected")
	}

	var count int64
	if err := r.client.pool.QueryRow(ctx, "SELECT count(*) FROM save_runs").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count save runs: %w", err)
	}
	return count, nil
}

func scanRuns(rows pgx.Rows) ([]models.SaveRun, error) {
	var runs []models.SaveRun
	for rows.Next() {
		var (
			run         models.SaveRun
			id          uuid.UUID
			completedAt *time.Time
		)
		err := rows.Scan(
			&id,
			&run.Store,
			&run.StartedAt,
			&completedAt,
			&run.Changes,
			&run.Updates,
			&run.Completed,
			&run.BatchesProcessed,
			&run.Success,
			&run.Cancelled,
			&run.Errors,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan save run: %w", err)
		}
		run.ID = id.String()
		if completedAt != nil {
			run.CompletedAt = *completedAt
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func nullTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
