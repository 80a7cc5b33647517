package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/badno/metaops/internal/database"
	"github.com/badno/metaops/pkg/models"
	"github.com/google/uuid"
)

var _ database.RunMirror = (*Client)(nil)

// InsertSaveRuns appends runs to the save_runs table in one batch
func (c *Client) InsertSaveRuns(ctx context.Context, runs []models.SaveRun) error {
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	if len(runs) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, `
		INSERT INTO save_runs (
			id, store, started_at, completed_at, run_date, changes, updates,
			completed, batches_processed, success, cancelled, error_count, errors
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare batch: %w", err)
	}

	for _, r := range runs {
		id, err := uuid.Parse(r.ID)
		if err != nil {
			id = uuid.New()
		}
		completedAt := r.CompletedAt
		if completedAt.IsZero() {
			completedAt = r.StartedAt
		}
		errs := r.Errors
		if errs == nil {
			errs = []string{}
		}

		err = batch.Append(
			id,
			r.Store,
			r.StartedAt,
			completedAt,
			r.StartedAt,
			uint32(r.Changes),
			uint32(r.Updates),
			uint32(r.Completed),
			uint32(r.BatchesProcessed),
			boolToUInt8(r.Success),
			boolToUInt8(r.Cancelled),
			uint32(len(errs)),
			errs,
		)
		if err != nil {
			return fmt.Errorf("failed to append to batch: %w", err)
		}
	}

	return batch.Send()
}

// DailyStats is one day of save activity for a store
type DailyStats struct {
	Store          string
	Date           time.Time
	Runs           uint64
	SuccessfulRuns uint64
	Changes        uint64
	Batches        uint64
	Errors         uint64
}

// GetDailyStats returns save activity for the last days, newest first
func (c *Client) GetDailyStats(ctx context.Context, days int) ([]DailyStats, error) {
	if c.conn == nil {
		return nil, fmt.Errorf("not connected")
	}

	query := `
		SELECT
			store,
			date,
			sum(runs),
			sum(successful_runs),
			sum(changes),
			sum(batches),
			sum(errors)
		FROM save_runs_daily_mv
		WHERE date >= today() - ?
		GROUP BY store, date
		ORDER BY date DESC, store
	`

	rows, err := c.conn.Query(ctx, query, days)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []DailyStats
	for rows.Next() {
		var s DailyStats
		if err := rows.Scan(&s.Store, &s.Date, &s.Runs, &s.SuccessfulRuns, &s.Changes, &s.Batches, &s.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// LastRunTime returns the start time of the newest mirrored run
func (c *Client) LastRunTime(ctx context.Context) (time.Time, error) {
	if c.conn == nil {
		return time.Time{}, fmt.Errorf("not connected")
	}

	var last time.Time
	if err := c.conn.QueryRow(ctx, "SELECT max(started_at) FROM save_runs").Scan(&last); err != nil {
		return time.Time{}, nil
	}
	return last, nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
