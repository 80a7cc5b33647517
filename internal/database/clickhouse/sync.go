package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/badno/metaops/internal/database"
)

// SyncResult contains the results of a sync operation
type SyncResult struct {
	RecordsSynced int
	StartTime     time.Time
	EndTime       time.Time
	Errors        []string
}

// Syncer copies save runs from the primary repository into ClickHouse
type Syncer struct {
	source    database.SaveRunRepository
	chClient  *Client
	batchSize int
}

// NewSyncer creates a new syncer
func NewSyncer(source database.SaveRunRepository, chClient *Client) *Syncer {
	return &Syncer{source: source, chClient: chClient, batchSize: 1000}
}

// SyncSince copies runs started at or after since
func (s *Syncer) SyncSince(ctx context.Context, since time.Time) (*SyncResult, error) {
	result := &SyncResult{StartTime: time.Now()}

	runs, err := s.source.Since(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("failed to read save runs: %w", err)
	}

	for i := 0; i < len(runs); i += s.batchSize {
		end := i + s.batchSize
		if end > len(runs) {
			end = len(runs)
		}

		batch := runs[i:end]
		if err := s.chClient.InsertSaveRuns(ctx, batch); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("batch insert error: %v", err))
			continue
		}
		result.RecordsSynced += len(batch)
	}

	result.EndTime = time.Now()
	return result, nil
}

// SyncIncremental copies runs newer than the last mirrored one. The table
// deduplicates by id, so the overlap window is harmless.
func (s *Syncer) SyncIncremental(ctx context.Context) (*SyncResult, error) {
	last, err := s.chClient.LastRunTime(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get last sync time: %w", err)
	}
	if !last.IsZero() {
		last = last.Add(-time.Minute)
	}
	return s.SyncSince(ctx, last)
}
