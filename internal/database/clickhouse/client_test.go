package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticRuns struct {
	runs  []models.SaveRun
	since time.Time
}

func (s *staticRuns) Add(ctx context.Context, run models.SaveRun) error { return nil }

func (s *staticRuns) GetRecent(ctx context.Context, limit int) ([]models.SaveRun, error) {
	return s.runs, nil
}

func (s *staticRuns) Since(ctx context.Context, since time.Time) ([]models.SaveRun, error) {
	s.since = since
	return s.runs, nil
}

func (s *staticRuns) Count(ctx context.Context) (int64, error) { return int64(len(s.runs)), nil }

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "metaops", cfg.Database)
	assert.Equal(t, 9000, cfg.Port)
	assert.False(t, cfg.Secure)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("METAOPS_CH_USER", "writer")
	t.Setenv("METAOPS_CH_PASS", "secret")

	cfg := ConfigFromEnv("METAOPS_CH_USER", "METAOPS_CH_PASS")
	assert.Equal(t, "writer", cfg.Username)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, "localhost", cfg.Host)
}

func TestNotConnected(t *testing.T) {
	c := NewClient(nil)
	ctx := context.Background()

	assert.Error(t, c.Ping(ctx))
	assert.Error(t, c.InitSchema(ctx))
	assert.Error(t, c.InsertSaveRuns(ctx, []models.SaveRun{{ID: "x"}}))
	_, err := c.GetDailyStats(ctx, 7)
	assert.Error(t, err)
	_, err = c.GetTableInfo(ctx)
	assert.Error(t, err)
	assert.NoError(t, c.Close())
}

func TestSyncSinceCollectsBatchErrors(t *testing.T) {
	source := &staticRuns{runs: []models.SaveRun{{ID: "a"}, {ID: "b"}}}
	s := NewSyncer(source, NewClient(nil))

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	res, err := s.SyncSince(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, since, source.since)
	assert.Equal(t, 0, res.RecordsSynced)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "not connected")
}

func TestSyncSinceNothingToCopy(t *testing.T) {
	s := NewSyncer(&staticRuns{}, NewClient(nil))

	res, err := s.SyncSince(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Zero(t, res.RecordsSynced)
	assert.Empty(t, res.Errors)
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestBoolToUInt8(t *testing.T) {
	assert.Equal(t, uint8(1), boolToUInt8(true))
	assert.Equal(t, uint8(0), boolToUInt8(false))
}
