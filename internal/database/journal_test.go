package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	runs []models.SaveRun
	err  error
}

func (m *memRepo) Add(ctx context.Context, run models.SaveRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, run)
	return nil
}

func (m *memRepo) GetRecent(ctx context.Context, limit int) ([]models.SaveRun, error) {
	if limit > len(m.runs) {
		limit = len(m.runs)
	}
	return m.runs[len(m.runs)-limit:], nil
}

func (m *memRepo) Since(ctx context.Context, since time.Time) ([]models.SaveRun, error) {
	return m.runs, nil
}

func (m *memRepo) Count(ctx context.Context) (int64, error) { return int64(len(m.runs)), nil }

type memMirror struct {
	runs []models.SaveRun
	err  error
}

func (m *memMirror) InsertSaveRuns(ctx context.Context, runs []models.SaveRun) error {
	if m.err != nil {
		return m.err
	}
	m.runs = append(m.runs, runs...)
	return nil
}

func TestJournalRecordsEverywhere(t *testing.T) {
	repo, mirror := &memRepo{}, &memMirror{}
	j := NewJournal(repo, mirror)

	require.NoError(t, j.RecordSave(context.Background(), models.SaveRun{ID: "r1", Success: true}))
	assert.Len(t, repo.runs, 1)
	assert.Len(t, mirror.runs, 1)

	recent, err := j.Recent(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "r1", recent[0].ID)
}

func TestJournalAggregatesFailures(t *testing.T) {
	repo := &memRepo{err: errors.New("connection refused")}
	mirror := &memMirror{err: errors.New("table missing")}
	j := NewJournal(repo, mirror)

	err := j.RecordSave(context.Background(), models.SaveRun{ID: "r1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres: connection refused")
	assert.Contains(t, err.Error(), "clickhouse: table missing")
}

func TestJournalWithoutMirror(t *testing.T) {
	repo := &memRepo{}
	require.NoError(t, NewJournal(repo, nil).RecordSave(context.Background(), models.SaveRun{ID: "r1"}))
	assert.Len(t, repo.runs, 1)

	_, err := NewJournal(nil, nil).Recent(context.Background(), 1)
	assert.Error(t, err)
}
