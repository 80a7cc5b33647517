package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/badno/metaops/internal/state"
	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	mu     sync.Mutex
	calls  [][]models.BulkMetafieldUpdate
	fail   map[string]error
	reject map[string][]string
	before func(call int)
}

func (w *fakeWriter) UpdateMetafields(ctx context.Context, updates []models.BulkMetafieldUpdate) (models.MutationResult, error) {
	w.mu.Lock()
	w.calls = append(w.calls, updates)
	n := len(w.calls)
	w.mu.Unlock()
	if w.before != nil {
		w.before(n)
	}

	for _, u := range updates {
		if err := w.fail[u.ProductID]; err != nil {
			return models.MutationResult{Errors: []string{}}, err
		}
		if errs := w.reject[u.ProductID]; len(errs) > 0 {
			return models.MutationResult{BatchesProcessed: 1, Errors: errs}, nil
		}
	}
	return models.MutationResult{Success: true, BatchesProcessed: len(updates), Errors: []string{}}, nil
}

type fakeCache struct{ reasons []string }

func (c *fakeCache) Invalidate(reason string) { c.reasons = append(c.reasons, reason) }

type fakeRecorder struct{ runs []models.SaveRun }

func (r *fakeRecorder) RecordSave(ctx context.Context, run models.SaveRun) error {
	r.runs = append(r.runs, run)
	return nil
}

func storeWith(ids ...string) *state.DirtyStore {
	s := state.NewDirtyStore()
	for _, id := range ids {
		s.SetCell(id, models.KeyDetails, "new "+id, "")
	}
	return s
}

func TestSaveNothingPending(t *testing.T) {
	w := &fakeWriter{}
	o := New(state.NewDirtyStore(), w)

	res, err := o.Save(context.Background(), SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, w.calls)
	assert.Equal(t, "No changes to save", res.Summary())
}

func TestSaveReportsUnknownFields(t *testing.T) {
	store := state.NewDirtyStore()
	store.SetCell("A", "legacy_field", "x", "")

	w := &fakeWriter{}
	o := New(store, w)

	res, err := o.Save(context.Background(), SaveOptions{})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, w.calls)
	assert.Equal(t, 0, res.Changes)
	require.Len(t, res.Errors, 1)
	assert.Contains(t, res.Errors[0], "legacy_field")
	assert.Error(t, res.Err())
	assert.NotContains(t, res.Summary(), "Saved")
	assert.Equal(t, 1, store.Len())
}

func TestSaveUnknownFieldAlongsideKnown(t *testing.T) {
	store := storeWith("A", "B")
	store.SetCell("C", "legacy_field", "x", "")

	w := &fakeWriter{}
	o := New(store, w)

	res, err := o.Save(context.Background(), SaveOptions{})
	require.NoError(t, err)
	assert.Len(t, w.calls, 2)
	assert.Equal(t, 2, res.Changes)
	assert.False(t, res.Success)
	assert.Len(t, res.Errors, 1)
	assert.Equal(t, 3, store.Len())
}

func TestSaveSingleUpdateUsesOneCall(t *testing.T) {
	store := state.NewDirtyStore()
	store.SetCell("A", models.KeyDetails, "x", "")
	store.SetCell("A", models.KeyCare, "", "gid://shopify/Page/1")

	w := &fakeWriter{}
	cache := &fakeCache{}
	var progress []Progress
	o := New(store, w, WithCache(cache))

	res, err := o.Save(context.Background(), SaveOptions{OnProgress: func(p Progress) { progress = append(progress, p) }})
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, w.calls, 1)
	assert.Len(t, w.calls[0][0].Metafields, 2)
	assert.Empty(t, progress)
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, "Saved 2 changes", res.Summary())
	assert.Len(t, cache.reasons, 1)
}

func TestSaveSequentialReportsProgress(t *testing.T) {
	store := storeWith("A", "B", "C")
	w := &fakeWriter{}
	var progress []Progress
	o := New(store, w)

	res, err := o.Save(context.Background(), SaveOptions{OnProgress: func(p Progress) { progress = append(progress, p) }})
	require.NoError(t, err)

	assert.True(t, res.Success)
	require.Len(t, w.calls, 3)
	for _, call := range w.calls {
		assert.Len(t, call, 1)
	}
	assert.Equal(t, []Progress{{1, 3}, {2, 3}, {3, 3}}, progress)
	assert.Equal(t, 3, res.BatchesProcessed)
	assert.Equal(t, 0, store.Len())
}

func TestSavePartialFailureKeepsAllCells(t *testing.T) {
	store := storeWith("A", "B", "C")
	w := &fakeWriter{fail: map[string]error{"B": errors.New("network error")}}
	rec := &fakeRecorder{}
	o := New(store, w, WithRecorder(rec, "livid.myshopify.com"))

	res, err := o.Save(context.Background(), SaveOptions{ClearPolicy: ClearAll})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"network error"}, res.Errors)
	assert.Len(t, w.calls, 3)
	assert.Equal(t, []string{"A", "C"}, res.SavedProducts)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, 0, res.Cleared)
	assert.Error(t, res.Err())
	assert.Equal(t, "Some updates failed: network error", res.Summary())

	require.Len(t, rec.runs, 1)
	assert.False(t, rec.runs[0].Success)
	assert.Equal(t, "livid.myshopify.com", rec.runs[0].Store)
	assert.Equal(t, res.RunID, rec.runs[0].ID)
}

func TestSaveClearSucceededDropsOnlySavedProducts(t *testing.T) {
	store := storeWith("A", "B", "C")
	w := &fakeWriter{reject: map[string][]string{"B": {"details: is invalid"}}}
	o := New(store, w)

	res, err := o.Save(context.Background(), SaveOptions{ClearPolicy: ClearSucceeded})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, []string{"details: is invalid"}, res.Errors)
	assert.Equal(t, 2, res.Cleared)
	assert.Equal(t, []string{"B"}, store.ProductIDs())
}

func TestSaveCancelStopsBeforeNextStep(t *testing.T) {
	store := storeWith("A", "B", "C", "D")
	w := &fakeWriter{}
	o := New(store, w)
	w.before = func(call int) {
		if call == 2 {
			o.Cancel()
		}
	}

	res, err := o.Save(context.Background(), SaveOptions{ClearPolicy: ClearAll})
	require.NoError(t, err)

	assert.True(t, res.Cancelled)
	assert.False(t, res.Success)
	assert.Equal(t, 2, res.Completed)
	assert.Len(t, w.calls, 2)
	assert.Equal(t, 4, store.Len())
	assert.Equal(t, "Save cancelled after 2 of 4 products", res.Summary())
}

func TestSaveCancelWithClearSucceeded(t *testing.T) {
	store := storeWith("A", "B", "C")
	w := &fakeWriter{}
	o := New(store, w)
	w.before = func(call int) { o.Cancel() }

	res, err := o.Save(context.Background(), SaveOptions{ClearPolicy: ClearSucceeded})
	require.NoError(t, err)

	assert.Equal(t, []string{"A"}, res.SavedProducts)
	assert.Equal(t, []string{"B", "C"}, store.ProductIDs())
}

func TestSaveContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w := &fakeWriter{}
	o := New(storeWith("A", "B"), w)

	res, err := o.Save(ctx, SaveOptions{})
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Empty(t, w.calls)
}

func TestSaveSingleCallErrorPrefix(t *testing.T) {
	w := &fakeWriter{fail: map[string]error{"A": errors.New("timeout")}}
	o := New(storeWith("A"), w)

	res, err := o.Save(context.Background(), SaveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"Failed to save: timeout"}, res.Errors)
}

func TestParseClearPolicy(t *testing.T) {
	p, err := ParseClearPolicy("")
	require.NoError(t, err)
	assert.Equal(t, ClearAll, p)

	p, err = ParseClearPolicy("Succeeded")
	require.NoError(t, err)
	assert.Equal(t, ClearSucceeded, p)

	_, err = ParseClearPolicy("some")
	assert.Error(t, err)
}
