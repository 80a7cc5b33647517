package source

import (
	"context"
	"errors"
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConnector struct {
	*BaseConnector
	fetches int
	err     error
}

func newFake() *fakeConnector {
	return &fakeConnector{BaseConnector: NewBaseConnector("fake", []Capability{CapabilityProducts})}
}

func (f *fakeConnector) Connect(ctx context.Context) error { return nil }
func (f *fakeConnector) Close() error                      { return nil }
func (f *fakeConnector) Test(ctx context.Context) error    { return nil }

func (f *fakeConnector) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	f.fetches++
	if f.err != nil {
		return nil, f.err
	}
	return &models.Snapshot{Products: []models.Product{{ID: "1"}}}, nil
}

type memCache struct {
	snap  *models.Snapshot
	fresh bool
	saves int
}

func (m *memCache) Snapshot() (*models.Snapshot, bool) { return m.snap, m.fresh && m.snap != nil }
func (m *memCache) Put(s *models.Snapshot)             { m.snap, m.fresh = s, true }
func (m *memCache) Save() error                        { m.saves++; return nil }

func TestLoaderUsesFreshCache(t *testing.T) {
	conn := newFake()
	cache := &memCache{}
	l := NewLoader(conn, cache, nil)

	snap, err := l.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, snap.Products[0].Metafields, len(models.AllMetafieldKeys))
	assert.Equal(t, 1, cache.saves)

	_, err = l.Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.fetches)

	_, err = l.Load(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, conn.fetches)
}

func TestLoaderRefetchesWhenStale(t *testing.T) {
	conn := newFake()
	cache := &memCache{snap: &models.Snapshot{}, fresh: false}

	_, err := NewLoader(conn, cache, nil).Load(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, conn.fetches)
}

func TestLoaderPropagatesErrors(t *testing.T) {
	conn := newFake()
	conn.err = errors.New("boom")

	_, err := NewLoader(conn, nil, nil).Load(context.Background(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestNormalize(t *testing.T) {
	snap := Normalize(&models.Snapshot{Products: []models.Product{{ID: "1", Metafields: models.Metafields{models.KeyCare: "x"}}}})
	assert.Equal(t, "x", snap.Products[0].Metafield(models.KeyCare))
	assert.Len(t, snap.Products[0].Metafields, len(models.AllMetafieldKeys))
	assert.NotNil(t, snap.Products[0].Tags)
	assert.NotNil(t, snap.Pages)
	assert.NotNil(t, snap.Models)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(newFake()))
	assert.Error(t, r.Register(newFake()))

	c, err := r.Get("fake")
	require.NoError(t, err)
	assert.Equal(t, "fake", c.Name())

	_, err = r.Get("missing")
	assert.Error(t, err)

	assert.Len(t, r.ListByCapability(CapabilityProducts), 1)
	assert.Empty(t, r.ListByCapability(CapabilityModels))
}
