package shopify

import (
	"context"
	"errors"
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReader struct {
	pagesErr error
}

func (f *fakeReader) Connect(ctx context.Context) error        { return nil }
func (f *fakeReader) Test(ctx context.Context) (string, error) { return "Livid", nil }

func (f *fakeReader) Products(ctx context.Context) ([]models.Product, error) {
	return []models.Product{{ID: "gid://shopify/Product/1"}}, nil
}

func (f *fakeReader) Pages(ctx context.Context) ([]models.Page, error) {
	if f.pagesErr != nil {
		return nil, f.pagesErr
	}
	return []models.Page{{ID: "gid://shopify/Page/1", Handle: "abby-fitguide"}}, nil
}

func (f *fakeReader) Collections(ctx context.Context) ([]models.Collection, error) {
	return nil, nil
}

func (f *fakeReader) Models(ctx context.Context) ([]models.Model, error) {
	return []models.Model{{ID: "gid://shopify/Metaobject/1", Name: "Ida"}}, nil
}

func TestSnapshotCombinesReads(t *testing.T) {
	c := NewConnector(&fakeReader{})
	require.NoError(t, c.Connect(context.Background()))
	assert.True(t, c.IsConnected())

	snap, err := c.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Len(t, snap.Products, 1)
	assert.Len(t, snap.Products[0].Metafields, len(models.AllMetafieldKeys))
	assert.Equal(t, "abby-fitguide", snap.Pages[0].Handle)
	assert.NotNil(t, snap.Collections)
	assert.Equal(t, "Ida", snap.Models[0].Name)
}

func TestSnapshotFailsOnAnyRead(t *testing.T) {
	c := NewConnector(&fakeReader{pagesErr: errors.New("pages unavailable")})

	_, err := c.Snapshot(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pages unavailable")
}
