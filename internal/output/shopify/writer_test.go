package shopify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	admin "github.com/badno/metaops/internal/shopify"
	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	sets       [][]models.MetafieldInput
	deletes    [][]models.MetafieldInput
	setErr     error
	deleteErr  error
	setUserErr admin.UserErrors
}

func (f *fakeAPI) MetafieldsSet(ctx context.Context, inputs []models.MetafieldInput) (admin.UserErrors, error) {
	f.sets = append(f.sets, inputs)
	if f.setErr != nil {
		return nil, f.setErr
	}
	return f.setUserErr, nil
}

func (f *fakeAPI) MetafieldsDelete(ctx context.Context, inputs []models.MetafieldInput) (admin.UserErrors, error) {
	f.deletes = append(f.deletes, inputs)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	return nil, nil
}

func update(productID string, values ...string) models.BulkMetafieldUpdate {
	u := models.BulkMetafieldUpdate{ProductID: productID}
	for i, v := range values {
		u.Metafields = append(u.Metafields, models.MetafieldValue{
			Namespace: "custom",
			Key:       fmt.Sprintf("k%d", i),
			Value:     v,
			Type:      "single_line_text_field",
		})
	}
	return u
}

func TestSplitRoutesEmptyValuesToDelete(t *testing.T) {
	sets, deletes := Split([]models.BulkMetafieldUpdate{update("p1", "", "x")})

	require.Len(t, sets, 1)
	require.Len(t, deletes, 1)
	assert.Equal(t, "x", sets[0].Value)
	assert.Equal(t, "k1", sets[0].Key)
	assert.Equal(t, "k0", deletes[0].Key)
	assert.Equal(t, "p1", deletes[0].OwnerID)
}

func TestUpdateMetafieldsBatches(t *testing.T) {
	values := make([]string, 0, 60)
	for i := 0; i < 30; i++ {
		values = append(values, "v")
	}
	for i := 0; i < 26; i++ {
		values = append(values, "")
	}

	api := &fakeAPI{}
	w := NewWriter(api, 0, nil)

	res, err := w.UpdateMetafields(context.Background(), []models.BulkMetafieldUpdate{update("p1", values...)})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Errors)
	assert.Equal(t, 4, res.BatchesProcessed)
	require.Len(t, api.sets, 2)
	assert.Len(t, api.sets[0], 25)
	assert.Len(t, api.sets[1], 5)
	require.Len(t, api.deletes, 2)
	assert.Len(t, api.deletes[0], 25)
	assert.Len(t, api.deletes[1], 1)
}

func TestUpdateMetafieldsNeverMixesSetAndDelete(t *testing.T) {
	api := &fakeAPI{}
	w := NewWriter(api, 25, nil)

	_, err := w.UpdateMetafields(context.Background(), []models.BulkMetafieldUpdate{update("p1", "", "x")})
	require.NoError(t, err)

	for _, batch := range api.sets {
		for _, in := range batch {
			assert.NotEmpty(t, in.Value)
		}
	}
	require.Len(t, api.deletes, 1)
	assert.Equal(t, "k0", api.deletes[0][0].Key)
}

func TestUpdateMetafieldsCollectsErrors(t *testing.T) {
	api := &fakeAPI{
		setUserErr: admin.UserErrors{{Field: []string{"metafields", "0", "value"}, Message: "is invalid"}},
		deleteErr:  errors.New("boom"),
	}
	w := NewWriter(api, 25, nil)

	res, err := w.UpdateMetafields(context.Background(), []models.BulkMetafieldUpdate{update("p1", "x", "")})
	require.NoError(t, err)

	assert.False(t, res.Success)
	assert.Equal(t, []string{
		"metafields.0.value: is invalid",
		"Failed to clear metafields: boom",
	}, res.Errors)
	assert.Equal(t, 2, res.BatchesProcessed)
}

func TestUpdateMetafieldsSetFailureAborts(t *testing.T) {
	api := &fakeAPI{setErr: errors.New("network down")}
	w := NewWriter(api, 25, nil)

	_, err := w.UpdateMetafields(context.Background(), []models.BulkMetafieldUpdate{update("p1", "x", "")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	assert.Empty(t, api.deletes)
}

func TestUpdateMetafieldsRejectsEmpty(t *testing.T) {
	w := NewWriter(&fakeAPI{}, 25, nil)
	_, err := w.UpdateMetafields(context.Background(), nil)
	assert.Error(t, err)
}

func TestNewWriterCapsBatchSize(t *testing.T) {
	w := NewWriter(&fakeAPI{}, 100, nil)
	assert.Equal(t, admin.MaxMetafieldsPerSet, w.batchSize)
}
