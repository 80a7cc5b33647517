package state

import (
	"path/filepath"
	"testing"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string) models.Product {
	p := models.Product{ID: id, Title: "P " + id, Metafields: models.NewMetafields()}
	p.Metafields[models.KeyDetails] = "original"
	return p
}

func TestSetCellRevertRemovesEntry(t *testing.T) {
	s := NewDirtyStore()

	s.SetCell("1", models.KeyDetails, "changed", "original")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.IsDirty("1", models.KeyDetails))

	s.SetCell("1", models.KeyDetails, "original", "original")
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.IsDirty("1", models.KeyDetails))
}

func TestSetCellUpserts(t *testing.T) {
	s := NewDirtyStore()
	s.SetCell("1", models.KeyDetails, "a", "original")
	s.SetCell("1", models.KeyDetails, "b", "original")

	c, ok := s.Get("1", models.KeyDetails)
	require.True(t, ok)
	assert.Equal(t, "b", c.Value)
	assert.Equal(t, 1, s.Len())
}

func TestEffectiveValue(t *testing.T) {
	s := NewDirtyStore()
	p := product("1")

	assert.Equal(t, "original", s.EffectiveValue(p, models.KeyDetails))

	s.SetCell("1", models.KeyDetails, "", "original")
	assert.Equal(t, "", s.EffectiveValue(p, models.KeyDetails))
	assert.Equal(t, "", s.EffectiveValue(p, models.KeyCare))
}

func TestCellsOrderAndUpdates(t *testing.T) {
	s := NewDirtyStore()
	s.SetCell("2", models.KeyCare, "gid://shopify/Page/1", "")
	s.SetCell("1", models.KeySameProduct, `["gid://shopify/Product/2"]`, "")
	s.SetCell("1", models.KeyShortDescription, "short", "")
	s.SetCell("2", models.KeyDetails, "", "original")

	cells := s.Cells()
	require.Len(t, cells, 4)
	assert.Equal(t, "1:short_description", cells[0].Key())
	assert.Equal(t, "1:same_product", cells[1].Key())
	assert.Equal(t, "2:details", cells[2].Key())
	assert.Equal(t, "2:care", cells[3].Key())

	assert.Equal(t, []string{"1", "2"}, s.ProductIDs())

	updates := s.Updates()
	require.Len(t, updates, 2)
	assert.Equal(t, "1", updates[0].ProductID)
	assert.Equal(t, []models.MetafieldValue{
		{Namespace: metafields.Namespace, Key: "short_description", Value: "short", Type: metafields.TypeMultiLineText},
		{Namespace: metafields.Namespace, Key: "same_product", Value: `["gid://shopify/Product/2"]`, Type: metafields.TypeProductReferenceList},
	}, updates[0].Metafields)
	assert.Equal(t, metafields.TypePageReference, updates[1].Metafields[1].Type)
}

func TestGroupCellsSkipsUnknownFields(t *testing.T) {
	updates := GroupCells([]models.DirtyCell{
		{ProductID: "1", Field: "bogus", Value: "x"},
		{ProductID: "1", Field: models.KeyFlat, Value: "gid://shopify/MediaImage/9"},
	})
	require.Len(t, updates, 1)
	require.Len(t, updates[0].Metafields, 1)
	assert.Equal(t, "flat", updates[0].Metafields[0].Key)
}

func TestRemoveAndRemoveProducts(t *testing.T) {
	s := NewDirtyStore()
	s.SetCell("1", models.KeyDetails, "a", "")
	s.SetCell("1", models.KeyCare, "b", "")
	s.SetCell("2", models.KeyDetails, "c", "")

	s.Remove("1:care", "missing:key")
	assert.Equal(t, 2, s.Len())

	s.RemoveProducts("1")
	assert.Equal(t, 1, s.Len())
	assert.True(t, s.IsDirty("2", models.KeyDetails))

	s.Clear()
	assert.Equal(t, 0, s.Len())
}

func TestApplyToDoesNotMutateInput(t *testing.T) {
	s := NewDirtyStore()
	s.SetCell("1", models.KeyDetails, "new", "original")

	products := []models.Product{product("1"), product("2")}
	merged := s.ApplyTo(products)

	assert.Equal(t, "new", merged[0].Metafield(models.KeyDetails))
	assert.Equal(t, "original", merged[1].Metafield(models.KeyDetails))
	assert.Equal(t, "original", products[0].Metafield(models.KeyDetails))
}

func TestDraftsFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "drafts", "edits.json")

	s := NewDirtyStore()
	s.SetCell("1", models.KeyDetails, "a", "")
	s.SetCell("2", models.KeyFitguide, "", "gid://shopify/Page/3")
	require.NoError(t, s.SaveFile(path))

	loaded := NewDirtyStore()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, s.Cells(), loaded.Cells())
}

func TestLoadFileDropsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "edits.json")

	s := NewDirtyStore()
	s.SetCell("1", "legacy_field", "x", "")
	s.SetCell("1", models.KeyDetails, "a", "")
	require.Len(t, s.UnknownCells(), 1)
	require.NoError(t, s.SaveFile(path))

	loaded := NewDirtyStore()
	require.NoError(t, loaded.LoadFile(path))
	assert.Equal(t, 1, loaded.Len())
	assert.True(t, loaded.IsDirty("1", models.KeyDetails))
	assert.Empty(t, loaded.UnknownCells())

	dropped := loaded.Dropped()
	require.Len(t, dropped, 1)
	assert.Equal(t, models.MetafieldKey("legacy_field"), dropped[0].Field)
}

func TestLoadFileMissingClears(t *testing.T) {
	s := NewDirtyStore()
	s.SetCell("1", models.KeyDetails, "a", "")

	require.NoError(t, s.LoadFile(filepath.Join(t.TempDir(), "none.json")))
	assert.Equal(t, 0, s.Len())
}
