package filter

import (
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
)

func sample() []models.Product {
	mk := func(id, title, handle, vendor, typ, status, flat string, tags ...string) models.Product {
		p := models.Product{ID: id, Title: title, Handle: handle, Vendor: vendor, ProductType: typ, Status: status, Tags: tags, Metafields: models.NewMetafields()}
		p.Metafields[models.KeyFlat] = flat
		return p
	}
	return []models.Product{
		mk("1", "Amber Japan Fog", "amber-japan-fog", "Livid Jeans", "Jeans", "ACTIVE", "", "SS26", "denim"),
		mk("2", "Nelson Oxford", "nelson-oxford", "Livid Unisex", "Shirt", "DRAFT", "gid://shopify/MediaImage/1", "SS26"),
		mk("3", "Wool Cap", "wool-cap", "Acme", "", "ACTIVE", "", "winter"),
	}
}

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestApply(t *testing.T) {
	products := sample()

	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{"default matches all", Default(), []string{"1", "2", "3"}},
		{"search title case-insensitive", Filters{Search: "JAPAN"}, []string{"1"}},
		{"search handle", Filters{Search: "wool-"}, []string{"3"}},
		{"search vendor", Filters{Search: "livid"}, []string{"1", "2"}},
		{"vendor", Filters{Vendors: []string{"Acme"}}, []string{"3"}},
		{"product type", Filters{ProductTypes: []string{"Shirt", "Jeans"}}, []string{"1", "2"}},
		{"any tag", Filters{Tags: []string{"denim", "winter"}}, []string{"1", "3"}},
		{"status", Filters{Statuses: []string{"DRAFT"}}, []string{"2"}},
		{"missing flat", Filters{MissingFlat: true}, []string{"1", "3"}},
		{"combined", Filters{Tags: []string{"SS26"}, MissingFlat: true}, []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filters.Apply(products)))
		})
	}
}

func TestIsActive(t *testing.T) {
	assert.False(t, Default().IsActive())
	assert.True(t, Filters{MissingFlat: true}.IsActive())
}

func TestComputeFacets(t *testing.T) {
	f := ComputeFacets(sample())
	assert.Equal(t, []string{"Acme", "Livid Jeans", "Livid Unisex"}, f.Vendors)
	assert.Equal(t, []string{"Jeans", "Shirt"}, f.ProductTypes)
	assert.Equal(t, []string{"SS26", "denim", "winter"}, f.Tags)
	assert.Equal(t, []string{"ACTIVE", "DRAFT"}, f.Statuses)
}

func TestByIDs(t *testing.T) {
	products := sample()
	assert.Len(t, ByIDs(products, nil), 3)
	assert.Equal(t, []string{"1", "3"}, ids(ByIDs(products, []string{"3", "1", "missing"})))
}
