package grouping

import (
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectAutoLinks(t *testing.T) {
	a := product("1", "Livid Jeans", "Jeans", "Amber Japan Fog")
	b := product("2", "Livid Jeans", "Jeans", "Amber Japan Navy")
	c := product("3", "Livid Jeans", "Jeans", "Amber Japan Blue")
	other1 := product("4", "Acme", "Jeans", "Amber Japan Fog")
	other2 := product("5", "Acme", "Jeans", "Amber Japan Navy")

	// a already links to b and an unrelated product
	a = withSameProduct(a, b.ID, "gid://shopify/Product/99")
	// b is fully linked already
	b = withSameProduct(b, a.ID, c.ID)

	got := DetectAutoLinks([]models.Product{a, b, c, other1, other2}, nil)

	require.Len(t, got, 2)
	assert.Equal(t, []string{b.ID, "gid://shopify/Product/99", c.ID}, got[a.ID])
	assert.Equal(t, []string{a.ID, b.ID}, got[c.ID])
	_, ok := got[b.ID]
	assert.False(t, ok)
	_, ok = got[other1.ID]
	assert.False(t, ok)
}

func TestDetectAutoLinksCustomVendors(t *testing.T) {
	a := product("1", "Acme", "Jeans", "Amber Japan Fog")
	b := product("2", "Acme", "Jeans", "Amber Japan Navy")

	assert.Empty(t, DetectAutoLinks([]models.Product{a, b}, nil))

	got := DetectAutoLinks([]models.Product{a, b}, []string{"Acme"})
	assert.Equal(t, map[string][]string{
		a.ID: {b.ID},
		b.ID: {a.ID},
	}, got)
}

func TestLinkGroup(t *testing.T) {
	g := models.ProductGroup{Members: []models.Product{
		product("1", "V", "T", "A x"),
		product("2", "V", "T", "A y"),
		product("3", "V", "T", "A z"),
	}}

	values := LinkGroup(g)
	assert.Equal(t, `["gid://shopify/Product/2","gid://shopify/Product/3"]`, values["gid://shopify/Product/1"])
	assert.Equal(t, `["gid://shopify/Product/1","gid://shopify/Product/3"]`, values["gid://shopify/Product/2"])
	assert.Equal(t, `["gid://shopify/Product/1","gid://shopify/Product/2"]`, values["gid://shopify/Product/3"])
}

func TestFindGroup(t *testing.T) {
	groups := []models.ProductGroup{{ID: "v--t--amber", BaseName: "Amber"}}

	g, ok := FindGroup(groups, "Amber")
	assert.True(t, ok)
	assert.Equal(t, "v--t--amber", g.ID)

	_, ok = FindGroup(groups, "v--t--amber")
	assert.True(t, ok)

	_, ok = FindGroup(groups, "missing")
	assert.False(t, ok)
}
