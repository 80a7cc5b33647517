package grouping

import (
	"fmt"
	"testing"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, vendor, productType, title string) models.Product {
	return models.Product{
		ID:          "gid://shopify/Product/" + id,
		Title:       title,
		Vendor:      vendor,
		ProductType: productType,
		Metafields:  models.NewMetafields(),
	}
}

func withSameProduct(p models.Product, ids ...string) models.Product {
	p.Metafields = p.Metafields.Clone()
	p.Metafields[models.KeySameProduct] = metafields.SerializeGIDList(ids)
	return p
}

func titles(g models.ProductGroup) []string {
	out := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		out = append(out, m.Title)
	}
	return out
}

func TestLongestCommonWordPrefix(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{"Amber Japan Blue Scurry", "Amber Japan Fog", "Amber Japan "},
		{"Amber Japan Fog", "Amber Japan Navy", "Amber Japan "},
		{"Nelson", "Nelson", ""},
		{"Nelson Blue", "Nelson Blue", ""},
		{"Nelson", "Nelson Blue", "Nelson "},
		{"Amber", "Nelson", ""},
		{"", "Nelson", ""},
		{"Amber  Japan   Fog", "Amber Japan Navy", "Amber Japan "},
	}

	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, LongestCommonWordPrefix(tt.a, tt.b))
		})
	}
}

func TestDetectProductGroupsNorwegianTitles(t *testing.T) {
	products := []models.Product{
		product("1", "Livid", "Jeans", "Åse Blå Ull"),
		product("2", "Livid", "Jeans", "Åse Blå Lin"),
		product("3", "Livid", "Jeans", "Åse Rød"),
		product("4", "Livid", "Jeans", "Øyvind Grå"),
		product("5", "Livid", "Jeans", "Øyvind Sort"),
	}

	groups := DetectProductGroups(products)
	require.Len(t, groups, 2)
	assert.Equal(t, "Åse Blå", groups[0].BaseName)
	assert.Equal(t, []string{"Åse Blå Ull", "Åse Blå Lin"}, titles(groups[0]))
	assert.Equal(t, "Øyvind", groups[1].BaseName)
	assert.Len(t, groups[1].Members, 2)
}

func TestDetectProductGroupsSharedPrefix(t *testing.T) {
	products := []models.Product{
		product("1", "Livid Jeans", "Jeans", "Amber Japan Blue Scurry"),
		product("2", "Livid Jeans", "Jeans", "Amber Japan Fog"),
		product("3", "Livid Jeans", "Jeans", "Amber Japan Navy"),
	}

	groups := DetectProductGroups(products)
	require.Len(t, groups, 1)

	g := groups[0]
	assert.Equal(t, "Amber Japan", g.BaseName)
	assert.Len(t, g.Members, 3)
	assert.Equal(t, "Livid Jeans", g.Vendor)
	assert.Equal(t, "Jeans", g.ProductType)
	assert.Equal(t, "livid-jeans--jeans--amber-japan", g.ID)
	assert.Equal(t, models.LinkStatusNotLinked, g.LinkStatus)
}

func TestDetectProductGroupsIdenticalTitles(t *testing.T) {
	products := []models.Product{
		product("1", "Livid", "Shirt", "Nelson"),
		product("2", "Livid", "Shirt", "Nelson"),
	}
	assert.Empty(t, DetectProductGroups(products))
}

func TestDetectProductGroupsIdenticalTitlesJoinViaThird(t *testing.T) {
	products := []models.Product{
		product("1", "Livid", "Shirt", "Nelson Blue"),
		product("2", "Livid", "Shirt", "Nelson Blue"),
		product("3", "Livid", "Shirt", "Nelson Green"),
	}

	groups := DetectProductGroups(products)
	require.Len(t, groups, 1)
	assert.Equal(t, "Nelson", groups[0].BaseName)
	assert.Equal(t, []string{"Nelson Blue", "Nelson Blue", "Nelson Green"}, titles(groups[0]))
}

func TestDetectProductGroupsPrefersLongestPrefix(t *testing.T) {
	products := []models.Product{
		product("1", "Livid", "Jeans", "Amber Japan Fog"),
		product("2", "Livid", "Jeans", "Amber Japan Navy"),
		product("3", "Livid", "Jeans", "Amber Rigid Black"),
		product("4", "Livid", "Jeans", "Amber Rigid Blue"),
		product("5", "Livid", "Jeans", "Amber Solo"),
	}

	groups := DetectProductGroups(products)
	require.Len(t, groups, 2)

	assert.Equal(t, "Amber Japan", groups[0].BaseName)
	assert.Equal(t, []string{"Amber Japan Fog", "Amber Japan Navy"}, titles(groups[0]))
	assert.Equal(t, "Amber Rigid", groups[1].BaseName)
	assert.Equal(t, []string{"Amber Rigid Black", "Amber Rigid Blue"}, titles(groups[1]))
}

func TestDetectProductGroupsPartitions(t *testing.T) {
	products := []models.Product{
		product("1", "Livid Jeans", "Jeans", "Amber Japan Fog"),
		product("2", "Livid Jeans", "Shirt", "Amber Japan Navy"),
		product("3", "Other", "Jeans", "Amber Japan Blue"),
		product("4", "Livid Jeans", "Jeans", "Solo"),
	}
	assert.Empty(t, DetectProductGroups(products))
}

func TestDetectProductGroupsEmpty(t *testing.T) {
	assert.Empty(t, DetectProductGroups(nil))
	assert.NotNil(t, DetectProductGroups(nil))
}

func TestDetectProductGroupsInvariants(t *testing.T) {
	var products []models.Product
	vendors := []string{"Livid Jeans", "Livid Unisex"}
	types := []string{"Jeans", "Shirt"}
	bases := []string{"Amber Japan", "Amber Rigid", "Nelson", "Nelson Oxford", "Rome"}
	colors := []string{"Black", "Blue", "Fog", "Navy Wash"}

	n := 0
	for _, v := range vendors {
		for _, ty := range types {
			for _, b := range bases {
				for _, c := range colors {
					n++
					products = append(products, product(fmt.Sprint(n), v, ty, b+" "+c))
				}
			}
		}
	}

	first := DetectProductGroups(products)
	second := DetectProductGroups(products)
	assert.Equal(t, first, second)

	seen := make(map[string]bool)
	for _, g := range first {
		assert.GreaterOrEqual(t, len(g.Members), 2)
		for _, m := range g.Members {
			assert.Equal(t, g.Vendor, m.Vendor)
			assert.Equal(t, g.ProductType, m.ProductType)
			assert.False(t, seen[m.ID], "product %s in two groups", m.ID)
			seen[m.ID] = true
		}
	}

	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].BaseName, first[i].BaseName)
	}
}

func TestComputeLinkStatus(t *testing.T) {
	a := product("1", "V", "T", "A x")
	b := product("2", "V", "T", "A y")
	c := product("3", "V", "T", "A z")

	assert.Equal(t, models.LinkStatusNotLinked, ComputeLinkStatus([]models.Product{a, b, c}))

	linked := []models.Product{
		withSameProduct(a, b.ID, c.ID),
		withSameProduct(b, a.ID, c.ID),
		withSameProduct(c, a.ID, b.ID),
	}
	assert.Equal(t, models.LinkStatusLinked, ComputeLinkStatus(linked))

	partial := []models.Product{
		withSameProduct(a, b.ID),
		b,
		c,
	}
	assert.Equal(t, models.LinkStatusPartiallyLinked, ComputeLinkStatus(partial))

	oneFull := []models.Product{
		withSameProduct(a, b.ID, c.ID),
		b,
		c,
	}
	assert.Equal(t, models.LinkStatusPartiallyLinked, ComputeLinkStatus(oneFull))

	malformed := []models.Product{a, b}
	malformed[0].Metafields = models.NewMetafields()
	malformed[0].Metafields[models.KeySameProduct] = "{not json"
	assert.Equal(t, models.LinkStatusNotLinked, ComputeLinkStatus(malformed))
}

func TestLinkStatusAfterLinkingAndClearing(t *testing.T) {
	products := []models.Product{
		product("1", "Livid Jeans", "Jeans", "Amber Japan Blue Scurry"),
		product("2", "Livid Jeans", "Jeans", "Amber Japan Fog"),
		product("3", "Livid Jeans", "Jeans", "Amber Japan Navy"),
	}
	group := DetectProductGroups(products)[0]

	values := LinkGroup(group)
	for i := range products {
		products[i].Metafields[models.KeySameProduct] = values[products[i].ID]
	}
	assert.Equal(t, models.LinkStatusLinked, DetectProductGroups(products)[0].LinkStatus)

	for i := range products {
		products[i].Metafields[models.KeySameProduct] = ""
	}
	assert.Equal(t, models.LinkStatusNotLinked, DetectProductGroups(products)[0].LinkStatus)
}
