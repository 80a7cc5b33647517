package metafields

import (
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGIDList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", []string{}},
		{"whitespace", "   ", []string{}},
		{"malformed", "[\"gid://shopify/Product/1\"", []string{}},
		{"not an array", `{"id":"x"}`, []string{}},
		{"plain string", `"gid://shopify/Product/1"`, []string{}},
		{"list", `["gid://shopify/Product/1","gid://shopify/Product/2"]`, []string{"gid://shopify/Product/1", "gid://shopify/Product/2"}},
		{"non-string entries skipped", `["a",1,null,"b"]`, []string{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseGIDList(tt.value))
		})
	}
}

func TestSerializeGIDListRoundTrip(t *testing.T) {
	ids := []string{"gid://shopify/Product/3", "gid://shopify/Product/1"}
	value := SerializeGIDList(ids)
	assert.Equal(t, `["gid://shopify/Product/3","gid://shopify/Product/1"]`, value)
	assert.Equal(t, ids, ParseGIDList(value))
	assert.Equal(t, value, SerializeGIDList(ParseGIDList(value)))

	assert.Equal(t, "[]", SerializeGIDList(nil))
}

func TestAddAndRemoveFromList(t *testing.T) {
	v := AddToList("", "a", "b", "a")
	assert.Equal(t, `["a","b"]`, v)

	v = AddToList(v, "b", "c")
	assert.Equal(t, `["a","b","c"]`, v)

	v = RemoveFromList(v, "b", "missing")
	assert.Equal(t, `["a","c"]`, v)

	assert.Equal(t, `["x"]`, AddToList("not json", "x"))
}

func TestExtractIDAndToProductGID(t *testing.T) {
	assert.Equal(t, "123", ExtractID("gid://shopify/Product/123"))
	assert.Equal(t, "123", ExtractID("123"))
	assert.Equal(t, "gid://shopify/Product/42", ToProductGID("42"))
	assert.Equal(t, "gid://shopify/Page/9", ToProductGID("gid://shopify/Page/9"))
}

func TestDefinitions(t *testing.T) {
	all := All()
	require.Len(t, all, len(models.AllMetafieldKeys))
	for i, d := range all {
		assert.Equal(t, models.AllMetafieldKeys[i], d.Key)
		assert.Equal(t, Namespace, d.Namespace)
	}

	d, ok := Lookup(models.KeySameProduct)
	require.True(t, ok)
	assert.True(t, d.IsList())
	assert.True(t, d.IsReference())

	d, ok = Lookup(models.KeyModelInfo)
	require.True(t, ok)
	assert.False(t, d.IsList())
	assert.False(t, d.IsReference())

	_, err := ParseKey("nope")
	assert.Error(t, err)
	k, err := ParseKey("fitguide")
	require.NoError(t, err)
	assert.Equal(t, models.KeyFitguide, k)
}

func TestModelInfoText(t *testing.T) {
	assert.Equal(t, "Model is 185cm tall and wearing a size M", ModelInfoText("185cm", "M"))
}

func TestDefaultVisibleAndVendorScope(t *testing.T) {
	assert.Equal(t, []models.MetafieldKey{
		models.KeyShortDescription,
		models.KeyFullDescription,
		models.KeyDetails,
		models.KeySameProduct,
		models.KeyStyleWith,
	}, DefaultVisibleKeys())

	d, _ := Lookup(models.KeyStyleWithUnisexDame)
	assert.True(t, d.AppliesTo(UnisexVendor))
	assert.False(t, d.AppliesTo("Livid Jeans"))

	d, _ = Lookup(models.KeyCare)
	assert.True(t, d.AppliesTo("anyone"))
}
