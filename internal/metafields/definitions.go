package metafields

import (
	"fmt"

	"github.com/badno/metaops/pkg/models"
)

// Namespace is the metafield namespace all managed fields live in
const Namespace = "custom"

// Metafield types used by the managed fields
const (
	TypeMultiLineText        = "multi_line_text_field"
	TypeSingleLineText       = "single_line_text_field"
	TypeProductReferenceList = "list.product_reference"
	TypeFileReference        = "file_reference"
	TypeFileReferenceList    = "list.file_reference"
	TypePageReference        = "page_reference"
	TypeCollectionReference  = "collection_reference"
)

// UnisexVendor is the vendor whose products get the gendered style-with fields
const UnisexVendor = "Livid Unisex"

// Definition describes one managed metafield
type Definition struct {
	Key         models.MetafieldKey
	Namespace   string
	Type        string
	Label       string
	Description string
	// DefaultVisible marks grid columns shown when no preference is stored
	DefaultVisible bool
	// Vendor restricts the field to one vendor's products when set
	Vendor string
}

// AppliesTo reports whether the field is editable for a product of vendor
func (d Definition) AppliesTo(vendor string) bool {
	return d.Vendor == "" || d.Vendor == vendor
}

// IsList reports whether the field stores a JSON-encoded id list
func (d Definition) IsList() bool {
	return len(d.Type) > 5 && d.Type[:5] == "list."
}

// IsReference reports whether the field stores upstream ids
func (d Definition) IsReference() bool {
	switch d.Type {
	case TypeMultiLineText, TypeSingleLineText:
		return false
	}
	return true
}

var definitions = []Definition{
	{models.KeyShortDescription, Namespace, TypeMultiLineText, "Short Description", "Brief product summary", true, ""},
	{models.KeyFullDescription, Namespace, TypeMultiLineText, "Full Description", "Complete product description", true, ""},
	{models.KeyDetails, Namespace, TypeMultiLineText, "Details", "Product details and specifications", true, ""},
	{models.KeySameProduct, Namespace, TypeProductReferenceList, "Same Product", "Other colorways of the same product", true, ""},
	{models.KeyStyleWith, Namespace, TypeProductReferenceList, "Style With", "Products that pair well", true, ""},
	{models.KeyFlat, Namespace, TypeFileReference, "Flat Image", "Flat lay product image", false, ""},
	{models.KeyCare, Namespace, TypePageReference, "Care", "Care instructions page", false, ""},
	{models.KeyFitguide, Namespace, TypePageReference, "Fit Guide", "Fit guide page", false, ""},
	{models.KeyModelInfo, Namespace, TypeSingleLineText, "Model Info", "Model height and size worn", false, ""},
	{models.KeyRecommendedCollection, Namespace, TypeCollectionReference, "Recommended Collection", "Collection to recommend", false, ""},
	{models.KeyStyleWithUnisexHerre, Namespace, TypeProductReferenceList, "Style With (Herre)", "Men's style-with products for unisex items", false, UnisexVendor},
	{models.KeyStyleWithUnisexDame, Namespace, TypeProductReferenceList, "Style With (Dame)", "Women's style-with products for unisex items", false, UnisexVendor},
	{models.KeyMenImages, Namespace, TypeFileReferenceList, "Men Images", "Images shown for men", false, ""},
	{models.KeyWomenImages, Namespace, TypeFileReferenceList, "Women Images", "Images shown for women", false, ""},
}

var byKey = func() map[models.MetafieldKey]Definition {
	m := make(map[models.MetafieldKey]Definition, len(definitions))
	for _, d := range definitions {
		m[d.Key] = d
	}
	return m
}()

// All returns every definition in declaration order
func All() []Definition {
	out := make([]Definition, len(definitions))
	copy(out, definitions)
	return out
}

// Lookup returns the definition for key
func Lookup(key models.MetafieldKey) (Definition, bool) {
	d, ok := byKey[key]
	return d, ok
}

// DefaultVisibleKeys returns the keys of columns visible by default
func DefaultVisibleKeys() []models.MetafieldKey {
	var keys []models.MetafieldKey
	for _, d := range definitions {
		if d.DefaultVisible {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// IsKnown reports whether key is a managed field
func IsKnown(key string) bool {
	_, ok := byKey[models.MetafieldKey(key)]
	return ok
}

// ParseKey validates a user-supplied field name
func ParseKey(key string) (models.MetafieldKey, error) {
	if !IsKnown(key) {
		return "", fmt.Errorf("unknown metafield: %s", key)
	}
	return models.MetafieldKey(key), nil
}
