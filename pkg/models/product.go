package models

import "strings"

// MetafieldKey is one of the closed set of custom metafield keys managed by metaops
type MetafieldKey string

const (
	KeyShortDescription      MetafieldKey = "short_description"
	KeyFullDescription       MetafieldKey = "full_description"
	KeyDetails               MetafieldKey = "details"
	KeySameProduct           MetafieldKey = "same_product"
	KeyStyleWith             MetafieldKey = "style_with"
	KeyFlat                  MetafieldKey = "flat"
	KeyCare                  MetafieldKey = "care"
	KeyFitguide              MetafieldKey = "fitguide"
	KeyModelInfo             MetafieldKey = "model_info"
	KeyRecommendedCollection MetafieldKey = "recommended_collection"
	KeyStyleWithUnisexHerre  MetafieldKey = "style_with_unisex_herre"
	KeyStyleWithUnisexDame   MetafieldKey = "style_with_unisex_dame"
	KeyMenImages             MetafieldKey = "men_images"
	KeyWomenImages           MetafieldKey = "women_images"
)

// AllMetafieldKeys lists every managed key in display order
var AllMetafieldKeys = []MetafieldKey{
	KeyShortDescription,
	KeyFullDescription,
	KeyDetails,
	KeySameProduct,
	KeyStyleWith,
	KeyFlat,
	KeyCare,
	KeyFitguide,
	KeyModelInfo,
	KeyRecommendedCollection,
	KeyStyleWithUnisexHerre,
	KeyStyleWithUnisexDame,
	KeyMenImages,
	KeyWomenImages,
}

// Metafields holds the string value of every managed key
type Metafields map[MetafieldKey]string

// NewMetafields returns a bag with every managed key set to ""
func NewMetafields() Metafields {
	m := make(Metafields, len(AllMetafieldKeys))
	for _, k := range AllMetafieldKeys {
		m[k] = ""
	}
	return m
}

// Clone returns a copy of the bag that always contains every managed key
func (m Metafields) Clone() Metafields {
	out := NewMetafields()
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FeaturedImage is the primary product image
type FeaturedImage struct {
	URL     string `json:"url"`
	AltText string `json:"altText,omitempty"`
}

// Product is a product record with its managed metafields
type Product struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Handle        string         `json:"handle"`
	Vendor        string         `json:"vendor"`
	ProductType   string         `json:"productType"`
	Tags          []string       `json:"tags"`
	Status        string         `json:"status"`
	FeaturedImage *FeaturedImage `json:"featuredImage,omitempty"`
	MediaCount    int            `json:"mediaCount"`
	Metafields    Metafields     `json:"metafields"`
}

// Metafield returns the stored value for key, or "" if unset
func (p *Product) Metafield(key MetafieldKey) string {
	if p.Metafields == nil {
		return ""
	}
	return p.Metafields[key]
}

// EnsureMetafields fills in every managed key that is missing
func (p *Product) EnsureMetafields() {
	if p.Metafields == nil {
		p.Metafields = NewMetafields()
		return
	}
	for _, k := range AllMetafieldKeys {
		if _, ok := p.Metafields[k]; !ok {
			p.Metafields[k] = ""
		}
	}
}

// HasTag reports whether the product carries tag, ignoring case
func (p *Product) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
