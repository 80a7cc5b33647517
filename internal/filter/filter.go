// Package filter narrows a full product snapshot on the client side.
package filter

import (
	"sort"
	"strings"

	"github.com/badno/metaops/pkg/models"
)

// Filters selects products from a snapshot. Zero values match everything.
type Filters struct {
	Search       string   `json:"search"`
	Vendors      []string `json:"vendors"`
	ProductTypes []string `json:"productTypes"`
	Tags         []string `json:"tags"`
	Statuses     []string `json:"statuses"`
	MissingFlat  bool     `json:"missingFlat"`
}

// Default returns filters that match every product
func Default() Filters {
	return Filters{
		Vendors:      []string{},
		ProductTypes: []string{},
		Tags:         []string{},
		Statuses:     []string{},
	}
}

// IsActive reports whether any filter is set
func (f Filters) IsActive() bool {
	return f.Search != "" || len(f.Vendors) > 0 || len(f.ProductTypes) > 0 ||
		len(f.Tags) > 0 || len(f.Statuses) > 0 || f.MissingFlat
}

// Match reports whether p passes every filter
func (f Filters) Match(p models.Product) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.Handle), q) &&
			!strings.Contains(strings.ToLower(p.Vendor), q) {
			return false
		}
	}
	if len(f.Vendors) > 0 && !contains(f.Vendors, p.Vendor) {
		return false
	}
	if len(f.ProductTypes) > 0 && !contains(f.ProductTypes, p.ProductType) {
		return false
	}
	if len(f.Tags) > 0 && !anyOf(f.Tags, p.Tags) {
		return false
	}
	if len(f.Statuses) > 0 && !contains(f.Statuses, p.Status) {
		return false
	}
	if f.MissingFlat && p.Metafield(models.KeyFlat) != "" {
		return false
	}
	return true
}

// Apply returns the products that match, preserving order
func (f Filters) Apply(products []models.Product) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Facets lists the distinct filterable values of a snapshot
type Facets struct {
	Vendors      []string `json:"vendors"`
	ProductTypes []string `json:"productTypes"`
	Tags         []string `json:"tags"`
	Statuses     []string `json:"statuses"`
}

// ComputeFacets returns sorted distinct non-empty vendors, types, tags and statuses
func ComputeFacets(products []models.Product) Facets {
	vendors := map[string]bool{}
	types := map[string]bool{}
	tags := map[string]bool{}
	statuses := map[string]bool{}

	for _, p := range products {
		vendors[p.Vendor] = true
		types[p.ProductType] = true
		statuses[p.Status] = true
		for _, t := range p.Tags {
			tags[t] = true
		}
	}

	return Facets{
		Vendors:      sortedKeys(vendors),
		ProductTypes: sortedKeys(types),
		Tags:         sortedKeys(tags),
		Statuses:     sortedKeys(statuses),
	}
}

// ByIDs returns the products whose id is in ids, in snapshot order.
// An empty ids list selects every product.
func ByIDs(products []models.Product, ids []string) []models.Product {
	if len(ids) == 0 {
		return products
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	out := make([]models.Product, 0, len(ids))
	for _, p := range products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		if k != "" {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func anyOf(want, have []string) bool {
	for _, w := range want {
		if contains(have, w) {
			return true
		}
	}
	return false
}
