package grouping

import (
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
)

// DefaultAutoLinkVendors are the vendors whose groups are linked automatically
var DefaultAutoLinkVendors = []string{"Livid Jeans", "Livid Unisex"}

// DetectAutoLinks groups the products of the given vendors and proposes, for
// every member, its current same_product list extended with any missing
// siblings. Products with nothing to add are omitted.
func DetectAutoLinks(products []models.Product, vendors []string) map[string][]string {
	if len(vendors) == 0 {
		vendors = DefaultAutoLinkVendors
	}
	allowed := make(map[string]bool, len(vendors))
	for _, v := range vendors {
		allowed[v] = true
	}

	filtered := make([]models.Product, 0, len(products))
	for _, p := range products {
		if allowed[p.Vendor] {
			filtered = append(filtered, p)
		}
	}

	suggestions := make(map[string][]string)
	for _, g := range DetectProductGroups(filtered) {
		ids := g.MemberIDs()
		for _, m := range g.Members {
			current := metafields.ParseGIDList(m.Metafield(models.KeySameProduct))
			have := make(map[string]bool, len(current))
			for _, id := range current {
				have[id] = true
			}

			proposed := append([]string{}, current...)
			added := 0
			for _, id := range ids {
				if id == m.ID || have[id] {
					continue
				}
				proposed = append(proposed, id)
				have[id] = true
				added++
			}
			if added > 0 {
				suggestions[m.ID] = proposed
			}
		}
	}
	return suggestions
}

// LinkGroup returns, for every member, a same_product value listing all of
// its siblings in group order.
func LinkGroup(g models.ProductGroup) map[string]string {
	ids := g.MemberIDs()
	values := make(map[string]string, len(ids))
	for _, id := range ids {
		siblings := make([]string, 0, len(ids)-1)
		for _, other := range ids {
			if other != id {
				siblings = append(siblings, other)
			}
		}
		values[id] = metafields.SerializeGIDList(siblings)
	}
	return values
}

// FindGroup returns the group with the given id or base name
func FindGroup(groups []models.ProductGroup, ref string) (models.ProductGroup, bool) {
	for _, g := range groups {
		if g.ID == ref || g.BaseName == ref {
			return g, true
		}
	}
	return models.ProductGroup{}, false
}
