// Package grouping clusters products into colorway groups by shared title
// prefix and reports how completely each group is cross-linked.
package grouping

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
)

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]`)

type partition struct {
	vendor      string
	productType string
	products    []models.Product
}

// DetectProductGroups partitions products by vendor and product type and
// clusters each partition by longest shared word prefix. Products without
// a partition-mate never appear in a group. Results are sorted by base name.
func DetectProductGroups(products []models.Product) []models.ProductGroup {
	var partitions []*partition
	index := make(map[string]*partition)

	for _, p := range products {
		key := p.Vendor + "|||" + p.ProductType
		part, ok := index[key]
		if !ok {
			part = &partition{vendor: p.Vendor, productType: p.ProductType}
			index[key] = part
			partitions = append(partitions, part)
		}
		part.products = append(part.products, p)
	}

	groups := []models.ProductGroup{}
	for _, part := range partitions {
		if len(part.products) < 2 {
			continue
		}

		for _, c := range detectBaseNames(part.products) {
			if len(c.members) < 2 {
				continue
			}
			groups = append(groups, models.ProductGroup{
				ID:          GroupID(part.vendor, part.productType, c.baseName),
				BaseName:    c.baseName,
				Vendor:      part.vendor,
				ProductType: part.productType,
				Members:     c.members,
				LinkStatus:  ComputeLinkStatus(c.members),
			})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool {
		if groups[i].BaseName != groups[j].BaseName {
			return groups[i].BaseName < groups[j].BaseName
		}
		return groups[i].ID < groups[j].ID
	})
	return groups
}

// GroupID derives the slug used to address a group
func GroupID(vendor, productType, baseName string) string {
	raw := strings.ToLower(vendor + "--" + productType + "--" + baseName)
	return slugUnsafe.ReplaceAllString(raw, "-")
}

type cluster struct {
	baseName string
	members  []models.Product
}

// detectBaseNames greedily assigns products to the longest shared prefix
// that still covers at least two unassigned products.
func detectBaseNames(products []models.Product) []cluster {
	prefixIndices := make(map[string]map[int]bool)
	for i := 0; i < len(products); i++ {
		for j := i + 1; j < len(products); j++ {
			prefix := LongestCommonWordPrefix(products[i].Title, products[j].Title)
			if prefix == "" {
				continue
			}
			set, ok := prefixIndices[prefix]
			if !ok {
				set = make(map[int]bool)
				prefixIndices[prefix] = set
			}
			set[i] = true
			set[j] = true
		}
	}

	prefixes := make([]string, 0, len(prefixIndices))
	for prefix := range prefixIndices {
		prefixes = append(prefixes, prefix)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(prefixes[i]), utf8.RuneCountInString(prefixes[j])
		if li != lj {
			return li > lj
		}
		return prefixes[i] < prefixes[j]
	})

	assigned := make(map[int]bool)
	var clusters []cluster

	for _, prefix := range prefixes {
		candidates := make(map[int]bool)
		for i := range prefixIndices[prefix] {
			if !assigned[i] {
				candidates[i] = true
			}
		}
		if len(candidates) < 2 {
			continue
		}

		for i, p := range products {
			if assigned[i] || !strings.HasPrefix(p.Title, prefix) {
				continue
			}
			if strings.TrimSpace(p.Title[len(prefix):]) != "" {
				candidates[i] = true
			}
		}

		indices := make([]int, 0, len(candidates))
		for i := range candidates {
			indices = append(indices, i)
		}
		sort.Ints(indices)

		members := make([]models.Product, 0, len(indices))
		for _, i := range indices {
			members = append(members, products[i])
			assigned[i] = true
		}
		clusters = append(clusters, cluster{baseName: strings.TrimSpace(prefix), members: members})
	}

	return clusters
}

// LongestCommonWordPrefix returns the whitespace-delimited words shared at
// the start of a and b, joined by single spaces with a trailing space.
// It returns "" when nothing is shared or when the words cover both titles.
func LongestCommonWordPrefix(a, b string) string {
	wordsA := strings.Fields(a)
	wordsB := strings.Fields(b)

	n := 0
	for n < len(wordsA) && n < len(wordsB) && wordsA[n] == wordsB[n] {
		n++
	}

	if n == 0 || (n == len(wordsA) && n == len(wordsB)) {
		return ""
	}
	return strings.Join(wordsA[:n], " ") + " "
}

// ComputeLinkStatus reports whether every member's same_product list
// references all of its siblings.
func ComputeLinkStatus(members []models.Product) models.LinkStatus {
	fully, partially := 0, 0

	for _, m := range members {
		linked := make(map[string]bool)
		for _, id := range metafields.ParseGIDList(m.Metafield(models.KeySameProduct)) {
			linked[id] = true
		}

		others, hits := 0, 0
		for _, o := range members {
			if o.ID == m.ID {
				continue
			}
			others++
			if linked[o.ID] {
				hits++
			}
		}

		switch {
		case hits == others:
			fully++
		case hits > 0:
			partially++
		}
	}

	switch {
	case fully == len(members):
		return models.LinkStatusLinked
	case fully > 0 || partially > 0:
		return models.LinkStatusPartiallyLinked
	default:
		return models.LinkStatusNotLinked
	}
}
