package matcher

import (
	"strings"

	"github.com/badno/metaops/pkg/models"
)

// DefaultSeasonTags are checked in priority order, newest first
var DefaultSeasonTags = []string{"SS26"}

// FitguideMatch links a product to the fit guide page it should reference
type FitguideMatch struct {
	Product    models.Product
	Page       models.Page
	Season     string // Season tag that produced the match, "" for standard matches
	IsOverride bool   // True when replacing an already-set fit guide
}

// FitguideMatcher matches products to fit guide pages by handle prefix
type FitguideMatcher struct {
	seasonTags   []string
	pageByHandle map[string]models.Page
}

// NewFitguideMatcher indexes the given pages by lower-cased handle
func NewFitguideMatcher(pages []models.Page, seasonTags []string) *FitguideMatcher {
	if seasonTags == nil {
		seasonTags = DefaultSeasonTags
	}

	byHandle := make(map[string]models.Page, len(pages))
	for _, p := range pages {
		byHandle[strings.ToLower(p.Handle)] = p
	}

	return &FitguideMatcher{
		seasonTags:   seasonTags,
		pageByHandle: byHandle,
	}
}

// Match returns one match per product that needs a fit guide, in input order.
//
// Products carrying a season tag first look for "{prefix}-{season}-fitguide"
// and, when one exists, skip standard matching even if it is already set.
// Otherwise only products without a fit guide are matched against
// "{prefix}-fitguide". Longer handle prefixes win.
func (m *FitguideMatcher) Match(products []models.Product) []FitguideMatch {
	var matches []FitguideMatch

	for _, p := range products {
		parts := strings.Split(strings.ToLower(p.Handle), "-")
		current := p.Metafield(models.KeyFitguide)

		if season := m.seasonTag(p); season != "" {
			suffix := "-" + strings.ToLower(season) + "-fitguide"
			if page, ok := m.lookup(parts, suffix); ok {
				if page.ID != current {
					matches = append(matches, FitguideMatch{
						Product:    p,
						Page:       page,
						Season:     season,
						IsOverride: current != "",
					})
				}
				continue
			}
		}

		if current != "" {
			continue
		}

		if page, ok := m.lookup(parts, "-fitguide"); ok {
			matches = append(matches, FitguideMatch{Product: p, Page: page})
		}
	}

	return matches
}

// Actionable counts products that lack a fit guide or carry a season tag
func (m *FitguideMatcher) Actionable(products []models.Product) int {
	count := 0
	for _, p := range products {
		if p.Metafield(models.KeyFitguide) == "" || m.seasonTag(p) != "" {
			count++
		}
	}
	return count
}

func (m *FitguideMatcher) seasonTag(p models.Product) string {
	for _, tag := range m.seasonTags {
		if p.HasTag(tag) {
			return tag
		}
	}
	return ""
}

// lookup tries progressively shorter handle prefixes joined with suffix
func (m *FitguideMatcher) lookup(parts []string, suffix string) (models.Page, bool) {
	for n := len(parts); n >= 1; n-- {
		handle := strings.Join(parts[:n], "-") + suffix
		if page, ok := m.pageByHandle[handle]; ok {
			return page, true
		}
	}
	return models.Page{}, false
}
