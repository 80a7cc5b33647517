package matcher

import (
	"testing"

	"github.com/badno/metaops/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fitguideProduct(id, handle, fitguide string, tags ...string) models.Product {
	p := models.Product{
		ID:         id,
		Handle:     handle,
		Tags:       tags,
		Metafields: models.NewMetafields(),
	}
	p.Metafields[models.KeyFitguide] = fitguide
	return p
}

var testPages = []models.Page{
	{ID: "gid://shopify/Page/1", Title: "Abby Fitguide", Handle: "abby-fitguide"},
	{ID: "gid://shopify/Page/2", Title: "Abby SS26 Fitguide", Handle: "abby-ss26-fitguide"},
	{ID: "gid://shopify/Page/3", Title: "Nelson Slim Fitguide", Handle: "Nelson-Slim-Fitguide"},
	{ID: "gid://shopify/Page/4", Title: "Nelson Fitguide", Handle: "nelson-fitguide"},
}

func TestFitguideSeasonalBeatsStandard(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)

	for _, current := range []string{"", "gid://shopify/Page/1"} {
		p := fitguideProduct("p1", "abby-black", current, "ss26")
		matches := m.Match([]models.Product{p})

		require.Len(t, matches, 1)
		assert.Equal(t, "gid://shopify/Page/2", matches[0].Page.ID)
		assert.Equal(t, "SS26", matches[0].Season)
		assert.Equal(t, current != "", matches[0].IsOverride)
	}
}

func TestFitguideSeasonalAlreadySetSkipsStandard(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)
	p := fitguideProduct("p1", "abby-black", "gid://shopify/Page/2", "SS26")
	assert.Empty(t, m.Match([]models.Product{p}))
}

func TestFitguideStandardLongestPrefix(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)

	products := []models.Product{
		fitguideProduct("p1", "nelson-slim-black", ""),
		fitguideProduct("p2", "nelson-regular-blue", ""),
		fitguideProduct("p3", "unknown-thing", ""),
	}
	matches := m.Match(products)

	require.Len(t, matches, 2)
	assert.Equal(t, "p1", matches[0].Product.ID)
	assert.Equal(t, "gid://shopify/Page/3", matches[0].Page.ID)
	assert.Equal(t, "p2", matches[1].Product.ID)
	assert.Equal(t, "gid://shopify/Page/4", matches[1].Page.ID)
	assert.False(t, matches[0].IsOverride)
	assert.Empty(t, matches[0].Season)
}

func TestFitguideExistingNonSeasonalSkipped(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)
	p := fitguideProduct("p1", "abby-black", "gid://shopify/Page/1")
	assert.Empty(t, m.Match([]models.Product{p}))
}

func TestFitguideSeasonTagWithoutSeasonalPageFallsBack(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)

	p := fitguideProduct("p1", "nelson-slim-black", "", "SS26")
	matches := m.Match([]models.Product{p})
	require.Len(t, matches, 1)
	assert.Equal(t, "gid://shopify/Page/3", matches[0].Page.ID)

	set := fitguideProduct("p2", "nelson-slim-black", "gid://shopify/Page/4", "SS26")
	assert.Empty(t, m.Match([]models.Product{set}))
}

func TestFitguideCustomSeasonPriority(t *testing.T) {
	pages := append([]models.Page{{ID: "gid://shopify/Page/9", Handle: "abby-aw26-fitguide"}}, testPages...)
	m := NewFitguideMatcher(pages, []string{"AW26", "SS26"})

	p := fitguideProduct("p1", "abby-black", "", "SS26", "AW26")
	matches := m.Match([]models.Product{p})
	require.Len(t, matches, 1)
	assert.Equal(t, "gid://shopify/Page/9", matches[0].Page.ID)
}

func TestFitguideActionable(t *testing.T) {
	m := NewFitguideMatcher(testPages, nil)
	products := []models.Product{
		fitguideProduct("p1", "a", ""),
		fitguideProduct("p2", "b", "gid://shopify/Page/1"),
		fitguideProduct("p3", "c", "gid://shopify/Page/1", "SS26"),
	}
	assert.Equal(t, 2, m.Actionable(products))
}

func TestPageFilters(t *testing.T) {
	pages := []models.Page{
		{ID: "1", Title: "Care - Denim"},
		{ID: "2", Title: "Nelson Fitguide"},
		{ID: "3", Title: "About us"},
		{ID: "4", Title: "CARE wool"},
	}

	care := CarePages(pages)
	require.Len(t, care, 2)
	assert.Equal(t, "1", care[0].ID)
	assert.Equal(t, "4", care[1].ID)

	fit := FitguidePages(pages)
	require.Len(t, fit, 1)
	assert.Equal(t, "2", fit[0].ID)
}
