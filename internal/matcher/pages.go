package matcher

import (
	"strings"

	"github.com/badno/metaops/pkg/models"
)

// CarePages returns pages whose title starts with "care"
func CarePages(pages []models.Page) []models.Page {
	var out []models.Page
	for _, p := range pages {
		if strings.HasPrefix(strings.ToLower(p.Title), "care") {
			out = append(out, p)
		}
	}
	return out
}

// FitguidePages returns pages whose title contains "fitguide"
func FitguidePages(pages []models.Page) []models.Page {
	var out []models.Page
	for _, p := range pages {
		if strings.Contains(strings.ToLower(p.Title), "fitguide") {
			out = append(out, p)
		}
	}
	return out
}
