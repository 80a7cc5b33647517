// Package prefs persists view preferences (filters and visible columns)
// in a small JSON file. Read, parse and write failures are ignored and
// defaults are used instead.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/badno/metaops/internal/filter"
	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
)

const (
	KeyProductFilters = "metafield-manager:product-filters"
	KeyVisibleColumns = "metafield-manager:visible-columns"

	DefaultFile = "output/.metaops-prefs.json"
)

// Store is a string-keyed JSON document loaded once and written on every change
type Store struct {
	mu     sync.Mutex
	path   string
	values map[string]json.RawMessage
}

// Open loads path, starting empty if it is missing or unreadable
func Open(path string) *Store {
	if path == "" {
		path = DefaultFile
	}
	s := &Store{path: path, values: map[string]json.RawMessage{}}

	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var values map[string]json.RawMessage
	if err := json.Unmarshal(data, &values); err == nil && values != nil {
		s.values = values
	}
	return s
}

// Path returns the backing file
func (s *Store) Path() string {
	return s.path
}

// get decodes key into v and reports whether it succeeded
func (s *Store) get(key string, v any) bool {
	s.mu.Lock()
	raw, ok := s.values[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(raw, v) == nil
}

// set stores v under key and rewrites the file, ignoring write errors
func (s *Store) set(key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = raw

	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return
	}
	_ = os.WriteFile(s.path, data, 0644)
}

// Filters returns the saved product filters, or defaults
func (s *Store) Filters() filter.Filters {
	f := filter.Default()
	if !s.get(KeyProductFilters, &f) {
		return filter.Default()
	}
	if f.Vendors == nil {
		f.Vendors = []string{}
	}
	if f.ProductTypes == nil {
		f.ProductTypes = []string{}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	if f.Statuses == nil {
		f.Statuses = []string{}
	}
	return f
}

// SetFilters saves the product filters
func (s *Store) SetFilters(f filter.Filters) {
	s.set(KeyProductFilters, f)
}

// ResetFilters restores the default filters
func (s *Store) ResetFilters() {
	s.set(KeyProductFilters, filter.Default())
}

// VisibleColumns returns the saved columns, dropping unknown keys.
// Nothing saved yields the default-visible columns.
func (s *Store) VisibleColumns() []models.MetafieldKey {
	var saved []string
	if !s.get(KeyVisibleColumns, &saved) {
		return metafields.DefaultVisibleKeys()
	}
	cols := make([]models.MetafieldKey, 0, len(saved))
	for _, k := range saved {
		if metafields.IsKnown(k) {
			cols = append(cols, models.MetafieldKey(k))
		}
	}
	return cols
}

// SetVisibleColumns saves the visible columns
func (s *Store) SetVisibleColumns(cols []models.MetafieldKey) {
	if cols == nil {
		cols = []models.MetafieldKey{}
	}
	s.set(KeyVisibleColumns, cols)
}

// ToggleColumn flips the visibility of key and returns the new set
func (s *Store) ToggleColumn(key models.MetafieldKey) []models.MetafieldKey {
	current := s.VisibleColumns()
	next := make([]models.MetafieldKey, 0, len(current)+1)
	found := false
	for _, c := range current {
		if c == key {
			found = true
			continue
		}
		next = append(next, c)
	}
	if !found {
		next = append(next, key)
	}
	s.SetVisibleColumns(next)
	return next
}

// ShowAllColumns makes every column visible
func (s *Store) ShowAllColumns() {
	s.SetVisibleColumns(append([]models.MetafieldKey{}, models.AllMetafieldKeys...))
}

// ResetColumns restores the default-visible columns
func (s *Store) ResetColumns() {
	s.SetVisibleColumns(metafields.DefaultVisibleKeys())
}

// ColumnsFor narrows cols to the ones that apply to at least one vendor
// in vendors. An empty vendors list keeps columns without a vendor scope.
func ColumnsFor(cols []models.MetafieldKey, vendors []string) []models.MetafieldKey {
	out := make([]models.MetafieldKey, 0, len(cols))
	for _, c := range cols {
		def, ok := metafields.Lookup(c)
		if !ok {
			continue
		}
		if def.Vendor == "" {
			out = append(out, c)
			continue
		}
		for _, v := range vendors {
			if def.AppliesTo(v) {
				out = append(out, c)
				break
			}
		}
	}
	return out
}
