package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/badno/metaops/internal/metafields"
	"github.com/badno/metaops/pkg/models"
)

const (
	DraftsVersion     = "1.0"
	DefaultDraftsFile = "output/.metaops-drafts.json"
)

// DraftsFile is the on-disk form of pending edits
type DraftsFile struct {
	Version     string             `json:"version"`
	Cells       []models.DirtyCell `json:"cells"`
	LastUpdated time.Time          `json:"last_updated"`
}

// DirtyStore tracks pending, unsaved metafield edits keyed by "productId:field"
type DirtyStore struct {
	mu      sync.RWMutex
	cells   map[string]models.DirtyCell
	dropped []models.DirtyCell
}

// NewDirtyStore creates an empty store
func NewDirtyStore() *DirtyStore {
	return &DirtyStore{cells: make(map[string]models.DirtyCell)}
}

// SetCell records newValue for the cell, or drops the entry when it equals
// the original value.
func (s *DirtyStore) SetCell(productID string, field models.MetafieldKey, newValue, originalValue string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := models.CellKey(productID, field)
	if newValue == originalValue {
		delete(s.cells, key)
		return
	}
	s.cells[key] = models.DirtyCell{ProductID: productID, Field: field, Value: newValue}
}

// Get returns the pending cell for (productID, field)
func (s *DirtyStore) Get(productID string, field models.MetafieldKey) (models.DirtyCell, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cells[models.CellKey(productID, field)]
	return c, ok
}

// EffectiveValue returns the pending value if present, else the stored value
func (s *DirtyStore) EffectiveValue(p models.Product, field models.MetafieldKey) string {
	if c, ok := s.Get(p.ID, field); ok {
		return c.Value
	}
	return p.Metafield(field)
}

// IsDirty reports whether the cell has a pending edit
func (s *DirtyStore) IsDirty(productID string, field models.MetafieldKey) bool {
	_, ok := s.Get(productID, field)
	return ok
}

// Len returns the number of pending cells
func (s *DirtyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.cells)
}

// Clear drops every pending edit
func (s *DirtyStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[string]models.DirtyCell)
	s.dropped = nil
}

// Remove drops the given cells, ignoring keys that are not pending
func (s *DirtyStore) Remove(keys ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.cells, k)
	}
}

// RemoveProducts drops every pending cell of the given products
func (s *DirtyStore) RemoveProducts(productIDs ...string) {
	ids := make(map[string]bool, len(productIDs))
	for _, id := range productIDs {
		ids[id] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for k, c := range s.cells {
		if ids[c.ProductID] {
			delete(s.cells, k)
		}
	}
}

// Cells returns the pending cells ordered by product id, then field
// declaration order.
func (s *DirtyStore) Cells() []models.DirtyCell {
	s.mu.RLock()
	out := make([]models.DirtyCell, 0, len(s.cells))
	for _, c := range s.cells {
		out = append(out, c)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].ProductID != out[j].ProductID {
			return out[i].ProductID < out[j].ProductID
		}
		return fieldIndex(out[i].Field) < fieldIndex(out[j].Field)
	})
	return out
}

// ProductIDs returns the distinct products with pending edits, sorted
func (s *DirtyStore) ProductIDs() []string {
	seen := map[string]bool{}
	var ids []string
	for _, c := range s.Cells() {
		if !seen[c.ProductID] {
			seen[c.ProductID] = true
			ids = append(ids, c.ProductID)
		}
	}
	return ids
}

// Updates groups the pending cells into one update per product
func (s *DirtyStore) Updates() []models.BulkMetafieldUpdate {
	return GroupCells(s.Cells())
}

// UnknownCells returns pending cells whose field has no definition.
// They can never be written.
func (s *DirtyStore) UnknownCells() []models.DirtyCell {
	var out []models.DirtyCell
	for _, c := range s.Cells() {
		if _, ok := metafields.Lookup(c.Field); !ok {
			out = append(out, c)
		}
	}
	return out
}

// Dropped returns the cells the last LoadFile discarded for unknown fields
func (s *DirtyStore) Dropped() []models.DirtyCell {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.DirtyCell, len(s.dropped))
	copy(out, s.dropped)
	return out
}

// ApplyTo returns copies of products with pending values merged in
func (s *DirtyStore) ApplyTo(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		p.Metafields = p.Metafields.Clone()
		for _, k := range models.AllMetafieldKeys {
			if c, ok := s.Get(p.ID, k); ok {
				p.Metafields[k] = c.Value
			}
		}
		out[i] = p
	}
	return out
}

// GroupCells flattens cells into one BulkMetafieldUpdate per product, in the
// order products first appear. Namespace and type come from the definition
// table; cells for unknown fields are dropped.
func GroupCells(cells []models.DirtyCell) []models.BulkMetafieldUpdate {
	index := map[string]int{}
	var updates []models.BulkMetafieldUpdate

	for _, c := range cells {
		def, ok := metafields.Lookup(c.Field)
		if !ok {
			continue
		}
		i, seen := index[c.ProductID]
		if !seen {
			i = len(updates)
			index[c.ProductID] = i
			updates = append(updates, models.BulkMetafieldUpdate{ProductID: c.ProductID})
		}
		updates[i].Metafields = append(updates[i].Metafields, models.MetafieldValue{
			Namespace: def.Namespace,
			Key:       string(def.Key),
			Value:     c.Value,
			Type:      def.Type,
		})
	}
	return updates
}

// SaveFile writes the pending cells to path
func (s *DirtyStore) SaveFile(path string) error {
	if path == "" {
		path = DefaultDraftsFile
	}

	drafts := DraftsFile{
		Version:     DraftsVersion,
		Cells:       s.Cells(),
		LastUpdated: time.Now(),
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadFile replaces the pending cells with those stored at path.
// A missing file leaves the store empty. Cells for unknown fields are
// discarded and reported by Dropped.
func (s *DirtyStore) LoadFile(path string) error {
	if path == "" {
		path = DefaultDraftsFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			s.Clear()
			return nil
		}
		return err
	}

	var drafts DraftsFile
	if err := json.Unmarshal(data, &drafts); err != nil {
		return fmt.Errorf("failed to parse drafts file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cells = make(map[string]models.DirtyCell, len(drafts.Cells))
	s.dropped = nil
	for _, c := range drafts.Cells {
		if _, ok := metafields.Lookup(c.Field); !ok {
			s.dropped = append(s.dropped, c)
			continue
		}
		s.cells[c.Key()] = c
	}
	return nil
}

func fieldIndex(k models.MetafieldKey) int {
	for i, key := range models.AllMetafieldKeys {
		if key == k {
			return i
		}
	}
	return len(models.AllMetafieldKeys)
}
