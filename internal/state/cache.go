package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/badno/metaops/pkg/models"
)

const (
	CacheVersion     = "1.0"
	DefaultCacheFile = "output/.metaops-cache.json"
	DefaultMaxAge    = 5 * time.Minute
)

// HistoryEntry represents a single action in the history
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`  // fetch, save, invalidate, etc.
	Count     int       `json:"count"`   // Number of products affected
	Details   string    `json:"details"` // Human-readable description
}

// CacheFile is the on-disk snapshot cache
type CacheFile struct {
	Version     string           `json:"version"`
	Snapshot    *models.Snapshot `json:"snapshot,omitempty"`
	FetchedAt   time.Time        `json:"fetched_at"`
	History     []HistoryEntry   `json:"history"`
	LastUpdated time.Time        `json:"last_updated"`
}

// Cache keeps the last fetched snapshot with a staleness window
type Cache struct {
	mu       sync.RWMutex
	filePath string
	maxAge   time.Duration
	state    *CacheFile
	now      func() time.Time
}

// NewCache creates a cache backed by filePath
func NewCache(filePath string, maxAge time.Duration) *Cache {
	if filePath == "" {
		filePath = DefaultCacheFile
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Cache{
		filePath: filePath,
		maxAge:   maxAge,
		state:    emptyCache(),
		now:      time.Now,
	}
}

func emptyCache() *CacheFile {
	return &CacheFile{Version: CacheVersion, History: []HistoryEntry{}}
}

// Load reads the cache from disk. A missing or unreadable file starts empty.
func (c *Cache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			c.state = emptyCache()
			return nil
		}
		return err
	}

	var state CacheFile
	if err := json.Unmarshal(data, &state); err != nil {
		c.state = emptyCache()
		return fmt.Errorf("failed to parse cache file: %w", err)
	}
	if state.History == nil {
		state.History = []HistoryEntry{}
	}
	c.state = &state
	return nil
}

// Save writes the cache to disk
func (c *Cache) Save() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.LastUpdated = c.now()

	if err := os.MkdirAll(filepath.Dir(c.filePath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c.state, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(c.filePath, data, 0644)
}

// Put stores a freshly fetched snapshot
func (c *Cache) Put(snapshot *models.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Snapshot = snapshot
	c.state.FetchedAt = c.now()
	c.addHistory("fetch", len(snapshot.Products), fmt.Sprintf("Fetched %d products, %d pages", len(snapshot.Products), len(snapshot.Pages)))
}

// Snapshot returns the cached snapshot if it is still fresh
func (c *Cache) Snapshot() (*models.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.freshLocked() {
		return nil, false
	}
	return c.state.Snapshot, true
}

// Stale returns the cached snapshot regardless of age
func (c *Cache) Stale() (*models.Snapshot, time.Time) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Snapshot, c.state.FetchedAt
}

// Fresh reports whether a snapshot exists and is within the staleness window
func (c *Cache) Fresh() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.freshLocked()
}

func (c *Cache) freshLocked() bool {
	if c.state.Snapshot == nil || c.state.FetchedAt.IsZero() {
		return false
	}
	return c.now().Sub(c.state.FetchedAt) < c.maxAge
}

// Invalidate marks the snapshot stale so the next read refetches
func (c *Cache) Invalidate(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.FetchedAt = time.Time{}
	c.addHistory("invalidate", 0, reason)
}

// AddHistory adds an entry to the history
func (c *Cache) AddHistory(action string, count int, details string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addHistory(action, count, details)
}

func (c *Cache) addHistory(action string, count int, details string) {
	c.state.History = append(c.state.History, HistoryEntry{
		Timestamp: c.now(),
		Action:    action,
		Count:     count,
		Details:   details,
	})
}

// GetRecentHistory returns the last n history entries
func (c *Cache) GetRecentHistory(n int) []HistoryEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if n <= 0 || n >= len(c.state.History) {
		history := make([]HistoryEntry, len(c.state.History))
		copy(history, c.state.History)
		return history
	}

	start := len(c.state.History) - n
	history := make([]HistoryEntry, n)
	copy(history, c.state.History[start:])
	return history
}
