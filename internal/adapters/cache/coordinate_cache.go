package cache

import (
	"strings"
	"sync"

	"autodrive-service/internal/domain"
)

type coordinateKey struct {
	title    string
	subtitle string
}

// In-memory cache mapping a normalized place description to its resolved
// coordinates. Entries live for the process lifetime; there is no eviction.
// Writes for the same key are expected to be idempotent in practice since
// keys are normalized before storage.
//
// Safe for concurrent use from overlapping type-ahead lookups.
type CoordinateCache struct {
	mu      sync.RWMutex
	entries map[coordinateKey]domain.Coordinates
}

func NewCoordinateCache() *CoordinateCache {
	return &CoordinateCache{entries: make(map[coordinateKey]domain.Coordinates)}
}

// normalizeKey folds case and trims whitespace so lookups tolerate the
// cosmetic variants a type-ahead UI produces.
func normalizeKey(title, subtitle string) coordinateKey {
	return coordinateKey{
		title:    strings.ToLower(strings.TrimSpace(title)),
		subtitle: strings.ToLower(strings.TrimSpace(subtitle)),
	}
}

// Lookup returns the cached coordinates for a place description, if any.
func (c *CoordinateCache) Lookup(title, subtitle string) (domain.Coordinates, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	coord, ok := c.entries[normalizeKey(title, subtitle)]
	return coord, ok
}

// Store records resolved coordinates for a place description.
func (c *CoordinateCache) Store(coord domain.Coordinates, title, subtitle string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[normalizeKey(title, subtitle)] = coord
}

// Len reports the number of cached entries.
func (c *CoordinateCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
