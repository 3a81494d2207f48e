package unitcache

import (
	"slices"
	"strings"
	"sync"
	"time"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
)

// Index is the memory tier: at most one entry per unit name.
// Reads take the read lock; mutations take the write lock.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
	logger  ports.Logger
}

// NewIndex creates an empty Index.
func NewIndex(logger ports.Logger) *Index {
	return &Index{
		entries: make(map[string]*domain.CacheEntry),
		logger:  logger,
	}
}

// Get returns a copy of the entry for name.
func (i *Index) Get(name string) (domain.CacheEntry, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	entry, ok := i.entries[name]
	if !ok {
		return domain.CacheEntry{}, false
	}
	return *entry, true
}

// Set inserts or replaces the entry for entry.UnitName.
func (i *Index) Set(entry domain.CacheEntry) error {
	if entry.UnitName == "" {
		if i.logger != nil {
			i.logger.Warn(domain.ErrMalformedEntry.Error())
		}
		return domain.ErrMalformedEntry
	}
	if entry.LastAccessedAt.Before(entry.CachedAt) {
		entry.LastAccessedAt = entry.CachedAt
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.entries[entry.UnitName] = &entry
	return nil
}

// Remove deletes the entry for name. Removing a missing entry is a no-op.
func (i *Index) Remove(name string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.entries, name)
}

// Clear drops every entry.
func (i *Index) Clear() {
	i.mu.Lock()
	defer i.mu.Unlock()
	clear(i.entries)
}

// Len returns the number of entries.
func (i *Index) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.entries)
}

// Touch sets LastAccessedAt of the entry for name and returns the updated copy.
func (i *Index) Touch(name string, at time.Time) (domain.CacheEntry, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, ok := i.entries[name]
	if !ok {
		return domain.CacheEntry{}, false
	}
	if at.After(entry.LastAccessedAt) {
		entry.LastAccessedAt = at
	}
	return *entry, true
}

// Snapshot returns copies of all entries ordered by unit name.
func (i *Index) Snapshot() []domain.CacheEntry {
	i.mu.RLock()
	out := make([]domain.CacheEntry, 0, len(i.entries))
	for _, entry := range i.entries {
		out = append(out, *entry)
	}
	i.mu.RUnlock()

	slices.SortFunc(out, func(a, b domain.CacheEntry) int {
		return strings.Compare(a.UnitName, b.UnitName)
	})
	return out
}
