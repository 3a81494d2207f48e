package domain

import "time"

const (
	// MemoryMaxAge is the lifetime of an in-memory cache entry, measured from CachedAt.
	MemoryMaxAge = 24 * time.Hour

	// DiskMaxAge is the retention of a persisted metadata record, measured from CachedAt.
	DiskMaxAge = 7 * 24 * time.Hour
)

// Handle is the opaque in-process reference to a loaded unit.
// Once stored in the cache, the cache owns it.
type Handle any

// Tier identifies one of the two cache layers.
type Tier uint8

const (
	// TierMemory is the in-process layer holding live handles.
	TierMemory Tier = iota
	// TierDisk is the persisted metadata layer, reused across processes.
	TierDisk
)

// MaxAge returns the maximum age of an entry on the tier.
func (t Tier) MaxAge() time.Duration {
	if t == TierDisk {
		return DiskMaxAge
	}
	return MemoryMaxAge
}

// String returns the tier name.
func (t Tier) String() string {
	if t == TierDisk {
		return "disk"
	}
	return "memory"
}

// CacheEntry is a cached unit in the memory tier.
type CacheEntry struct {
	UnitName   string
	Handle     Handle
	SourcePath string
	// ContentHash is empty when hashing failed at caching time.
	ContentHash    string
	CachedAt       time.Time
	LastAccessedAt time.Time
}

// Record returns the persistable projection of the entry.
func (e *CacheEntry) Record() Record {
	return Record{
		UnitName:       e.UnitName,
		SourcePath:     e.SourcePath,
		ContentHash:    e.ContentHash,
		CachedAt:       e.CachedAt,
		LastAccessedAt: e.LastAccessedAt,
	}
}

// Record is the metadata of a cache entry without its handle.
// Handles are not portable across processes, so only records reach disk.
type Record struct {
	UnitName       string
	SourcePath     string
	ContentHash    string
	CachedAt       time.Time
	LastAccessedAt time.Time
}

// Age returns how long ago the record was cached.
func (r *Record) Age(now time.Time) time.Duration {
	return now.Sub(r.CachedAt)
}
