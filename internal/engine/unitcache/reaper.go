package unitcache

import (
	"slices"
	"time"

	"go.trai.ch/unitcache/internal/core/domain"
)

// reap deletes records older than the disk retention from records and from
// the memory index, regardless of their hash. It returns the reaped names in
// sorted order.
func reap(records map[string]domain.Record, index *Index, now time.Time) []string {
	var reaped []string
	for name, rec := range records {
		if rec.Age(now) > domain.DiskMaxAge {
			reaped = append(reaped, name)
		}
	}
	for _, entry := range index.Snapshot() {
		if now.Sub(entry.CachedAt) > domain.DiskMaxAge {
			reaped = append(reaped, entry.UnitName)
		}
	}

	slices.Sort(reaped)
	reaped = slices.Compact(reaped)
	for _, name := range reaped {
		delete(records, name)
		index.Remove(name)
	}
	return reaped
}
