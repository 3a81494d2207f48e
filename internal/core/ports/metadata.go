package ports

import "go.trai.ch/unitcache/internal/core/domain"

// MetadataStore persists cache records in a cache directory.
//
// Load and Save never fail the caller's load path: a corrupt or unreadable
// index behaves like an empty one.
//
//go:generate mockgen -source=metadata.go -destination=mocks/mock_metadata.go -package=mocks
type MetadataStore interface {
	// Load reads the index of cacheDir. A missing or corrupt index yields an empty map.
	Load(cacheDir string) map[string]domain.Record

	// Save overwrites the index of cacheDir with records.
	Save(cacheDir string, records map[string]domain.Record) error

	// Remove deletes cacheDir and everything in it.
	Remove(cacheDir string) error

	// Size returns the number of bytes stored under cacheDir.
	Size(cacheDir string) (int64, error)
}
