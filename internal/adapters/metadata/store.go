// Package metadata persists the cache's metadata index.
package metadata

import (
	"encoding/json"
	"errors"
	iofs "io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.MetadataStore = (*Store)(nil)

// record is the on-disk shape of a domain.Record. The unit name is the map key.
type record struct {
	SourcePath     string  `json:"SourcePath"`
	ContentHash    *string `json:"ContentHash"`
	CachedAt       string  `json:"CachedAt"`
	LastAccessedAt string  `json:"LastAccessedAt"`
}

// Store implements ports.MetadataStore as a single JSON index file per cache directory.
type Store struct {
	fs     billy.Filesystem
	logger ports.Logger
}

// NewStore creates a Store on the local filesystem.
func NewStore(logger ports.Logger) *Store {
	return NewStoreWithFS(osfs.New("/"), logger)
}

// NewStoreWithFS creates a Store on the given filesystem.
func NewStoreWithFS(fs billy.Filesystem, logger ports.Logger) *Store {
	return &Store{fs: fs, logger: logger}
}

// Load reads the index of cacheDir. A missing index yields an empty map; an
// unreadable or corrupt one is logged and also yields an empty map.
func (s *Store) Load(cacheDir string) map[string]domain.Record {
	records := make(map[string]domain.Record)
	path := indexPath(cacheDir)

	data, err := util.ReadFile(s.fs, path)
	if err != nil {
		if !errors.Is(err, iofs.ErrNotExist) && !os.IsNotExist(err) {
			s.warn(zerr.With(zerr.Wrap(err, domain.ErrMetadataReadFailed.Error()), "path", path))
		}
		return records
	}

	var raw map[string]record
	if err := json.Unmarshal(data, &raw); err != nil {
		s.warn(zerr.With(zerr.Wrap(err, domain.ErrMetadataCorrupt.Error()), "path", path))
		return records
	}

	for name, r := range raw {
		rec, err := r.toDomain(name)
		if err != nil {
			s.warn(zerr.With(zerr.With(zerr.Wrap(err, domain.ErrMetadataCorrupt.Error()), "path", path), "unit", name))
			continue
		}
		records[name] = rec
	}
	return records
}

// Save overwrites the index of cacheDir with records.
// The index is written to a temporary file first and renamed into place.
func (s *Store) Save(cacheDir string, records map[string]domain.Record) error {
	raw := make(map[string]record, len(records))
	for name, rec := range records {
		raw[name] = fromDomain(rec)
	}

	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return zerr.Wrap(err, domain.ErrMetadataWriteFailed.Error())
	}

	if err := s.fs.MkdirAll(cacheDir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "path", cacheDir)
	}

	path := indexPath(cacheDir)
	tmpPath := path + ".tmp"
	if err := util.WriteFile(s.fs, tmpPath, data, domain.FilePerm); err != nil {
		_ = s.fs.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, domain.ErrMetadataWriteFailed.Error()), "path", tmpPath)
	}

	if err := s.fs.Rename(tmpPath, path); err != nil {
		_ = s.fs.Remove(tmpPath)
		return zerr.With(zerr.Wrap(err, domain.ErrMetadataWriteFailed.Error()), "path", path)
	}
	return nil
}

// Remove deletes cacheDir and everything in it. A missing directory is not an error.
func (s *Store) Remove(cacheDir string) error {
	if err := util.RemoveAll(s.fs, cacheDir); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheClearFailed.Error()), "path", cacheDir)
	}
	return nil
}

// Size returns the number of bytes stored under cacheDir.
func (s *Store) Size(cacheDir string) (int64, error) {
	if _, err := s.fs.Stat(cacheDir); err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, zerr.With(zerr.Wrap(err, domain.ErrMetadataReadFailed.Error()), "path", cacheDir)
	}

	var total int64
	err := util.Walk(s.fs, cacheDir, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			total += info.Size()
		}
		return nil
	})
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrMetadataReadFailed.Error()), "path", cacheDir)
	}
	return total, nil
}

func (s *Store) warn(err error) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(err.Error())
}

func indexPath(cacheDir string) string {
	return filepath.Join(cacheDir, domain.IndexFileName)
}

func fromDomain(rec domain.Record) record {
	r := record{
		SourcePath:     rec.SourcePath,
		CachedAt:       rec.CachedAt.UTC().Format(time.RFC3339Nano),
		LastAccessedAt: rec.LastAccessedAt.UTC().Format(time.RFC3339Nano),
	}
	if rec.ContentHash != "" {
		hash := rec.ContentHash
		r.ContentHash = &hash
	}
	return r
}

func (r record) toDomain(name string) (domain.Record, error) {
	cachedAt, err := time.Parse(time.RFC3339Nano, r.CachedAt)
	if err != nil {
		return domain.Record{}, err
	}
	lastAccessedAt, err := time.Parse(time.RFC3339Nano, r.LastAccessedAt)
	if err != nil {
		return domain.Record{}, err
	}
	if lastAccessedAt.Before(cachedAt) {
		lastAccessedAt = cachedAt
	}

	rec := domain.Record{
		UnitName:       name,
		SourcePath:     r.SourcePath,
		CachedAt:       cachedAt,
		LastAccessedAt: lastAccessedAt,
	}
	if r.ContentHash != nil {
		rec.ContentHash = *r.ContentHash
	}
	return rec, nil
}
