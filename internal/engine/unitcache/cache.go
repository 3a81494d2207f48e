// Package unitcache implements the two-tier loadable-unit cache.
//
// The memory tier holds live handles for the current process. The disk tier
// is a metadata index persisted in the cache directory, so a later process can
// validate a unit against its source and re-materialize it without a full load.
package unitcache

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

// recordOverhead approximates the encoded size of a record's fixed fields.
const recordOverhead = 160

// Cache is a two-tier cache of loaded units.
type Cache struct {
	hasher    ports.Hasher
	store     ports.MetadataStore
	logger    ports.Logger
	clock     ports.Clock
	active    ports.ActiveUnits
	remat     ports.Rematerializer
	validator *Validator
	index     *Index

	// mu guards the fields below and serializes persistence.
	mu          sync.Mutex
	initialized bool
	dir         string
	maxBytes    int64
	disk        map[string]domain.Record
}

// New creates a Cache. It must be initialized before records are persisted.
func New(hasher ports.Hasher, store ports.MetadataStore, logger ports.Logger, opts ...Option) *Cache {
	c := &Cache{
		hasher: hasher,
		store:  store,
		logger: logger,
		clock:  ports.SystemClock{},
		index:  NewIndex(logger),
		disk:   make(map[string]domain.Record),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.validator = NewValidator(hasher, c.clock)
	return c
}

// Initialize prepares cacheDirectory, loads its metadata index and reaps
// records past the disk retention. An empty cacheDirectory resolves to
// domain.DefaultCacheDir. Calling Initialize again with the same directory is
// a no-op; a different directory replaces both tiers.
func (c *Cache) Initialize(ctx context.Context, cacheDirectory string, maxCacheSizeMB int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if cacheDirectory == "" {
		cacheDirectory = domain.DefaultCacheDir()
	}
	dir, err := filepath.Abs(cacheDirectory)
	if err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "path", cacheDirectory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.maxBytes = int64(max(maxCacheSizeMB, 0)) * domain.BytesPerMB
	if c.initialized && c.dir == dir {
		return nil
	}

	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrCacheDirCreateFailed.Error()), "path", dir)
	}

	if c.initialized {
		c.index.Clear()
	}
	c.dir = dir
	c.disk = c.store.Load(dir)
	c.initialized = true

	reaped := reap(c.disk, c.index, c.clock.Now())
	if len(reaped) > 0 {
		c.logger.Info(fmt.Sprintf("reaped %d expired cache records", len(reaped)))
		c.persistLocked()
	}
	c.logger.Debug(fmt.Sprintf("cache initialized at %s with %d records", dir, len(c.disk)))
	return nil
}

// GetCached returns the handle of a cached unit without loading it.
// The memory tier is consulted first. A valid disk record is re-materialized
// and promoted when a Rematerializer is configured.
func (c *Cache) GetCached(ctx context.Context, unitName, sourcePath string) (domain.Handle, bool) {
	req := domain.LoadRequest{UnitName: unitName, SourcePath: sourcePath}
	if handle, ok := c.fromMemory(req); ok {
		return handle, true
	}
	if c.remat == nil {
		return nil, false
	}
	return c.fromDisk(ctx, req, nil)
}

// SetCached stores a handle for a unit loaded outside the cache and persists
// its record.
func (c *Cache) SetCached(unitName string, handle domain.Handle, sourcePath string) error {
	if !c.isInitialized() {
		return domain.ErrCacheNotInitialized
	}
	return c.put(unitName, handle, sourcePath, c.computeHash(sourcePath))
}

// GetStatistics reports the size of both tiers.
func (c *Cache) GetStatistics() domain.Statistics {
	c.mu.Lock()
	dir := c.dir
	diskEntries := len(c.disk)
	c.mu.Unlock()

	stats := domain.Statistics{
		CacheDirectory: dir,
		MemoryEntries:  c.index.Len(),
		DiskEntries:    diskEntries,
	}
	if dir == "" {
		return stats
	}

	size, err := c.store.Size(dir)
	if err != nil {
		c.logger.Warn(err.Error())
		return stats
	}
	stats.TotalCacheSizeMB = float64(size) / domain.BytesPerMB
	return stats
}

// ClearCache empties the memory tier and deletes the cache directory.
func (c *Cache) ClearCache() error {
	c.index.Clear()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.disk = make(map[string]domain.Record)
	if c.dir == "" {
		return nil
	}
	if err := c.store.Remove(c.dir); err != nil {
		return err
	}
	c.logger.Info(fmt.Sprintf("removed %s", c.dir))
	return nil
}

func (c *Cache) isInitialized() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initialized
}

// fromMemory serves req from the memory tier. Invalid entries are evicted.
func (c *Cache) fromMemory(req domain.LoadRequest) (domain.Handle, bool) {
	name := req.Name()
	entry, ok := c.index.Get(name)
	if !ok {
		return nil, false
	}

	if req.SourcePath != "" && !samePath(entry.SourcePath, req.SourcePath) {
		c.logger.Debug(fmt.Sprintf("unit %s: source moved from %s", name, entry.SourcePath))
		c.evict(name)
		return nil, false
	}

	verdict := c.validator.Validate(entry.Record(), domain.TierMemory)
	if !verdict.Valid {
		c.logger.Debug(fmt.Sprintf("unit %s: memory entry invalid: %s", name, verdict.Reason))
		if verdict.Reason == domain.ReasonExpired {
			// The disk record outlives the memory entry and may still be promoted.
			c.index.Remove(name)
		} else {
			c.evict(name)
		}
		return nil, false
	}
	if verdict.Inconclusive {
		c.logger.Warn(fmt.Sprintf("unit %s: could not verify content hash, serving cached entry", name))
	}

	now := c.clock.Now()
	touched, ok := c.index.Touch(name, now)
	if !ok {
		return nil, false
	}
	c.touchRecord(name, now)
	return touched.Handle, true
}

// fromActive serves req from the host registry. A live handle is trusted
// unless the cache's record for the unit shows its source moved, disappeared
// or changed, in which case the unit is evicted everywhere.
func (c *Cache) fromActive(req domain.LoadRequest) (domain.Handle, bool) {
	if c.active == nil {
		return nil, false
	}
	name := req.Name()
	handle, ok := c.active.Lookup(name)
	if !ok {
		return nil, false
	}

	rec, known := c.record(name)
	if !known {
		return handle, true
	}
	if req.SourcePath != "" && !samePath(rec.SourcePath, req.SourcePath) {
		c.logger.Debug(fmt.Sprintf("unit %s: active instance was loaded from %s", name, rec.SourcePath))
		c.evict(name)
		return nil, false
	}

	// A live instance does not age out; only its source can make it stale.
	verdict := c.validator.Validate(rec, domain.TierDisk)
	if !verdict.Valid && verdict.Reason != domain.ReasonExpired {
		c.logger.Debug(fmt.Sprintf("unit %s: active instance stale: %s", name, verdict.Reason))
		c.evict(name)
		return nil, false
	}
	return handle, true
}

// record returns what the cache knows about name, preferring the memory tier.
func (c *Cache) record(name string) (domain.Record, bool) {
	if entry, ok := c.index.Get(name); ok {
		return entry.Record(), true
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	rec, ok := c.disk[name]
	return rec, ok
}

// fromDisk serves req from a validated disk record, promoting it to the memory
// tier. The configured Rematerializer is preferred over loader.
func (c *Cache) fromDisk(ctx context.Context, req domain.LoadRequest, loader ports.UnitLoader) (domain.Handle, bool) {
	name := req.Name()

	c.mu.Lock()
	rec, ok := c.disk[name]
	c.mu.Unlock()
	if !ok {
		return nil, false
	}

	if req.SourcePath != "" && !samePath(rec.SourcePath, req.SourcePath) {
		c.evict(name)
		return nil, false
	}

	verdict := c.validator.Validate(rec, domain.TierDisk)
	if !verdict.Valid {
		c.logger.Debug(fmt.Sprintf("unit %s: disk record invalid: %s", name, verdict.Reason))
		c.evict(name)
		return nil, false
	}

	var (
		handle domain.Handle
		err    error
	)
	switch {
	case c.remat != nil:
		handle, err = c.remat.Rematerialize(ctx, rec)
	case loader != nil:
		handle, err = loader.Load(ctx, domain.LoadRequest{UnitName: name, SourcePath: rec.SourcePath})
	default:
		return nil, false
	}
	if err != nil {
		c.logger.Warn(fmt.Sprintf("unit %s: re-materialization failed: %v", name, err))
		return nil, false
	}

	hash := rec.ContentHash
	if hash == "" || verdict.Inconclusive {
		hash = c.computeHash(rec.SourcePath)
	}
	if err := c.put(name, handle, rec.SourcePath, hash); err != nil {
		return nil, false
	}
	return handle, true
}

// put records a freshly obtained handle in both tiers.
func (c *Cache) put(name string, handle domain.Handle, sourcePath, hash string) error {
	now := c.clock.Now()
	entry := domain.CacheEntry{
		UnitName:       name,
		Handle:         handle,
		SourcePath:     sourcePath,
		ContentHash:    hash,
		CachedAt:       now,
		LastAccessedAt: now,
	}
	if err := c.index.Set(entry); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return nil
	}
	c.disk[name] = entry.Record()
	c.persistLocked()
	return nil
}

// evict drops name from both tiers and from the host registry, whose live
// instance was built from the same stale source.
func (c *Cache) evict(name string) {
	c.index.Remove(name)
	if c.active != nil {
		c.active.Forget(name)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.disk[name]; !ok {
		return
	}
	delete(c.disk, name)
	c.persistLocked()
}

func (c *Cache) touchRecord(name string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if rec, ok := c.disk[name]; ok && at.After(rec.LastAccessedAt) {
		rec.LastAccessedAt = at
		c.disk[name] = rec
	}
}

func (c *Cache) computeHash(path string) string {
	hash, err := c.hasher.ComputeHash(path)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("could not hash %s: %v", path, err))
		return ""
	}
	return hash
}

// persistLocked writes the disk tier, trimming least recently accessed
// records when the index would exceed the size bound. Failures are logged.
// c.mu must be held.
func (c *Cache) persistLocked() {
	if !c.initialized {
		return
	}
	if dropped := c.trimLocked(); len(dropped) > 0 {
		c.logger.Debug(fmt.Sprintf("dropped %d records over the cache size limit", len(dropped)))
	}
	if err := c.store.Save(c.dir, maps.Clone(c.disk)); err != nil {
		c.logger.Warn(err.Error())
	}
}

func (c *Cache) trimLocked() []string {
	if c.maxBytes <= 0 {
		return nil
	}

	var total int64
	recs := make([]domain.Record, 0, len(c.disk))
	for _, rec := range c.disk {
		total += estimateSize(rec)
		recs = append(recs, rec)
	}
	if total <= c.maxBytes {
		return nil
	}

	slices.SortFunc(recs, func(a, b domain.Record) int {
		return cmp.Or(a.LastAccessedAt.Compare(b.LastAccessedAt), cmp.Compare(a.UnitName, b.UnitName))
	})

	var dropped []string
	for _, rec := range recs {
		if total <= c.maxBytes {
			break
		}
		delete(c.disk, rec.UnitName)
		total -= estimateSize(rec)
		dropped = append(dropped, rec.UnitName)
	}
	return dropped
}

func estimateSize(rec domain.Record) int64 {
	return int64(recordOverhead + len(rec.UnitName) + len(rec.SourcePath) + len(rec.ContentHash))
}

func samePath(a, b string) bool {
	if a == b {
		return true
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// asLoadFailure converts err into a *domain.LoadFailure for the request.
func asLoadFailure(req domain.LoadRequest, err error) *domain.LoadFailure {
	var failure *domain.LoadFailure
	if errors.As(err, &failure) {
		return failure
	}
	return domain.NewLoadFailure(req.Name(), req.SourcePath, err)
}
