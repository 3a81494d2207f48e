// Package scheduler loads batches of units concurrently through the cache.
package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// UnitStatus represents the status of a unit within a batch.
type UnitStatus string

const (
	// StatusPending indicates the unit is waiting for a worker.
	StatusPending UnitStatus = "Pending"
	// StatusRunning indicates a worker is resolving the unit.
	StatusRunning UnitStatus = "Running"
	// StatusCompleted indicates the unit was loaded.
	StatusCompleted UnitStatus = "Completed"
	// StatusFailed indicates the unit could not be loaded.
	StatusFailed UnitStatus = "Failed"
)

// Resolver resolves a single request through the cache tiers.
type Resolver interface {
	Resolve(ctx context.Context, req domain.LoadRequest, force bool, loader ports.UnitLoader) (domain.Handle, domain.LoadSource, error)
}

// Scheduler runs load requests on a bounded worker pool.
type Scheduler struct {
	resolver Resolver
	tracer   ports.Tracer

	mu         sync.RWMutex
	unitStatus map[string]UnitStatus
}

// NewScheduler creates a new Scheduler with the given dependencies.
func NewScheduler(resolver Resolver, tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		resolver:   resolver,
		tracer:     tracer,
		unitStatus: make(map[string]UnitStatus),
	}
}

// Status returns the status of a unit in the most recent batch.
func (s *Scheduler) Status(unitName string) (UnitStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.unitStatus[unitName]
	return status, ok
}

func (s *Scheduler) initStatuses(names []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.unitStatus)
	for _, name := range names {
		s.unitStatus[name] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status UnitStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unitStatus[name] = status
}

// outcome is the shared value of a coalesced load.
type outcome struct {
	handle domain.Handle
	source domain.LoadSource
}

// batch is the state of a single LoadBatch call.
type batch struct {
	*Scheduler
	force  bool
	loader ports.UnitLoader
	flight singleflight.Group
	forced sync.Map // flight key -> struct{}, set once a forced load ran
}

// LoadBatch resolves every request with at most throttle concurrent workers.
// A throttle of zero or less means runtime.NumCPU(). The result at index i
// belongs to requests[i]; a failing unit never stops the others.
//
// Requests for the same unit name and source path share one load. When ctx is cancelled,
// requests that have not started are reported as failed with the context
// error, and in-flight loads observe the cancelled context.
func (s *Scheduler) LoadBatch(
	ctx context.Context,
	requests []domain.LoadRequest,
	throttle int,
	force bool,
	loader ports.UnitLoader,
) []domain.LoadResult {
	results := make([]domain.LoadResult, len(requests))
	if len(requests) == 0 {
		return results
	}
	if throttle <= 0 {
		throttle = runtime.NumCPU()
	}

	names := make([]string, len(requests))
	for i, req := range requests {
		names[i] = req.Name()
	}
	s.tracer.EmitPlan(ctx, names)
	s.initStatuses(names)

	b := &batch{Scheduler: s, force: force, loader: loader}

	// A plain group: one failure must not cancel the rest of the batch.
	var g errgroup.Group
	g.SetLimit(throttle)
	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			results[i] = cancelled(req, err)
			s.updateStatus(req.Name(), StatusFailed)
			continue
		}
		g.Go(func() error {
			results[i] = b.load(ctx, req)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (b *batch) load(ctx context.Context, req domain.LoadRequest) domain.LoadResult {
	name := req.Name()
	if err := ctx.Err(); err != nil {
		b.updateStatus(name, StatusFailed)
		return cancelled(req, err)
	}

	b.updateStatus(name, StatusRunning)
	start := time.Now()

	spanCtx, span := b.tracer.Start(ctx, name)
	defer span.End()
	spanCtx = ports.WithOutput(spanCtx, span)
	span.SetAttribute("unit.name", name)
	span.SetAttribute("unit.path", req.SourcePath)

	key := flightKey(name, req.SourcePath)
	v, err, shared := b.flight.Do(key, func() (any, error) {
		handle, source, err := b.resolver.Resolve(spanCtx, req, b.takeForce(key), b.loader)
		return outcome{handle: handle, source: source}, err
	})

	result := domain.LoadResult{
		UnitName:   name,
		SourcePath: req.SourcePath,
		Duration:   time.Since(start),
	}
	span.SetAttribute("unit.shared", shared)

	if err != nil {
		span.RecordError(err)
		b.updateStatus(name, StatusFailed)
		result.Err = err
		return result
	}

	out, _ := v.(outcome)
	span.SetAttribute("unit.source", string(out.source))
	b.updateStatus(name, StatusCompleted)
	result.Success = true
	result.Handle = out.handle
	result.Source = out.source
	return result
}

// flightKey identifies requests that may share one load. A unit name
// declared with two different sources yields two loads.
func flightKey(name, sourcePath string) string {
	if sourcePath == "" {
		return name
	}
	return name + "\x00" + filepath.Clean(sourcePath)
}

// takeForce reports whether the load for key should bypass the cache.
// Only the first load of a key in a batch is forced, so duplicates that
// arrive after it completed are served from memory.
func (b *batch) takeForce(key string) bool {
	if !b.force {
		return false
	}
	_, loaded := b.forced.LoadOrStore(key, struct{}{})
	return !loaded
}

func cancelled(req domain.LoadRequest, cause error) domain.LoadResult {
	return domain.LoadResult{
		UnitName:   req.Name(),
		SourcePath: req.SourcePath,
		Err: domain.NewLoadFailure(req.Name(), req.SourcePath,
			errors.Join(domain.ErrBatchCancelled, cause)),
	}
}
