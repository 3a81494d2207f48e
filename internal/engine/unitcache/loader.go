package unitcache

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
)

// LoadOptimized returns a handle for req, loading it only when no cheaper
// source is valid. See Resolve for the resolution order.
func (c *Cache) LoadOptimized(
	ctx context.Context,
	req domain.LoadRequest,
	force bool,
	loader ports.UnitLoader,
) (domain.Handle, error) {
	handle, _, err := c.Resolve(ctx, req, force, loader)
	return handle, err
}

// Resolve returns a handle for req and the step that produced it.
// Resolution order, first success wins:
//
//  1. a live instance in the host registry whose source is unchanged
//  2. a valid memory entry
//  3. a valid disk record, re-materialized and promoted to memory
//  4. a cold load through loader, cached in both tiers
//
// force skips steps 1 to 3. Failures are reported as *domain.LoadFailure and
// leave the cache unchanged.
func (c *Cache) Resolve(
	ctx context.Context,
	req domain.LoadRequest,
	force bool,
	loader ports.UnitLoader,
) (domain.Handle, domain.LoadSource, error) {
	name := req.Name()
	if name == "" {
		return nil, domain.SourceNone, domain.NewLoadFailure(name, req.SourcePath, domain.ErrInvalidUnitName)
	}
	req.UnitName = name

	if !force {
		if handle, ok := c.fromActive(req); ok {
			c.logger.Debug(fmt.Sprintf("unit %s: already active", name))
			return handle, domain.SourceActive, nil
		}
		if handle, ok := c.fromMemory(req); ok {
			c.logger.Debug(fmt.Sprintf("unit %s: memory hit", name))
			return handle, domain.SourceMemory, nil
		}
		if handle, ok := c.fromDisk(ctx, req, loader); ok {
			c.logger.Debug(fmt.Sprintf("unit %s: disk hit", name))
			return handle, domain.SourceDisk, nil
		}
	}

	handle, err := c.coldLoad(ctx, req, loader)
	if err != nil {
		return nil, domain.SourceNone, err
	}
	return handle, domain.SourceCold, nil
}

func (c *Cache) coldLoad(ctx context.Context, req domain.LoadRequest, loader ports.UnitLoader) (domain.Handle, error) {
	if _, err := os.Stat(req.SourcePath); err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return nil, domain.NewLoadFailure(req.UnitName, req.SourcePath, domain.ErrPathNotFound)
		}
		return nil, domain.NewLoadFailure(req.UnitName, req.SourcePath, err)
	}
	if loader == nil {
		return nil, domain.NewLoadFailure(req.UnitName, req.SourcePath, domain.ErrNoLoader)
	}
	if err := ctx.Err(); err != nil {
		return nil, domain.NewLoadFailure(req.UnitName, req.SourcePath, err)
	}

	handle, err := loader.Load(ctx, req)
	if err != nil {
		return nil, asLoadFailure(req, err)
	}

	if err := c.put(req.UnitName, handle, req.SourcePath, c.computeHash(req.SourcePath)); err != nil {
		return nil, domain.NewLoadFailure(req.UnitName, req.SourcePath, err)
	}
	c.logger.Debug(fmt.Sprintf("unit %s: loaded from %s", req.UnitName, req.SourcePath))
	return handle, nil
}
