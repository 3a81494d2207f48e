package ports

import (
	"context"

	"go.trai.ch/unitcache/internal/core/domain"
)

//go:generate mockgen -source=loader.go -destination=mocks/mock_loader.go -package=mocks

// UnitLoader performs the actual, expensive load of a unit on a cache miss.
type UnitLoader interface {
	Load(ctx context.Context, req domain.LoadRequest) (domain.Handle, error)
}

// LoaderFunc adapts a function to UnitLoader.
type LoaderFunc func(ctx context.Context, req domain.LoadRequest) (domain.Handle, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, req domain.LoadRequest) (domain.Handle, error) {
	return f(ctx, req)
}

// Rematerializer rebuilds a handle for a unit whose metadata record was
// validated against its source, without a full load.
type Rematerializer interface {
	Rematerialize(ctx context.Context, rec domain.Record) (domain.Handle, error)
}

// ActiveUnits is the host process registry of units that are already live,
// independent of the cache's own bookkeeping.
type ActiveUnits interface {
	// Lookup returns the live handle for the unit, if any.
	Lookup(unitName string) (domain.Handle, bool)
	// Register records a live handle for the unit.
	Register(unitName string, handle domain.Handle)
	// Forget drops the unit from the registry.
	Forget(unitName string)
}
