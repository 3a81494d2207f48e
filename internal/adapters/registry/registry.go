// Package registry tracks units that are live in the current process.
package registry

import (
	"slices"
	"sync"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
)

var _ ports.ActiveUnits = (*Registry)(nil)

// Registry implements ports.ActiveUnits.
type Registry struct {
	units sync.Map // unit name -> domain.Handle
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{}
}

// Lookup returns the live handle for the unit, if any.
func (r *Registry) Lookup(unitName string) (domain.Handle, bool) {
	return r.units.Load(unitName)
}

// Register records a live handle for the unit, replacing any previous one.
func (r *Registry) Register(unitName string, handle domain.Handle) {
	if unitName == "" || handle == nil {
		return
	}
	r.units.Store(unitName, handle)
}

// Forget drops the unit.
func (r *Registry) Forget(unitName string) {
	r.units.Delete(unitName)
}

// Names returns the registered unit names in sorted order.
func (r *Registry) Names() []string {
	var names []string
	r.units.Range(func(key, _ any) bool {
		if name, ok := key.(string); ok {
			names = append(names, name)
		}
		return true
	})
	slices.Sort(names)
	return names
}
