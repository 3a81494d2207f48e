// Package plugin loads units built as Go plugins.
package plugin

import (
	"context"
	goplugin "plugin"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.UnitLoader     = (*Loader)(nil)
	_ ports.Rematerializer = (*Loader)(nil)
)

// InitSymbol is the optional function a plugin exports to initialize itself.
// Its type must be func(context.Context) error.
const InitSymbol = "UnitInit"

// Loader implements ports.UnitLoader and ports.Rematerializer with plugin.Open.
// Handles are *goplugin.Plugin values.
type Loader struct {
	active ports.ActiveUnits
	open   func(path string) (*goplugin.Plugin, error)
}

// NewLoader creates a Loader registering opened plugins in active.
func NewLoader(active ports.ActiveUnits) *Loader {
	return &Loader{active: active, open: goplugin.Open}
}

// Load opens the plugin at req.SourcePath and runs its UnitInit, if exported.
func (l *Loader) Load(ctx context.Context, req domain.LoadRequest) (domain.Handle, error) {
	p, err := l.open(req.SourcePath)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open plugin"), "path", req.SourcePath)
	}

	if sym, err := p.Lookup(InitSymbol); err == nil {
		initFn, ok := sym.(func(context.Context) error)
		if !ok {
			return nil, zerr.With(zerr.New("plugin UnitInit has the wrong signature"), "path", req.SourcePath)
		}
		if err := initFn(ctx); err != nil {
			return nil, zerr.With(zerr.Wrap(err, "plugin init failed"), "path", req.SourcePath)
		}
	}

	if l.active != nil {
		l.active.Register(req.Name(), p)
	}
	return p, nil
}

// Rematerialize reopens a plugin whose file is unchanged. The runtime keeps
// plugins open for the process lifetime, so this is cheap once loaded.
func (l *Loader) Rematerialize(ctx context.Context, rec domain.Record) (domain.Handle, error) {
	return l.Load(ctx, domain.LoadRequest{UnitName: rec.UnitName, SourcePath: rec.SourcePath})
}
