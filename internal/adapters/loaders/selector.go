// Package loaders selects the unit loader configured for a project.
package loaders

import (
	"context"
	"sync"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.UnitLoader     = (*Selector)(nil)
	_ ports.Rematerializer = (*Selector)(nil)
)

// Backend is a loader that can also rebuild handles from metadata records.
type Backend interface {
	ports.UnitLoader
	ports.Rematerializer
}

// CommandBackend is a Backend driven by a configured command.
type CommandBackend interface {
	Backend
	SetCommand(command []string)
}

// Selector forwards loads to the backend chosen with Use.
// The cache holds it as its Rematerializer, so switching backends also
// switches how disk records are re-materialized.
type Selector struct {
	shell  CommandBackend
	plugin Backend

	mu      sync.RWMutex
	current Backend
}

// NewSelector creates a Selector. Until Use is called, loads fail with ErrNoLoader.
func NewSelector(shell CommandBackend, plugin Backend) *Selector {
	return &Selector{shell: shell, plugin: plugin}
}

// Use selects the backend for kind. Shell backends receive command.
func (s *Selector) Use(kind domain.LoaderKind, command []string) error {
	var backend Backend
	switch kind {
	case domain.LoaderShell:
		if len(command) == 0 {
			return domain.ErrEmptyLoadCommand
		}
		s.shell.SetCommand(command)
		backend = s.shell
	case domain.LoaderPlugin:
		backend = s.plugin
	default:
		return zerr.With(domain.ErrUnknownLoader, "loader", string(kind))
	}

	s.mu.Lock()
	s.current = backend
	s.mu.Unlock()
	return nil
}

func (s *Selector) backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Load forwards to the selected backend.
func (s *Selector) Load(ctx context.Context, req domain.LoadRequest) (domain.Handle, error) {
	b := s.backend()
	if b == nil {
		return nil, domain.ErrNoLoader
	}
	return b.Load(ctx, req)
}

// Rematerialize forwards to the selected backend.
func (s *Selector) Rematerialize(ctx context.Context, rec domain.Record) (domain.Handle, error) {
	b := s.backend()
	if b == nil {
		return nil, domain.ErrNoLoader
	}
	return b.Rematerialize(ctx, rec)
}
