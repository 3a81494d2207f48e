package loaders_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/loaders"
	"go.trai.ch/unitcache/internal/core/domain"
)

type fakeBackend struct {
	name    string
	command []string
	loads   int
	remats  int
}

func (f *fakeBackend) Load(_ context.Context, req domain.LoadRequest) (domain.Handle, error) {
	f.loads++
	return f.name + ":" + req.Name(), nil
}

func (f *fakeBackend) Rematerialize(_ context.Context, rec domain.Record) (domain.Handle, error) {
	f.remats++
	return f.name + ":" + rec.UnitName, nil
}

func (f *fakeBackend) SetCommand(command []string) {
	f.command = command
}

func TestSelector_NoBackend(t *testing.T) {
	s := loaders.NewSelector(&fakeBackend{}, &fakeBackend{})

	_, err := s.Load(context.Background(), domain.LoadRequest{UnitName: "alpha"})
	require.ErrorIs(t, err, domain.ErrNoLoader)

	_, err = s.Rematerialize(context.Background(), domain.Record{UnitName: "alpha"})
	require.ErrorIs(t, err, domain.ErrNoLoader)
}

func TestSelector_Shell(t *testing.T) {
	sh := &fakeBackend{name: "shell"}
	pl := &fakeBackend{name: "plugin"}
	s := loaders.NewSelector(sh, pl)

	require.NoError(t, s.Use(domain.LoaderShell, []string{"make"}))
	assert.Equal(t, []string{"make"}, sh.command)

	h, err := s.Load(context.Background(), domain.LoadRequest{UnitName: "alpha"})
	require.NoError(t, err)
	assert.Equal(t, "shell:alpha", h)

	h, err = s.Rematerialize(context.Background(), domain.Record{UnitName: "beta"})
	require.NoError(t, err)
	assert.Equal(t, "shell:beta", h)
	assert.Zero(t, pl.loads+pl.remats)
}

func TestSelector_Plugin(t *testing.T) {
	sh := &fakeBackend{name: "shell"}
	pl := &fakeBackend{name: "plugin"}
	s := loaders.NewSelector(sh, pl)

	require.NoError(t, s.Use(domain.LoaderPlugin, nil))

	h, err := s.Load(context.Background(), domain.LoadRequest{SourcePath: "/mods/net.so"})
	require.NoError(t, err)
	assert.Equal(t, "plugin:net", h)
	assert.Zero(t, sh.loads)
}

func TestSelector_UseErrors(t *testing.T) {
	s := loaders.NewSelector(&fakeBackend{}, &fakeBackend{})

	require.ErrorIs(t, s.Use(domain.LoaderShell, nil), domain.ErrEmptyLoadCommand)

	err := s.Use("wasm", nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnknownLoader.Error())
}
