package app_test

import (
	"bytes"
	"context"
	"io"
	"iter"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/fs"
	"go.trai.ch/unitcache/internal/adapters/linear"
	"go.trai.ch/unitcache/internal/adapters/metadata"
	"go.trai.ch/unitcache/internal/adapters/registry"
	"go.trai.ch/unitcache/internal/adapters/telemetry"
	"go.trai.ch/unitcache/internal/app"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/unitcache/internal/core/ports/mocks"
	"go.trai.ch/unitcache/internal/engine/scheduler"
	"go.trai.ch/unitcache/internal/engine/unitcache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

// fakeSelector registers what it loads, like the real loaders do.
type fakeSelector struct {
	active  ports.ActiveUnits
	mu      sync.Mutex
	kind    domain.LoaderKind
	command []string
	useErr  error
	loads   int
}

func (f *fakeSelector) Use(kind domain.LoaderKind, command []string) error {
	f.kind = kind
	f.command = command
	return f.useErr
}

func (f *fakeSelector) Load(_ context.Context, req domain.LoadRequest) (domain.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	unit := &domain.CommandUnit{Name: req.Name(), SourcePath: req.SourcePath}
	f.active.Register(unit.Name, unit)
	return unit, nil
}

type fixture struct {
	app      *app.App
	config   *mocks.MockConfigLoader
	watcher  *mocks.MockWatcher
	selector *fakeSelector
	active   *registry.Registry
	cache    *unitcache.Cache
	stdout   *bytes.Buffer
	cacheDir string
	unitsDir string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
	ctrl := gomock.NewController(t)

	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).AnyTimes()

	active := registry.New()
	cache := unitcache.New(fs.NewHasher(fs.NewWalker()), metadata.NewStore(log), log, unitcache.WithActiveUnits(active))
	sched := scheduler.NewScheduler(cache, telemetry.NewNoOpTracer())
	selector := &fakeSelector{active: active}
	stdout := new(bytes.Buffer)
	reporter := linear.NewReporter(stdout, new(bytes.Buffer))
	configLoader := mocks.NewMockConfigLoader(ctrl)
	fileWatcher := mocks.NewMockWatcher(ctrl)

	unitsDir := t.TempDir()
	a := app.New(configLoader, cache, sched, selector, log, reporter, fileWatcher).
		WithWorkDir(unitsDir).
		WithDebounce(time.Hour).
		WithoutTelemetry()

	return &fixture{
		app:      a,
		config:   configLoader,
		watcher:  fileWatcher,
		selector: selector,
		active:   active,
		cache:    cache,
		stdout:   stdout,
		cacheDir: filepath.Join(t.TempDir(), "cache"),
		unitsDir: unitsDir,
	}
}

func (f *fixture) writeUnit(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(f.unitsDir, name+".unit")
	require.NoError(t, os.WriteFile(path, []byte(name), 0o600))
	return path
}

func (f *fixture) options() app.Options {
	return app.Options{CacheDir: f.cacheDir}
}

func TestApp_LoadAll(t *testing.T) {
	f := newFixture(t)
	manifest := &domain.Manifest{
		Loader:      domain.LoaderShell,
		LoadCommand: []string{"true"},
		Units: map[string]string{
			"alpha": f.writeUnit(t, "alpha"),
			"beta":  f.writeUnit(t, "beta"),
		},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil).Times(2)

	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: f.options()})
	require.NoError(t, err)
	assert.Equal(t, domain.LoaderShell, f.selector.kind)
	assert.Equal(t, []string{"true"}, f.selector.command)
	assert.Equal(t, 2, f.selector.loads)
	assert.Contains(t, f.stdout.String(), "2/2 loaded, 2 cold")

	f.stdout.Reset()
	err = f.app.Load(t.Context(), []string{"alpha"}, app.LoadOptions{Options: f.options()})
	require.NoError(t, err)
	assert.Equal(t, 2, f.selector.loads)
	assert.Contains(t, f.stdout.String(), "1/1 loaded, 1 active")
}

func TestApp_LoadPartialFailure(t *testing.T) {
	f := newFixture(t)
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units: map[string]string{
			"alpha":   f.writeUnit(t, "alpha"),
			"missing": filepath.Join(f.unitsDir, "missing.unit"),
		},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil)

	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: f.options(), Jobs: 1})
	require.Error(t, err)
	require.ErrorIs(t, err, domain.ErrBatchFailed)
	require.ErrorIs(t, err, domain.ErrLoadFailed)
	assert.Contains(t, f.stdout.String(), "1/2 loaded")
	assert.Contains(t, f.stdout.String(), "1 failed")
}

func TestApp_LoadDashboard(t *testing.T) {
	f := newFixture(t)
	f.app.WithTeaOptions(
		tea.WithInput(strings.NewReader("")),
		tea.WithOutput(io.Discard),
		tea.WithoutSignalHandler(),
		tea.WithoutRenderer(),
	)
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"alpha": f.writeUnit(t, "alpha")},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil)

	opts := f.options()
	opts.Output = "tui"
	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: opts})
	require.NoError(t, err)
	assert.Equal(t, 1, f.selector.loads)
	assert.Contains(t, f.stdout.String(), "1/1 loaded, 1 cold")
}

func TestApp_LoadUnknownUnit(t *testing.T) {
	f := newFixture(t)
	f.config.EXPECT().Load(f.unitsDir).Return(&domain.Manifest{Loader: domain.LoaderPlugin}, nil)

	err := f.app.Load(t.Context(), []string{"ghost"}, app.LoadOptions{Options: f.options()})
	require.Error(t, err)
	assert.ErrorContains(t, err, domain.ErrUnitNotFound.Error())
}

func TestApp_LoadRequiresConfig(t *testing.T) {
	f := newFixture(t)
	f.config.EXPECT().Load(f.unitsDir).Return(nil, zerr.Wrap(domain.ErrConfigNotFound, "config discovery failed"))

	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: f.options()})
	require.ErrorIs(t, err, domain.ErrConfigNotFound)
}

func TestApp_LoadConfigPath(t *testing.T) {
	f := newFixture(t)
	opts := f.options()
	opts.ConfigPath = "/etc/unitcache.yaml"
	f.config.EXPECT().LoadFile("/etc/unitcache.yaml").Return(&domain.Manifest{Loader: domain.LoaderPlugin}, nil)

	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: opts})
	require.NoError(t, err)
	assert.Contains(t, f.stdout.String(), "no units requested")
}

func TestApp_LoadLoaderMisconfigured(t *testing.T) {
	f := newFixture(t)
	f.selector.useErr = domain.ErrEmptyLoadCommand
	f.config.EXPECT().Load(f.unitsDir).Return(&domain.Manifest{Loader: domain.LoaderShell}, nil)

	err := f.app.Load(t.Context(), nil, app.LoadOptions{Options: f.options()})
	require.ErrorIs(t, err, domain.ErrEmptyLoadCommand)
}

func TestApp_Get(t *testing.T) {
	f := newFixture(t)
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"alpha": f.writeUnit(t, "alpha")},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil).AnyTimes()

	require.NoError(t, f.app.Get(t.Context(), "alpha", f.options()))
	assert.Contains(t, f.stdout.String(), "alpha not cached")

	require.NoError(t, f.app.Load(t.Context(), []string{"alpha"}, app.LoadOptions{Options: f.options()}))

	f.stdout.Reset()
	require.NoError(t, f.app.Get(t.Context(), "alpha", f.options()))
	assert.Contains(t, f.stdout.String(), "alpha")
	assert.NotContains(t, f.stdout.String(), "not cached")

	err := f.app.Get(t.Context(), "ghost", f.options())
	assert.ErrorContains(t, err, domain.ErrUnitNotFound.Error())
}

func TestApp_StatsWithoutConfig(t *testing.T) {
	f := newFixture(t)
	f.config.EXPECT().Load(f.unitsDir).Return(nil, zerr.Wrap(domain.ErrConfigNotFound, "config discovery failed"))

	require.NoError(t, f.app.Stats(t.Context(), f.options()))
	out := f.stdout.String()
	assert.Contains(t, out, f.cacheDir)
	assert.Contains(t, out, "Memory entries")
}

func TestApp_StatsConfigError(t *testing.T) {
	f := newFixture(t)
	f.config.EXPECT().Load(f.unitsDir).Return(nil, zerr.Wrap(domain.ErrConfigParseFailed, "bad yaml"))

	err := f.app.Stats(t.Context(), f.options())
	require.ErrorIs(t, err, domain.ErrConfigParseFailed)
}

func TestApp_Clean(t *testing.T) {
	f := newFixture(t)
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"alpha": f.writeUnit(t, "alpha")},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil).Times(2)

	require.NoError(t, f.app.Load(t.Context(), nil, app.LoadOptions{Options: f.options()}))
	require.DirExists(t, f.cacheDir)

	require.NoError(t, f.app.Clean(t.Context(), f.options()))
	assert.NoDirExists(t, f.cacheDir)

	stats := f.cache.GetStatistics()
	assert.Zero(t, stats.MemoryEntries)
	assert.Zero(t, stats.DiskEntries)
}

func TestApp_WatchReloadsChangedUnits(t *testing.T) {
	f := newFixture(t)
	alpha := f.writeUnit(t, "alpha")
	beta := f.writeUnit(t, "beta")
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"alpha": alpha, "beta": beta},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil)

	f.watcher.EXPECT().Start(gomock.Any(), []string{alpha, beta}).Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		require.NoError(t, os.WriteFile(alpha, []byte("alpha v2"), 0o600))
		if !yield(ports.WatchEvent{Path: alpha, Operation: ports.OpWrite}) {
			return
		}
		yield(ports.WatchEvent{Path: filepath.Join(f.unitsDir, "unrelated.txt"), Operation: ports.OpCreate})
	}))
	f.watcher.EXPECT().Stop().Return(nil)

	err := f.app.Watch(t.Context(), nil, app.LoadOptions{Options: f.options()})
	require.NoError(t, err)

	assert.Equal(t, 3, f.selector.loads)
	out := f.stdout.String()
	assert.Contains(t, out, "2/2 loaded, 2 cold")
	assert.Contains(t, out, "1/1 loaded, 1 cold")

	// The reload replaced the live instance built from the old source.
	_, ok := f.active.Lookup("alpha")
	assert.True(t, ok)
}

func TestApp_WatchIgnoresUnrelatedChanges(t *testing.T) {
	f := newFixture(t)
	manifest := &domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"alpha": f.writeUnit(t, "alpha")},
	}
	f.config.EXPECT().Load(f.unitsDir).Return(manifest, nil)

	f.watcher.EXPECT().Start(gomock.Any(), gomock.Any()).Return(nil)
	f.watcher.EXPECT().Events().Return(iter.Seq[ports.WatchEvent](func(yield func(ports.WatchEvent) bool) {
		yield(ports.WatchEvent{Path: filepath.Join(f.unitsDir, "alpha.unit.swp"), Operation: ports.OpCreate})
	}))
	f.watcher.EXPECT().Stop().Return(nil)

	require.NoError(t, f.app.Watch(t.Context(), nil, app.LoadOptions{Options: f.options()}))
	assert.Equal(t, 1, f.selector.loads)
}

func TestApp_WatchNothing(t *testing.T) {
	f := newFixture(t)
	f.config.EXPECT().Load(f.unitsDir).Return(&domain.Manifest{Loader: domain.LoaderPlugin}, nil)

	err := f.app.Watch(t.Context(), nil, app.LoadOptions{Options: f.options()})
	assert.ErrorContains(t, err, domain.ErrUnitNotFound.Error())
}
