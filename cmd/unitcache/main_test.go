package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/unitcache/internal/adapters/fs"
	"go.trai.ch/unitcache/internal/adapters/linear"
	"go.trai.ch/unitcache/internal/adapters/loaders"
	"go.trai.ch/unitcache/internal/adapters/metadata"
	"go.trai.ch/unitcache/internal/adapters/plugin"
	"go.trai.ch/unitcache/internal/adapters/shell"
	"go.trai.ch/unitcache/internal/adapters/telemetry"
	"go.trai.ch/unitcache/internal/adapters/watcher"
	"go.trai.ch/unitcache/internal/app"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports/mocks"
	"go.trai.ch/unitcache/internal/engine/scheduler"
	"go.trai.ch/unitcache/internal/engine/unitcache"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

func newProvider(t *testing.T, configLoader *mocks.MockConfigLoader, log *mocks.MockLogger) ComponentProvider {
	t.Helper()
	cache := unitcache.New(fs.NewHasher(fs.NewWalker()), metadata.NewStore(log), log)
	selector := loaders.NewSelector(shell.NewLoader(log, nil), plugin.NewLoader(nil))
	application := app.New(
		configLoader,
		cache,
		scheduler.NewScheduler(cache, telemetry.NewNoOpTracer()),
		selector,
		log,
		linear.NewReporter(new(bytes.Buffer), new(bytes.Buffer)),
		watcher.NewWatcher(log),
	).WithWorkDir(t.TempDir()).WithoutTelemetry()

	return func(_ context.Context) (*app.Components, func(), error) {
		return app.NewComponents(application, log), func() {}, nil
	}
}

// TestRun_Success verifies that run returns 0 when the command succeeds.
func TestRun_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := newProvider(t, mocks.NewMockConfigLoader(ctrl), mocks.NewMockLogger(ctrl))

	stdout := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, stdout, new(bytes.Buffer), provider)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, stdout.String(), "unitcache version")
}

// TestRun_InitializationError verifies that run returns 1 when component initialization fails.
func TestRun_InitializationError(t *testing.T) {
	provider := func(_ context.Context) (*app.Components, func(), error) {
		return nil, nil, errors.New("init failed")
	}

	stderr := new(bytes.Buffer)
	exitCode := run(context.Background(), []string{"version"}, new(bytes.Buffer), stderr, provider)

	assert.Equal(t, 1, exitCode)
	assert.Contains(t, stderr.String(), "Error: init failed")
}

// TestRun_ExecutionError verifies that command errors are logged and exit with 1.
func TestRun_ExecutionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	configLoader := mocks.NewMockConfigLoader(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Error(gomock.Any()).Times(1)

	configLoader.EXPECT().Load(gomock.Any()).
		Return(nil, zerr.Wrap(domain.ErrConfigParseFailed, "bad yaml"))

	provider := newProvider(t, configLoader, log)
	exitCode := run(context.Background(), []string{"stats", "--cache-dir", t.TempDir()},
		new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}

// TestRun_BatchFailure verifies that per-unit failures exit with 1 without
// logging the batch error again.
func TestRun_BatchFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	configLoader := mocks.NewMockConfigLoader(ctrl)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any()).AnyTimes()
	log.EXPECT().Info(gomock.Any()).AnyTimes()
	log.EXPECT().Warn(gomock.Any()).AnyTimes()
	log.EXPECT().Error(gomock.Any()).Times(0)

	configLoader.EXPECT().Load(gomock.Any()).Return(&domain.Manifest{
		Loader: domain.LoaderPlugin,
		Units:  map[string]string{"ghost": filepath.Join(t.TempDir(), "ghost.so")},
	}, nil)

	provider := newProvider(t, configLoader, log)
	exitCode := run(context.Background(), []string{"load", "--cache-dir", t.TempDir()},
		new(bytes.Buffer), new(bytes.Buffer), provider)
	assert.Equal(t, 1, exitCode)
}
