// Package app implements the application layer for unitcache.
package app

import (
	"context"
	"errors"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.trai.ch/unitcache/internal/adapters/detector"
	"go.trai.ch/unitcache/internal/adapters/telemetry"
	"go.trai.ch/unitcache/internal/adapters/tui"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/unitcache/internal/engine/scheduler"
	"go.trai.ch/unitcache/internal/engine/unitcache"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// LoaderSelector is the unit loader the App configures from the manifest.
type LoaderSelector interface {
	ports.UnitLoader
	Use(kind domain.LoaderKind, command []string) error
}

// Reporter prints load progress and command results.
type Reporter interface {
	ports.Renderer
	PrintResults(results []domain.LoadResult, elapsed time.Duration)
	PrintStatistics(stats domain.Statistics)
	PrintEntry(name string, handle domain.Handle, found bool)
}

// logConfigurer is implemented by the logger adapter.
type logConfigurer interface {
	SetJSON(enable bool)
	SetDebugFile(path string) error
}

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	cache        *unitcache.Cache
	scheduler    *scheduler.Scheduler
	loader       LoaderSelector
	logger       ports.Logger
	reporter     Reporter
	watcher      ports.Watcher
	clock        ports.Clock
	telemetry    func(ports.Renderer) func(context.Context) error
	detectMode   func() detector.OutputMode
	workDir      func() (string, error)
	debounce     time.Duration
	teaOptions   []tea.ProgramOption
}

// New creates a new App instance.
func New(
	configLoader ports.ConfigLoader,
	cache *unitcache.Cache,
	sched *scheduler.Scheduler,
	loader LoaderSelector,
	log ports.Logger,
	reporter Reporter,
	watcher ports.Watcher,
) *App {
	return &App{
		configLoader: configLoader,
		cache:        cache,
		scheduler:    sched,
		loader:       loader,
		logger:       log,
		reporter:     reporter,
		watcher:      watcher,
		clock:        ports.SystemClock{},
		telemetry:    telemetry.Setup,
		detectMode:   detector.DetectEnvironment,
		workDir:      os.Getwd,
		debounce:     watcherDebounce,
	}
}

// WithClock sets the clock used to time batches.
func (a *App) WithClock(clock ports.Clock) *App {
	a.clock = clock
	return a
}

// WithWorkDir sets the directory configuration discovery starts from.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = func() (string, error) { return dir, nil }
	return a
}

// WithoutTelemetry keeps the global tracer provider untouched.
// Progress lines are not printed in this mode.
func (a *App) WithoutTelemetry() *App {
	a.telemetry = func(ports.Renderer) func(context.Context) error {
		return func(context.Context) error { return nil }
	}
	return a
}

// WithDebounce sets how long Watch waits for changes to settle.
func (a *App) WithDebounce(window time.Duration) *App {
	a.debounce = window
	return a
}

// WithTeaOptions adds options for the dashboard program, such as replacing
// its input and output in tests.
func (a *App) WithTeaOptions(opts ...tea.ProgramOption) *App {
	a.teaOptions = append(a.teaOptions, opts...)
	return a
}

// Options are shared by every command.
type Options struct {
	ConfigPath string
	CacheDir   string
	JSONLog    bool
	DebugLog   bool
	// Output is "auto", "progress", "quiet" or "tui".
	Output string
}

// LoadOptions configuration for the Load method.
type LoadOptions struct {
	Options
	Force bool
	Jobs  int
}

// Load resolves the named units, or every declared unit when names is empty,
// and prints one result per unit. It returns an error wrapping
// domain.ErrBatchFailed when any unit failed.
func (a *App) Load(ctx context.Context, names []string, opts LoadOptions) error {
	manifest, err := a.prepare(ctx, opts.Options, true)
	if err != nil {
		return err
	}

	if err := a.loader.Use(manifest.Loader, manifest.LoadCommand); err != nil {
		return zerr.Wrap(err, "failed to configure loader")
	}

	requests, err := manifest.Requests(names)
	if err != nil {
		return err
	}

	mode := detector.ResolveMode(a.detectMode(), opts.Output)
	if mode == detector.ModeTUI {
		return a.runDashboard(ctx, requests, throttle(manifest, opts), opts.Force)
	}

	shutdown := a.telemetry(a.progressRenderer(mode))
	defer a.flushTelemetry(ctx, shutdown)

	return a.runBatch(ctx, requests, throttle(manifest, opts), opts.Force)
}

func throttle(manifest *domain.Manifest, opts LoadOptions) int {
	if opts.Jobs > 0 {
		return opts.Jobs
	}
	return manifest.Throttle
}

// progressRenderer returns the reporter when live progress lines are shown.
func (a *App) progressRenderer(mode detector.OutputMode) ports.Renderer {
	if mode != detector.ModeProgress {
		return nil
	}
	return a.reporter
}

func (a *App) flushTelemetry(ctx context.Context, shutdown func(context.Context) error) {
	if err := shutdown(context.WithoutCancel(ctx)); err != nil {
		a.logger.Warn("failed to flush telemetry: " + err.Error())
	}
}

// runBatch loads requests, prints the results and reports failed units.
func (a *App) runBatch(ctx context.Context, requests []domain.LoadRequest, throttle int, force bool) error {
	results, elapsed := a.loadBatch(ctx, requests, throttle, force)
	return a.report(results, elapsed)
}

func (a *App) loadBatch(
	ctx context.Context,
	requests []domain.LoadRequest,
	throttle int,
	force bool,
) ([]domain.LoadResult, time.Duration) {
	start := a.clock.Now()
	results := a.scheduler.LoadBatch(ctx, requests, throttle, force, a.loader)
	return results, a.clock.Now().Sub(start)
}

// report prints results and returns an error wrapping domain.ErrBatchFailed
// and every unit failure when any unit failed.
func (a *App) report(results []domain.LoadResult, elapsed time.Duration) error {
	a.reporter.PrintResults(results, elapsed)

	var errs []error
	for _, res := range results {
		if !res.Success {
			errs = append(errs, res.Err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(append([]error{domain.ErrBatchFailed}, errs...)...)
	}
	return nil
}

// runDashboard loads requests while the interactive dashboard shows their
// progress. Quitting the dashboard cancels the loads still running. Results
// are printed once the dashboard has released the terminal.
func (a *App) runDashboard(ctx context.Context, requests []domain.LoadRequest, throttle int, force bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := tui.NewModel(os.Stderr)
	opts := append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithOutput(os.Stderr), tea.WithAltScreen()}, a.teaOptions...)
	dashboard := tui.NewRenderer(&model, opts...)

	shutdown := a.telemetry(dashboard)
	if err := dashboard.Start(ctx); err != nil {
		a.flushTelemetry(ctx, shutdown)
		return zerr.Wrap(err, "failed to start dashboard")
	}

	var (
		results []domain.LoadResult
		elapsed time.Duration
	)
	var g errgroup.Group
	g.Go(func() error {
		defer cancel()
		if err := dashboard.Wait(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return zerr.Wrap(err, "dashboard failed")
		}
		return nil
	})
	g.Go(func() error {
		defer func() { _ = dashboard.Stop() }()
		results, elapsed = a.loadBatch(ctx, requests, throttle, force)
		return nil
	})
	err := g.Wait()
	a.flushTelemetry(ctx, shutdown)
	if err != nil {
		return err
	}
	return a.report(results, elapsed)
}

// Get prints whether a declared unit is cached and valid.
func (a *App) Get(ctx context.Context, name string, opts Options) error {
	manifest, err := a.prepare(ctx, opts, true)
	if err != nil {
		return err
	}

	path, ok := manifest.Units[name]
	if !ok {
		return zerr.With(domain.ErrUnitNotFound, "unit", name)
	}

	if err := a.loader.Use(manifest.Loader, manifest.LoadCommand); err != nil {
		a.logger.Debug("loader unavailable, disk records will not be re-materialized: " + err.Error())
	}

	handle, found := a.cache.GetCached(ctx, name, path)
	a.reporter.PrintEntry(name, handle, found)
	return nil
}

// Stats prints statistics for the cache directory.
func (a *App) Stats(ctx context.Context, opts Options) error {
	if _, err := a.prepare(ctx, opts, false); err != nil {
		return err
	}
	a.reporter.PrintStatistics(a.cache.GetStatistics())
	return nil
}

// Clean deletes the cache directory and empties the memory tier.
func (a *App) Clean(ctx context.Context, opts Options) error {
	if _, err := a.prepare(ctx, opts, false); err != nil {
		return err
	}

	dir := a.cache.GetStatistics().CacheDirectory
	a.logger.Info("removing cache directory " + dir)
	if err := a.cache.ClearCache(); err != nil {
		return err
	}
	a.logger.Info("removed cache directory " + dir)
	return nil
}

// prepare applies logging options, reads the manifest and initializes the
// cache. Without requireConfig, a missing configuration yields an empty manifest.
func (a *App) prepare(ctx context.Context, opts Options, requireConfig bool) (*domain.Manifest, error) {
	lc, canConfigure := a.logger.(logConfigurer)
	if canConfigure && opts.JSONLog {
		lc.SetJSON(true)
	}

	manifest, err := a.loadManifest(opts.ConfigPath)
	if err != nil {
		if requireConfig || !errors.Is(err, domain.ErrConfigNotFound) {
			return nil, zerr.Wrap(err, "failed to load configuration")
		}
		manifest = &domain.Manifest{}
	}

	cacheDir := manifest.CacheDir
	if opts.CacheDir != "" {
		cacheDir = opts.CacheDir
	}
	if err := a.cache.Initialize(ctx, cacheDir, manifest.MaxCacheSizeMB); err != nil {
		return nil, zerr.Wrap(err, "failed to initialize cache")
	}

	if canConfigure && opts.DebugLog {
		path := domain.DebugLogPath(a.cache.GetStatistics().CacheDirectory)
		if err := lc.SetDebugFile(path); err != nil {
			a.logger.Warn("failed to open debug log " + path + ": " + err.Error())
		}
	}

	return manifest, nil
}

func (a *App) loadManifest(configPath string) (*domain.Manifest, error) {
	if configPath != "" {
		return a.configLoader.LoadFile(configPath)
	}
	cwd, err := a.workDir()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}
	return a.configLoader.Load(cwd)
}
