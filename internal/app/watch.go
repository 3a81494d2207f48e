package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.trai.ch/unitcache/internal/adapters/detector"
	"go.trai.ch/unitcache/internal/adapters/watcher"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/zerr"
)

const watcherDebounce = watcher.DefaultDebounceWindow

// Watch loads the named units, then reloads each unit whose source changes
// until ctx is done. Failed loads are reported and do not stop watching.
func (a *App) Watch(ctx context.Context, names []string, opts LoadOptions) error {
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
	if len(requests) == 0 {
		return zerr.Wrap(domain.ErrUnitNotFound, "nothing to watch")
	}

	// The dashboard cannot share the terminal with results printed between
	// reloads, so watching falls back to progress lines.
	mode := detector.ResolveMode(a.detectMode(), opts.Output)
	if mode == detector.ModeTUI {
		mode = detector.ModeProgress
	}
	shutdown := a.telemetry(a.progressRenderer(mode))
	defer a.flushTelemetry(ctx, shutdown)

	jobs := throttle(manifest, opts)
	if err := a.runBatch(ctx, requests, jobs, opts.Force); err != nil && !errors.Is(err, domain.ErrBatchFailed) {
		return err
	}

	roots := make([]string, 0, len(requests))
	for _, req := range requests {
		roots = append(roots, req.SourcePath)
	}
	if err := a.watcher.Start(ctx, roots); err != nil {
		return zerr.Wrap(err, "failed to start watching")
	}
	defer func() { _ = a.watcher.Stop() }()

	a.logger.Info(fmt.Sprintf("watching %d unit(s) for changes", len(requests)))

	// Reloads never overlap, so a unit changing twice is loaded in order.
	var reloadMu sync.Mutex
	var inflight sync.WaitGroup
	reload := func(paths []string) {
		inflight.Add(1)
		defer inflight.Done()

		changed := affectedUnits(requests, paths)
		if len(changed) == 0 || ctx.Err() != nil {
			return
		}

		reloadMu.Lock()
		defer reloadMu.Unlock()
		a.logger.Info(fmt.Sprintf("reloading %d changed unit(s)", len(changed)))
		if err := a.runBatch(ctx, changed, jobs, false); err != nil && !errors.Is(err, domain.ErrBatchFailed) {
			a.logger.Error(err)
		}
	}

	debouncer := newDebouncer(a.debounce, reload)
	for event := range a.watcher.Events() {
		debouncer.Add(event.Path)
	}

	if ctx.Err() != nil {
		debouncer.Stop()
	} else {
		debouncer.Flush()
	}
	inflight.Wait()
	return nil
}

func newDebouncer(window time.Duration, callback func([]string)) *watcher.Debouncer {
	if window <= 0 {
		window = watcherDebounce
	}
	return watcher.NewDebouncer(window, callback)
}

// affectedUnits returns the requests whose source is, or contains, one of paths.
func affectedUnits(requests []domain.LoadRequest, paths []string) []domain.LoadRequest {
	var changed []domain.LoadRequest
	for _, req := range requests {
		source := filepath.Clean(req.SourcePath)
		for _, path := range paths {
			path = filepath.Clean(path)
			if path == source || strings.HasPrefix(path, source+string(os.PathSeparator)) {
				changed = append(changed, req)
				break
			}
		}
	}
	return changed
}
