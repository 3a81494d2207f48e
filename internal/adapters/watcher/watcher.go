// Package watcher reports changes to unit sources so loaded units can be refreshed.
package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

var skippedDirectories = map[string]bool{
	".git": true,
	".jj":  true,
	".hg":  true,
	".svn": true,
}

const eventChannelBuffer = 100

// Watcher implements ports.Watcher with fsnotify.
// File roots are watched through their parent directory.
type Watcher struct {
	logger ports.Logger

	mu        sync.Mutex
	fsWatcher *fsnotify.Watcher
	events    chan ports.WatchEvent
}

// NewWatcher creates a watcher. No file descriptors are held until Start.
func NewWatcher(logger ports.Logger) *Watcher {
	return &Watcher{logger: logger}
}

// Start begins watching roots. It fails if the watcher is already running.
func (w *Watcher) Start(ctx context.Context, roots []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher != nil {
		return zerr.New("watcher already started")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return zerr.Wrap(err, "failed to create file watcher")
	}

	for _, root := range roots {
		for dir := range directories(root) {
			if err := fsWatcher.Add(dir); err != nil {
				_ = fsWatcher.Close()
				return zerr.With(zerr.Wrap(err, "failed to watch directory"), "path", dir)
			}
		}
	}

	w.fsWatcher = fsWatcher
	w.events = make(chan ports.WatchEvent, eventChannelBuffer)
	go w.processEvents(ctx, fsWatcher, w.events)
	return nil
}

// Stop closes the underlying watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.fsWatcher == nil {
		return nil
	}
	err := w.fsWatcher.Close()
	w.fsWatcher = nil
	return err
}

// Events returns an iterator of file system events. It ends when the watcher
// stops or its context is done.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	w.mu.Lock()
	events := w.events
	w.mu.Unlock()

	return func(yield func(ports.WatchEvent) bool) {
		if events == nil {
			return
		}
		for event := range events {
			if !yield(event) {
				return
			}
		}
	}
}

// directories yields root and its subdirectories, or the parent of a file root.
func directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		info, err := os.Stat(root)
		if err != nil {
			return
		}
		if !info.IsDir() {
			yield(filepath.Dir(root))
			return
		}
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are not watched
			}
			if !d.IsDir() {
				return nil
			}
			if skippedDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context, fsWatcher *fsnotify.Watcher, out chan<- ports.WatchEvent) {
	defer close(out)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}

			watchEvent, ok := convertEvent(event)
			if !ok {
				continue
			}

			select {
			case out <- watchEvent:
			case <-ctx.Done():
				return
			}

			// New directories inside a unit are watched too.
			if watchEvent.Operation == ports.OpCreate {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() && !skippedDirectories[info.Name()] {
					for dir := range directories(event.Name) {
						_ = fsWatcher.Add(dir)
					}
				}
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("watcher: file system error: " + err.Error())
			}
		}
	}
}

func convertEvent(event fsnotify.Event) (ports.WatchEvent, bool) {
	var op ports.WatchOp
	switch {
	case event.Has(fsnotify.Write):
		op = ports.OpWrite
	case event.Has(fsnotify.Create):
		op = ports.OpCreate
	case event.Has(fsnotify.Remove):
		op = ports.OpRemove
	case event.Has(fsnotify.Rename):
		op = ports.OpRename
	default:
		return ports.WatchEvent{}, false
	}
	return ports.WatchEvent{Path: event.Name, Operation: op}, true
}
