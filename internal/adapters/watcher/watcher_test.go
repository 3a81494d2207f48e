package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/unitcache/internal/adapters/watcher"
	"go.trai.ch/unitcache/internal/core/ports"
)

func nextEvent(t *testing.T, w *watcher.Watcher, match func(ports.WatchEvent) bool) ports.WatchEvent {
	t.Helper()
	found := make(chan ports.WatchEvent, 1)
	go func() {
		for ev := range w.Events() {
			if match(ev) {
				found <- ev
				return
			}
		}
	}()
	select {
	case ev := <-found:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for file event")
		return ports.WatchEvent{}
	}
}

func TestWatcher_DirectoryUnit(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "pkg")
	require.NoError(t, os.MkdirAll(nested, 0o750))
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git"), 0o750))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.NewWatcher(nil)
	require.NoError(t, w.Start(ctx, []string{root}))
	defer func() { _ = w.Stop() }()

	target := filepath.Join(nested, "main.go")
	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(target, []byte("package pkg"), 0o600)
	}()

	ev := nextEvent(t, w, func(ev ports.WatchEvent) bool { return ev.Path == target })
	assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, ev.Operation)
}

func TestWatcher_FileUnit(t *testing.T) {
	root := t.TempDir()
	unit := filepath.Join(root, "alpha.so")
	require.NoError(t, os.WriteFile(unit, []byte("v1"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.NewWatcher(nil)
	require.NoError(t, w.Start(ctx, []string{unit}))
	defer func() { _ = w.Stop() }()

	go func() {
		time.Sleep(50 * time.Millisecond)
		_ = os.WriteFile(unit, []byte("v2"), 0o600)
	}()

	ev := nextEvent(t, w, func(ev ports.WatchEvent) bool { return ev.Path == unit })
	assert.Equal(t, unit, ev.Path)
}

func TestWatcher_StartTwice(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := watcher.NewWatcher(nil)
	require.NoError(t, w.Start(ctx, []string{t.TempDir()}))
	defer func() { _ = w.Stop() }()

	require.Error(t, w.Start(ctx, []string{t.TempDir()}))
}

func TestWatcher_EventsEndOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	w := watcher.NewWatcher(nil)
	require.NoError(t, w.Start(ctx, []string{t.TempDir()}))
	defer func() { _ = w.Stop() }()

	done := make(chan struct{})
	go func() {
		for range w.Events() {
		}
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("events did not end after cancel")
	}
}

func TestWatcher_EventsBeforeStart(t *testing.T) {
	w := watcher.NewWatcher(nil)
	for range w.Events() {
		t.Fatal("no events expected before Start")
	}
	require.NoError(t, w.Stop())
}
