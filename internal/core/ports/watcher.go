package ports

import (
	"context"
	"iter"
)

// WatchOp is the kind of file system change.
type WatchOp uint8

const (
	// OpCreate means a path was created.
	OpCreate WatchOp = iota + 1
	// OpWrite means a file was written.
	OpWrite
	// OpRemove means a path was removed.
	OpRemove
	// OpRename means a path was renamed away.
	OpRename
)

// WatchEvent is a change to a watched path.
type WatchEvent struct {
	Path      string
	Operation WatchOp
}

//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks

// Watcher reports changes below a set of root paths.
type Watcher interface {
	// Start watches every root recursively until ctx is done or Stop is called.
	Start(ctx context.Context, roots []string) error
	// Stop releases the watcher. Events ends after Stop.
	Stop() error
	// Events yields changes until the watcher stops.
	Events() iter.Seq[WatchEvent]
}
