package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/unitcache/internal/adapters/linear"  //nolint:depguard // Wired in app layer
	"go.trai.ch/unitcache/internal/adapters/loaders" //nolint:depguard // Wired in app layer
	"go.trai.ch/unitcache/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/unitcache/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/unitcache/internal/engine/scheduler"
	"go.trai.ch/unitcache/internal/engine/unitcache"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			unitcache.NodeID,
			scheduler.NodeID,
			loaders.NodeID,
			logger.NodeID,
			linear.NodeID,
			watcher.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewComponents(app, log), nil
		},
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	configLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[*unitcache.Cache](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	selector, err := graft.Dep[*loaders.Selector](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	reporter, err := graft.Dep[*linear.Reporter](ctx)
	if err != nil {
		return nil, err
	}

	fileWatcher, err := graft.Dep[ports.Watcher](ctx)
	if err != nil {
		return nil, err
	}

	return New(configLoader, cache, sched, selector, log, reporter, fileWatcher), nil
}
