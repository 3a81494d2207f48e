package scheduler

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/telemetry"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/unitcache/internal/engine/unitcache"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{unitcache.NodeID, telemetry.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			cache, err := graft.Dep[*unitcache.Cache](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			return NewScheduler(cache, tracer), nil
		},
	})
}
