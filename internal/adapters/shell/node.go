package shell

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/logger"
	"go.trai.ch/unitcache/internal/adapters/registry"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the shell loader Graft node.
const NodeID graft.ID = "adapter.shell_loader"

func init() {
	graft.Register(graft.Node[*Loader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, registry.NodeID},
		Run: func(ctx context.Context) (*Loader, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			active, err := graft.Dep[ports.ActiveUnits](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(log, active), nil
		},
	})
}
