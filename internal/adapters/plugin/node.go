package plugin

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/registry"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the plugin loader Graft node.
const NodeID graft.ID = "adapter.plugin_loader"

func init() {
	graft.Register(graft.Node[*Loader]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{registry.NodeID},
		Run: func(ctx context.Context) (*Loader, error) {
			active, err := graft.Dep[ports.ActiveUnits](ctx)
			if err != nil {
				return nil, err
			}
			return NewLoader(active), nil
		},
	})
}
