package loaders

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/plugin"
	"go.trai.ch/unitcache/internal/adapters/shell"
)

// NodeID is the unique identifier for the loader selector Graft node.
const NodeID graft.ID = "adapter.loader_selector"

func init() {
	graft.Register(graft.Node[*Selector]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{shell.NodeID, plugin.NodeID},
		Run: func(ctx context.Context) (*Selector, error) {
			sh, err := graft.Dep[*shell.Loader](ctx)
			if err != nil {
				return nil, err
			}
			pl, err := graft.Dep[*plugin.Loader](ctx)
			if err != nil {
				return nil, err
			}
			return NewSelector(sh, pl), nil
		},
	})
}
