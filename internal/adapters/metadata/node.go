package metadata

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/logger"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the metadata store Graft node.
const NodeID graft.ID = "adapter.metadata_store"

func init() {
	graft.Register(graft.Node[ports.MetadataStore]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.MetadataStore, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(log), nil
		},
	})
}
