package unitcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/adapters/fs"
	"go.trai.ch/unitcache/internal/adapters/loaders"
	"go.trai.ch/unitcache/internal/adapters/logger"
	"go.trai.ch/unitcache/internal/adapters/metadata"
	"go.trai.ch/unitcache/internal/adapters/registry"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the cache Graft node.
const NodeID graft.ID = "engine.unitcache"

func init() {
	graft.Register(graft.Node[*Cache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			fs.HasherNodeID,
			metadata.NodeID,
			logger.NodeID,
			registry.NodeID,
			loaders.NodeID,
		},
		Run: func(ctx context.Context) (*Cache, error) {
			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}
			store, err := graft.Dep[ports.MetadataStore](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			active, err := graft.Dep[ports.ActiveUnits](ctx)
			if err != nil {
				return nil, err
			}
			loader, err := graft.Dep[*loaders.Selector](ctx)
			if err != nil {
				return nil, err
			}
			return New(hasher, store, log,
				WithActiveUnits(active),
				WithRematerializer(loader),
			), nil
		},
	})
}
