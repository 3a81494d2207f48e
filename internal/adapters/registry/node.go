package registry

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the active unit registry Graft node.
const NodeID graft.ID = "adapter.registry"

func init() {
	graft.Register(graft.Node[ports.ActiveUnits]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ActiveUnits, error) {
			return New(), nil
		},
	})
}
