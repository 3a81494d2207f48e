package logger

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/unitcache/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

// FormatEnv selects JSON console logging when set to "json", for hosts that
// collect logs without passing --json-log.
const FormatEnv = "UNITCACHE_LOG_FORMAT"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Logger, error) {
			l := New()
			if os.Getenv(FormatEnv) == "json" {
				l.(*Logger).SetJSON(true)
			}
			return l, nil
		},
	})
}
