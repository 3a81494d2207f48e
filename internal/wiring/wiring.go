// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/unitcache/internal/adapters/config"
	_ "go.trai.ch/unitcache/internal/adapters/fs"
	_ "go.trai.ch/unitcache/internal/adapters/linear"
	_ "go.trai.ch/unitcache/internal/adapters/loaders"
	_ "go.trai.ch/unitcache/internal/adapters/logger"
	_ "go.trai.ch/unitcache/internal/adapters/metadata"
	_ "go.trai.ch/unitcache/internal/adapters/plugin"
	_ "go.trai.ch/unitcache/internal/adapters/registry"
	_ "go.trai.ch/unitcache/internal/adapters/shell"
	_ "go.trai.ch/unitcache/internal/adapters/telemetry"
	_ "go.trai.ch/unitcache/internal/adapters/watcher"
	// Register app and engine nodes.
	_ "go.trai.ch/unitcache/internal/app"
	_ "go.trai.ch/unitcache/internal/engine/scheduler"
	_ "go.trai.ch/unitcache/internal/engine/unitcache"
)
