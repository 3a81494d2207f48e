package ports

import "go.trai.ch/unitcache/internal/core/domain"

// ConfigLoader defines the interface for loading the project configuration.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load discovers the configuration from the given working directory and returns the manifest.
	Load(cwd string) (*domain.Manifest, error)
	// LoadFile parses the configuration file at configPath.
	LoadFile(configPath string) (*domain.Manifest, error)
}
