package config

// File represents the structure of the unitcache.yaml configuration file.
type File struct {
	Version        string            `yaml:"version"`
	Root           string            `yaml:"root"`
	CacheDir       string            `yaml:"cacheDir"`
	MaxCacheSizeMB int               `yaml:"maxCacheSizeMB"`
	Throttle       int               `yaml:"throttle"`
	Loader         LoaderDTO         `yaml:"loader"`
	Units          map[string]string `yaml:"units"`
}

// LoaderDTO configures how units are loaded on a cache miss.
type LoaderDTO struct {
	Kind string   `yaml:"kind"`
	Cmd  []string `yaml:"cmd"`
}
