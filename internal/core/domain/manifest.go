package domain

import (
	"sort"

	"go.trai.ch/zerr"
)

// LoaderKind selects how units are loaded on a cache miss.
type LoaderKind string

const (
	// LoaderShell runs the configured command inside each unit's directory.
	LoaderShell LoaderKind = "shell"
	// LoaderPlugin opens each unit as a Go plugin.
	LoaderPlugin LoaderKind = "plugin"
)

// Manifest is the parsed project configuration: the units a project declares
// and how the cache and loader are set up for them.
type Manifest struct {
	Root           string
	CacheDir       string
	MaxCacheSizeMB int
	Throttle       int
	Loader         LoaderKind
	LoadCommand    []string
	Units          map[string]string // unit name -> absolute source path
}

// Requests returns load requests for the named units in the given order.
// An empty names requests every unit, sorted by name.
func (m *Manifest) Requests(names []string) ([]LoadRequest, error) {
	if len(names) == 0 {
		names = make([]string, 0, len(m.Units))
		for name := range m.Units {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	requests := make([]LoadRequest, 0, len(names))
	for _, name := range names {
		path, ok := m.Units[name]
		if !ok {
			return nil, zerr.With(ErrUnitNotFound, "unit", name)
		}
		requests = append(requests, LoadRequest{UnitName: name, SourcePath: path})
	}
	return requests, nil
}
