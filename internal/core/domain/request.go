package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// LoadRequest names a unit and the path backing it.
type LoadRequest struct {
	UnitName   string
	SourcePath string
}

// Name returns the unit name, derived from the source path when not set.
func (r LoadRequest) Name() string {
	if r.UnitName != "" {
		return r.UnitName
	}
	return UnitNameFromPath(r.SourcePath)
}

// UnitNameFromPath derives a unit name from its source path: the base name
// without extension, so "./mods/net.so" becomes "net".
func UnitNameFromPath(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if base == "." || base == string(filepath.Separator) {
		return ""
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// LoadSource reports which resolution step produced a handle.
type LoadSource string

const (
	// SourceActive means the unit was already live in the host process.
	SourceActive LoadSource = "active"
	// SourceMemory means the handle came from the memory tier.
	SourceMemory LoadSource = "memory"
	// SourceDisk means a disk record was re-materialized and promoted.
	SourceDisk LoadSource = "disk"
	// SourceCold means the load callback ran against the source path.
	SourceCold LoadSource = "cold"
	// SourceNone is used for failed loads.
	SourceNone LoadSource = ""
)

// LoadResult is the outcome of a single request in a batch.
type LoadResult struct {
	UnitName   string
	SourcePath string
	Success    bool
	Handle     Handle
	Err        error
	Source     LoadSource
	Duration   time.Duration
}
