package domain

import (
	"fmt"

	"go.trai.ch/zerr"
)

var (
	// ErrPathNotFound is returned when a unit's source path does not exist.
	ErrPathNotFound = zerr.New("source path not found")

	// ErrHashComputeFailed is returned when a source path cannot be hashed.
	ErrHashComputeFailed = zerr.New("failed to compute content hash")

	// ErrMetadataCorrupt is reported when the metadata index cannot be parsed.
	ErrMetadataCorrupt = zerr.New("metadata index is corrupt")

	// ErrMetadataReadFailed is reported when the metadata index cannot be read.
	ErrMetadataReadFailed = zerr.New("failed to read metadata index")

	// ErrMetadataWriteFailed is reported when the metadata index cannot be written.
	ErrMetadataWriteFailed = zerr.New("failed to write metadata index")

	// ErrLoadFailed is the base of every LoadFailure.
	ErrLoadFailed = zerr.New("failed to load unit")

	// ErrMalformedEntry is returned when a cache entry has no unit name.
	ErrMalformedEntry = zerr.New("cache entry has no unit name")

	// ErrCacheNotInitialized is returned when the cache is used before Initialize.
	ErrCacheNotInitialized = zerr.New("cache is not initialized")

	// ErrCacheDirCreateFailed is returned when the cache directory cannot be created.
	ErrCacheDirCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheClearFailed is returned when the cache directory cannot be removed.
	ErrCacheClearFailed = zerr.New("failed to clear cache directory")

	// ErrNoLoader is returned when a load is attempted without a load callback.
	ErrNoLoader = zerr.New("no load callback configured")

	// ErrUnitNotFound is returned when a requested unit is not declared in the configuration.
	ErrUnitNotFound = zerr.New("unit not found")

	// ErrInvalidUnitName is returned when a unit name contains invalid characters.
	ErrInvalidUnitName = zerr.New("invalid unit name")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when no config file can be found.
	ErrConfigNotFound = zerr.New("could not find unitcache.yaml")

	// ErrUnknownLoader is returned when the configuration names an unsupported loader.
	ErrUnknownLoader = zerr.New("unknown loader kind")

	// ErrBatchFailed is returned when at least one unit of a batch failed to load.
	ErrBatchFailed = zerr.New("one or more units failed to load")

	// ErrBatchCancelled is reported for batch requests that never started because the context was cancelled.
	ErrBatchCancelled = zerr.New("batch cancelled before unit was loaded")

	// ErrEmptyLoadCommand is returned when the shell loader has no command to run.
	ErrEmptyLoadCommand = zerr.New("load command is empty")
)

// LoadFailure reports that the external load callback failed for a unit.
// Nothing is cached for a unit that failed to load.
type LoadFailure struct {
	UnitName   string
	SourcePath string
	Err        error
}

// NewLoadFailure creates a LoadFailure for the unit.
func NewLoadFailure(unitName, sourcePath string, err error) *LoadFailure {
	return &LoadFailure{UnitName: unitName, SourcePath: sourcePath, Err: err}
}

func (f *LoadFailure) Error() string {
	if f.Err == nil {
		return fmt.Sprintf("failed to load unit %q from %s", f.UnitName, f.SourcePath)
	}
	return fmt.Sprintf("failed to load unit %q from %s: %v", f.UnitName, f.SourcePath, f.Err)
}

// Unwrap exposes both ErrLoadFailed and the underlying cause to errors.Is/As.
func (f *LoadFailure) Unwrap() []error {
	if f.Err == nil {
		return []error{ErrLoadFailed}
	}
	return []error{ErrLoadFailed, f.Err}
}
