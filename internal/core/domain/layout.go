package domain

import (
	"os"
	"path/filepath"
)

const (
	// AppName is used for the default cache directory and telemetry.
	AppName = "unitcache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "unitcache.yaml"

	// IndexFileName is the name of the metadata index inside the cache directory.
	IndexFileName = "index.json"

	// DebugLogFile is the name of the debug log file inside the cache directory.
	DebugLogFile = "debug.log"

	// CacheDirEnv overrides the default cache directory.
	CacheDirEnv = "UNITCACHE_CACHE_DIR"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// BytesPerMB converts sizes reported in megabytes.
	BytesPerMB = 1024 * 1024
)

// DefaultCacheDir resolves the cache directory.
// Precedence: UNITCACHE_CACHE_DIR, then the user cache directory, then the
// system temp directory.
func DefaultCacheDir() string {
	if dir, ok := os.LookupEnv(CacheDirEnv); ok && dir != "" {
		return dir
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, AppName)
	}
	return filepath.Join(os.TempDir(), AppName)
}

// DebugLogPath returns the debug log path for a cache directory.
func DebugLogPath(cacheDir string) string {
	return filepath.Join(cacheDir, DebugLogFile)
}
