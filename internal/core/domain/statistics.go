package domain

// Statistics summarizes the state of a cache instance.
type Statistics struct {
	CacheDirectory   string
	MemoryEntries    int
	DiskEntries      int
	TotalCacheSizeMB float64
}
