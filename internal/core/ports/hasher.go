package ports

// Hasher computes content fingerprints for unit source paths.
//
//go:generate mockgen -source=hasher.go -destination=mocks/mock_hasher.go -package=mocks
type Hasher interface {
	// ComputeHash returns a fixed-length hex digest of the file or directory at path.
	ComputeHash(path string) (string, error)
}
