package domain

// Reason explains a validation outcome.
type Reason string

const (
	// ReasonValid means every check passed.
	ReasonValid Reason = "valid"
	// ReasonPathNotFound means the source path no longer exists.
	ReasonPathNotFound Reason = "path not found"
	// ReasonHashMismatch means the source content changed since caching.
	ReasonHashMismatch Reason = "content hash mismatch"
	// ReasonExpired means the entry is older than its tier allows.
	ReasonExpired Reason = "expired"
)

// Verdict is the result of validating a cache entry.
type Verdict struct {
	Valid  bool
	Reason Reason
	// Inconclusive is set when the content hash could not be recomputed.
	// The entry is still valid if the age check passed.
	Inconclusive bool
}
