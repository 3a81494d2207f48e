package unitcache

import (
	"os"

	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
)

// Validator decides whether a cached record may still be served.
// It never mutates cache state.
type Validator struct {
	hasher ports.Hasher
	clock  ports.Clock
}

// NewValidator creates a Validator.
func NewValidator(hasher ports.Hasher, clock ports.Clock) *Validator {
	return &Validator{hasher: hasher, clock: clock}
}

// Validate checks, in order, that the source path exists, that its content
// hash is unchanged and that the record is younger than the tier's maximum age.
// A hash that cannot be recomputed does not invalidate the record.
func (v *Validator) Validate(rec domain.Record, tier domain.Tier) domain.Verdict {
	if _, err := os.Stat(rec.SourcePath); err != nil {
		return domain.Verdict{Reason: domain.ReasonPathNotFound}
	}

	inconclusive := false
	if rec.ContentHash != "" {
		current, err := v.hasher.ComputeHash(rec.SourcePath)
		switch {
		case err != nil:
			inconclusive = true
		case current != rec.ContentHash:
			return domain.Verdict{Reason: domain.ReasonHashMismatch}
		}
	}

	if rec.Age(v.clock.Now()) > tier.MaxAge() {
		return domain.Verdict{Reason: domain.ReasonExpired, Inconclusive: inconclusive}
	}

	return domain.Verdict{Valid: true, Reason: domain.ReasonValid, Inconclusive: inconclusive}
}
