package fs

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/unitcache/internal/core/domain"
	"go.trai.ch/unitcache/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Hasher = (*Hasher)(nil)

// Hasher fingerprints unit sources with XXHash.
type Hasher struct {
	walker  *Walker
	ignores []string
}

// NewHasher creates a new Hasher.
func NewHasher(walker *Walker, ignores ...string) *Hasher {
	return &Hasher{walker: walker, ignores: ignores}
}

// ComputeHash returns a 16 character hex digest of path.
// Files are hashed by content. Directories are hashed over every file below
// them in lexical order, mixing in each file's path relative to the directory
// so that renames change the digest.
func (h *Hasher) ComputeHash(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, iofs.ErrNotExist) {
			return "", zerr.With(domain.ErrPathNotFound, "path", path)
		}
		return "", zerr.With(zerr.Wrap(err, domain.ErrHashComputeFailed.Error()), "path", path)
	}

	if !info.IsDir() {
		sum, err := h.ComputeFileHash(path)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%016x", sum), nil
	}

	digest := xxhash.New()
	for filePath := range h.walker.WalkFiles(path, h.ignores) {
		if err := h.hashFile(path, filePath, digest); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("%016x", digest.Sum64()), nil
}

// ComputeFileHash computes the XXHash of a file's content.
func (h *Hasher) ComputeFileHash(path string) (uint64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is controlled by caller
	if err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrHashComputeFailed.Error()), "path", path)
	}
	defer f.Close() //nolint:errcheck // Best effort close in defer

	digest := xxhash.New()
	if _, err := io.Copy(digest, f); err != nil {
		return 0, zerr.With(zerr.Wrap(err, domain.ErrHashComputeFailed.Error()), "path", path)
	}

	return digest.Sum64(), nil
}

func (h *Hasher) hashFile(root, path string, digest io.Writer) error {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	_, _ = digest.Write([]byte(filepath.ToSlash(rel)))
	_, _ = digest.Write([]byte{0})

	sum, err := h.ComputeFileHash(path)
	if err != nil {
		return err
	}

	if err := binary.Write(digest, binary.LittleEndian, sum); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
