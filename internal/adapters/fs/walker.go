// Package fs provides file system adapters for walking and hashing unit sources.
package fs

import (
	"io/fs"
	"iter"
	"path/filepath"
)

// Walker provides file walking functionality.
type Walker struct{}

// NewWalker creates a new Walker.
func NewWalker() *Walker {
	return &Walker{}
}

// WalkFiles yields all files below root in lexical order, skipping VCS
// metadata and ignored names. Yielded paths include root.
func (w *Walker) WalkFiles(root string, ignores []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if skipAction := w.shouldSkipDir(d, ignores); skipAction != nil {
				return skipAction
			}

			if d.IsDir() || w.isIgnored(d.Name(), ignores) {
				return nil
			}

			if !yield(path) {
				return filepath.SkipAll
			}

			return nil
		})
	}
}

// shouldSkipDir returns filepath.SkipDir for directories that never contribute to a unit's content.
func (w *Walker) shouldSkipDir(d fs.DirEntry, ignores []string) error {
	if !d.IsDir() {
		return nil
	}

	switch d.Name() {
	case ".git", ".jj", ".hg":
		return filepath.SkipDir
	}

	if w.isIgnored(d.Name(), ignores) {
		return filepath.SkipDir
	}

	return nil
}

func (w *Walker) isIgnored(name string, ignores []string) bool {
	for _, ignore := range ignores {
		if matched, _ := filepath.Match(ignore, name); matched {
			return true
		}
	}
	return false
}
