package rewrite

import (
	"path/filepath"
)

// rebase recomputes url so it stays valid from the destination stylesheet.
// No file system access.
func (rw *Rewriter) rebase(rc *Context, url string) (string, error) {
	rel, err := filepath.Rel(rc.To, rc.sourcePath(url))
	if err != nil {
		// different volumes, nothing sensible to produce
		return "", nil
	}
	return filepath.ToSlash(rel), nil
}
