package rewrite

import (
	"path/filepath"
	"strings"
)

// Context is resolution context of a single declaration.
type Context struct {
	From    string // directory of the source stylesheet
	To      string // directory of the destination stylesheet
	Dirname string // directory of the stylesheet declaration originated from
	Node    Node
	Result  *Result
}

// warn is a shortcut to report diagnostic for the current declaration.
func (rc *Context) warn(text string) {
	if rc.Result != nil {
		rc.Result.Warn(text, rc.Node)
	}
}

// splitURL separates path, "?query" and "#fragment" parts of url. Query and
// fragment keep their leading markers.
func splitURL(raw string) (path, query, fragment string) {
	path = raw
	if i := strings.IndexByte(path, '#'); i >= 0 {
		path, fragment = path[:i], path[i:]
	}
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path, query = path[:i], path[i:]
	}
	return path, query, fragment
}

// resolve makes p absolute using base directory.
func resolve(base, p string) string {
	p = filepath.FromSlash(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(base, p)
}

// sourcePath returns absolute location of url written in declaration.
// When declaration comes from imported stylesheet url is first re-expressed
// relative to the source root.
func (rc *Context) sourcePath(url string) string {
	if rc.Dirname != rc.From {
		if rel, err := filepath.Rel(rc.From, resolve(rc.Dirname, url)); err == nil {
			url = rel
		}
	}
	return resolve(rc.From, url)
}

// beneath returns part of dir below root. It reports false when dir is not
// inside root.
func beneath(root, dir string) (string, bool) {
	rest, ok := strings.CutPrefix(dir, root)
	if !ok {
		return "", false
	}
	if rest == "" {
		return "", true
	}
	sep := string(filepath.Separator)
	if !strings.HasSuffix(root, sep) && !strings.HasPrefix(rest, sep) {
		return "", false
	}
	return strings.TrimLeft(rest, sep), true
}
