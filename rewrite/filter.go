package rewrite

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"
)

type filterKind int

const (
	filterNone filterKind = iota
	filterGlob
	filterRegexp
	filterFunc
)

// Filter selects assets eligible for inlining. Zero value accepts everything.
type Filter struct {
	kind    filterKind
	pattern string
	re      *regexp.Regexp
	fn      func(path string) bool
}

// GlobFilter matches absolute asset path against shell glob pattern. Path
// separators are always forward slashes, "*" does not cross them, "**" does.
func GlobFilter(pattern string) Filter {
	return Filter{kind: filterGlob, pattern: pattern}
}

// RegexpFilter tests absolute asset path with regular expression.
func RegexpFilter(re *regexp.Regexp) Filter {
	return Filter{kind: filterRegexp, re: re}
}

// FuncFilter calls fn with absolute asset path.
func FuncFilter(fn func(path string) bool) Filter {
	return Filter{kind: filterFunc, fn: fn}
}

// IsSet reports whether filter restricts anything.
func (f Filter) IsSet() bool {
	return f.kind != filterNone
}

// compile normalizes filter to a single predicate.
func (f Filter) compile() (func(string) bool, error) {
	switch f.kind {
	case filterGlob:
		g, err := glob.Compile(f.pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("bad filter pattern %q: %w", f.pattern, err)
		}
		return func(path string) bool {
			return g.Match(filepath.ToSlash(path))
		}, nil
	case filterRegexp:
		if f.re == nil {
			break
		}
		return f.re.MatchString, nil
	case filterFunc:
		if f.fn == nil {
			break
		}
		return f.fn, nil
	}
	return func(string) bool { return true }, nil
}
