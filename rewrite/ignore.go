package rewrite

import (
	"regexp"
	"strings"
)

var schemePrefix = regexp.MustCompile(`^[a-z]+://`)

// IsIgnorable reports whether url must be left untouched: root-absolute,
// fragment only, data URI or carrying protocol scheme.
func IsIgnorable(url string) bool {
	return strings.HasPrefix(url, "/") ||
		strings.HasPrefix(url, "#") ||
		strings.HasPrefix(url, "data:") ||
		schemePrefix.MatchString(url)
}
