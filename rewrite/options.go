package rewrite

import (
	"errors"
	"fmt"

	"cssurl/common"
)

// DefaultMaxSize is inlining threshold in KiB.
const DefaultMaxSize = 14

// ErrUnknownMode is returned by New when requested mode is not one of the
// supported strategies.
var ErrUnknownMode = errors.New("unknown url mode")

// CustomFunc computes replacement for url. Empty result keeps original url.
type CustomFunc func(url string, decl Node, from, dirname, to string, opts *Options, res *Result) string

// Options is per-run rewriter configuration.
type Options struct {
	// Mode is one of "rebase" (default when empty), "inline" or "copy".
	Mode string
	// Custom replaces built-in strategies when set, Mode is ignored.
	Custom CustomFunc

	// MaxSize is inlining threshold in KiB, zero selects DefaultMaxSize.
	MaxSize int
	// Fallback is used when inlining is rejected. Only "copy" is meaningful,
	// FallbackFunc takes precedence.
	Fallback     string
	FallbackFunc CustomFunc
	// BasePath overrides directory inlined assets are looked up from.
	BasePath string
	// Filter limits which assets are inlined.
	Filter Filter

	// AssetsPath is destination subdirectory for copied assets, relative to
	// destination stylesheet directory.
	AssetsPath string
	// UseHash names copied assets after their content.
	UseHash bool

	// FS defaults to OSFileSystem.
	FS FileSystem
}

// parseMode maps mode name to strategy kind, empty name means rebase.
func parseMode(name string) (common.Mode, error) {
	if name == "" {
		return common.ModeRebase, nil
	}
	mode, err := common.ParseMode(name)
	if err != nil {
		return mode, fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
	return mode, nil
}
