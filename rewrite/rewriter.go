package rewrite

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"cssurl/common"
)

// urlPatterns are tried in order, first one matching anything in the value is
// used for all replacements in that value. Groups: text before url, url, text
// after url.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(url\(\s*['"]?)([^"')]+)(["']?\s*\))`),
	regexp.MustCompile(`(AlphaImageLoader\(\s*src=['"]?)([^"')]+)(["'])`),
}

// processor computes new url, empty string means keep the original.
type processor func(rc *Context, url string) (string, error)

// Rewriter applies configured strategy to every url reference of the
// declarations it is given. Not safe for concurrent use.
type Rewriter struct {
	opts     Options
	custom   bool
	process  processor
	fallback processor
	match    func(string) bool
	maxBytes int64
	fs       FileSystem
	log      *zap.Logger
}

// New resolves strategy, fallback and filter once for the whole run.
func New(opts Options, log *zap.Logger) (*Rewriter, error) {
	if log == nil {
		log = zap.NewNop()
	}

	rw := &Rewriter{
		opts: opts,
		fs:   opts.FS,
		log:  log.Named("rewrite"),
	}
	if rw.fs == nil {
		rw.fs = OSFileSystem{}
	}
	if rw.opts.MaxSize == 0 {
		rw.opts.MaxSize = DefaultMaxSize
	}
	rw.maxBytes = int64(rw.opts.MaxSize) * 1024

	var err error
	if rw.match, err = opts.Filter.compile(); err != nil {
		return nil, err
	}

	switch {
	case opts.FallbackFunc != nil:
		rw.fallback = rw.customProcessor(opts.FallbackFunc)
	case opts.Fallback == common.ModeCopy.String():
		rw.fallback = rw.copyAsset
	default:
		rw.fallback = noChange
	}

	if opts.Custom != nil {
		rw.custom = true
		rw.process = rw.customProcessor(opts.Custom)
		return rw, nil
	}

	mode, err := parseMode(opts.Mode)
	if err != nil {
		return nil, err
	}
	switch mode {
	case common.ModeRebase:
		rw.process = rw.rebase
	case common.ModeInline:
		rw.process = rw.inline
	case common.ModeCopy:
		rw.process = rw.copyAsset
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, opts.Mode)
	}
	rw.log.Debug("Rewriter ready", zap.Stringer("mode", mode), zap.Bool("filter", opts.Filter.IsSet()), zap.Int("max_size", rw.opts.MaxSize))
	return rw, nil
}

// Run processes every declaration supplied by w.
func (rw *Rewriter) Run(w Walker, res *Result) error {
	return w.WalkDecls(func(n Node) error {
		return rw.ProcessDecl(n, res)
	})
}

// ProcessDecl rewrites url references in a single declaration value. Text
// outside of the references is never changed. Returned errors are fatal
// (failure to write copied asset), everything else ends up as warning in res.
func (rw *Rewriter) ProcessDecl(decl Node, res *Result) error {
	value := decl.Value()

	for _, pattern := range urlPatterns {
		found := pattern.FindAllStringSubmatchIndex(value, -1)
		if len(found) == 0 {
			continue
		}

		var (
			b    strings.Builder
			last int
		)
		for _, loc := range found {
			start, end := loc[4], loc[5]
			newURL, err := rw.replace(decl, value[start:end], res)
			if err != nil {
				return err
			}
			b.WriteString(value[last:start])
			b.WriteString(newURL)
			last = end
		}
		b.WriteString(value[last:])

		if s := b.String(); s != value {
			decl.SetValue(s)
		}
		return nil
	}
	return nil
}

// replace returns url to put back into declaration.
func (rw *Rewriter) replace(decl Node, url string, res *Result) (string, error) {
	if !rw.custom && IsIgnorable(url) {
		return url, nil
	}

	rc, err := rw.context(decl, res)
	if err != nil {
		return "", err
	}

	newURL, err := rw.process(rc, url)
	if err != nil {
		return "", err
	}
	if newURL == "" {
		return url, nil
	}
	if newURL != url {
		rw.log.Debug("Url rewritten", zap.String("source", decl.Source()), zap.String("from", url), zap.String("to", newURL))
	}
	return newURL, nil
}

func (rw *Rewriter) context(decl Node, res *Result) (*Context, error) {
	if res == nil {
		res = NewResult("", "", rw.log)
	}
	from, to, err := res.roots()
	if err != nil {
		return nil, err
	}
	dirname, err := declDir(decl)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve declaration directory: %w", err)
	}
	return &Context{From: from, To: to, Dirname: dirname, Node: decl, Result: res}, nil
}
