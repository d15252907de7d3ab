package convert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"cssurl/common"
	"cssurl/config"
	"cssurl/css"
	"cssurl/rewrite"
	"cssurl/state"
)

// job keeps what is shared by all stylesheets of a single run.
type job struct {
	rw     *rewrite.Rewriter
	parser *css.Parser
	cfg    *config.RewriteConfig
	env    *state.LocalEnv
	log    *zap.Logger
}

func newJob(conf *config.RewriteConfig, env *state.LocalEnv, log *zap.Logger) (*job, error) {
	rw, err := newRewriter(conf, log)
	if err != nil {
		return nil, err
	}
	return &job{rw: rw, parser: css.NewParser(log), cfg: conf, env: env, log: log}, nil
}

// newRewriter translates configuration into rewriter options.
func newRewriter(conf *config.RewriteConfig, log *zap.Logger) (*rewrite.Rewriter, error) {
	opts := rewrite.Options{
		Mode:       conf.URL,
		MaxSize:    conf.MaxSize,
		Fallback:   conf.Fallback,
		BasePath:   conf.BasePath,
		AssetsPath: conf.AssetsPath,
		UseHash:    conf.UseHash,
	}

	switch {
	case conf.Filter != "" && conf.FilterRegexp != "":
		return nil, errors.New("filter and filter regexp are mutually exclusive")
	case conf.Filter != "":
		opts.Filter = rewrite.GlobFilter(conf.Filter)
	case conf.FilterRegexp != "":
		re, err := regexp.Compile(conf.FilterRegexp)
		if err != nil {
			return nil, fmt.Errorf("bad filter regexp: %w", err)
		}
		opts.Filter = rewrite.RegexpFilter(re)
	}

	if conf.Fallback != "" && conf.Fallback != common.ModeCopy.String() {
		log.Warn("Unsupported fallback, urls rejected by inlining will be kept", zap.String("fallback", conf.Fallback))
	}
	return rewrite.New(opts, log)
}

// processDir finds all stylesheets under dir and processes them keeping
// directory structure under dst. Failure of a single stylesheet does not
// stop processing, all errors are returned combined.
func processDir(ctx context.Context, dir, dst string, j *job) error {
	files, err := findStylesheets(dir, dst)
	if err != nil {
		return fmt.Errorf("unable to scan directory: %w", err)
	}
	if len(files) == 0 {
		j.log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	var errs error
	for _, rel := range files {
		if err := ctx.Err(); err != nil {
			return multierr.Append(errs, err)
		}
		src := filepath.Join(dir, rel)
		if err := j.processStylesheet(ctx, src, filepath.Join(dst, rel)); err != nil {
			j.log.Error("Unable to process stylesheet", zap.String("file", src), zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// findStylesheets returns paths of *.css files relative to dir in natural
// order. Output directory is skipped when it is located inside of dir.
func findStylesheets(dir, dst string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && path == dst {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !strings.EqualFold(filepath.Ext(path), ".css") {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(files, func(a, b string) int {
		switch {
		case natural.Less(a, b):
			return -1
		case natural.Less(b, a):
			return 1
		}
		return 0
	})
	return files, nil
}

// processStylesheet rewrites urls of a single stylesheet and writes result
// to dst, which could be the same file.
func (j *job) processStylesheet(ctx context.Context, src, dst string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	log := j.log.With(zap.String("file", src))
	log.Info("Stylesheet processing starting", zap.String("to", dst))
	start := time.Now()

	if _, err := os.Stat(dst); err == nil {
		if !j.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", dst)
		}
		log.Debug("Overwriting existing file", zap.String("to", dst))
	} else if !os.IsNotExist(err) {
		return err
	}

	sheet, err := j.load(src)
	if err != nil {
		return err
	}
	j.storeCopy("source", src)

	for _, w := range sheet.Warnings {
		log.Warn("Stylesheet problem", zap.String("details", w))
	}

	res := rewrite.NewResult(src, dst, log)
	if err := j.rw.Run(sheetDecls{sheet}, res); err != nil {
		return fmt.Errorf("unable to rewrite stylesheet (%s): %w", src, err)
	}

	if err := writeStylesheet(sheet, dst); err != nil {
		return err
	}
	j.storeCopy("result", dst)

	log.Info("Stylesheet processing completed", zap.Duration("elapsed", time.Since(start)), zap.Int("warnings", len(res.Warnings)))
	return nil
}

func (j *job) load(src string) (*css.Stylesheet, error) {
	if j.cfg.Imports {
		return j.parser.Bundle(src)
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	return j.parser.Parse(data, src)
}

// storeCopy puts stylesheet into debug report if one was requested.
func (j *job) storeCopy(kind, path string) {
	if j.env.Rpt == nil {
		return
	}
	if err := j.env.Rpt.StoreCopy(kind+"/"+config.CleanFileName(filepath.Base(path)), path); err != nil {
		j.log.Debug("Unable to store file in report", zap.String("file", path), zap.Error(err))
	}
}

// writeStylesheet replaces dst through a temporary file in the same
// directory so in-place processing never leaves truncated stylesheet.
func writeStylesheet(sheet *css.Stylesheet, dst string) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	f, err := os.CreateTemp(dir, ".cssurl-*.css")
	if err != nil {
		return fmt.Errorf("unable to create output file: %w", err)
	}
	if _, err := sheet.WriteTo(f); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("unable to write output file: %w", err)
	}
	if err := os.Chmod(f.Name(), 0644); err != nil {
		os.Remove(f.Name())
		return err
	}
	if err := os.Rename(f.Name(), dst); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("unable to write output file: %w", err)
	}
	return nil
}

// sheetDecls exposes stylesheet declarations to the rewriter.
type sheetDecls struct {
	*css.Stylesheet
}

func (s sheetDecls) WalkDecls(fn func(rewrite.Node) error) error {
	return s.Stylesheet.WalkDecls(func(d *css.Declaration) error {
		return fn(d)
	})
}
