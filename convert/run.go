package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"cssurl/common"
	"cssurl/config"
	"cssurl/state"
)

// Run is the action of the process subcommand.
func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("process")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		dirOnly := os.IsPathSeparator(dst[len(dst)-1])
		if dst, err = filepath.Abs(dst); err != nil {
			return err
		}
		if dirOnly {
			dst += string(filepath.Separator)
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	applyFlags(cmd, &env.Cfg.Rewrite)
	env.Overwrite = cmd.Bool("overwrite")

	j, err := newJob(&env.Cfg.Rewrite, env, log)
	if err != nil {
		return fmt.Errorf("unable to prepare rewriter: %w", err)
	}

	if len(dst) == 0 && needsDestination(&env.Cfg.Rewrite) {
		log.Warn("In place processing, assets could not be copied and their urls will be kept", zap.String("url", env.Cfg.Rewrite.URL))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst), zap.String("url", env.Cfg.Rewrite.URL))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	return process(ctx, src, dst, j)
}

// needsDestination reports whether configured strategy or its fallback copies
// assets, which requires destination different from source.
func needsDestination(conf *config.RewriteConfig) bool {
	if m, err := common.ParseMode(conf.URL); err == nil && m.NeedsDestination() {
		return true
	}
	return conf.URL == common.ModeInline.String() && conf.Fallback == common.ModeCopy.String()
}

// applyFlags overwrites configuration values with flags explicitly set on
// the command line.
func applyFlags(cmd *cli.Command, conf *config.RewriteConfig) {
	if cmd.IsSet("url") {
		conf.URL = cmd.String("url")
	}
	if cmd.IsSet("max-size") {
		conf.MaxSize = int(cmd.Int("max-size"))
	}
	if cmd.IsSet("fallback") {
		conf.Fallback = cmd.String("fallback")
	}
	if cmd.IsSet("base-path") {
		conf.BasePath = cmd.String("base-path")
	}
	if cmd.IsSet("filter") {
		conf.Filter, conf.FilterRegexp = cmd.String("filter"), ""
	}
	if cmd.IsSet("filter-regexp") {
		conf.Filter, conf.FilterRegexp = "", cmd.String("filter-regexp")
	}
	if cmd.IsSet("assets-path") {
		conf.AssetsPath = cmd.String("assets-path")
	}
	if cmd.IsSet("use-hash") {
		conf.UseHash = cmd.Bool("use-hash")
	}
	if cmd.IsSet("no-imports") {
		conf.Imports = !cmd.Bool("no-imports")
	}
}

// process determines the input type (directory or single stylesheet) and
// processes it accordingly. When dst is empty stylesheets are rewritten in
// place.
func process(ctx context.Context, src, dst string, j *job) error {
	fi, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("input source was not found (%s): %w", src, err)
	}

	switch {
	case fi.Mode().IsDir():
		if len(dst) == 0 {
			dst = src
		}
		return processDir(ctx, src, dst, j)
	case fi.Mode().IsRegular():
		return j.processStylesheet(ctx, src, singleDestination(src, dst))
	default:
		return fmt.Errorf("unexpected path mode for (%s)", src)
	}
}

// singleDestination returns output file name for a single stylesheet. An
// existing directory or a path ending with separator gets source base name
// appended.
func singleDestination(src, dst string) string {
	if len(dst) == 0 {
		return src
	}
	if fi, err := os.Stat(dst); err == nil && fi.IsDir() {
		return filepath.Join(dst, filepath.Base(src))
	}
	if os.IsPathSeparator(dst[len(dst)-1]) {
		return filepath.Join(dst, filepath.Base(src))
	}
	return dst
}
