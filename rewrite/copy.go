package rewrite

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// hashNameLen is number of hex digits of content digest used as file name.
const hashNameLen = 16

// copyAsset places asset under assets directory of the destination and points
// url to the copy. Existing destination files are never overwritten.
func (rw *Rewriter) copyAsset(rc *Context, url string) (string, error) {
	if rc.From == rc.To {
		rc.warn("Destination directory is the same as source, copy requires distinct locations, ignoring")
		return "", nil
	}

	path, query, fragment := splitURL(url)
	src := resolve(rc.Dirname, path)

	contents, err := rw.fs.ReadFile(src)
	if err != nil {
		rc.warn(fmt.Sprintf("Can't read file '%s', ignoring", src))
		return "", nil
	}

	assets := filepath.FromSlash(rw.opts.AssetsPath)
	var name, suffix string
	if rw.opts.UseHash {
		sum := sha1.Sum(contents)
		name = hex.EncodeToString(sum[:])[:hashNameLen] + filepath.Ext(src)
		suffix = query + fragment
	} else {
		sub, ok := beneath(rc.From, rc.Dirname)
		if !ok {
			rc.warn(fmt.Sprintf("File '%s' is outside of source directory '%s', ignoring", src, rc.From))
			return "", nil
		}
		assets = filepath.Join(assets, sub, filepath.Dir(filepath.FromSlash(path)))
		name = filepath.Base(src)
	}

	dir := resolve(rc.To, assets)
	if err := rw.fs.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("unable to create assets directory '%s': %w", dir, err)
	}

	dst := filepath.Join(dir, name)
	if _, err := rw.fs.Stat(dst); err != nil {
		if err := rw.fs.WriteFile(dst, contents, 0644); err != nil {
			return "", fmt.Errorf("unable to write asset '%s': %w", dst, err)
		}
		rw.log.Debug("Asset copied", zap.String("from", src), zap.String("to", dst))
	}

	return filepath.ToSlash(filepath.Join(assets, name)) + suffix, nil
}
