package rewrite

import (
	"encoding/base64"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"
)

// inline replaces url with data URI built from asset content. Oversized,
// filtered out and fragment carrying urls are handed to fallback.
func (rw *Rewriter) inline(rc *Context, url string) (string, error) {
	path, _, fragment := splitURL(url)
	if fragment != "" {
		// fragments cannot survive inlining
		return rw.fallback(rc, url)
	}

	var file string
	if rw.opts.BasePath != "" {
		file = resolve(rc.From, filepath.Join(rw.opts.BasePath, filepath.FromSlash(path)))
	} else {
		file = rc.sourcePath(path)
	}

	info, err := rw.fs.Stat(file)
	if err != nil {
		rc.warn(fmt.Sprintf("Can't read file '%s', ignoring", file))
		return "", nil
	}

	if info.Size() >= rw.maxBytes {
		rw.log.Debug("Asset is too big to inline", zap.String("file", file), zap.Int64("size", info.Size()), zap.Int64("max", rw.maxBytes))
		return rw.fallback(rc, url)
	}
	if !rw.match(file) {
		rw.log.Debug("Asset filtered out", zap.String("file", file))
		return rw.fallback(rc, url)
	}

	mimeType := mimeByExt(file)
	if mimeType == "" {
		rc.warn("Unable to find asset mime-type for " + file)
		return "", nil
	}

	data, err := rw.fs.ReadFile(file)
	if err != nil {
		rc.warn(fmt.Sprintf("Can't read file '%s', ignoring", file))
		return "", nil
	}

	if mimeType == svgMIME {
		return encodeSVG(data), nil
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
