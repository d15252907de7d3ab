package rewrite

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

const svgMIME = "image/svg+xml"

// mimeByExt returns MIME type of the file judging by its extension, empty
// string when it cannot be determined.
func mimeByExt(file string) string {
	ext := strings.ToLower(filepath.Ext(file))
	if ext == "" {
		return ""
	}
	if t := extToMimeType(ext); t != "" {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		if mt, _, err := mime.ParseMediaType(t); err == nil {
			return mt
		}
		return t
	}
	if t := filetype.GetType(ext[1:]); t != filetype.Unknown {
		return t.MIME.Value
	}
	return ""
}

// extToMimeType covers types system MIME tables often get wrong or lack.
func extToMimeType(ext string) string {
	switch ext {
	case ".svg":
		return svgMIME
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	case ".ico":
		return "image/x-icon"
	case ".woff":
		return "font/woff"
	case ".woff2":
		return "font/woff2"
	case ".ttf":
		return "font/ttf"
	case ".otf":
		return "font/otf"
	case ".eot":
		return "application/vnd.ms-fontobject"
	default:
		return ""
	}
}
