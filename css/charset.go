package css

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// reCharset matches @charset rule which, when present, must be the very
// first thing in the stylesheet.
var reCharset = regexp.MustCompile(`^@charset\s+"([^"]+)"\s*;`)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16BE = []byte{0xFE, 0xFF}
	bomUTF16LE = []byte{0xFF, 0xFE}
)

// decode returns stylesheet text in UTF-8. Encoding is determined by byte
// order mark or @charset rule, without either text is assumed to be UTF-8
// already. Name of the source encoding is returned when text was converted.
func decode(data []byte) ([]byte, string, error) {
	var (
		enc  encoding.Encoding
		name string
	)
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return data[len(bomUTF8):], "", nil
	case bytes.HasPrefix(data, bomUTF16BE):
		enc, name = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	case bytes.HasPrefix(data, bomUTF16LE):
		enc, name = unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	default:
		m := reCharset.FindSubmatch(data)
		if m == nil {
			return data, "", nil
		}
		label := strings.TrimSpace(string(m[1]))
		if enc, name = charset.Lookup(label); enc == nil {
			return nil, "", fmt.Errorf("unsupported stylesheet charset %q", label)
		}
		if name == "utf-8" {
			return data, "", nil
		}
	}

	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return nil, "", fmt.Errorf("unable to decode stylesheet from %s: %w", name, err)
	}
	return out, name, nil
}
