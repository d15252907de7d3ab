package rewrite

import (
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

const svgURIPrefix = "data:image/svg+xml;charset=US-ASCII,"

var (
	svgComment  = regexp.MustCompile(`(?s)<!--.*?-->`)
	svgNewlines = strings.NewReplacer("\r", "", "\n", "", "\t", " ")
)

// encodeSVG produces percent-encoded (not base64) data URI for SVG document
// with comments, line breaks and tabs removed.
func encodeSVG(data []byte) string {
	text := svgNewlines.Replace(stripSVGComments(data))
	return svgURIPrefix + url.PathEscape(text)
}

// stripSVGComments drops XML comments going through document tree, falls back
// to textual removal for documents etree cannot read.
func stripSVGComments(data []byte) string {
	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{Permissive: true}
	if err := doc.ReadFromBytes(data); err != nil {
		return svgComment.ReplaceAllString(string(data), "")
	}
	removeComments(&doc.Element)

	out, err := doc.WriteToString()
	if err != nil {
		return svgComment.ReplaceAllString(string(data), "")
	}
	return out
}

func removeComments(e *etree.Element) {
	for _, tok := range slices.Clone(e.Child) {
		switch t := tok.(type) {
		case *etree.Comment:
			e.RemoveChild(t)
		case *etree.Element:
			removeComments(t)
		}
	}
}
