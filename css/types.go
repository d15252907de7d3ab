package css

import (
	"io"
	"strings"
)

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property  string
	Important bool
	File      string // stylesheet declaration came from, empty when unknown

	value string
}

// NewDeclaration creates declaration, mostly useful in tests.
func NewDeclaration(property, value, file string) *Declaration {
	return &Declaration{Property: property, File: file, value: value}
}

func (d *Declaration) Value() string { return d.value }

func (d *Declaration) SetValue(value string) { d.value = value }

// Source returns path of the stylesheet declaration originated from.
func (d *Declaration) Source() string { return d.File }

func (d *Declaration) String() string {
	s := d.Property + ": " + d.value
	if d.Important {
		s += " !important"
	}
	return s
}

// Rule is a qualified rule: selector list with declarations.
type Rule struct {
	Selector     string
	Declarations []*Declaration
}

// AtRule is an @-rule. Statement at-rules (@import, @charset) have no block,
// grouping ones (@media, @supports) keep nested items and descriptor ones
// (@font-face, @page) keep declarations.
type AtRule struct {
	Name         string // with leading '@'
	Prelude      string
	Block        bool
	Items        []Item
	Declarations []*Declaration

	// Import is url of @import statement, Media is anything following it.
	Import string
	Media  string
	File   string
}

// Item is a single stylesheet entry. Exactly one of Rule or AtRule is non-nil.
type Item struct {
	Rule   *Rule
	AtRule *AtRule
}

// Stylesheet is a parsed stylesheet in source order.
type Stylesheet struct {
	File     string
	Items    []Item
	Warnings []string
}

// WalkDecls calls fn for every declaration including ones nested in
// at-rule blocks, in source order. Walking stops on first error.
func (s *Stylesheet) WalkDecls(fn func(*Declaration) error) error {
	return walkItems(s.Items, fn)
}

func walkItems(items []Item, fn func(*Declaration) error) error {
	for _, item := range items {
		var decls []*Declaration
		switch {
		case item.Rule != nil:
			decls = item.Rule.Declarations
		case item.AtRule != nil:
			decls = item.AtRule.Declarations
			if err := walkItems(item.AtRule.Items, fn); err != nil {
				return err
			}
		}
		for _, d := range decls {
			if err := fn(d); err != nil {
				return err
			}
		}
	}
	return nil
}

// Imports returns urls of all top level @import statements in source order.
func (s *Stylesheet) Imports() []string {
	var urls []string
	for _, item := range s.Items {
		if item.AtRule != nil && item.AtRule.Import != "" {
			urls = append(urls, item.AtRule.Import)
		}
	}
	return urls
}

// WriteTo writes the stylesheet to w, implementing io.WriterTo.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	writeItems(&b, s.Items, 0)
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var b strings.Builder
	writeItems(&b, s.Items, 0)
	return b.String()
}

func writeItems(b *strings.Builder, items []Item, depth int) {
	for i, item := range items {
		if i > 0 && depth == 0 {
			b.WriteByte('\n')
		}
		switch {
		case item.Rule != nil:
			writeBlock(b, item.Rule.Selector, nil, item.Rule.Declarations, depth)
		case item.AtRule != nil:
			ar := item.AtRule
			head := ar.Name
			if ar.Prelude != "" {
				head += " " + ar.Prelude
			}
			if !ar.Block {
				indent(b, depth)
				b.WriteString(head)
				b.WriteString(";\n")
				continue
			}
			writeBlock(b, head, ar.Items, ar.Declarations, depth)
		}
	}
}

func writeBlock(b *strings.Builder, head string, items []Item, decls []*Declaration, depth int) {
	indent(b, depth)
	b.WriteString(head)
	b.WriteString(" {\n")
	for _, d := range decls {
		indent(b, depth+1)
		b.WriteString(d.String())
		b.WriteString(";\n")
	}
	writeItems(b, items, depth+1)
	indent(b, depth)
	b.WriteString("}\n")
}

func indent(b *strings.Builder, depth int) {
	for range depth {
		b.WriteString("  ")
	}
}
