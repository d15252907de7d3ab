package css

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

var reScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)

// Bundle reads stylesheet at path and replaces its local top level @import
// statements with content of imported stylesheets. Declarations keep path
// of the file they came from so urls could be resolved relative to it.
// Remote, absolute and media-qualified imports are left in place, as are
// imports which could not be read. Import cycles are broken by leaving
// repeated @import statement alone.
func (p *Parser) Bundle(path string) (*Stylesheet, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("unable to resolve stylesheet path '%s': %w", path, err)
	}
	sheet, err := p.parseFile(abs, path)
	if err != nil {
		return nil, err
	}
	sheet.Items = p.inlineImports(sheet, sheet.Items, filepath.Dir(path), map[string]bool{abs: true})
	return sheet, nil
}

func (p *Parser) parseFile(abs, name string) (*Stylesheet, error) {
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet: %w", err)
	}
	return p.Parse(data, name)
}

func (p *Parser) inlineImports(root *Stylesheet, items []Item, dir string, visiting map[string]bool) []Item {
	result := make([]Item, 0, len(items))
	for _, item := range items {
		ar := item.AtRule
		if ar == nil || ar.Import == "" || ar.Media != "" || !isLocalImport(ar.Import) {
			result = append(result, item)
			continue
		}

		name := filepath.Join(dir, filepath.FromSlash(ar.Import))
		abs, err := filepath.Abs(name)
		if err != nil || visiting[abs] {
			root.Warnings = append(root.Warnings, "circular import skipped: "+ar.Import)
			p.log.Warn("Circular import, leaving as is", zap.String("import", ar.Import), zap.String("from", dir))
			result = append(result, item)
			continue
		}

		sub, err := p.parseFile(abs, name)
		if err != nil {
			root.Warnings = append(root.Warnings, "unable to inline import: "+ar.Import)
			p.log.Warn("Unable to inline import, leaving as is", zap.String("import", ar.Import), zap.Error(err))
			result = append(result, item)
			continue
		}
		root.Warnings = append(root.Warnings, sub.Warnings...)
		sub.Items = dropCharset(sub.Items)

		visiting[abs] = true
		result = append(result, p.inlineImports(root, sub.Items, filepath.Dir(name), visiting)...)
		delete(visiting, abs)

		p.log.Debug("Inlined import", zap.String("import", ar.Import), zap.String("file", name))
	}
	return result
}

func isLocalImport(url string) bool {
	return url != "" && !strings.HasPrefix(url, "/") && !strings.HasPrefix(url, "#") && !reScheme.MatchString(url)
}

// dropCharset removes @charset which is only valid at the very start of a
// stylesheet.
func dropCharset(items []Item) []Item {
	out := items[:0]
	for _, item := range items {
		if item.AtRule != nil && strings.EqualFold(item.AtRule.Name, "@charset") {
			continue
		}
		out = append(out, item)
	}
	return out
}
