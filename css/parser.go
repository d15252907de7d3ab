package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets keeping declaration values as opaque text.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet. Source is the path data was read
// from, it becomes origin of every declaration and may be empty.
func (p *Parser) Parse(data []byte, source string) (*Stylesheet, error) {
	sheet := &Stylesheet{File: source}

	p.log.Debug("Parsing CSS", zap.String("source", source), zap.Int("bytes", len(data)))

	data, from, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("unable to read stylesheet '%s': %w", source, err)
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	sheet.Items, _ = p.parseBlock(parser, sheet, false)

	if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("unable to parse stylesheet '%s': %w", source, err)
	}

	if from != "" {
		// text is UTF-8 now and will be written as such
		for _, item := range sheet.Items {
			if item.AtRule != nil && strings.EqualFold(item.AtRule.Name, "@charset") {
				item.AtRule.Prelude = `"UTF-8"`
			}
		}
		p.log.Debug("Stylesheet converted to UTF-8", zap.String("source", source), zap.String("charset", from))
	}
	return sheet, nil
}

// parseBlock reads items and declarations until end of the current at-rule
// block (nested) or end of input.
func (p *Parser) parseBlock(parser *css.Parser, sheet *Stylesheet, nested bool) ([]Item, []*Declaration) {
	var (
		items     []Item
		decls     []*Declaration
		selectors []string
	)

	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			return items, decls

		case css.EndAtRuleGrammar:
			if nested {
				return items, decls
			}

		case css.AtRuleGrammar:
			items = append(items, Item{AtRule: p.parseStatement(string(data), parser.Values(), sheet)})

		case css.BeginAtRuleGrammar:
			ar := &AtRule{
				Name:    string(data),
				Prelude: joinTokens(parser.Values()),
				Block:   true,
				File:    sheet.File,
			}
			ar.Items, ar.Declarations = p.parseBlock(parser, sheet, true)
			items = append(items, Item{AtRule: ar})

		case css.QualifiedRuleGrammar:
			// selector followed by comma, rest of the list comes with the ruleset
			selectors = append(selectors, selectorText(data, parser.Values()))

		case css.BeginRulesetGrammar:
			selectors = append(selectors, selectorText(data, parser.Values()))
			rule := &Rule{Selector: strings.Join(selectors, ", ")}
			rule.Declarations = p.parseDeclarations(parser, sheet)
			items = append(items, Item{Rule: rule})
			selectors = nil

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, newDeclaration(string(data), parser.Values(), sheet.File))
		}
	}
}

// parseDeclarations parses declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarations(parser *css.Parser, sheet *Stylesheet) []*Declaration {
	var decls []*Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar:
			return decls

		case css.DeclarationGrammar, css.CustomPropertyGrammar:
			decls = append(decls, newDeclaration(string(data), parser.Values(), sheet.File))

		case css.BeginRulesetGrammar, css.BeginAtRuleGrammar:
			// nesting is not supported, skip the whole block
			sheet.Warnings = append(sheet.Warnings, "nested rule skipped: "+selectorText(data, parser.Values()))
			p.log.Debug("Skipping nested block", zap.String("source", sheet.File))
			skipBlock(parser)
		}
	}
}

// parseStatement handles block-less at-rules.
func (p *Parser) parseStatement(name string, tokens []css.Token, sheet *Stylesheet) *AtRule {
	ar := &AtRule{Name: name, Prelude: joinTokens(tokens), File: sheet.File}
	if strings.EqualFold(name, "@import") {
		ar.Import, ar.Media = extractImport(tokens)
		p.log.Debug("Parsed @import", zap.String("url", ar.Import), zap.String("media", ar.Media))
	}
	return ar
}

// skipBlock skips tokens until the matching end of the block.
func skipBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func newDeclaration(property string, tokens []css.Token, file string) *Declaration {
	d := &Declaration{Property: property, File: file}
	tokens, d.Important = trimImportant(tokens)
	d.value = joinTokens(tokens)
	return d
}

// trimImportant removes trailing "!important".
func trimImportant(tokens []css.Token) ([]css.Token, bool) {
	i := lastSignificant(tokens, len(tokens))
	if i < 0 || tokens[i].TokenType != css.IdentToken || !strings.EqualFold(string(tokens[i].Data), "important") {
		return tokens, false
	}
	j := lastSignificant(tokens, i)
	if j < 0 || tokens[j].TokenType != css.DelimToken || string(tokens[j].Data) != "!" {
		return tokens, false
	}
	return tokens[:j], true
}

func lastSignificant(tokens []css.Token, before int) int {
	for i := before - 1; i >= 0; i-- {
		if tokens[i].TokenType != css.WhitespaceToken && tokens[i].TokenType != css.CommentToken {
			return i
		}
	}
	return -1
}

// joinTokens rebuilds text from tokens collapsing whitespace runs to a single
// space and dropping comments. Token data is kept verbatim so url(...) and
// strings keep their original form.
func joinTokens(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		switch t.TokenType {
		case css.CommentToken:
			continue
		case css.WhitespaceToken:
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return sb.String()
}

func selectorText(data []byte, tokens []css.Token) string {
	s := strings.TrimSpace(string(data) + joinTokens(tokens))
	return strings.TrimSpace(strings.TrimSuffix(s, ","))
}

// extractImport extracts url and trailing media list from @import tokens.
// Handles: @import "url"; @import url("url"); @import url(url) media;
func extractImport(tokens []css.Token) (string, string) {
	for i, t := range tokens {
		var url string
		switch t.TokenType {
		case css.StringToken:
			url = unquote(string(t.Data))
		case css.URLToken:
			s := strings.TrimPrefix(string(t.Data), "url(")
			s = strings.TrimSuffix(s, ")")
			url = unquote(strings.TrimSpace(s))
		case css.FunctionToken:
			// url( "x" ) may come as function with string argument
			if !strings.EqualFold(string(t.Data), "url(") {
				return "", ""
			}
			for j := i + 1; j < len(tokens); j++ {
				switch tokens[j].TokenType {
				case css.StringToken:
					url = unquote(string(tokens[j].Data))
				case css.RightParenthesisToken:
					return url, joinTokens(tokens[j+1:])
				}
			}
			return "", ""
		default:
			continue
		}
		return url, joinTokens(tokens[i+1:])
	}
	return "", ""
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
