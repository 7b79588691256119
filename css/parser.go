// Package css extracts custom property declarations from stylesheets.
package css

import (
	"bytes"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser scans CSS stylesheets for custom properties.
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

// Variables returns custom property declarations found in data in source
// order. Ordinary declarations, at-rule preludes and comments are ignored.
// The optional source parameter identifies what's being parsed (for debug
// logging).
func (p *Parser) Variables(data []byte, source ...string) []Variable {
	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Scanning CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)

	var (
		vars      []Variable
		selectors []string // ruleset nesting
	)
	for {
		gt, _, tdata := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && err.Error() != "EOF" {
				p.log.Debug("CSS parse error", zap.Error(err))
			}
			return vars

		case css.BeginRulesetGrammar:
			selectors = append(selectors, selectorText(tdata, parser.Values()))

		case css.EndRulesetGrammar:
			if len(selectors) > 0 {
				selectors = selectors[:len(selectors)-1]
			}

		case css.CustomPropertyGrammar:
			v := Variable{
				Name:  string(tdata),
				Value: valueText(parser.Values()),
			}
			if len(selectors) > 0 {
				v.Selector = selectors[len(selectors)-1]
			}
			p.log.Debug("Found custom property", zap.String("name", v.Name), zap.String("selector", v.Selector))
			vars = append(vars, v)

		case css.BeginAtRuleGrammar, css.EndAtRuleGrammar, css.AtRuleGrammar:
			// descend into @media and friends, custom properties inside
			// are reported with their ruleset selector
		}
	}
}

// Declared returns names of all custom properties declared in data.
func (p *Parser) Declared(data []byte, source ...string) map[string]struct{} {
	return Names(p.Variables(data, source...))
}

func selectorText(data []byte, values []css.Token) string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}

func valueText(values []css.Token) string {
	var sb strings.Builder
	for _, v := range values {
		sb.Write(v.Data)
	}
	return strings.TrimSpace(sb.String())
}
