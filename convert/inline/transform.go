// Package inline rewrites hex colors found in inline style attributes of
// component sources into CSS custom property references.
//
// Matching is purely textual. Style bodies end at the first closing brace, so
// nested object literals inside style={{...}} are cut short. Replacement is
// done by literal substring rather than by position, which means identical
// text elsewhere in the document may be rewritten as well.
package inline

import (
	"regexp"
	"strings"
)

const (
	headerOpen   = "/*\nCSS Variables to add to your stylesheet:\n:root {\n"
	headerClose  = "\n}\n*/\n\n"
	hexDigitsExp = `[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3}`
)

// properties lists style properties eligible for rewriting. Order matters for
// regular expression alternation.
var properties = []string{"color", "backgroundColor", "borderColor", "fill", "stroke"}

var (
	styleRe    = regexp.MustCompile(`style=\{(\{[^}]+\})\}`)
	colorRe    = regexp.MustCompile(`(` + strings.Join(properties, "|") + `):\s*['"]?(#(?:` + hexDigitsExp + `))['"]?`)
	variableRe = regexp.MustCompile(`var\(--(` + strings.Join(properties, "|") + `)-(` + hexDigitsExp + `)\)`)
)

// Properties returns style properties which are recognized by Transform.
func Properties() []string {
	out := make([]string, len(properties))
	copy(out, properties)
	return out
}

// Transform returns source with every recognized color assignment inside
// style={{...}} replaced by var(--property-digits) and, when any such
// reference is present in the result, a comment with :root declarations
// prepended. Input without matches is returned unchanged.
func Transform(source string) string {
	converted := source

	for _, m := range styleRe.FindAllStringSubmatch(source, -1) {
		body := m[1]
		updated := body
		for _, a := range scanAssignments(body) {
			ref := a.Property + ": " + a.Reference()
			updated = strings.Replace(updated, a.Property+`: "`+a.Value+`"`, ref, 1)
			updated = strings.Replace(updated, a.Property+`: '`+a.Value+`'`, ref, 1)
			updated = replaceLiteral(updated, a.Property+":"+a.Value, ref)
		}
		converted = strings.Replace(converted, body, updated, 1)
	}

	decls := declarations(converted)
	if len(decls) == 0 {
		return converted
	}
	return headerOpen + strings.Join(decls, "\n") + headerClose + converted
}

// Format tidies converted code before it is handed back to the user.
func Format(code string) string {
	return strings.TrimSpace(code)
}

// declarations collects unique declaration lines for all variable references
// present in text, in order of first appearance.
func declarations(text string) []string {
	var (
		seen  = make(map[string]struct{})
		lines []string
	)
	for _, m := range variableRe.FindAllStringSubmatch(text, -1) {
		line := "  --" + m[1] + "-" + m[2] + ": #" + m[2] + ";"
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		lines = append(lines, line)
	}
	return lines
}

func isHexDigit(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

// scanAssignments returns color assignments of body in scan order. A literal
// followed by another hex digit (#ffff, #12345, #ffffffff) is not a color.
func scanAssignments(body string) []Assignment {
	matches := colorRe.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Assignment, 0, len(matches))
	for _, m := range matches {
		if end := m[5]; end < len(body) && isHexDigit(body[end]) {
			continue
		}
		out = append(out, Assignment{Property: body[m[2]:m[3]], Value: body[m[4]:m[5]]})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// replaceLiteral replaces first occurrence of unquoted old in s which is not
// continued by another hex digit.
func replaceLiteral(s, old, repl string) string {
	for from := 0; ; {
		i := strings.Index(s[from:], old)
		if i < 0 {
			return s
		}
		i += from
		end := i + len(old)
		if end == len(s) || !isHexDigit(s[end]) {
			return s[:i] + repl + s[end:]
		}
		from = i + 1
	}
}
