package css

import (
	"fmt"
	"io"
	"strings"
)

// RootSelector is the selector custom properties are declared under by default.
const RootSelector = ":root"

// Variable is a single custom property declaration.
type Variable struct {
	Name     string // property name including leading "--"
	Value    string // raw value, whitespace trimmed
	Selector string // enclosing ruleset selector, empty at top level
}

// String returns declaration text without indentation and trailing newline.
func (v Variable) String() string {
	return v.Name + ": " + v.Value + ";"
}

// Names returns set of variable names declared in vars.
func Names(vars []Variable) map[string]struct{} {
	names := make(map[string]struct{}, len(vars))
	for _, v := range vars {
		names[v.Name] = struct{}{}
	}
	return names
}

// Block is a ruleset consisting only of custom property declarations.
type Block struct {
	Selector  string
	Variables []Variable
}

// WriteTo writes block as CSS text, declarations indented by two spaces.
func (b *Block) WriteTo(w io.Writer) (int64, error) {
	var total int64

	sel := b.Selector
	if sel == "" {
		sel = RootSelector
	}
	n, err := fmt.Fprintf(w, "%s {\n", sel)
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, v := range b.Variables {
		n, err = fmt.Fprintf(w, "  %s\n", v.String())
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	n, err = io.WriteString(w, "}\n")
	total += int64(n)
	return total, err
}

// String returns block as CSS text.
func (b *Block) String() string {
	var sb strings.Builder
	_, _ = b.WriteTo(&sb)
	return sb.String()
}
