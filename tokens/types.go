// Package tokens keeps the design-token catalog: an ordered read-only list of
// named values (colors, spacing, typography, ...) which can be rendered as
// CSS custom properties or exported for design tools.
package tokens

import "strings"

//go:generate go tool go-enum --marshal --names

// Kind of design token.
// ENUM(color, spacing, typography, shadow, radius, animation)
type Type string

// Token is a single design token.
type Token struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Value       string `yaml:"value" json:"value"`
	Type        Type   `yaml:"type" json:"type"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// VariableName returns CSS custom property name for the token: id with dots
// replaced by dashes, "color.primary.foreground" becomes
// "--color-primary-foreground".
func (t Token) VariableName() string {
	return "--" + strings.ReplaceAll(t.ID, ".", "-")
}
