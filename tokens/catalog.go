package tokens

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	yaml "gopkg.in/yaml.v3"

	"stylevars/css"
)

//go:embed default.yaml
var defaultCatalog []byte

// Catalog is an ordered list of design tokens. Order is significant and
// preserved by all operations except SortedNatural.
type Catalog []Token

// Default returns built-in catalog.
func Default() Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		// embedded data is checked by tests
		panic(fmt.Sprintf("invalid embedded token catalog: %v", err))
	}
	return c
}

// Load reads catalog from YAML file.
func Load(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read token catalog: %w", err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load token catalog (%s): %w", path, err)
	}
	return c, nil
}

// Parse decodes YAML list of tokens, fills in missing names and validates the
// result.
func Parse(data []byte) (Catalog, error) {
	var c Catalog

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode token catalog: %w", err)
	}

	for i := range c {
		if c[i].Name == "" {
			c[i].Name = nameFromID(c[i].ID)
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c Catalog) validate() (err error) {
	seen := make(map[string]struct{}, len(c))
	for i, t := range c {
		if t.ID == "" {
			err = multierr.Append(err, fmt.Errorf("token %d: empty id", i))
			continue
		}
		if _, ok := seen[t.ID]; ok {
			err = multierr.Append(err, fmt.Errorf("token %q: duplicate id", t.ID))
		}
		seen[t.ID] = struct{}{}
		if t.Value == "" {
			err = multierr.Append(err, fmt.Errorf("token %q: empty value", t.ID))
		}
		if !t.Type.IsValid() {
			err = multierr.Append(err, fmt.Errorf("token %q: %q is %w", t.ID, t.Type, ErrInvalidType))
		}
	}
	return err
}

// Get returns token with given id.
func (c Catalog) Get(id string) (Token, bool) {
	idx := slices.IndexFunc(c, func(t Token) bool { return t.ID == id })
	if idx < 0 {
		return Token{}, false
	}
	return c[idx], true
}

// ByType returns tokens of requested type in catalog order.
func (c Catalog) ByType(typ Type) Catalog {
	var out Catalog
	for _, t := range c {
		if t.Type == typ {
			out = append(out, t)
		}
	}
	return out
}

// IDs returns token ids in catalog order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for _, t := range c {
		ids = append(ids, t.ID)
	}
	return ids
}

// SortedNatural returns copy of the catalog ordered by id so that
// "spacing.2" comes before "spacing.10".
func (c Catalog) SortedNatural() Catalog {
	out := slices.Clone(c)
	sort.SliceStable(out, func(i, j int) bool {
		return natural.Less(out[i].ID, out[j].ID)
	})
	return out
}

// Variables returns catalog as list of CSS custom properties.
func (c Catalog) Variables() []css.Variable {
	vars := make([]css.Variable, 0, len(c))
	for _, t := range c {
		vars = append(vars, css.Variable{Name: t.VariableName(), Value: t.Value, Selector: css.RootSelector})
	}
	return vars
}

// CSS renders catalog as :root block of custom properties.
func (c Catalog) CSS() string {
	b := css.Block{Selector: css.RootSelector, Variables: c.Variables()}
	return b.String()
}

var hslRe = regexp.MustCompile(`hsl\(([^)]+)\)`)

// HSLComponents returns arguments of hsl() color function or value itself if
// it is not an hsl() color.
func HSLComponents(value string) string {
	if m := hslRe.FindStringSubmatch(value); m != nil {
		return m[1]
	}
	return value
}

// nameFromID makes human readable name out of token id skipping leading
// group segment: "color.primary.foreground" -> "Primary Foreground".
func nameFromID(id string) string {
	parts := strings.FieldsFunc(id, func(r rune) bool { return r == '.' || r == '-' || r == '_' })
	if len(parts) > 1 {
		parts = parts[1:]
	}
	return cases.Title(language.English).String(strings.Join(parts, " "))
}
