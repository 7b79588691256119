package tokens

import (
	"encoding/json"
	"strings"

	yaml "gopkg.in/yaml.v3"
)

// Export returns catalog as nested object keyed by id segments, leaves hold
// token value and type. This is the layout design tool token plugins import.
//
// Tokens are applied in catalog order. A later token whose id is a prefix of
// an earlier one replaces the whole subtree, and a token whose id extends an
// existing leaf is nested inside that leaf.
func (c Catalog) Export() map[string]any {
	root := make(map[string]any)
	for _, t := range c {
		path := strings.Split(t.ID, ".")
		cur := root
		for i, part := range path {
			if i == len(path)-1 {
				cur[part] = map[string]any{
					"value": t.Value,
					"type":  t.Type.String(),
				}
				break
			}
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[part] = next
			}
			cur = next
		}
	}
	return root
}

// ExportJSON returns indented JSON of Export.
func (c Catalog) ExportJSON() ([]byte, error) {
	return json.MarshalIndent(c.Export(), "", "  ")
}

// ExportYAML returns catalog as YAML list, the same format Load accepts.
func (c Catalog) ExportYAML() ([]byte, error) {
	return yaml.Marshal([]Token(c))
}
