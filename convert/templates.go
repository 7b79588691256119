package convert

import (
	"bytes"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"stylevars/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context   string
	Name      string // source base name without extension
	Ext       string // source extension including dot
	Dir       string // source directory relative to input root, slash separated
	Variables int    // number of custom properties declared in converted text
}

func buildValues(name config.TemplateFieldName, src string, variables int) Values {
	src = filepath.ToSlash(src)
	base := path.Base(src)
	dir := path.Dir(src)
	if dir == "." {
		dir = ""
	}
	return Values{
		Context:   string(name),
		Name:      strings.TrimSuffix(base, path.Ext(base)),
		Ext:       path.Ext(base),
		Dir:       dir,
		Variables: variables,
	}
}

func expandTemplate(name config.TemplateFieldName, field, src string, variables int) (string, error) {
	tmpl, err := template.New(string(name)).Funcs(sprig.FuncMap()).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, buildValues(name, src, variables)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
