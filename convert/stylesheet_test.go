package convert

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"stylevars/convert/inline"
	"stylevars/css"
)

func TestDeclarationVariables(t *testing.T) {
	p := css.NewParser(zap.NewNop())

	analysis := inline.Analyze(`<a style={{color: "#333", fill: '#ABCDEF'}}/>`)
	vars := declarationVariables(p, analysis.Declarations)
	if len(vars) != 2 {
		t.Fatalf("expected 2 variables, got %+v", vars)
	}
	if vars[0].Name != "--color-333" || vars[0].Value != "#333" {
		t.Errorf("unexpected first variable %+v", vars[0])
	}
	if vars[1].Name != "--fill-ABCDEF" || vars[1].Value != "#ABCDEF" {
		t.Errorf("unexpected second variable %+v", vars[1])
	}
	if declarationVariables(p, nil) != nil {
		t.Error("no declarations should produce no variables")
	}
}

func TestMergeStylesheet(t *testing.T) {
	vars := []css.Variable{
		{Name: "--color-333", Value: "#333"},
		{Name: "--fill-FFF", Value: "#FFF"},
		{Name: "--stroke-000", Value: "#000"},
	}

	t.Run("new file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vars.css")
		added, err := mergeStylesheet(path, vars, zap.NewNop())
		if err != nil {
			t.Fatalf("mergeStylesheet() error = %v", err)
		}
		if added != 3 {
			t.Errorf("added = %d, want 3", added)
		}
		data, _ := os.ReadFile(path)
		want := ":root {\n  --color-333: #333;\n  --fill-FFF: #FFF;\n  --stroke-000: #000;\n}\n"
		if string(data) != want {
			t.Errorf("stylesheet =\n%s\nwant\n%s", data, want)
		}
	})

	t.Run("skips declared", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vars.css")
		existing := "body { margin: 0 }\n.dark {\n  --fill-FFF: #000;\n}"
		if err := os.WriteFile(path, []byte(existing), 0644); err != nil {
			t.Fatal(err)
		}
		added, err := mergeStylesheet(path, vars, zap.NewNop())
		if err != nil {
			t.Fatalf("mergeStylesheet() error = %v", err)
		}
		if added != 2 {
			t.Errorf("added = %d, want 2", added)
		}
		data, _ := os.ReadFile(path)
		text := string(data)
		if !strings.HasPrefix(text, existing+"\n\n:root {\n") {
			t.Errorf("existing content was not preserved:\n%s", text)
		}
		if strings.Count(text, "--fill-FFF") != 1 {
			t.Errorf("declared variable repeated:\n%s", text)
		}

		// second merge adds nothing
		added, err = mergeStylesheet(path, vars, zap.NewNop())
		if err != nil || added != 0 {
			t.Errorf("second merge = %d, %v", added, err)
		}
	})

	t.Run("nothing to add", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "vars.css")
		added, err := mergeStylesheet(path, nil, zap.NewNop())
		if err != nil || added != 0 {
			t.Errorf("mergeStylesheet() = %d, %v", added, err)
		}
		if _, err := os.Stat(path); !os.IsNotExist(err) {
			t.Error("stylesheet should not be created when nothing is added")
		}
	})
}
