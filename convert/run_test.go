package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"stylevars/config"
	"stylevars/state"
)

const convertedComponent = `/*
CSS Variables to add to your stylesheet:
:root {
  --color-FF0000: #FF0000;
}
*/

export const Button = () => (
  <button style={{color: var(--color-FF0000), padding: 4}}>Click</button>
);
`

// setupTestEnv creates a test environment with proper context and logger
func setupTestEnv(t *testing.T) (context.Context, *state.LocalEnv) {
	logger := zaptest.NewLogger(t, zaptest.WrapOptions(zap.AddCaller(), zap.AddCallerSkip(1)))
	cfg, err := config.LoadConfiguration("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	ctx := state.ContextWithEnv(context.Background())
	env := state.EnvFromContext(ctx)
	env.Log = logger
	env.Cfg = cfg
	return ctx, env
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestProcess_NonExistentPath(t *testing.T) {
	ctx, env := setupTestEnv(t)
	c := newConverter(env, env.Log)

	err := c.process(ctx, filepath.Join(t.TempDir(), "missing", "Button.jsx"), t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "input source was not found") {
		t.Errorf("expected not found error, got %v", err)
	}
}

func TestProcess_CancelledContext(t *testing.T) {
	ctx, env := setupTestEnv(t)
	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()

	tmpDir := t.TempDir()
	c := newConverter(env, env.Log)
	if err := c.process(cancelCtx, tmpDir, tmpDir); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled error, got %v", err)
	}
}

func TestProcess_SingleFile(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "Button.jsx")
	writeFile(t, src, sampleComponent)

	c := newConverter(env, env.Log)
	if err := c.process(ctx, src, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := c.finish(); err != nil {
		t.Fatalf("finish() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dstDir, "Button.jsx")); got != convertedComponent {
		t.Errorf("output =\n%s\nwant\n%s", got, convertedComponent)
	}
	if c.count != 1 || len(c.vars) != 1 || c.vars[0].Name != "--color-FF0000" {
		t.Errorf("unexpected collected state: count %d, vars %+v", c.count, c.vars)
	}
}

func TestProcess_SingleFileErrors(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir := t.TempDir()

	t.Run("not a source", func(t *testing.T) {
		src := filepath.Join(srcDir, "notes.txt")
		writeFile(t, src, "text")
		err := newConverter(env, env.Log).process(ctx, src, t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "not recognized") {
			t.Errorf("expected recognition error, got %v", err)
		}
	})

	t.Run("file with tail", func(t *testing.T) {
		src := filepath.Join(srcDir, "Button.jsx")
		writeFile(t, src, sampleComponent)
		err := newConverter(env, env.Log).process(ctx, filepath.Join(src, "inner"), t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "input source was not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})

	t.Run("directory with tail", func(t *testing.T) {
		err := newConverter(env, env.Log).process(ctx, filepath.Join(srcDir, "missing.jsx"), t.TempDir())
		if err == nil || !strings.Contains(err.Error(), "input source was not found") {
			t.Errorf("expected not found error, got %v", err)
		}
	})
}

func TestProcess_Overwrite(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "Button.jsx")
	writeFile(t, src, sampleComponent)
	writeFile(t, filepath.Join(dstDir, "Button.jsx"), "old")

	c := newConverter(env, env.Log)
	if err := c.process(ctx, src, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	err := c.finish()
	if err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected already exists error, got %v", err)
	}
	if got := readFile(t, filepath.Join(dstDir, "Button.jsx")); got != "old" {
		t.Errorf("existing file was modified: %q", got)
	}

	env.Overwrite = true
	c = newConverter(env, env.Log)
	if err := c.process(ctx, src, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := c.finish(); err != nil {
		t.Fatalf("finish() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dstDir, "Button.jsx")); got != convertedComponent {
		t.Errorf("file was not overwritten: %q", got)
	}
}

func TestProcess_Directory(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()

	writeFile(t, filepath.Join(srcDir, "Button.jsx"), sampleComponent)
	writeFile(t, filepath.Join(srcDir, "cards", "Card.tsx"), `<div style={{backgroundColor: "#fff"}}/>`)
	writeFile(t, filepath.Join(srcDir, "cards", "plain.ts"), "export const x = 1;\n")
	writeFile(t, filepath.Join(srcDir, "README.md"), "readme")
	writeFile(t, filepath.Join(srcDir, "logo.js"), string([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0}))

	c := newConverter(env, env.Log)
	if err := c.process(ctx, srcDir, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := c.finish(); err != nil {
		t.Fatalf("finish() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dstDir, "Button.jsx")); got != convertedComponent {
		t.Errorf("Button.jsx =\n%s", got)
	}
	card := readFile(t, filepath.Join(dstDir, "cards", "Card.tsx"))
	if !strings.Contains(card, "backgroundColor: var(--backgroundColor-fff)") {
		t.Errorf("Card.tsx was not converted:\n%s", card)
	}
	if got := readFile(t, filepath.Join(dstDir, "cards", "plain.ts")); got != "export const x = 1;\n" {
		t.Errorf("plain.ts should pass through, got %q", got)
	}
	for _, name := range []string{"README.md", "logo.js"} {
		if _, err := os.Stat(filepath.Join(dstDir, name)); !os.IsNotExist(err) {
			t.Errorf("%s should not be written", name)
		}
	}
	if c.count != 3 {
		t.Errorf("count = %d, want 3", c.count)
	}
}

func TestProcess_DirectoryNoDirsAndTrim(t *testing.T) {
	ctx, env := setupTestEnv(t)
	env.NoDirs = true
	env.Cfg.Converter.Trim = true
	srcDir, dstDir := t.TempDir(), t.TempDir()

	writeFile(t, filepath.Join(srcDir, "a", "b", "Deep.jsx"), "\n\n<p style={{stroke: '#000'}}/>\n\n")

	c := newConverter(env, env.Log)
	if err := c.process(ctx, srcDir, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	got := readFile(t, filepath.Join(dstDir, "Deep.jsx"))
	if !strings.HasPrefix(got, "/*") || !strings.HasSuffix(got, "/>") {
		t.Errorf("output was not trimmed: %q", got)
	}
}

func TestProcess_Archive(t *testing.T) {
	ctx, env := setupTestEnv(t)
	arc := filepath.Join(t.TempDir(), "components.zip")
	writeTestZip(t, arc, map[string]string{
		"src/Button.jsx":   sampleComponent,
		"src/readme.md":    "see #FF0000",
		"other/Legacy.jsx": `<i style={{fill: "#123456"}}/>`,
	})

	tests := []struct {
		name        string
		src         string
		wantLegacy  string
		wantButton  string
		wantVarsLen int
	}{
		{
			name:        "whole archive",
			src:         arc,
			wantButton:  convertedComponent,
			wantLegacy:  "var(--fill-123456)",
			wantVarsLen: 2,
		},
		{
			name:        "path inside archive",
			src:         filepath.Join(arc, "src"),
			wantButton:  convertedComponent,
			wantLegacy:  `fill: "#123456"`,
			wantVarsLen: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out")
			c := newConverter(env, env.Log)
			if err := c.process(ctx, tt.src, out); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			if err := c.finish(); err != nil {
				t.Fatalf("finish() error = %v", err)
			}
			if len(c.vars) != tt.wantVarsLen {
				t.Errorf("vars = %+v", c.vars)
			}

			files := readZipEntries(t, filepath.Join(out, "components.zip"))
			if files["src/Button.jsx"] != tt.wantButton {
				t.Errorf("Button.jsx =\n%s", files["src/Button.jsx"])
			}
			if files["src/readme.md"] != "see #FF0000" {
				t.Errorf("readme.md should be copied as is, got %q", files["src/readme.md"])
			}
			if !strings.Contains(files["other/Legacy.jsx"], tt.wantLegacy) {
				t.Errorf("Legacy.jsx = %q, want it to contain %q", files["other/Legacy.jsx"], tt.wantLegacy)
			}
		})
	}
}

func readZipEntries(t *testing.T, path string) map[string]string {
	t.Helper()
	r, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer r.Close()

	out := make(map[string]string)
	for _, f := range r.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open entry %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read entry %s: %v", f.Name, err)
		}
		out[f.Name] = string(data)
	}
	return out
}

func TestProcessStream(t *testing.T) {
	ctx, env := setupTestEnv(t)

	for _, enc := range []srcEncoding{encUnknown, encUTF8, encUTF16LittleEndian, encUTF32BigEndian} {
		t.Run(string(rune('0'+enc)), func(t *testing.T) {
			var out bytes.Buffer
			c := newConverter(env, env.Log)
			in := bytes.NewReader(encodeSample(t, []byte(sampleComponent), enc))
			if err := c.processStream(ctx, in, &out); err != nil {
				t.Fatalf("processStream() error = %v", err)
			}
			if out.String() != convertedComponent {
				t.Errorf("output =\n%s", out.String())
			}
		})
	}

	t.Run("binary input", func(t *testing.T) {
		c := newConverter(env, env.Log)
		err := c.processStream(ctx, bytes.NewReader([]byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}), io.Discard)
		if err == nil {
			t.Error("expected error for binary input")
		}
	})
}

func TestFinish_AggregatesErrors(t *testing.T) {
	_, env := setupTestEnv(t)
	c := newConverter(env, env.Log)

	first, second := errors.New("first"), errors.New("second")
	c.fail(first)
	c.fail(second)

	err := c.finish()
	if !errors.Is(err, first) || !errors.Is(err, second) {
		t.Fatalf("finish() error = %v", err)
	}
	if !strings.HasPrefix(err.Error(), "2 source(s) failed") {
		t.Errorf("unexpected message %q", err.Error())
	}
	if len(multierr.Errors(c.errs)) != 2 {
		t.Errorf("expected 2 collected errors")
	}
}

func newTestCommand(in io.Reader, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:   "convert",
		Reader: in,
		Writer: out,
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "nodirs"},
			&cli.BoolFlag{Name: "overwrite"},
			&cli.StringFlag{Name: "stylesheet"},
		},
		Action: Run,
	}
}

func TestRun(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(srcDir, "nested", "Button.jsx"), sampleComponent)
	writeFile(t, filepath.Join(srcDir, "Icon.jsx"), `<svg style={{fill: '#FF0000', stroke: "#0F0"}}/>`)
	stylesheet := filepath.Join(t.TempDir(), "theme.css")
	writeFile(t, stylesheet, ":root {\n  --color-FF0000: #FF0000;\n}\n")

	cmd := newTestCommand(nil, io.Discard)
	if err := cmd.Run(ctx, []string{"convert", "--nodirs", "--stylesheet", stylesheet, srcDir, dstDir}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := readFile(t, filepath.Join(dstDir, "Button.jsx")); got != convertedComponent {
		t.Errorf("Button.jsx =\n%s", got)
	}
	css := readFile(t, stylesheet)
	if strings.Count(css, "--color-FF0000") != 1 {
		t.Errorf("declared variable repeated:\n%s", css)
	}
	for _, name := range []string{"--fill-FF0000: #FF0000;", "--stroke-0F0: #0F0;"} {
		if !strings.Contains(css, name) {
			t.Errorf("stylesheet misses %s:\n%s", name, css)
		}
	}
}

func TestRun_Stdin(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	var out bytes.Buffer

	cmd := newTestCommand(strings.NewReader(sampleComponent), &out)
	if err := cmd.Run(ctx, []string{"convert", "-"}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if out.String() != convertedComponent {
		t.Errorf("output =\n%s", out.String())
	}
}

func TestRun_NoSource(t *testing.T) {
	ctx, _ := setupTestEnv(t)
	cmd := newTestCommand(nil, io.Discard)
	if err := cmd.Run(ctx, []string{"convert"}); err == nil {
		t.Error("expected error without source")
	}
}

func TestProcess_DebugReport(t *testing.T) {
	ctx, env := setupTestEnv(t)
	srcDir, dstDir := t.TempDir(), t.TempDir()
	src := filepath.Join(srcDir, "Button.jsx")
	writeFile(t, src, sampleComponent)

	env.Cfg.Reporting.Destination = filepath.Join(t.TempDir(), "report.zip")
	rpt, err := env.Cfg.Reporting.Prepare()
	if err != nil {
		t.Fatalf("prepare report: %v", err)
	}
	env.Rpt = rpt

	c := newConverter(env, env.Log)
	if err := c.process(ctx, src, dstDir); err != nil {
		t.Fatalf("process() error = %v", err)
	}
	if err := c.finish(); err != nil {
		t.Fatalf("finish() error = %v", err)
	}
	if err := rpt.Close(); err != nil {
		t.Fatalf("close report: %v", err)
	}

	entries := readZipEntries(t, env.Cfg.Reporting.Destination)
	dump, ok := entries["analysis/0001-Button.jsx.txt"]
	if !ok {
		t.Fatalf("analysis dump missing from report, entries: %d", len(entries))
	}
	if !strings.Contains(dump, "color #FF0000 -> var(--color-FF0000)") {
		t.Errorf("unexpected analysis dump:\n%s", dump)
	}
}

func TestProcess_ArchiveInPlace(t *testing.T) {
	entries := map[string]string{
		"src/Button.jsx": sampleComponent,
		"src/readme.md":  "see #FF0000",
	}

	tests := []struct {
		name      string
		overwrite bool
		fromDir   bool
		wantErr   bool
	}{
		{name: "archive without overwrite", wantErr: true},
		{name: "archive with overwrite", overwrite: true},
		{name: "directory into itself with overwrite", overwrite: true, fromDir: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, env := setupTestEnv(t)
			env.Overwrite = tt.overwrite

			dir := t.TempDir()
			arc := filepath.Join(dir, "comps.zip")
			writeTestZip(t, arc, entries)

			src := arc
			if tt.fromDir {
				src = dir
			}
			c := newConverter(env, env.Log)
			if err := c.process(ctx, src, dir); err != nil {
				t.Fatalf("process() error = %v", err)
			}
			err := c.finish()
			if tt.wantErr {
				if err == nil || !strings.Contains(err.Error(), "1 source(s) failed") {
					t.Errorf("expected failure, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("finish() error = %v", err)
			}

			// source archive must survive in any case
			files := readZipEntries(t, arc)
			want := entries["src/Button.jsx"]
			if !tt.wantErr {
				want = convertedComponent
			}
			if files["src/Button.jsx"] != want {
				t.Errorf("Button.jsx =\n%s\nwant\n%s", files["src/Button.jsx"], want)
			}
			if files["src/readme.md"] != "see #FF0000" {
				t.Errorf("readme.md = %q", files["src/readme.md"])
			}

			// no temporary archives left behind
			list, err := os.ReadDir(dir)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) != 1 {
				names := make([]string, 0, len(list))
				for _, e := range list {
					names = append(names, e.Name())
				}
				t.Errorf("unexpected files in %s: %v", dir, names)
			}
		})
	}
}

func TestSameFile(t *testing.T) {
	dir := t.TempDir()
	name := filepath.Join(dir, "a.zip")
	writeFile(t, name, "x")

	if !sameFile(name, filepath.Join(dir, ".", "a.zip")) {
		t.Error("cleaned names should be the same file")
	}
	if sameFile(name, filepath.Join(dir, "b.zip")) {
		t.Error("missing file is not the same file")
	}
}
