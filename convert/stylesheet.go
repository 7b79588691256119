package convert

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"go.uber.org/zap"

	"stylevars/css"
)

// declarationVariables turns declaration lines produced by transformer into
// variables. Lines are scanned as a stylesheet so whatever css scanner
// accepts in a real file is accepted here.
func declarationVariables(p *css.Parser, decls []string) []css.Variable {
	if len(decls) == 0 {
		return nil
	}
	text := css.RootSelector + " {\n" + strings.Join(decls, "\n") + "\n}\n"
	return p.Variables([]byte(text))
}

// mergeStylesheet appends variables which are not yet declared in the
// stylesheet at path as a new :root block. Missing file is created. Returns
// number of variables added.
func mergeStylesheet(path string, vars []css.Variable, log *zap.Logger) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, fmt.Errorf("unable to read stylesheet: %w", err)
	}

	declared := css.NewParser(log).Declared(data, path)

	block := css.Block{Selector: css.RootSelector}
	for _, v := range vars {
		if _, ok := declared[v.Name]; ok {
			log.Debug("Variable already declared", zap.String("name", v.Name))
			continue
		}
		declared[v.Name] = struct{}{}
		v.Selector = css.RootSelector
		block.Variables = append(block.Variables, v)
	}
	if len(block.Variables) == 0 {
		return 0, nil
	}

	buf := new(bytes.Buffer)
	if len(data) > 0 {
		if !bytes.HasSuffix(data, []byte("\n")) {
			buf.WriteByte('\n')
		}
		buf.WriteByte('\n')
	}
	if _, err := block.WriteTo(buf); err != nil {
		return 0, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("unable to open stylesheet: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(buf.Bytes()); err != nil {
		return 0, fmt.Errorf("unable to update stylesheet: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("unable to update stylesheet: %w", err)
	}
	return len(block.Variables), nil
}
