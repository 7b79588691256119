package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"stylevars/common"
	"stylevars/figma"
	"stylevars/state"
	"stylevars/tokens"
)

func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func destinationName(fname string) string {
	if len(fname) == 0 {
		return "STDOUT"
	}
	return fname
}

// writeDestination writes data to named file or to command output when name
// is empty.
func writeDestination(cmd *cli.Command, fname string, data []byte) error {
	if len(fname) == 0 {
		_, err := stdout(cmd).Write(data)
		return err
	}
	out, err := os.Create(fname)
	if err != nil {
		return fmt.Errorf("unable to create destination file '%s': %w", fname, err)
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func listTokens(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)

	catalog := env.Catalog
	if name := cmd.String("type"); len(name) > 0 {
		typ, err := tokens.ParseType(name)
		if err != nil {
			return fmt.Errorf("unable to list tokens: %w", err)
		}
		catalog = catalog.ByType(typ)
	}
	if cmd.Bool("sort") {
		catalog = catalog.SortedNatural()
	}

	tw := tabwriter.NewWriter(stdout(cmd), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tVARIABLE\tVALUE")
	for _, t := range catalog {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", t.ID, t.Type, t.VariableName(), t.Value)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("unable to list tokens: %w", err)
	}
	env.Log.Debug("Tokens listed", zap.Int("count", len(catalog)))
	return nil
}

func exportTokens(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	format, err := common.ParseExportFmt(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("unknown export format: %w", err)
	}

	var data []byte
	switch format {
	case common.ExportFmtFigma:
		data, err = env.Catalog.ExportJSON()
	case common.ExportFmtYaml:
		data, err = env.Catalog.ExportYAML()
	default:
		data = []byte(env.Catalog.CSS())
	}
	if err != nil {
		return fmt.Errorf("unable to export tokens: %w", err)
	}

	fname := cmd.Args().Get(0)
	if fi, err := os.Stat(fname); err == nil && fi.IsDir() {
		fname = filepath.Join(fname, "tokens"+format.Ext())
	}
	env.Log.Info("Exporting tokens", zap.Stringer("format", format), zap.Int("tokens", len(env.Catalog)), zap.String("file", destinationName(fname)))

	if err := writeDestination(cmd, fname, data); err != nil {
		return fmt.Errorf("unable to export tokens: %w", err)
	}
	return nil
}

func syncTokens(ctx context.Context, cmd *cli.Command) error {
	env := state.EnvFromContext(ctx)
	if cmd.Args().Len() > 1 {
		env.Log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
	}

	fileID := cmd.String("file-id")
	if len(fileID) == 0 {
		fileID = env.Cfg.Figma.FileID
	}

	res, err := figma.NewSyncer(env.Catalog, env.Log).Sync(ctx, fileID, env.Cfg.Figma.AccessToken)
	if err != nil {
		return fmt.Errorf("unable to sync tokens: %w", err)
	}

	fname := cmd.Args().Get(0)
	env.Log.Info("Tokens synchronized", zap.Stringer("sync", res.ID), zap.Int("tokens", len(res.Tokens)), zap.String("file", destinationName(fname)))

	if err := writeDestination(cmd, fname, []byte(res.Tokens.CSS())); err != nil {
		return fmt.Errorf("unable to write synchronized tokens: %w", err)
	}
	return nil
}
