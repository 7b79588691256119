// Package convert implements "convert" command: it finds component sources
// (single file, directory tree or zip archive), runs inline style rewriting
// on them and writes results out.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylevars/archive"
	"stylevars/convert/inline"
	"stylevars/css"
	"stylevars/state"
)

// stdio is a source name requesting processing of stdin to stdout.
const stdio = "-"

func Run(ctx context.Context, cmd *cli.Command) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named("convert")

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return errors.New("no input source has been specified")
	}
	env.NoDirs, env.Overwrite = cmd.Bool("nodirs"), cmd.Bool("overwrite")
	if env.Stylesheet = cmd.String("stylesheet"); len(env.Stylesheet) > 0 {
		if env.Stylesheet, err = filepath.Abs(env.Stylesheet); err != nil {
			return err
		}
	}

	c := newConverter(env, log)

	if src == stdio {
		if cmd.Args().Len() > 1 {
			log.Warn("Destination is ignored when reading from stdin", zap.Strings("ignoring", cmd.Args().Slice()[1:]))
		}
		in, out := cmd.Root().Reader, cmd.Root().Writer
		if in == nil {
			in = os.Stdin
		}
		if out == nil {
			out = os.Stdout
		}
		if err := c.processStream(ctx, in, out); err != nil {
			return err
		}
		return c.finish()
	}

	if src, err = filepath.Abs(src); err != nil {
		return err
	}
	dst := cmd.Args().Get(1)
	if len(dst) == 0 {
		if dst, err = os.Getwd(); err != nil {
			return fmt.Errorf("unable to get working directory: %w", err)
		}
	}
	if dst, err = filepath.Abs(dst); err != nil {
		return err
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Mailformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	log.Info("Processing starting", zap.String("source", src), zap.String("destination", dst))
	defer func(start time.Time) {
		log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)), zap.Int("files", c.count))
	}(time.Now())

	if err := c.process(ctx, src, dst); err != nil {
		return err
	}
	return c.finish()
}

// converter keeps state of a single convert run.
type converter struct {
	env    *state.LocalEnv
	log    *zap.Logger
	parser *css.Parser

	count int            // sources converted
	vars  []css.Variable // declarations from all sources, first seen order
	seen  map[string]struct{}
	errs  error // per source failures
}

func newConverter(env *state.LocalEnv, log *zap.Logger) *converter {
	return &converter{
		env:    env,
		log:    log,
		parser: css.NewParser(log),
		seen:   make(map[string]struct{}),
	}
}

func (c *converter) fail(err error, fields ...zap.Field) {
	c.log.Error("Unable to process file", append(fields, zap.Error(err))...)
	c.errs = multierr.Append(c.errs, err)
}

// finish merges collected declarations into stylesheet when requested and
// reports accumulated failures.
func (c *converter) finish() error {
	if len(c.vars) > 0 {
		block := css.Block{Selector: css.RootSelector, Variables: c.vars}
		c.env.Rpt.StoreData("declarations.css", []byte(block.String()))
	}
	if len(c.env.Stylesheet) > 0 {
		added, err := mergeStylesheet(c.env.Stylesheet, c.vars, c.log)
		if err != nil {
			c.errs = multierr.Append(c.errs, err)
		} else {
			c.log.Info("Stylesheet updated", zap.String("file", c.env.Stylesheet), zap.Int("added", added))
			c.env.Rpt.Store("stylesheet.css", c.env.Stylesheet)
		}
	}
	if n := len(multierr.Errors(c.errs)); n > 0 {
		return fmt.Errorf("%d source(s) failed: %w", n, c.errs)
	}
	return nil
}

// convertText runs transformer on a single source and remembers produced
// declarations. Returns converted text and number of declarations in it.
func (c *converter) convertText(src string, data []byte) ([]byte, int) {
	text := string(data)

	analysis := inline.Analyze(text)
	out := analysis.Output
	if c.env.Cfg.Converter.Trim {
		out = inline.Format(out)
	}

	for _, v := range declarationVariables(c.parser, analysis.Declarations) {
		if _, ok := c.seen[v.Name]; ok {
			continue
		}
		c.seen[v.Name] = struct{}{}
		c.vars = append(c.vars, v)
	}
	c.count++
	if c.env.Rpt != nil {
		c.env.Rpt.StoreData(fmt.Sprintf("analysis/%04d-%s.txt", c.count, filepath.Base(src)), analysis.Dump(src))
	}

	c.log.Debug("Source converted",
		zap.String("source", src),
		zap.Int("blocks", len(analysis.Blocks)),
		zap.Int("colors", analysis.Assignments()),
		zap.Int("variables", len(analysis.Declarations)))
	return []byte(out), len(analysis.Declarations)
}

func (c *converter) processStream(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read input: %w", err)
	}
	header := data[:min(len(data), headerSize)]
	ok, enc := checkHeader(header)
	if !ok {
		return errors.New("input does not look like text")
	}
	if enc != encUnknown {
		if data, err = io.ReadAll(selectReader(bytes.NewReader(data), enc)); err != nil {
			return fmt.Errorf("unable to decode input: %w", err)
		}
	}
	out, _ := c.convertText(stdio, data)
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}

// process determines the input type (directory, archive, or single file) and
// processes accordingly. Source may point inside an archive, in which case
// path is split on the archive file.
func (c *converter) process(ctx context.Context, src, dst string) error {
	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		if err := ctx.Err(); err != nil {
			return err
		}

		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			return c.processDir(ctx, head, dst)
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := isArchiveFile(head)
		if err != nil {
			// checking format - but cannot open target file
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			// we need to look inside to see if path makes sense
			tail = strings.TrimPrefix(strings.TrimPrefix(src, head), string(filepath.Separator))
			c.processArchive(ctx, head, filepath.ToSlash(tail), "", dst)
			return nil
		}

		if len(tail) != 0 {
			return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}
		source, enc, err := isSourceFile(head, c.env.Cfg.Converter.Extensions)
		if err != nil {
			return fmt.Errorf("unable to check file type: %w", err)
		}
		if !source {
			return fmt.Errorf("input was not recognized as component source (%s)", head)
		}
		c.processFile(ctx, head, filepath.Base(head), enc, dst)
		return nil
	}
	return fmt.Errorf("input source was not found (%s)", src)
}

// processDir walks directory tree finding sources and archives and processes
// them.
func (c *converter) processDir(ctx context.Context, dir, dst string) error {
	before := c.count
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err != nil {
			c.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() && path != dir && path == dst {
			// do not pick up our own results
			return filepath.SkipDir
		}
		if !d.Type().IsRegular() || path == c.env.Stylesheet {
			return nil
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(path, dir), string(filepath.Separator))

		isArchive, err := isArchiveFile(path)
		if err != nil {
			c.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if isArchive {
			c.processArchive(ctx, path, "", filepath.Dir(rel), dst)
			return nil
		}

		source, enc, err := isSourceFile(path, c.env.Cfg.Converter.Extensions)
		if err != nil {
			c.log.Warn("Skipping file", zap.String("file", path), zap.Error(err))
			return nil
		}
		if !source {
			c.log.Debug("Skipping file, not recognized as source or archive", zap.String("file", path))
			return nil
		}
		c.processFile(ctx, path, rel, enc, dst)
		return nil
	})
	if err == nil && c.count == before {
		c.log.Debug("Nothing to process", zap.String("dir", dir))
	}
	return err
}

func (c *converter) processFile(ctx context.Context, path, src string, enc srcEncoding, dst string) {
	f, err := os.Open(path)
	if err != nil {
		c.fail(err, zap.String("file", path))
		return
	}
	defer f.Close()

	if err := c.processSource(ctx, selectReader(f, enc), src, dst); err != nil {
		c.fail(fmt.Errorf("%s: %w", src, err), zap.String("file", path))
	}
}

// processArchive rewrites archive at path into a new one under dst, sources
// under "pathIn" are converted, everything else is copied as is. "pathOut"
// is the archive directory relative to input root.
func (c *converter) processArchive(ctx context.Context, path, pathIn, pathOut, dst string) {
	outDir := dst
	if !c.env.NoDirs {
		outDir = filepath.Join(dst, pathOut)
	}
	outputName := filepath.Join(outDir, filepath.Base(path))

	// rewriting archive in place goes through temporary file next to it
	target := outputName
	if sameFile(path, outputName) {
		if !c.env.Overwrite {
			c.fail(fmt.Errorf("output file already exists: %s", outputName), zap.String("archive", path))
			return
		}
		tmp, err := os.CreateTemp(outDir, "."+filepath.Base(path)+".*")
		if err != nil {
			c.fail(fmt.Errorf("unable to create temporary archive: %w", err), zap.String("archive", path))
			return
		}
		tmp.Close()
		target = tmp.Name()
		defer os.Remove(target)
		c.log.Warn("Overwriting source archive", zap.String("file", outputName))
	} else if err := c.prepareOutput(outputName); err != nil {
		c.fail(err, zap.String("archive", path))
		return
	}

	extensions := c.env.Cfg.Converter.Extensions
	before := c.count
	stats, err := archive.Rewrite(path, target, archive.RewriteOptions{
		Pattern: pathIn,
		Match:   func(name string) bool { return hasSourceExt(name, extensions) },
		FixZip:  c.env.Cfg.Converter.FixZip,
	}, func(name string, data []byte) ([]byte, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ok, enc := checkHeader(data[:min(len(data), headerSize)])
		if !ok {
			c.log.Debug("Skipping file in archive, not recognized as source", zap.String("archive", path), zap.String("file", name))
			return data, nil
		}
		if enc != encUnknown {
			decoded, err := io.ReadAll(selectReader(bytes.NewReader(data), enc))
			if err != nil {
				return nil, err
			}
			data = decoded
		}
		out, _ := c.convertText(name, data)
		return out, nil
	})
	if target != outputName && (err == nil || errors.Is(err, archive.ErrEntries)) {
		if er := os.Rename(target, outputName); er != nil {
			err = multierr.Append(err, fmt.Errorf("unable to replace source archive: %w", er))
		}
	}
	if err != nil {
		c.fail(err, zap.String("archive", path))
	}
	if c.count == before {
		c.log.Debug("Nothing to process", zap.String("archive", path))
	}
	c.log.Info("Archive processed", zap.String("from", path), zap.String("to", outputName),
		zap.Int("rewritten", stats.Rewritten), zap.Int("copied", stats.Copied), zap.Int("failed", stats.Failed))
	c.env.Rpt.Store(fmt.Sprintf("result-%s", filepath.ToSlash(filepath.Join(pathOut, filepath.Base(path)))), outputName)
}

// processSource converts single source. "src" is part of the source path
// (always including file name) relative to the original path. When actual
// file was specified it will be just base file name without a path.
func (c *converter) processSource(ctx context.Context, r io.Reader, src, dst string) (rerr error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	var outputName string
	c.log.Debug("Conversion starting", zap.String("from", src))
	defer func(start time.Time) {
		if r := recover(); r != nil {
			c.log.Error("Conversion ended with panic",
				zap.Any("panic", r), zap.Duration("elapsed", time.Since(start)), zap.String("to", outputName), zap.ByteString("stack", debug.Stack()))
			rerr = fmt.Errorf("conversion panic: %v", r)
		} else if rerr == nil {
			c.log.Info("Conversion completed", zap.Duration("elapsed", time.Since(start)), zap.String("from", src), zap.String("to", outputName))
		}
	}(time.Now())

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("unable to read source: %w", err)
	}
	out, variables := c.convertText(src, data)

	outputName = buildOutputPath(src, dst, variables, c.env)
	if err := c.prepareOutput(outputName); err != nil {
		return err
	}
	if err := os.WriteFile(outputName, out, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	c.env.Rpt.Store(fmt.Sprintf("result-%s", filepath.ToSlash(src)), outputName)
	return nil
}

// sameFile reports whether both names refer to the same existing or
// requested file.
func sameFile(a, b string) bool {
	if filepath.Clean(a) == filepath.Clean(b) {
		return true
	}
	fa, err := os.Stat(a)
	if err != nil {
		return false
	}
	fb, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(fa, fb)
}

// prepareOutput checks if output file already exists and makes sure its
// directory is there.
func (c *converter) prepareOutput(outputName string) error {
	if _, err := os.Stat(outputName); err == nil {
		if !c.env.Overwrite {
			return fmt.Errorf("output file already exists: %s", outputName)
		}
		c.log.Warn("Overwriting existing file", zap.String("file", outputName))
		return os.Remove(outputName)
	} else if !os.IsNotExist(err) {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputName), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}
	return nil
}
