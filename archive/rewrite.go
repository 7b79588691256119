package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	fixzip "github.com/hidez8891/zip"
	"go.uber.org/multierr"
)

// ErrEntries is wrapped by Rewrite errors when target archive was completed
// but some entries failed processing and were copied as is.
var ErrEntries = errors.New("some archive entries were not processed")

// RewriteFunc receives content of a selected entry and returns its new
// content.
type RewriteFunc func(name string, data []byte) ([]byte, error)

// Stats describes what Rewrite did with archive entries.
type Stats struct {
	Rewritten int
	Copied    int
	Failed    int
}

// RewriteOptions controls Rewrite.
type RewriteOptions struct {
	// Only entries with this prefix are offered to Match.
	Pattern string
	// Match selects entries to rewrite, nil selects all files under Pattern.
	Match func(name string) bool
	// FixZip drops data descriptors from copied entries, some readers
	// cannot handle them.
	FixZip bool
}

// Rewrite copies archive src to dst replacing content of selected entries
// with results of fn. Entries which were not selected, were not changed or
// failed processing are copied as is. Errors for failed entries are
// accumulated and returned together wrapping ErrEntries, dst is complete in
// that case. Any other error means dst cannot be used.
func Rewrite(src, dst string, opts RewriteOptions, fn RewriteFunc) (Stats, error) {
	var stats Stats

	r, err := fixzip.OpenReader(src)
	if err != nil {
		return stats, fmt.Errorf("unable to read archive file (%s): %w", src, err)
	}
	defer r.Close()

	out, err := os.Create(dst)
	if err != nil {
		return stats, fmt.Errorf("unable to create target file (%s): %w", dst, err)
	}
	defer out.Close()

	w := fixzip.NewWriter(out)

	selected := func(f *fixzip.File) bool {
		if f.FileInfo().IsDir() || !strings.HasPrefix(f.Name, opts.Pattern) {
			return false
		}
		return opts.Match == nil || opts.Match(f.Name)
	}

	var entryErrs error
	err = walkFiles(src, r.File, func(*fixzip.File) bool { return true }, func(_ string, f *fixzip.File) error {
		if opts.FixZip {
			// unset data descriptor flag.
			f.Flags &= ^fixzip.FlagDataDescriptor
		}
		if !selected(f) {
			stats.Copied++
			return copyEntry(w, f, dst)
		}

		data, err := readEntry(f)
		if err == nil {
			var updated []byte
			if updated, err = fn(f.Name, data); err == nil {
				if bytes.Equal(updated, data) {
					stats.Copied++
					return copyEntry(w, f, dst)
				}
				stats.Rewritten++
				return writeEntry(w, f, updated, dst)
			}
		}
		stats.Failed++
		entryErrs = multierr.Append(entryErrs, fmt.Errorf("%s: %w", f.Name, err))
		return copyEntry(w, f, dst)
	})
	if err != nil {
		return stats, err
	}
	if err := w.Close(); err != nil {
		return stats, fmt.Errorf("unable to finalize target file (%s): %w", dst, err)
	}
	if err := out.Close(); err != nil {
		return stats, fmt.Errorf("unable to finalize target file (%s): %w", dst, err)
	}
	if entryErrs != nil {
		return stats, fmt.Errorf("%w: %w", ErrEntries, entryErrs)
	}
	return stats, nil
}

func readEntry(f *fixzip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func copyEntry(w *fixzip.Writer, f *fixzip.File, to string) error {
	if err := w.CopyFile(f); err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", to, err)
	}
	return nil
}

func writeEntry(w *fixzip.Writer, f *fixzip.File, data []byte, to string) error {
	fh := f.FileHeader
	fh.Flags &= ^fixzip.FlagDataDescriptor
	ew, err := w.CreateHeader(&fh)
	if err == nil {
		_, err = ew.Write(data)
	}
	if err != nil {
		return fmt.Errorf("unable to write target file (%s): %w", to, err)
	}
	return nil
}
