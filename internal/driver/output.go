package driver

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cockroachdb/errors"
	"go.uber.org/multierr"

	"scriptc/internal/modelio"
	"scriptc/internal/program"
)

// Collect expands command line arguments into export paths. A directory
// contributes the exports directly inside it; files are taken as given.
// Duplicates are dropped, first occurrence wins.
func Collect(args []string) ([]string, error) {
	if len(args) == 0 {
		args = []string{"."}
	}
	var out []string
	seen := make(map[string]bool)
	add := func(p string) {
		clean := filepath.Clean(p)
		if !seen[clean] {
			seen[clean] = true
			out = append(out, clean)
		}
	}
	for _, arg := range args {
		st, err := os.Stat(arg)
		if err != nil {
			return nil, errors.Wrapf(err, "input %s", arg)
		}
		if !st.IsDir() {
			add(arg)
			continue
		}
		found, err := program.FindExports(arg)
		if err != nil {
			return nil, err
		}
		if len(found) == 0 {
			return nil, errors.Newf("%s: no %s files", arg, program.ExportExt)
		}
		slices.Sort(found)
		for _, p := range found {
			add(p)
		}
	}
	return out, nil
}

// OutputPath is where WriteOutputs puts the model of r.
func OutputPath(outDir string, r *Result, format modelio.Format) string {
	return filepath.Join(outDir, r.Name()+format.Ext())
}

// WriteOutputs writes the model of every result that compiled without
// errors and returns the written paths. Failed writes do not stop the others.
func WriteOutputs(results []*Result, outDir string, format modelio.Format) ([]string, error) {
	var (
		written []string
		err     error
	)
	for _, r := range results {
		if r == nil || r.Output == nil || r.HasErrors() {
			continue
		}
		path := OutputPath(outDir, r, format)
		if werr := modelio.WriteFile(path, r.Name(), r.Output.Forest, format); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		written = append(written, path)
	}
	return written, err
}

// Dump writes the model of every compiled result to w, one after another.
// Text dumps are separated by a "// program" header line.
func Dump(w io.Writer, results []*Result, format modelio.Format) error {
	for _, r := range results {
		if r == nil || r.Output == nil {
			continue
		}
		if format == modelio.FormatText {
			if _, err := fmt.Fprintf(w, "// program %s\n", r.Name()); err != nil {
				return err
			}
		}
		if err := modelio.Write(w, r.Name(), r.Output.Forest, format); err != nil {
			return errors.Wrapf(err, "dumping %s", r.Name())
		}
	}
	return nil
}
