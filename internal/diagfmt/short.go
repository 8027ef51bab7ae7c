package diagfmt

import (
	"fmt"
	"io"

	"scriptc/internal/diag"
	"scriptc/internal/source"
)

// Short prints one line per diagnostic, the way editors parse compiler
// output. Notes and source snippets are omitted.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		path, start, _ := position(d.Primary, fs, mode)
		fmt.Fprintf(w, "%s: %s %s: %s\n", locationText(path, start, d.Primary, fs), d.Severity, d.Code.ID(), d.Message)
	}
}
