package diagfmt

import (
	"path/filepath"
	"strings"

	"scriptc/internal/source"
)

// autoPathLimit is the longest path PathModeAuto prints unshortened.
const autoPathLimit = 48

const unknownPath = "<unknown>"

func formatPath(f *source.File, fs *source.FileSet, mode PathMode) string {
	if f == nil {
		return unknownPath
	}
	switch mode {
	case PathModeAbsolute:
		if filepath.IsAbs(f.Path) {
			return f.Path
		}
		if abs, err := filepath.Abs(filepath.Join(fs.BaseDir(), f.Path)); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathModeRelative:
		return f.RelPath(fs.BaseDir())
	case PathModeBasename:
		return filepath.Base(f.Path)
	default:
		p := f.RelPath(fs.BaseDir())
		if len(p) > autoPathLimit && !strings.HasPrefix(p, ".") {
			return filepath.Base(p)
		}
		return p
	}
}

// position renders "path:line:col" for sp, or just the path for spans
// outside any file.
func position(sp source.Span, fs *source.FileSet, mode PathMode) (string, source.LineCol, source.LineCol) {
	f := fs.Get(sp.File)
	if f == nil {
		return unknownPath, source.LineCol{}, source.LineCol{}
	}
	start, end := fs.Resolve(sp)
	return formatPath(f, fs, mode), start, end
}
