package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"scriptc/internal/diag"
	"scriptc/internal/source"
)

const tabWidth = 4

type palette struct {
	err, warn, info, note, code, path, caret, gutter *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		note:   color.New(color.FgBlue, color.Bold),
		code:   color.New(color.Bold),
		path:   color.New(color.Bold),
		caret:  color.New(color.FgGreen, color.Bold),
		gutter: color.New(color.FgBlue),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.note, p.code, p.path, p.caret, p.gutter} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(sev diag.Severity) *color.Color {
	switch sev {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		path, start, end := position(d.Primary, fs, opts.PathMode)
		fmt.Fprintf(w, "%s: %s %s: %s\n",
			p.path.Sprint(locationText(path, start, d.Primary, fs)),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Message)
		writeSnippet(w, fs.Get(d.Primary.File), start, end, opts, p)

		if !opts.ShowNotes && d.Code != diag.ObsTimings {
			continue
		}
		for _, n := range d.Notes {
			npath, nstart, _ := position(n.Span, fs, opts.PathMode)
			if fs.Get(n.Span.File) == nil {
				fmt.Fprintf(w, "  %s %s\n", p.note.Sprint("note:"), n.Msg)
				continue
			}
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), locationText(npath, nstart, n.Span, fs), n.Msg)
		}
	}
	if dropped := bag.Dropped(); dropped > 0 {
		fmt.Fprintf(w, "%s %d more diagnostics were not reported\n", p.note.Sprint("note:"), dropped)
	}
}

func locationText(path string, start source.LineCol, sp source.Span, fs *source.FileSet) string {
	if fs.Get(sp.File) == nil {
		return path
	}
	return fmt.Sprintf("%s:%d:%d", path, start.Line, start.Col)
}

func writeSnippet(w io.Writer, f *source.File, start, end source.LineCol, opts PrettyOpts, p palette) {
	if f == nil || start.Line == 0 {
		return
	}
	first := start.Line
	if opts.Context > 0 {
		if uint32(opts.Context) >= first {
			first = 1
		} else {
			first -= uint32(opts.Context)
		}
	}
	gutterWidth := len(fmt.Sprint(start.Line))
	for ln := first; ln <= start.Line; ln++ {
		line := expandTabs(f.GetLine(ln))
		fmt.Fprintf(w, "%s %s\n", p.gutter.Sprintf("%*d |", gutterWidth, ln), truncate(line, opts.Width))
	}

	raw := f.GetLine(start.Line)
	lead := displayWidth(prefixCols(raw, start.Col))
	var span int
	if end.Line == start.Line && end.Col > start.Col {
		span = displayWidth(prefixCols(raw, end.Col)) - lead
	} else {
		// многострочный span подчёркиваем до конца строки
		span = displayWidth(expandTabs(raw)) - lead
	}
	span = max(span, 1)
	if opts.Width > 0 && lead+span > opts.Width {
		span = max(opts.Width-lead, 1)
	}
	marker := "^" + strings.Repeat("~", span-1)
	fmt.Fprintf(w, "%s %s%s\n", p.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", lead), p.caret.Sprint(marker))
}

// prefixCols returns the text of line before the 1-based byte column col.
func prefixCols(line string, col uint32) string {
	if col <= 1 {
		return ""
	}
	n := int(col - 1)
	if n > len(line) {
		n = len(line)
	}
	return expandTabs(line[:n])
}

func expandTabs(s string) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	w := 0
	for _, r := range s {
		if r == '\t' {
			pad := tabWidth - w%tabWidth
			b.WriteString(strings.Repeat(" ", pad))
			w += pad
			continue
		}
		b.WriteRune(r)
		w += runewidth.RuneWidth(r)
	}
	return b.String()
}

func displayWidth(s string) int {
	return runewidth.StringWidth(s)
}

func truncate(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	return runewidth.Truncate(s, width, "…")
}
