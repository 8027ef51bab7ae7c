package driver

import (
	"fmt"

	"scriptc/internal/diag"
	"scriptc/internal/observ"
	"scriptc/internal/source"
)

// timingDiagnostic turns the pass timings of one program into an info
// diagnostic, one note per pass.
func timingDiagnostic(program string, rep observ.Report) *diag.Diagnostic {
	d := diag.New(diag.SevInfo, diag.ObsTimings, source.NoSpan,
		fmt.Sprintf("timings (%s): total %.2f ms", program, rep.TotalMS))
	for _, p := range rep.Phases {
		msg := fmt.Sprintf("%s %.3f ms", p.Name, p.DurationMS)
		if p.Note != "" {
			msg += " (" + p.Note + ")"
		}
		d.Notes = append(d.Notes, diag.Note{Span: source.NoSpan, Msg: msg})
	}
	return d
}

// addTimings appends d even when the bag is full: timings are asked for
// explicitly and must not be eaten by --max-diagnostics.
func addTimings(bag *diag.Bag, d *diag.Diagnostic) {
	if bag.Len() < bag.Cap() {
		bag.Add(d)
		return
	}
	one := diag.NewBag(1)
	one.Add(d)
	bag.Merge(one)
}
