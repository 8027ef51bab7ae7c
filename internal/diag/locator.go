package diag

import "scriptc/internal/source"

// Locator is the error reporter of the declaration passes. It owns the
// "current location": Message and InternalError attach it to what they report,
// and so does Report when a collaborator passes an empty span.
//
// The location is only changed through At, whose restore func must run on every
// path out of the scope:
//
//	defer loc.At(decl.Span)()
type Locator struct {
	next   Reporter
	cur    source.Span
	errors int
}

// NewLocator wraps next. A nil next discards diagnostics but still counts them.
func NewLocator(next Reporter) *Locator {
	if next == nil {
		next = NopReporter{}
	}
	return &Locator{next: next}
}

// Location returns the current location.
func (l *Locator) Location() source.Span {
	return l.cur
}

// At makes sp current and returns the func restoring the previous location.
func (l *Locator) At(sp source.Span) (restore func()) {
	prev := l.cur
	l.cur = sp
	return func() { l.cur = prev }
}

// Message reports code as an error at the current location.
func (l *Locator) Message(code Code, args ...any) {
	l.Report(code, SevError, l.cur, code.Sprintf(args...), nil)
}

// Warning reports code as a warning at the current location.
func (l *Locator) Warning(code Code, args ...any) {
	l.Report(code, SevWarning, l.cur, code.Sprintf(args...), nil)
}

// MessageAt reports code at sp and restores the current location afterwards,
// even when the underlying reporter panics.
func (l *Locator) MessageAt(sp source.Span, code Code, args ...any) {
	defer l.At(sp)()
	l.Message(code, args...)
}

// InternalError reports an unexpected fault at the current location.
func (l *Locator) InternalError(err error) {
	if err == nil {
		return
	}
	l.Report(IntError, SevError, l.cur, IntError.Sprintf(err.Error()), nil)
}

// Report implements Reporter so body compilers can share the location.
func (l *Locator) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note) {
	if primary == source.NoSpan {
		primary = l.cur
	}
	if sev.IsError() {
		l.errors++
	}
	l.next.Report(code, sev, primary, msg, notes)
}

// ErrorCount reports how many error diagnostics went through the locator.
func (l *Locator) ErrorCount() int {
	return l.errors
}
