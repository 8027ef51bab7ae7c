package compiler

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"scriptc/internal/logging"
	"scriptc/internal/source"
	"scriptc/internal/trace"
)

// fault carries a recovered panic out of the declaration it happened in.
type fault struct {
	at    source.Span
	cause any
}

// enter makes span the current location until the returned func runs:
//
//	defer r.enter(decl.Span)()
//
// A panic passing through is tagged with span, so the innermost declaration
// is the one blamed when it is contained further up.
func (r *run) enter(span source.Span) func() {
	restore := r.loc.At(span)
	return func() {
		restore()
		if p := recover(); p != nil {
			if _, ok := p.(*fault); !ok {
				p = &fault{at: span, cause: p}
			}
			panic(p)
		}
	}
}

// contain turns a recovered panic into an internal error at the failing
// declaration. Assertion failures are contract violations and panic again.
// Must be deferred directly.
func (r *run) contain(what string) {
	p := recover()
	if p == nil {
		return
	}
	at := r.loc.Location()
	cause := p
	if f, ok := p.(*fault); ok {
		at, cause = f.at, f.cause
	}
	err, isErr := cause.(error)
	if isErr && errors.HasAssertionFailure(err) {
		panic(err)
	}
	if !isErr {
		err = errors.Newf("%v", cause)
	}
	err = errors.Wrapf(err, "%s", what)

	defer r.loc.At(at)()
	r.loc.InternalError(err)
	r.log.Warn("contained fault", zap.String(logging.FieldComponent, what), zap.Error(err))
	trace.Point(r.c.opts.Tracer, trace.ScopeDecl, "fault", what, r.passSpan.ID())
}

// fail reports an error returned by a body compiler at the current location.
func (r *run) fail(what string, err error) {
	r.loc.InternalError(errors.Wrapf(err, "%s", what))
	r.log.Warn("body compilation failed", zap.String(logging.FieldDecl, what), zap.Error(err))
}
