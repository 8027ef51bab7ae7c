// Package compiler lowers a resolved program into the target object model.
//
// One Compile call walks every declaration of every unit once, then runs the
// deferred constructor pass and the default constructor synthesis, and finally
// freezes the classes it built. Member representation is decided by a
// policy.Policy; executable bodies are delegated to a bodyc.Factory.
package compiler

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"scriptc/internal/bodyc"
	"scriptc/internal/diag"
	"scriptc/internal/logging"
	"scriptc/internal/model"
	"scriptc/internal/observ"
	"scriptc/internal/policy"
	"scriptc/internal/program"
	"scriptc/internal/symbols"
	"scriptc/internal/trace"
)

// Observer is notified once per compiled method, accessor and constructor body.
type Observer interface {
	MethodCompiled(sym symbols.SymbolID, fn *model.Function, mc bodyc.MethodCompiler)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(sym symbols.SymbolID, fn *model.Function, mc bodyc.MethodCompiler)

func (f ObserverFunc) MethodCompiled(sym symbols.SymbolID, fn *model.Function, mc bodyc.MethodCompiler) {
	f(sym, fn, mc)
}

// Options configure a Compiler. Policy and Bodies are required.
type Options struct {
	Policy policy.Policy
	Bodies bodyc.Factory

	// AllowUserDefinedStructs disables the "unsupported user-defined value
	// type" diagnostic.
	AllowUserDefinedStructs bool
	// MaxDiagnostics caps the result bag; 0 means unlimited.
	MaxDiagnostics int

	Observer Observer
	Logger   *zap.Logger
	Tracer   trace.Tracer
	Timer    *observ.Timer
}

// Result is what one Compile call produced.
type Result struct {
	Program     string
	Forest      *model.Forest
	Diagnostics *diag.Bag
}

// HasErrors reports whether compilation reported any error.
func (r *Result) HasErrors() bool {
	return r != nil && r.Diagnostics.HasErrors()
}

// Compiler lowers programs. A Compiler must not run two Compile calls at the
// same time; separate Compilers are independent.
type Compiler struct {
	opts    Options
	running atomic.Bool
}

// New creates a Compiler.
func New(opts Options) *Compiler {
	opts.Logger = logging.OrNop(opts.Logger)
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	return &Compiler{opts: opts}
}

// Compile lowers prog. Problems in the program are reported as diagnostics
// in the result; the returned error is reserved for misuse of the Compiler.
//
// ctx only carries the parent trace span; compilation is not cancellable.
func (c *Compiler) Compile(ctx context.Context, prog *program.Program) (*Result, error) {
	switch {
	case prog == nil:
		return nil, errors.New("compile: nil program")
	case prog.Symbols == nil:
		return nil, errors.Newf("compile %s: program has no symbol table", prog.Name)
	case c.opts.Policy == nil:
		return nil, errors.New("compile: no semantics policy configured")
	case c.opts.Bodies == nil:
		return nil, errors.New("compile: no body compiler configured")
	}
	if !c.running.CompareAndSwap(false, true) {
		return nil, errors.AssertionFailedf("compiler is already running a Compile call")
	}
	defer c.running.Store(false)

	r := c.newRun(prog)
	span := trace.Begin(c.opts.Tracer, trace.ScopeDriver, "compile "+prog.Name, trace.CurrentSpan(ctx))
	r.span = span

	r.pass("walk", r.walk)
	r.pass("ctors", r.constructorPass)
	r.pass("default-ctors", r.defaultConstructorPass)
	var forest *model.Forest
	r.pass("finalize", func() { forest = r.finalize() })

	span.AttrInt("classes", len(forest.Classes)).
		AttrInt("errors", r.loc.ErrorCount()).
		End("")
	r.log.Debug("compiled",
		zap.Int(logging.FieldCount, len(forest.Classes)),
		zap.Int(logging.FieldErrors, r.loc.ErrorCount()),
	)
	return &Result{
		Program:     prog.Name,
		Forest:      forest,
		Diagnostics: r.bag,
	}, nil
}

// pass runs fn as a named, traced and timed pass.
func (r *run) pass(name string, fn func()) {
	done := r.c.opts.Timer.Track(r.prog.Name + "/" + name)
	span := r.span.Child(r.c.opts.Tracer, trace.ScopePass, name)
	prev := r.passSpan
	r.passSpan = span
	errsBefore := r.loc.ErrorCount()

	fn()

	r.passSpan = prev
	newErrs := r.loc.ErrorCount() - errsBefore
	span.AttrInt("errors", newErrs).End("")
	done(fmt.Sprintf("%d errors", newErrs))
	r.log.Debug("pass done", zap.String(logging.FieldPass, name), zap.Int(logging.FieldErrors, newErrs))
}
