package compiler

import (
	"go.uber.org/zap"

	"scriptc/internal/ast"
	"scriptc/internal/bodyc"
	"scriptc/internal/diag"
	"scriptc/internal/logging"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/program"
	"scriptc/internal/symbols"
	"scriptc/internal/trace"
)

// run holds the state of one Compile call. Nothing in it outlives the call.
type run struct {
	c      *Compiler
	prog   *program.Program
	table  *symbols.Table
	policy policy.Policy
	log    *zap.Logger

	bag *diag.Bag
	loc *diag.Locator

	span     *trace.Span // compile span
	passSpan *trace.Span // active pass span

	// unit being visited, its ordinal in prog.Units
	unit    *program.Unit
	unitIdx int

	registry
	interfaces     map[symbols.SymbolID]*model.Interface
	interfaceOrder []symbols.SymbolID
	enums          []symbols.SymbolID
	enumSeen       map[symbols.SymbolID]struct{}

	accum   *accumulator
	inits   initView // valid once the walk is over
	pending []pendingCtor
}

type pendingCtor struct {
	unit    *program.Unit
	unitIdx int
	decl    ast.DeclID
}

func (c *Compiler) newRun(prog *program.Program) *run {
	bag := diag.NewBag(c.opts.MaxDiagnostics)
	return &run{
		c:          c,
		prog:       prog,
		table:      prog.Symbols,
		policy:     c.opts.Policy,
		log:        c.opts.Logger.With(zap.String(logging.FieldProgram, prog.Name)),
		bag:        bag,
		loc:        diag.NewLocator(diag.NewDedupReporter(diag.BagReporter{Bag: bag})),
		registry:   newRegistry(),
		interfaces: make(map[symbols.SymbolID]*model.Interface),
		enumSeen:   make(map[symbols.SymbolID]struct{}),
		accum:      newAccumulator(),
	}
}

// enterUnit makes u the unit whose resolver answers declaration lookups.
func (r *run) enterUnit(u *program.Unit, idx int) {
	r.unit = u
	r.unitIdx = idx
}

func (r *run) methodCompiler() bodyc.MethodCompiler {
	return r.c.opts.Bodies.NewMethodCompiler(bodyc.Env{
		Symbols:  r.table,
		Policy:   r.policy,
		Reporter: r.loc,
	})
}

func (r *run) observe(sym symbols.SymbolID, fn *model.Function, mc bodyc.MethodCompiler) {
	if r.c.opts.Observer != nil {
		r.c.opts.Observer.MethodCompiled(sym, fn, mc)
	}
}

// resolve maps decl to its symbol and checks the symbol kind. Failures are
// internal errors at the current location; the declaration is then skipped.
func (r *run) resolve(id ast.DeclID, decl *ast.Decl, kinds ...symbols.SymbolKind) *symbols.Symbol {
	sym := r.table.Get(r.unit.Resolver.Resolve(id))
	if sym == nil {
		r.loc.Message(diag.IntUnresolvedDecl, decl.Kind, decl.Name)
		return nil
	}
	for _, k := range kinds {
		if sym.Kind == k {
			return sym
		}
	}
	r.loc.Message(diag.IntWrongSymbolKind, decl.Kind, decl.Name, sym.Kind)
	return nil
}

// target describes where a member of b stores its state.
func target(b *model.ClassBuilder, sym *symbols.Symbol) bodyc.Target {
	return bodyc.Target{Static: sym.IsStatic(), Type: b.Name()}
}

// typeParams maps the type parameters of owner through the policy.
func (r *run) typeParams(owner symbols.SymbolID, names []string, ignore bool) []string {
	if ignore || len(names) == 0 {
		return nil
	}
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = r.policy.TypeParameterName(owner, n)
	}
	return out
}
