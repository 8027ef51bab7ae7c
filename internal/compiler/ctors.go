package compiler

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"scriptc/internal/bodyc"
	"scriptc/internal/diag"
	"scriptc/internal/logging"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/symbols"
)

// constructorPass compiles the instance constructors recorded by the walk,
// in recording order, each with the complete instance-init set of its class.
func (r *run) constructorPass() {
	for _, p := range r.pending {
		r.compileConstructor(p)
	}
}

func (r *run) compileConstructor(p pendingCtor) {
	r.enterUnit(p.unit, p.unitIdx)
	decl := p.unit.Tree.Get(p.decl)
	if decl == nil {
		return
	}
	defer r.contain("constructor " + decl.Name + " in " + p.unit.Path)
	defer r.enter(decl.Span)()

	sym := r.resolve(p.decl, decl, symbols.SymbolConstructor)
	if sym == nil {
		return
	}
	b := r.classFor(p.unit.Resolver, sym.Owner)
	if b == nil {
		return
	}
	sem := r.policy.ConstructorSemantics(sym.ID)
	if !generatesConstructor(sem) {
		return
	}
	init := r.inits.statements(b.Symbol())
	fn, ok := r.compiled(sym.FullName, r.methodCompiler(), sym.ID, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileConstructor(decl, sym.ID, init, sem)
	})
	if ok {
		r.registerConstructor(b, sym, sem, fn)
	}
}

// defaultConstructorPass synthesizes the implicit constructors of every
// emitted class, in registration order.
func (r *run) defaultConstructorPass() {
	n := 0
	for _, typ := range r.order {
		b := r.classes[typ]
		for _, ctor := range r.table.ImplicitConstructors(typ) {
			if r.synthesize(b, ctor) {
				n++
			}
		}
	}
	r.log.Debug("default constructors", zap.Int(logging.FieldCount, n))
}

func (r *run) synthesize(b *model.ClassBuilder, ctor symbols.SymbolID) (ok bool) {
	sym := r.table.Get(ctor)
	if sym == nil {
		return false
	}
	defer r.contain("default constructor " + sym.FullName)
	defer r.enter(sym.Span)()

	sem := r.policy.ConstructorSemantics(ctor)
	if !generatesConstructor(sem) {
		return false
	}
	init := r.inits.statements(b.Symbol())
	fn, ok := r.compiled(sym.FullName, r.methodCompiler(), ctor, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileDefaultConstructor(ctor, init, sem)
	})
	if ok {
		r.registerConstructor(b, sym, sem, fn)
	}
	return ok
}

// generatesConstructor reports whether a body is compiled for sem. Inline
// code, JSON and unusable constructors never have one; a kind outside the
// closed set is a broken policy.
func generatesConstructor(sem policy.ConstructorSemantics) bool {
	switch sem.Kind {
	case policy.CtorUnnamed, policy.CtorNamed, policy.CtorStaticMethod:
		return sem.GenerateCode
	case policy.CtorInlineCode, policy.CtorJson, policy.CtorNotUsableFromScript:
		return false
	}
	panic(errors.AssertionFailedf("unknown constructor semantics kind %d", sem.Kind))
}

func (r *run) registerConstructor(b *model.ClassBuilder, sym *symbols.Symbol, sem policy.ConstructorSemantics, fn *model.Function) {
	switch sem.Kind {
	case policy.CtorUnnamed:
		if !b.SetUnnamedConstructor(fn) {
			owner := r.table.Get(sym.Owner)
			name := b.Name()
			if owner != nil {
				name = owner.FullName
			}
			r.loc.Message(diag.DclDuplicateUnnamedCtor, name)
		}
	case policy.CtorNamed:
		b.AddNamedConstructor(model.NamedConstructor{Name: sem.Name, Func: fn})
	case policy.CtorStaticMethod:
		b.AddStaticMethod(model.Method{
			Kind:   model.NormalMethod,
			Symbol: sym.ID,
			Name:   sem.Name,
			Func:   fn,
		})
	default:
		panic(errors.AssertionFailedf("constructor kind %s has no body", sem.Kind))
	}
}
