package compiler

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"scriptc/internal/ast"
	"scriptc/internal/logging"
	"scriptc/internal/model"
	"scriptc/internal/program"
	"scriptc/internal/symbols"
	"scriptc/internal/trace"
)

// walk visits every unit once. Instance constructors are only recorded here;
// they need the complete instance-init set of their class.
func (r *run) walk() {
	for i, u := range r.prog.Units {
		r.walkUnit(i, u)
	}
	r.inits = r.accum.seal()
	r.log.Debug("walk done",
		zap.Int(logging.FieldCount, len(r.order)),
		zap.Int("pending_ctors", len(r.pending)),
	)
}

func (r *run) walkUnit(idx int, u *program.Unit) {
	span := r.passSpan.Child(r.c.opts.Tracer, trace.ScopeUnit, u.Path)
	defer span.End("")
	defer r.contain("unit " + u.Path)
	r.enterUnit(u, idx)
	if u.Tree == nil {
		return
	}
	for _, id := range u.Tree.Roots {
		r.visit(id)
	}
}

func (r *run) visit(id ast.DeclID) {
	decl := r.unit.Tree.Get(id)
	if decl == nil {
		return
	}
	defer r.enter(decl.Span)()

	switch decl.Kind {
	case ast.DeclClass, ast.DeclStruct:
		r.visitClass(id, decl)
	case ast.DeclInterface:
		r.visitInterface(id, decl)
	case ast.DeclEnum:
		r.visitEnum(id, decl)
	case ast.DeclDelegate:
		// no target representation
	case ast.DeclMethod, ast.DeclOperator, ast.DeclConversion:
		r.visitMethod(id, decl)
	case ast.DeclConstructor:
		r.visitConstructor(id, decl)
	case ast.DeclProperty, ast.DeclIndexer:
		r.visitProperty(id, decl)
	case ast.DeclEvent:
		for _, v := range decl.Vars {
			r.visitEventVar(v)
		}
	case ast.DeclCustomEvent:
		r.visitCustomEvent(id, decl)
	case ast.DeclField:
		for _, v := range decl.Vars {
			r.visitFieldVar(v)
		}
	default:
		panic(errors.AssertionFailedf("unexpected declaration kind %s", decl.Kind))
	}
}

func (r *run) visitClass(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolType)
	if sym == nil {
		return
	}
	span := r.passSpan.Child(r.c.opts.Tracer, trace.ScopeDecl, sym.FullName)
	defer span.End("")

	r.classFor(r.unit.Resolver, sym.ID)
	// nested types may be emitted even when their container is not
	for _, m := range decl.Members {
		r.visit(m)
	}
}

func (r *run) visitInterface(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolType)
	if sym == nil {
		return
	}
	if _, ok := r.interfaces[sym.ID]; ok {
		return
	}
	sem := r.policy.TypeSemantics(sym.ID)
	if !sem.Emitted() {
		return
	}
	r.interfaces[sym.ID] = &model.Interface{Symbol: sym.ID, Name: sem.Name}
	r.interfaceOrder = append(r.interfaceOrder, sym.ID)
}

func (r *run) visitEnum(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolType)
	if sym == nil {
		return
	}
	if _, ok := r.enumSeen[sym.ID]; ok {
		return
	}
	r.enumSeen[sym.ID] = struct{}{}
	r.enums = append(r.enums, sym.ID)
}

func (r *run) visitConstructor(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolConstructor)
	if sym == nil {
		return
	}
	if !sym.IsStatic() {
		r.pending = append(r.pending, pendingCtor{unit: r.unit, unitIdx: r.unitIdx, decl: id})
		return
	}

	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil || !decl.HasBody() {
		return
	}
	mc := r.methodCompiler()
	fn, err := mc.CompileMethod(decl.Body, sym.ID, staticConstructorSemantics)
	if err != nil {
		r.fail(sym.FullName, err)
		return
	}
	r.observe(sym.ID, fn, mc)
	b.AddStaticInit(fn.Body...)
}
