package compiler

import (
	"github.com/cockroachdb/errors"

	"scriptc/internal/ast"
	"scriptc/internal/bodyc"
	"scriptc/internal/diag"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/symbols"
)

// static constructor bodies end up in the static-init list
var staticConstructorSemantics = policy.NormalMethod("$cctor")

// compiled runs compile and reports both failures and missing results.
func (r *run) compiled(what string, mc bodyc.MethodCompiler, sym symbols.SymbolID, compile func(bodyc.MethodCompiler) (*model.Function, error)) (*model.Function, bool) {
	fn, err := compile(mc)
	if err == nil && fn == nil {
		err = errors.New("body compiler returned no function")
	}
	if err != nil {
		r.fail(what, err)
		return nil, false
	}
	r.observe(sym, fn, mc)
	return fn, true
}

// isStaticTarget reports whether a member with sem lands in the static list.
func isStaticTarget(sem policy.MethodSemantics, sym *symbols.Symbol) bool {
	switch sem.Kind {
	case policy.MethodStaticWithThisAsFirstArgument:
		return true
	case policy.MethodNormal, policy.MethodNativeAccessor:
		return sym.IsStatic()
	case policy.MethodInstanceOnFirstArgument, policy.MethodInlineCode, policy.MethodNativeIndexer,
		policy.MethodNativeOperator, policy.MethodNotUsableFromScript:
		return false
	}
	panic(errors.AssertionFailedf("unknown method semantics kind %d", sem.Kind))
}

func (r *run) addMember(b *model.ClassBuilder, owner *symbols.Symbol, sem policy.MethodSemantics, m model.Method) {
	if isStaticTarget(sem, owner) {
		b.AddStaticMethod(m)
	} else {
		b.AddInstanceMethod(m)
	}
}

func (r *run) visitMethod(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolMethod, symbols.SymbolOperator)
	if sym == nil {
		return
	}
	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil || !decl.HasBody() || sym.IsAbstract() {
		return
	}
	sem := r.policy.MethodSemantics(sym.ID)
	static := isStaticTarget(sem, sym)
	if sem.Kind == policy.MethodInlineCode {
		r.loc.Warning(diag.DclInlineCodeBody, sym.FullName)
		return
	}
	if !sem.Generated() {
		return
	}
	fn, ok := r.compiled(sym.FullName, r.methodCompiler(), sym.ID, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileMethod(decl.Body, sym.ID, sem)
	})
	if !ok {
		return
	}
	m := model.Method{
		Kind:       model.NormalMethod,
		Symbol:     sym.ID,
		Name:       sem.Name,
		TypeParams: r.typeParams(sym.ID, sym.TypeParams, sem.IgnoreGenericArguments),
		Func:       fn,
	}
	if static {
		b.AddStaticMethod(m)
	} else {
		b.AddInstanceMethod(m)
	}
}

// accessorKind maps accessor semantics to the member kind: only native
// accessors keep their get/set nature.
func accessorKind(sem policy.MethodSemantics, kind model.MethodKind) model.MethodKind {
	if sem.Kind == policy.MethodNativeAccessor {
		return kind
	}
	return model.NormalMethod
}

// emitAccessor compiles one property or event accessor of owner and adds it
// to b. sym is the accessor symbol; it may be zero for synthesized accessors.
func (r *run) emitAccessor(b *model.ClassBuilder, owner *symbols.Symbol, sym symbols.SymbolID, sem policy.MethodSemantics, kind model.MethodKind, compile func(bodyc.MethodCompiler) (*model.Function, error)) {
	if !sem.Generated() {
		return
	}
	if !sym.IsValid() {
		sym = owner.ID
	}
	fn, ok := r.compiled(owner.FullName, r.methodCompiler(), sym, compile)
	if !ok {
		return
	}
	r.addMember(b, owner, sem, model.Method{
		Kind:   accessorKind(sem, kind),
		Symbol: sym,
		Name:   sem.Name,
		Func:   fn,
	})
}

// writtenAccessor compiles the accessor as written in the source.
func (r *run) writtenAccessor(b *model.ClassBuilder, owner *symbols.Symbol, sym symbols.SymbolID, acc *ast.Accessor, sem policy.MethodSemantics, kind model.MethodKind) {
	if acc == nil || acc.Body == nil {
		return
	}
	defer r.enter(acc.Span)()
	if !sym.IsValid() {
		sym = owner.ID
	}
	r.emitAccessor(b, owner, sym, sem, kind, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileMethod(acc.Body, sym, sem)
	})
}

// addInit routes initializer statements of owner to the static-init list or
// to the instance accumulator.
func (r *run) addInit(b *model.ClassBuilder, owner *symbols.Symbol, stmts []model.Stmt) {
	if len(stmts) == 0 {
		return
	}
	if owner.IsStatic() {
		b.AddStaticInit(stmts...)
		return
	}
	r.accum.add(b.Symbol(), r.unitIdx, stmts)
}

// fieldInit emits the initializer of a storage slot: the compiled init
// expression when there is one, the zero value of typ otherwise.
func (r *run) fieldInit(b *model.ClassBuilder, owner *symbols.Symbol, field string, typ symbols.TypeRef, init *ast.Expr) {
	mc := r.methodCompiler()
	var (
		stmts []model.Stmt
		err   error
	)
	if init != nil {
		stmts, err = mc.CompileFieldInitializer(init.Span, target(b, owner), field, init)
	} else {
		stmts, err = mc.CompileDefaultFieldInitializer(r.loc.Location(), target(b, owner), field, typ)
	}
	if err != nil {
		r.fail(owner.FullName, err)
		return
	}
	r.addInit(b, owner, stmts)
}

func (r *run) visitProperty(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolProperty)
	if sym == nil {
		return
	}
	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil || sym.IsAbstract() {
		return
	}
	sem := r.policy.PropertySemantics(sym.ID)
	switch sem.Kind {
	case policy.PropertyGetAndSetMethods:
		r.getAndSetMethods(b, sym, decl, sem)
	case policy.PropertyField:
		if sem.GenerateAccessors {
			r.getAndSetMethods(b, sym, decl, sem)
			return
		}
		r.fieldInit(b, sym, sem.FieldName, sym.Type, nil)
	case policy.PropertyNotUsableFromScript:
	default:
		panic(errors.AssertionFailedf("unexpected property semantics %d for %s", sem.Kind, sym.FullName))
	}
}

func (r *run) getAndSetMethods(b *model.ClassBuilder, sym *symbols.Symbol, decl *ast.Decl, sem policy.PropertySemantics) {
	if !decl.IsAutoProperty() {
		r.writtenAccessor(b, sym, sym.Getter, decl.Getter, sem.Getter, model.GetAccessor)
		r.writtenAccessor(b, sym, sym.Setter, decl.Setter, sem.Setter, model.SetAccessor)
		return
	}

	field := r.policy.AutoPropertyBackingFieldName(sym.ID)
	if r.policy.ShouldGenerateAutoPropertyBackingField(sym.ID) {
		r.fieldInit(b, sym, field, sym.Type, nil)
	}
	tgt := target(b, sym)
	if decl.Getter != nil {
		r.emitAccessor(b, sym, sym.Getter, sem.Getter, model.GetAccessor, func(mc bodyc.MethodCompiler) (*model.Function, error) {
			return mc.CompileAutoPropertyGetter(sym.ID, tgt, sem.Getter, field)
		})
	}
	if decl.Setter != nil {
		r.emitAccessor(b, sym, sym.Setter, sem.Setter, model.SetAccessor, func(mc bodyc.MethodCompiler) (*model.Function, error) {
			return mc.CompileAutoPropertySetter(sym.ID, tgt, sem.Setter, field)
		})
	}
}

// visitEventVar handles one variable of a field-like event declaration.
func (r *run) visitEventVar(id ast.DeclID) {
	decl := r.unit.Tree.Get(id)
	if decl == nil {
		return
	}
	defer r.enter(decl.Span)()

	sym := r.resolve(id, decl, symbols.SymbolEvent)
	if sym == nil {
		return
	}
	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil || sym.IsAbstract() {
		return
	}
	sem := r.policy.EventSemantics(sym.ID)
	switch sem.Kind {
	case policy.EventAddAndRemoveMethods:
	case policy.EventNotUsableFromScript:
		return
	default:
		panic(errors.AssertionFailedf("unexpected event semantics %d for %s", sem.Kind, sym.FullName))
	}

	field := r.policy.AutoEventBackingFieldName(sym.ID)
	if r.policy.ShouldGenerateAutoEventBackingField(sym.ID) {
		r.fieldInit(b, sym, field, sym.Type, decl.Init)
	}
	tgt := target(b, sym)
	r.emitAccessor(b, sym, sym.Getter, sem.Adder, model.NormalMethod, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileAutoEventAdder(sym.ID, tgt, sem.Adder, field)
	})
	r.emitAccessor(b, sym, sym.Setter, sem.Remover, model.NormalMethod, func(mc bodyc.MethodCompiler) (*model.Function, error) {
		return mc.CompileAutoEventRemover(sym.ID, tgt, sem.Remover, field)
	})
}

func (r *run) visitCustomEvent(id ast.DeclID, decl *ast.Decl) {
	sym := r.resolve(id, decl, symbols.SymbolEvent)
	if sym == nil {
		return
	}
	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil || sym.IsAbstract() {
		return
	}
	sem := r.policy.EventSemantics(sym.ID)
	switch sem.Kind {
	case policy.EventAddAndRemoveMethods:
		r.writtenAccessor(b, sym, sym.Getter, decl.Adder, sem.Adder, model.NormalMethod)
		r.writtenAccessor(b, sym, sym.Setter, decl.Remover, sem.Remover, model.NormalMethod)
	case policy.EventNotUsableFromScript:
	default:
		panic(errors.AssertionFailedf("unexpected event semantics %d for %s", sem.Kind, sym.FullName))
	}
}

func (r *run) visitFieldVar(id ast.DeclID) {
	decl := r.unit.Tree.Get(id)
	if decl == nil {
		return
	}
	defer r.enter(decl.Span)()

	sym := r.resolve(id, decl, symbols.SymbolField)
	if sym == nil {
		return
	}
	b := r.classFor(r.unit.Resolver, sym.Owner)
	if b == nil {
		return
	}
	sem := r.policy.FieldSemantics(sym.ID)
	switch sem.Kind {
	case policy.FieldNormal:
		if sem.GenerateCode {
			r.fieldInit(b, sym, sem.Name, sym.Type, decl.Init)
		}
	case policy.FieldConstant, policy.FieldNullConstant, policy.FieldNotUsableFromScript:
	default:
		panic(errors.AssertionFailedf("unexpected field semantics %d for %s", sem.Kind, sym.FullName))
	}
}
