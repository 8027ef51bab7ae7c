package compiler

import (
	"scriptc/internal/diag"
	"scriptc/internal/model"
	"scriptc/internal/program"
	"scriptc/internal/symbols"
)

// registry memoizes the target class of every type symbol met during a run.
// A nil entry means the policy does not emit the type.
type registry struct {
	classes map[symbols.SymbolID]*model.ClassBuilder
	order   []symbols.SymbolID // emitted classes, registration order
}

func newRegistry() registry {
	return registry{classes: make(map[symbols.SymbolID]*model.ClassBuilder)}
}

// classFor returns the builder of typ, creating and validating it on first
// use, or nil when typ is not emitted.
func (r *run) classFor(res program.Resolver, typ symbols.SymbolID) *model.ClassBuilder {
	if b, ok := r.classes[typ]; ok {
		return b
	}
	sym := r.table.Get(typ)
	sem := r.policy.TypeSemantics(typ)
	if sym == nil || sym.Kind != symbols.SymbolType || !sem.Emitted() {
		r.classes[typ] = nil
		return nil
	}

	kind := model.KindClass
	if sym.TypeKind == symbols.TypeStruct {
		kind = model.KindStruct
	}
	b := model.NewClassBuilder(typ, sem.Name, kind, r.typeParams(typ, sym.TypeParams, sem.IgnoreGenericArguments))
	r.classes[typ] = b
	r.order = append(r.order, typ)

	r.validateType(res, sym)
	return b
}

// validateType reports base types the policy cannot use and mutable value
// types bound to generic arguments. The class is created regardless.
func (r *run) validateType(res program.Resolver, sym *symbols.Symbol) {
	if sym.TypeKind == symbols.TypeStruct && !r.c.opts.AllowUserDefinedStructs {
		r.loc.MessageAt(sym.Span, diag.DclUserStructNotAllowed, sym.FullName)
	}
	bases := res.AllBaseTypes(sym.ID)
	for _, base := range bases {
		r.checkTypeRef(sym, base, false)
	}
}

func (r *run) checkTypeRef(owner *symbols.Symbol, ref symbols.TypeRef, genericArg bool) {
	if ref.Type.IsValid() {
		if !r.policy.TypeSemantics(ref.Type).Usable() {
			r.loc.MessageAt(owner.Span, diag.DclUnusableBaseType, ref.String(), owner.FullName)
		}
		if genericArg && r.table.IsMutableValueType(ref) {
			r.loc.MessageAt(owner.Span, diag.DclMutableValueTypeArg, ref.String(), owner.FullName)
		}
	}
	for _, arg := range ref.Args {
		r.checkTypeRef(owner, arg, true)
	}
}
