package policy

import (
	"fmt"

	"scriptc/internal/symbols"
)

// Options tune the Default policy.
type Options struct {
	// GenerateBackingFields emits backing fields for auto properties and events.
	GenerateBackingFields bool
	// NativeAccessors maps property accessors to native get/set accessors.
	NativeAccessors        bool
	LowerCamelCase         bool
	IgnoreGenericArguments bool
}

// DefaultOptions are used when no configuration is given.
func DefaultOptions() Options {
	return Options{GenerateBackingFields: true}
}

// Default is the attribute-driven policy. It reads symbols.Symbol.Attrs and
// memoizes every decision. Not safe for concurrent use.
type Default struct {
	table *symbols.Table
	opts  Options

	types   map[symbols.SymbolID]TypeSemantics
	methods map[symbols.SymbolID]MethodSemantics
	ctors   map[symbols.SymbolID]ConstructorSemantics
	// overload-resolved method names, filled per owning type
	names map[symbols.SymbolID]string
	named map[symbols.SymbolID]bool // owner types whose names are computed
}

var _ Policy = (*Default)(nil)

func NewDefault(table *symbols.Table, opts Options) *Default {
	return &Default{
		table:   table,
		opts:    opts,
		types:   make(map[symbols.SymbolID]TypeSemantics),
		methods: make(map[symbols.SymbolID]MethodSemantics),
		ctors:   make(map[symbols.SymbolID]ConstructorSemantics),
		names:   make(map[symbols.SymbolID]string),
		named:   make(map[symbols.SymbolID]bool),
	}
}

func (p *Default) TypeSemantics(typ symbols.SymbolID) TypeSemantics {
	if s, ok := p.types[typ]; ok {
		return s
	}
	s := p.typeSemantics(typ)
	p.types[typ] = s
	return s
}

func (p *Default) typeSemantics(typ symbols.SymbolID) TypeSemantics {
	sym := p.table.Get(typ)
	if sym == nil || sym.Kind != symbols.SymbolType {
		return TypeSemantics{Kind: TypeNotUsableFromScript}
	}
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return TypeSemantics{Kind: TypeNotUsableFromScript}
	}
	s := TypeSemantics{
		Kind:         TypeNormal,
		Name:         p.typeName(sym),
		GenerateCode: true,
	}
	_, ignore := sym.Attr(AttrIgnoreGenerics)
	s.IgnoreGenericArguments = ignore || p.opts.IgnoreGenericArguments
	if _, imported := sym.Attr(AttrImported); imported || sym.Has(symbols.FlagExternal) {
		s.GenerateCode = false
	}
	if sym.TypeKind == symbols.TypeDelegate {
		s.GenerateCode = false
	}
	return s
}

func (p *Default) typeName(sym *symbols.Symbol) string {
	if name, ok := sym.Attr(AttrScriptName); ok && name != "" {
		return normalizeName(name, false)
	}
	name := normalizeName(sym.Name, false)
	if owner := p.table.Get(sym.Owner); owner != nil {
		return p.typeName(owner) + "$" + name
	}
	return name
}

func (p *Default) MethodSemantics(method symbols.SymbolID) MethodSemantics {
	if s, ok := p.methods[method]; ok {
		return s
	}
	s := p.methodSemantics(method)
	p.methods[method] = s
	return s
}

func (p *Default) methodSemantics(method symbols.SymbolID) MethodSemantics {
	sym := p.table.Get(method)
	if sym == nil {
		return MethodSemantics{Kind: MethodNotUsableFromScript}
	}
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return MethodSemantics{Kind: MethodNotUsableFromScript}
	}
	_, ignore := sym.Attr(AttrIgnoreGenerics)
	ignore = ignore || p.opts.IgnoreGenericArguments
	if code, ok := sym.Attr(AttrInlineCode); ok {
		return MethodSemantics{Kind: MethodInlineCode, Name: sym.Name, InlineCode: code, IgnoreGenericArguments: ignore}
	}

	if sym.Has(symbols.FlagAccessor) && isPropertyAccessor(sym.Name) {
		if _, native := sym.Attr(AttrNativeAccessor); native || p.opts.NativeAccessors {
			base := stripAccessorPrefix(sym.Name)
			return MethodSemantics{Kind: MethodNativeAccessor, Name: normalizeName(base, p.opts.LowerCamelCase), GenerateCode: true}
		}
	}

	s := NormalMethod(p.methodName(sym))
	s.IgnoreGenericArguments = ignore
	if _, ok := sym.Attr(AttrStaticWithThis); ok {
		s.Kind = MethodStaticWithThisAsFirstArgument
	}
	return s
}

// methodName returns the overload-resolved target name of a method.
func (p *Default) methodName(sym *symbols.Symbol) string {
	if name, ok := sym.Attr(AttrScriptName); ok && name != "" {
		return normalizeName(name, false)
	}
	if !p.named[sym.Owner] {
		p.nameOverloads(sym.Owner)
	}
	if name, ok := p.names[sym.ID]; ok {
		return name
	}
	return normalizeName(sym.Name, p.opts.LowerCamelCase)
}

// nameOverloads assigns `name`, `name$2`, `name$3`... to same-named methods of
// owner in declaration order. Methods with an explicit ScriptName take no part.
func (p *Default) nameOverloads(owner symbols.SymbolID) {
	p.named[owner] = true
	sym := p.table.Get(owner)
	if sym == nil {
		return
	}
	counts := make(map[string]int)
	for _, m := range sym.Members {
		ms := p.table.Get(m)
		if ms == nil || (ms.Kind != symbols.SymbolMethod && ms.Kind != symbols.SymbolOperator) {
			continue
		}
		if name, ok := ms.Attr(AttrScriptName); ok && name != "" {
			continue
		}
		base := normalizeName(ms.Name, p.opts.LowerCamelCase)
		counts[base]++
		if n := counts[base]; n > 1 {
			p.names[m] = fmt.Sprintf("%s$%d", base, n)
		} else {
			p.names[m] = base
		}
	}
}

func (p *Default) ConstructorSemantics(ctor symbols.SymbolID) ConstructorSemantics {
	if s, ok := p.ctors[ctor]; ok {
		return s
	}
	sym := p.table.Get(ctor)
	if sym == nil {
		return ConstructorSemantics{Kind: CtorNotUsableFromScript}
	}
	p.assignConstructors(sym.Owner)
	if s, ok := p.ctors[ctor]; ok {
		return s
	}
	// static constructors are not members of the constructor set
	return ConstructorSemantics{Kind: CtorUnnamed, GenerateCode: true}
}

// assignConstructors decides every instance constructor of owner at once:
// attribute-driven kinds first, then the first parameterless (or the first)
// remaining constructor is unnamed and the others become $ctor1, $ctor2...
func (p *Default) assignConstructors(owner symbols.SymbolID) {
	var rest []*symbols.Symbol
	for _, id := range p.table.Constructors(owner) {
		sym := p.table.Get(id)
		if s, ok := p.explicitConstructor(sym); ok {
			p.ctors[id] = s
			continue
		}
		rest = append(rest, sym)
	}
	if len(rest) == 0 {
		return
	}
	unnamed := rest[0]
	for _, c := range rest {
		if len(c.Params) == 0 {
			unnamed = c
			break
		}
	}
	n := 0
	for _, c := range rest {
		if c == unnamed {
			p.ctors[c.ID] = ConstructorSemantics{Kind: CtorUnnamed, GenerateCode: true}
			continue
		}
		n++
		p.ctors[c.ID] = ConstructorSemantics{Kind: CtorNamed, Name: fmt.Sprintf("$ctor%d", n), GenerateCode: true}
	}
}

func (p *Default) explicitConstructor(sym *symbols.Symbol) (ConstructorSemantics, bool) {
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return ConstructorSemantics{Kind: CtorNotUsableFromScript}, true
	}
	if code, ok := sym.Attr(AttrInlineCode); ok {
		return ConstructorSemantics{Kind: CtorInlineCode, InlineCode: code}, true
	}
	if _, ok := sym.Attr(AttrJson); ok {
		return ConstructorSemantics{Kind: CtorJson}, true
	}
	name, hasName := sym.Attr(AttrScriptName)
	if _, ok := sym.Attr(AttrStaticFactory); ok {
		if name == "" {
			name = "create"
		}
		return ConstructorSemantics{Kind: CtorStaticMethod, Name: normalizeName(name, false), GenerateCode: true}, true
	}
	if hasName {
		if name == "" {
			return ConstructorSemantics{Kind: CtorUnnamed, GenerateCode: true}, true
		}
		return ConstructorSemantics{Kind: CtorNamed, Name: normalizeName(name, false), GenerateCode: true}, true
	}
	return ConstructorSemantics{}, false
}

func (p *Default) PropertySemantics(prop symbols.SymbolID) PropertySemantics {
	sym := p.table.Get(prop)
	if sym == nil {
		return PropertySemantics{Kind: PropertyNotUsableFromScript}
	}
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return PropertySemantics{Kind: PropertyNotUsableFromScript}
	}
	if v, ok := sym.Attr(AttrIntrinsicProperty); ok {
		s := PropertySemantics{
			Kind:              PropertyField,
			FieldName:         normalizeName(sym.Name, p.opts.LowerCamelCase),
			GenerateAccessors: v == "accessors",
		}
		if s.GenerateAccessors {
			s.Getter, s.Setter = p.accessorPair(sym)
		}
		return s
	}
	s := PropertySemantics{Kind: PropertyGetAndSetMethods}
	s.Getter, s.Setter = p.accessorPair(sym)
	return s
}

func (p *Default) accessorPair(sym *symbols.Symbol) (MethodSemantics, MethodSemantics) {
	var get, set MethodSemantics
	if sym.Getter.IsValid() {
		get = p.MethodSemantics(sym.Getter)
	}
	if sym.Setter.IsValid() {
		set = p.MethodSemantics(sym.Setter)
	}
	return get, set
}

func (p *Default) EventSemantics(evt symbols.SymbolID) EventSemantics {
	sym := p.table.Get(evt)
	if sym == nil {
		return EventSemantics{Kind: EventNotUsableFromScript}
	}
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return EventSemantics{Kind: EventNotUsableFromScript}
	}
	s := EventSemantics{Kind: EventAddAndRemoveMethods}
	s.Adder, s.Remover = p.accessorPair(sym)
	return s
}

func (p *Default) FieldSemantics(field symbols.SymbolID) FieldSemantics {
	sym := p.table.Get(field)
	if sym == nil {
		return FieldSemantics{Kind: FieldNotUsableFromScript}
	}
	if _, ok := sym.Attr(AttrNonScriptable); ok {
		return FieldSemantics{Kind: FieldNotUsableFromScript}
	}
	name := normalizeName(sym.Name, p.opts.LowerCamelCase)
	if n, ok := sym.Attr(AttrScriptName); ok && n != "" {
		name = normalizeName(n, false)
	}
	if sym.Has(symbols.FlagConst) {
		if sym.Value == "null" {
			return FieldSemantics{Kind: FieldNullConstant, Name: name}
		}
		return FieldSemantics{Kind: FieldConstant, Name: name, Value: sym.Value}
	}
	return FieldSemantics{Kind: FieldNormal, Name: name, GenerateCode: true}
}

func (p *Default) AutoPropertyBackingFieldName(prop symbols.SymbolID) string {
	return p.backingFieldName(prop)
}

func (p *Default) ShouldGenerateAutoPropertyBackingField(prop symbols.SymbolID) bool {
	return p.shouldGenerateBackingField(prop)
}

func (p *Default) AutoEventBackingFieldName(evt symbols.SymbolID) string {
	return p.backingFieldName(evt)
}

func (p *Default) ShouldGenerateAutoEventBackingField(evt symbols.SymbolID) bool {
	return p.shouldGenerateBackingField(evt)
}

func (p *Default) backingFieldName(member symbols.SymbolID) string {
	sym := p.table.Get(member)
	if sym == nil {
		return ""
	}
	return "$" + normalizeName(sym.Name, p.opts.LowerCamelCase)
}

func (p *Default) shouldGenerateBackingField(member symbols.SymbolID) bool {
	sym := p.table.Get(member)
	if sym == nil || !p.opts.GenerateBackingFields {
		return false
	}
	_, suppressed := sym.Attr(AttrNoBackingField)
	return !suppressed
}

func (p *Default) TypeParameterName(_ symbols.SymbolID, name string) string {
	return normalizeName(name, false)
}
