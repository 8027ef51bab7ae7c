package model

import (
	"slices"

	"github.com/cockroachdb/errors"

	"scriptc/internal/symbols"
)

type classData struct {
	symbol       symbols.SymbolID
	name         string
	kind         ClassKind
	typeParams   []string
	static       []Method
	instance     []Method
	named        []NamedConstructor
	unnamed      *Function
	staticInit   []Stmt
	instanceInit []Stmt
}

// ClassBuilder is a target class under construction. It becomes read-only
// through Freeze; any mutation afterwards is a contract violation.
type ClassBuilder struct {
	data   classData
	frozen bool
}

func NewClassBuilder(sym symbols.SymbolID, name string, kind ClassKind, typeParams []string) *ClassBuilder {
	return &ClassBuilder{data: classData{
		symbol:     sym,
		name:       name,
		kind:       kind,
		typeParams: slices.Clone(typeParams),
	}}
}

func (b *ClassBuilder) mutable(op string) {
	if b.frozen {
		panic(errors.AssertionFailedf("%s on frozen class %s", op, b.data.name))
	}
}

func (b *ClassBuilder) Symbol() symbols.SymbolID { return b.data.symbol }
func (b *ClassBuilder) Name() string             { return b.data.name }
func (b *ClassBuilder) Frozen() bool             { return b.frozen }

func (b *ClassBuilder) AddStaticMethod(m Method) {
	b.mutable("AddStaticMethod")
	b.data.static = append(b.data.static, m)
}

func (b *ClassBuilder) AddInstanceMethod(m Method) {
	b.mutable("AddInstanceMethod")
	b.data.instance = append(b.data.instance, m)
}

func (b *ClassBuilder) AddNamedConstructor(c NamedConstructor) {
	b.mutable("AddNamedConstructor")
	b.data.named = append(b.data.named, c)
}

// SetUnnamedConstructor installs fn unless an unnamed constructor is already
// present; it reports whether fn was installed.
func (b *ClassBuilder) SetUnnamedConstructor(fn *Function) bool {
	b.mutable("SetUnnamedConstructor")
	if b.data.unnamed != nil {
		return false
	}
	b.data.unnamed = fn
	return true
}

func (b *ClassBuilder) AddStaticInit(stmts ...Stmt) {
	b.mutable("AddStaticInit")
	b.data.staticInit = append(b.data.staticInit, stmts...)
}

// SetInstanceInit replaces the instance-init statements.
func (b *ClassBuilder) SetInstanceInit(stmts []Stmt) {
	b.mutable("SetInstanceInit")
	b.data.instanceInit = slices.Clone(stmts)
}

// Freeze ends construction and returns the read-only class.
func (b *ClassBuilder) Freeze() *Class {
	b.mutable("Freeze")
	b.frozen = true
	return &Class{data: b.data}
}

// Class is a frozen target class.
type Class struct {
	data classData
}

func (c *Class) TypeSymbol() symbols.SymbolID { return c.data.symbol }
func (c *Class) TypeName() string             { return c.data.name }
func (*Class) isType()                        {}

func (c *Class) Name() string                          { return c.data.name }
func (c *Class) Kind() ClassKind                       { return c.data.kind }
func (c *Class) TypeParams() []string                  { return slices.Clone(c.data.typeParams) }
func (c *Class) StaticMethods() []Method               { return slices.Clone(c.data.static) }
func (c *Class) InstanceMethods() []Method             { return slices.Clone(c.data.instance) }
func (c *Class) NamedConstructors() []NamedConstructor { return slices.Clone(c.data.named) }
func (c *Class) UnnamedConstructor() *Function         { return c.data.unnamed }
func (c *Class) StaticInit() []Stmt                    { return slices.Clone(c.data.staticInit) }
func (c *Class) InstanceInit() []Stmt                  { return slices.Clone(c.data.instanceInit) }

// MemberCount counts methods and constructors of every kind.
func (c *Class) MemberCount() int {
	n := len(c.data.static) + len(c.data.instance) + len(c.data.named)
	if c.data.unnamed != nil {
		n++
	}
	return n
}

// Method finds a static or instance method by generated name.
func (c *Class) Method(name string) (Method, bool) {
	for _, list := range [][]Method{c.data.static, c.data.instance} {
		for _, m := range list {
			if m.Name == name {
				return m, true
			}
		}
	}
	return Method{}, false
}
