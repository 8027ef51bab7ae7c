// Package model is the target object model produced by declaration lowering:
// classes, interfaces and enums built from methods, constructors and
// initializer statements.
package model

import (
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

// Stmt is a compiled target statement. Its text is opaque to this package.
//
// Unit is set on instance-init statements only: the ordinal of the source
// unit that contributed them. Partial classes collect these from several
// units and their relative order across units is not defined, so a later
// stage that cares can regroup by Unit.
type Stmt struct {
	Text string      `json:"text" msgpack:"text"`
	Unit int         `json:"unit,omitempty" msgpack:"unit,omitempty"`
	Span source.Span `json:"-" msgpack:"-"`
}

// Function is a compiled body.
type Function struct {
	Params []string `json:"params,omitempty" msgpack:"params,omitempty"`
	Body   []Stmt   `json:"body" msgpack:"body"`
}

type MethodKind uint8

const (
	NormalMethod MethodKind = iota
	GetAccessor
	SetAccessor
)

func (k MethodKind) String() string {
	switch k {
	case GetAccessor:
		return "get"
	case SetAccessor:
		return "set"
	default:
		return "method"
	}
}

// Method is a static or instance member of a target class.
type Method struct {
	Kind       MethodKind
	Symbol     symbols.SymbolID
	Name       string
	TypeParams []string
	Func       *Function
}

type NamedConstructor struct {
	Name string
	Func *Function
}

type ClassKind uint8

const (
	KindClass ClassKind = iota
	KindStruct
)

func (k ClassKind) String() string {
	if k == KindStruct {
		return "struct"
	}
	return "class"
}

// Type is implemented by *Class, *Interface and *Enum.
type Type interface {
	TypeSymbol() symbols.SymbolID
	TypeName() string
	isType()
}

type Interface struct {
	Symbol symbols.SymbolID
	Name   string
}

func (i *Interface) TypeSymbol() symbols.SymbolID { return i.Symbol }
func (i *Interface) TypeName() string             { return i.Name }
func (*Interface) isType()                        {}

type Enum struct {
	Symbol symbols.SymbolID
	Name   string
}

func (e *Enum) TypeSymbol() symbols.SymbolID { return e.Symbol }
func (e *Enum) TypeName() string             { return e.Name }
func (*Enum) isType()                        {}

// Forest is the result of lowering one program.
type Forest struct {
	Classes    []*Class
	Enums      []*Enum
	Interfaces []*Interface
}

// Types returns classes, then enums, then interfaces.
func (f *Forest) Types() []Type {
	if f == nil {
		return nil
	}
	out := make([]Type, 0, len(f.Classes)+len(f.Enums)+len(f.Interfaces))
	for _, c := range f.Classes {
		out = append(out, c)
	}
	for _, e := range f.Enums {
		out = append(out, e)
	}
	for _, i := range f.Interfaces {
		out = append(out, i)
	}
	return out
}

// Class finds a class by name.
func (f *Forest) Class(name string) *Class {
	if f == nil {
		return nil
	}
	for _, c := range f.Classes {
		if c.Name() == name {
			return c
		}
	}
	return nil
}
