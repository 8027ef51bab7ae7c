// Package policy decides how front-end members are represented in the target
// model. The lowering stage consults a Policy for every declaration it emits.
package policy

import "scriptc/internal/symbols"

// Policy is consulted by the lowering stage. Implementations may memoize;
// they are not required to be safe for concurrent use.
type Policy interface {
	TypeSemantics(typ symbols.SymbolID) TypeSemantics
	MethodSemantics(method symbols.SymbolID) MethodSemantics
	ConstructorSemantics(ctor symbols.SymbolID) ConstructorSemantics
	PropertySemantics(prop symbols.SymbolID) PropertySemantics
	EventSemantics(evt symbols.SymbolID) EventSemantics
	FieldSemantics(field symbols.SymbolID) FieldSemantics

	AutoPropertyBackingFieldName(prop symbols.SymbolID) string
	ShouldGenerateAutoPropertyBackingField(prop symbols.SymbolID) bool
	AutoEventBackingFieldName(evt symbols.SymbolID) string
	ShouldGenerateAutoEventBackingField(evt symbols.SymbolID) bool

	// TypeParameterName maps a type parameter of owner to its target name.
	TypeParameterName(owner symbols.SymbolID, name string) string
}
