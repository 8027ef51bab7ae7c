package ast

import "scriptc/internal/source"

// DeclKind is the closed set of declaration shapes the lowering stage visits.
type DeclKind uint8

const (
	DeclInvalid DeclKind = iota
	DeclClass
	DeclStruct
	DeclInterface
	DeclEnum
	DeclDelegate
	DeclMethod
	DeclOperator
	DeclConversion
	DeclConstructor
	DeclProperty
	DeclIndexer
	// DeclEvent is a field-like event: one declaration, one or more variables.
	DeclEvent
	// DeclCustomEvent has explicit add/remove accessors.
	DeclCustomEvent
	DeclField
	// DeclVariable is one declarator of a field or field-like event.
	DeclVariable
)

var declKindNames = [...]string{
	DeclInvalid:     "invalid",
	DeclClass:       "class",
	DeclStruct:      "struct",
	DeclInterface:   "interface",
	DeclEnum:        "enum",
	DeclDelegate:    "delegate",
	DeclMethod:      "method",
	DeclOperator:    "operator",
	DeclConversion:  "conversion",
	DeclConstructor: "constructor",
	DeclProperty:    "property",
	DeclIndexer:     "indexer",
	DeclEvent:       "event",
	DeclCustomEvent: "custom-event",
	DeclField:       "field",
	DeclVariable:    "variable",
}

func (k DeclKind) String() string {
	if int(k) < len(declKindNames) {
		return declKindNames[k]
	}
	return "invalid"
}

// ParseDeclKind maps the spelling used in program exports to a DeclKind.
func ParseDeclKind(s string) (DeclKind, bool) {
	for k, name := range declKindNames {
		if k != int(DeclInvalid) && name == s {
			return DeclKind(k), true
		}
	}
	return DeclInvalid, false
}

// IsType reports whether the declaration introduces a type.
func (k DeclKind) IsType() bool {
	return k >= DeclClass && k <= DeclDelegate
}

// Stmt is an already type-checked statement. Its text is opaque to this stage.
type Stmt struct {
	Span source.Span
	Text string
}

type Expr struct {
	Span source.Span
	Text string
}

// Block is a written body.
type Block struct {
	Span  source.Span
	Stmts []Stmt
}

// Accessor is a property or event accessor. Body == nil means an auto accessor.
type Accessor struct {
	Span source.Span
	Body *Block
}

type InitializerKind uint8

const (
	InitBase InitializerKind = iota
	InitThis
)

// CtorInitializer is the `: base(...)` or `: this(...)` clause of a constructor.
type CtorInitializer struct {
	Kind InitializerKind
	Span source.Span
	Args []Expr
}

type Decl struct {
	Kind    DeclKind
	Name    string
	Span    source.Span
	Members []DeclID // type members, nested types included

	Body *Block // method, operator, conversion, constructor

	Getter  *Accessor
	Setter  *Accessor
	Adder   *Accessor
	Remover *Accessor

	Vars  []DeclID // field and field-like event declarators
	Init  *Expr    // variable initializer
	Chain *CtorInitializer
}

// HasBody reports whether the declaration carries a written body.
func (d *Decl) HasBody() bool {
	return d != nil && d.Body != nil
}

// IsAutoProperty reports whether every present accessor of a property lacks a body.
func (d *Decl) IsAutoProperty() bool {
	if d == nil || (d.Getter == nil && d.Setter == nil) {
		return false
	}
	if d.Getter != nil && d.Getter.Body != nil {
		return false
	}
	if d.Setter != nil && d.Setter.Body != nil {
		return false
	}
	return true
}
