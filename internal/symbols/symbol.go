package symbols

import (
	"strings"

	"scriptc/internal/source"
)

// SymbolID indexes Table. The zero id is never allocated.
type SymbolID uint32

// NoSymbolID marks an unresolved or absent reference.
const NoSymbolID SymbolID = 0

func (id SymbolID) IsValid() bool { return id != NoSymbolID }

// SymbolKind classifies what a symbol declares.
type SymbolKind uint8

const (
	SymbolInvalid SymbolKind = iota
	SymbolType
	SymbolMethod
	SymbolOperator
	SymbolConstructor
	SymbolProperty
	SymbolEvent
	SymbolField
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolType:
		return "type"
	case SymbolMethod:
		return "method"
	case SymbolOperator:
		return "operator"
	case SymbolConstructor:
		return "constructor"
	case SymbolProperty:
		return "property"
	case SymbolEvent:
		return "event"
	case SymbolField:
		return "field"
	default:
		return "invalid"
	}
}

// TypeKind distinguishes the flavours of type symbols.
type TypeKind uint8

const (
	TypeNone TypeKind = iota
	TypeClass
	TypeStruct
	TypeInterface
	TypeEnum
	TypeDelegate
)

func (k TypeKind) String() string {
	switch k {
	case TypeClass:
		return "class"
	case TypeStruct:
		return "struct"
	case TypeInterface:
		return "interface"
	case TypeEnum:
		return "enum"
	case TypeDelegate:
		return "delegate"
	default:
		return "none"
	}
}

// ParseTypeKind maps the front-end spelling to a TypeKind.
func ParseTypeKind(s string) (TypeKind, bool) {
	switch strings.ToLower(s) {
	case "class":
		return TypeClass, true
	case "struct":
		return TypeStruct, true
	case "interface":
		return TypeInterface, true
	case "enum":
		return TypeEnum, true
	case "delegate":
		return TypeDelegate, true
	}
	return TypeNone, false
}

// SymbolFlags encode misc attributes for quick checks.
type SymbolFlags uint16

const (
	FlagStatic SymbolFlags = 1 << iota
	FlagAbstract
	// FlagImplicit marks members the front end synthesized (default constructors).
	FlagImplicit
	// FlagMutable marks a value type whose instances can be mutated in place.
	FlagMutable
	// FlagExternal marks types only referenced by the program, never declared in it.
	FlagExternal
	FlagAccessor
	FlagIndexer
	FlagConst
	FlagPartial
)

var flagNames = []struct {
	flag SymbolFlags
	name string
}{
	{FlagStatic, "static"},
	{FlagAbstract, "abstract"},
	{FlagImplicit, "implicit"},
	{FlagMutable, "mutable"},
	{FlagExternal, "external"},
	{FlagAccessor, "accessor"},
	{FlagIndexer, "indexer"},
	{FlagConst, "const"},
	{FlagPartial, "partial"},
}

// Strings returns a slice of textual flag labels.
func (f SymbolFlags) Strings() []string {
	if f == 0 {
		return nil
	}
	labels := make([]string, 0, 4)
	for _, fl := range flagNames {
		if f&fl.flag != 0 {
			labels = append(labels, fl.name)
		}
	}
	return labels
}

// TypeRef names a (possibly generic) type use. Type is set when the referenced
// type is known to the table; builtin types carry only Name.
type TypeRef struct {
	Type SymbolID
	Name string
	Args []TypeRef
}

// IsZero reports whether the reference is empty (void / unknown).
func (r TypeRef) IsZero() bool {
	return !r.Type.IsValid() && r.Name == "" && len(r.Args) == 0
}

func (r TypeRef) String() string {
	if len(r.Args) == 0 {
		return r.Name
	}
	var sb strings.Builder
	sb.WriteString(r.Name)
	sb.WriteByte('<')
	for i, a := range r.Args {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.String())
	}
	sb.WriteByte('>')
	return sb.String()
}

// Param is a method or constructor parameter.
type Param struct {
	Name string
	Type TypeRef
}

// Symbol describes a resolved entity of the front end.
type Symbol struct {
	ID       SymbolID
	Kind     SymbolKind
	Name     string
	FullName string
	Owner    SymbolID // declaring type, NoSymbolID for top-level types
	Flags    SymbolFlags
	Span     source.Span
	// Attrs carries source attributes the semantics policy reads.
	Attrs map[string]string

	// types
	TypeKind   TypeKind
	TypeParams []string
	Bases      []TypeRef
	Members    []SymbolID

	// members
	Type   TypeRef // field/property/event type, method result
	Params []Param
	// Getter/Setter are the accessor methods of a property, or the add/remove
	// accessors of an event.
	Getter SymbolID
	Setter SymbolID
	// Value is the constant value of a const field, as front-end text.
	Value string
}

func (s *Symbol) Has(f SymbolFlags) bool { return s != nil && s.Flags&f != 0 }

func (s *Symbol) IsStatic() bool   { return s.Has(FlagStatic) }
func (s *Symbol) IsAbstract() bool { return s.Has(FlagAbstract) }

// Attr returns the value of the named attribute and whether it is present.
func (s *Symbol) Attr(name string) (string, bool) {
	if s == nil || s.Attrs == nil {
		return "", false
	}
	v, ok := s.Attrs[name]
	return v, ok
}
