package policy

type TypeKind uint8

const (
	TypeNormal TypeKind = iota
	TypeNotUsableFromScript
)

// TypeSemantics tells how a type is represented in the target model.
type TypeSemantics struct {
	Kind                   TypeKind
	Name                   string
	GenerateCode           bool
	IgnoreGenericArguments bool
}

// Emitted reports whether a target node is produced for the type.
func (s TypeSemantics) Emitted() bool {
	return s.Kind == TypeNormal && s.GenerateCode
}

// Usable reports whether generated code may refer to the type.
func (s TypeSemantics) Usable() bool {
	return s.Kind != TypeNotUsableFromScript
}

type MethodKind uint8

const (
	MethodNormal MethodKind = iota
	MethodStaticWithThisAsFirstArgument
	MethodInstanceOnFirstArgument
	MethodInlineCode
	MethodNativeIndexer
	MethodNativeOperator
	MethodNativeAccessor
	MethodNotUsableFromScript
)

var methodKindNames = [...]string{
	MethodNormal:                        "NormalMethod",
	MethodStaticWithThisAsFirstArgument: "StaticMethodWithThisAsFirstArgument",
	MethodInstanceOnFirstArgument:       "InstanceMethodOnFirstArgument",
	MethodInlineCode:                    "InlineCode",
	MethodNativeIndexer:                 "NativeIndexer",
	MethodNativeOperator:                "NativeOperator",
	MethodNativeAccessor:                "NativeAccessor",
	MethodNotUsableFromScript:           "NotUsableFromScript",
}

func (k MethodKind) String() string {
	if int(k) < len(methodKindNames) {
		return methodKindNames[k]
	}
	return "MethodKind(?)"
}

type MethodSemantics struct {
	Kind                   MethodKind
	Name                   string
	GenerateCode           bool
	IgnoreGenericArguments bool
	InlineCode             string
}

// NormalMethod returns the semantics of a plain generated method.
func NormalMethod(name string) MethodSemantics {
	return MethodSemantics{Kind: MethodNormal, Name: name, GenerateCode: true}
}

// Generated reports whether a body must be compiled for the method.
func (s MethodSemantics) Generated() bool {
	return s.Name != "" && s.GenerateCode
}

type ConstructorKind uint8

const (
	CtorUnnamed ConstructorKind = iota
	CtorNamed
	CtorStaticMethod
	CtorInlineCode
	CtorJson
	CtorNotUsableFromScript
)

var ctorKindNames = [...]string{
	CtorUnnamed:             "UnnamedConstructor",
	CtorNamed:               "NamedConstructor",
	CtorStaticMethod:        "StaticMethod",
	CtorInlineCode:          "InlineCode",
	CtorJson:                "Json",
	CtorNotUsableFromScript: "NotUsableFromScript",
}

func (k ConstructorKind) String() string {
	if int(k) < len(ctorKindNames) {
		return ctorKindNames[k]
	}
	return "ConstructorKind(?)"
}

type ConstructorSemantics struct {
	Kind         ConstructorKind
	Name         string // empty for CtorUnnamed
	GenerateCode bool
	InlineCode   string
}

type PropertyKind uint8

const (
	PropertyGetAndSetMethods PropertyKind = iota
	PropertyField
	PropertyNotUsableFromScript
)

type PropertySemantics struct {
	Kind   PropertyKind
	Getter MethodSemantics
	Setter MethodSemantics
	// FieldName and GenerateAccessors apply to PropertyField.
	FieldName         string
	GenerateAccessors bool
}

type EventKind uint8

const (
	EventAddAndRemoveMethods EventKind = iota
	EventNotUsableFromScript
)

type EventSemantics struct {
	Kind    EventKind
	Adder   MethodSemantics
	Remover MethodSemantics
}

type FieldKind uint8

const (
	FieldNormal FieldKind = iota
	FieldConstant
	FieldNullConstant
	FieldNotUsableFromScript
)

type FieldSemantics struct {
	Kind         FieldKind
	Name         string
	GenerateCode bool
	Value        string // FieldConstant
}
