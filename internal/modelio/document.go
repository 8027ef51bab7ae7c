package modelio

import (
	"scriptc/internal/model"
)

// SchemaVersion is bumped whenever Document changes shape.
const SchemaVersion uint16 = 1

// Document is the serialized form of one program's forest. Statements are
// stored as text; spans do not survive serialization.
type Document struct {
	Schema     uint16     `json:"schema" msgpack:"schema"`
	Program    string     `json:"program" msgpack:"program"`
	Classes    []ClassDoc `json:"classes" msgpack:"classes"`
	Enums      []TypeDoc  `json:"enums,omitempty" msgpack:"enums,omitempty"`
	Interfaces []TypeDoc  `json:"interfaces,omitempty" msgpack:"interfaces,omitempty"`
}

type TypeDoc struct {
	Symbol uint32 `json:"symbol" msgpack:"symbol"`
	Name   string `json:"name" msgpack:"name"`
}

type ClassDoc struct {
	TypeDoc `msgpack:",inline"`

	Kind              string         `json:"kind" msgpack:"kind"`
	TypeParams        []string       `json:"type_params,omitempty" msgpack:"type_params,omitempty"`
	StaticInit        []string       `json:"static_init,omitempty" msgpack:"static_init,omitempty"`
	InstanceInit      []string       `json:"instance_init,omitempty" msgpack:"instance_init,omitempty"`
	Constructor       *FuncDoc       `json:"constructor,omitempty" msgpack:"constructor,omitempty"`
	NamedConstructors []NamedCtorDoc `json:"named_constructors,omitempty" msgpack:"named_constructors,omitempty"`
	StaticMethods     []MethodDoc    `json:"static_methods,omitempty" msgpack:"static_methods,omitempty"`
	InstanceMethods   []MethodDoc    `json:"instance_methods,omitempty" msgpack:"instance_methods,omitempty"`
}

type FuncDoc struct {
	Params []string `json:"params,omitempty" msgpack:"params,omitempty"`
	Body   []string `json:"body" msgpack:"body"`
}

type NamedCtorDoc struct {
	Name string  `json:"name" msgpack:"name"`
	Func FuncDoc `json:"func" msgpack:"func"`
}

type MethodDoc struct {
	Kind       string   `json:"kind" msgpack:"kind"`
	Symbol     uint32   `json:"symbol" msgpack:"symbol"`
	Name       string   `json:"name" msgpack:"name"`
	TypeParams []string `json:"type_params,omitempty" msgpack:"type_params,omitempty"`
	Func       FuncDoc  `json:"func" msgpack:"func"`
}

// FromForest converts a frozen forest into a Document.
func FromForest(program string, f *model.Forest) *Document {
	doc := &Document{Schema: SchemaVersion, Program: program, Classes: []ClassDoc{}}
	if f == nil {
		return doc
	}
	for _, c := range f.Classes {
		doc.Classes = append(doc.Classes, classDoc(c))
	}
	for _, e := range f.Enums {
		doc.Enums = append(doc.Enums, TypeDoc{Symbol: uint32(e.Symbol), Name: e.Name})
	}
	for _, i := range f.Interfaces {
		doc.Interfaces = append(doc.Interfaces, TypeDoc{Symbol: uint32(i.Symbol), Name: i.Name})
	}
	return doc
}

func classDoc(c *model.Class) ClassDoc {
	d := ClassDoc{
		TypeDoc:      TypeDoc{Symbol: uint32(c.TypeSymbol()), Name: c.Name()},
		Kind:         c.Kind().String(),
		TypeParams:   c.TypeParams(),
		StaticInit:   stmtTexts(c.StaticInit()),
		InstanceInit: stmtTexts(c.InstanceInit()),
	}
	if fn := c.UnnamedConstructor(); fn != nil {
		fd := funcDoc(fn)
		d.Constructor = &fd
	}
	for _, nc := range c.NamedConstructors() {
		d.NamedConstructors = append(d.NamedConstructors, NamedCtorDoc{Name: nc.Name, Func: funcDoc(nc.Func)})
	}
	for _, m := range c.StaticMethods() {
		d.StaticMethods = append(d.StaticMethods, methodDoc(m))
	}
	for _, m := range c.InstanceMethods() {
		d.InstanceMethods = append(d.InstanceMethods, methodDoc(m))
	}
	return d
}

func methodDoc(m model.Method) MethodDoc {
	return MethodDoc{
		Kind:       m.Kind.String(),
		Symbol:     uint32(m.Symbol),
		Name:       m.Name,
		TypeParams: m.TypeParams,
		Func:       funcDoc(m.Func),
	}
}

func funcDoc(fn *model.Function) FuncDoc {
	if fn == nil {
		return FuncDoc{Body: []string{}}
	}
	return FuncDoc{Params: fn.Params, Body: stmtTexts(fn.Body)}
}

func stmtTexts(stmts []model.Stmt) []string {
	if len(stmts) == 0 {
		return nil
	}
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.Text
	}
	return out
}

// Class finds a class by name.
func (d *Document) Class(name string) *ClassDoc {
	for i := range d.Classes {
		if d.Classes[i].Name == name {
			return &d.Classes[i]
		}
	}
	return nil
}
