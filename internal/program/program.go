// Package program holds the resolved input of the lowering stage: source
// units with their declaration trees, the front-end symbol table and the
// per-unit resolvers binding declarations to symbols.
package program

import (
	"scriptc/internal/ast"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

// Resolver answers the semantic queries the lowering stage asks about one unit.
type Resolver interface {
	// Resolve returns the symbol a declaration introduces, or NoSymbolID.
	Resolve(decl ast.DeclID) symbols.SymbolID
	TypeOf(sym symbols.SymbolID) symbols.TypeRef
	AllBaseTypes(typ symbols.SymbolID) []symbols.TypeRef
}

// Unit is one source unit of a program.
type Unit struct {
	Path     string
	File     source.FileID
	Tree     *ast.Tree
	Resolver Resolver
}

type Program struct {
	Name    string
	Path    string // export file, empty for in-memory programs
	Files   *source.FileSet
	Symbols *symbols.Table
	Units   []*Unit
}

// Unit returns the unit registered under path, or nil.
func (p *Program) Unit(path string) *Unit {
	for _, u := range p.Units {
		if u.Path == path {
			return u
		}
	}
	return nil
}

// MapResolver is a Resolver backed by an explicit declaration map.
type MapResolver struct {
	table *symbols.Table
	decls map[ast.DeclID]symbols.SymbolID
}

func NewMapResolver(table *symbols.Table) *MapResolver {
	return &MapResolver{table: table, decls: make(map[ast.DeclID]symbols.SymbolID)}
}

// Bind records that decl introduces sym.
func (r *MapResolver) Bind(decl ast.DeclID, sym symbols.SymbolID) {
	r.decls[decl] = sym
}

func (r *MapResolver) Resolve(decl ast.DeclID) symbols.SymbolID {
	return r.decls[decl]
}

func (r *MapResolver) TypeOf(sym symbols.SymbolID) symbols.TypeRef {
	if s := r.table.Get(sym); s != nil {
		return s.Type
	}
	return symbols.TypeRef{}
}

func (r *MapResolver) AllBaseTypes(typ symbols.SymbolID) []symbols.TypeRef {
	return r.table.AllBaseTypes(typ)
}
