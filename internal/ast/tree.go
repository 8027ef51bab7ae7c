package ast

import "scriptc/internal/source"

// Tree holds the declarations of one source unit.
type Tree struct {
	File  source.FileID
	decls *Arena[Decl]
	Roots []DeclID
}

func NewTree(file source.FileID, capHint uint) *Tree {
	if capHint == 0 {
		capHint = 1 << 6
	}
	return &Tree{
		File:  file,
		decls: NewArena[Decl](capHint),
	}
}

// Add allocates d without attaching it anywhere.
func (t *Tree) Add(d Decl) DeclID {
	return DeclID(t.decls.Allocate(d))
}

// AddRoot allocates a top-level declaration.
func (t *Tree) AddRoot(d Decl) DeclID {
	id := t.Add(d)
	t.Roots = append(t.Roots, id)
	return id
}

// AddMember allocates d as a member of parent.
func (t *Tree) AddMember(parent DeclID, d Decl) DeclID {
	id := t.Add(d)
	if p := t.Get(parent); p != nil {
		p.Members = append(p.Members, id)
	}
	return id
}

// AddVar allocates a declarator of a field or field-like event.
func (t *Tree) AddVar(parent DeclID, d Decl) DeclID {
	d.Kind = DeclVariable
	id := t.Add(d)
	if p := t.Get(parent); p != nil {
		p.Vars = append(p.Vars, id)
	}
	return id
}

func (t *Tree) Get(id DeclID) *Decl {
	if t == nil {
		return nil
	}
	return t.decls.Get(uint32(id))
}

func (t *Tree) Len() int {
	return t.decls.Len()
}

// Walk calls fn for every declaration in pre-order, members before variables.
// Returning false from fn skips the children of that declaration.
func (t *Tree) Walk(fn func(id DeclID, d *Decl) bool) {
	var visit func(id DeclID)
	visit = func(id DeclID) {
		d := t.Get(id)
		if d == nil || !fn(id, d) {
			return
		}
		for _, m := range d.Members {
			visit(m)
		}
		for _, v := range d.Vars {
			visit(v)
		}
	}
	for _, r := range t.Roots {
		visit(r)
	}
}
