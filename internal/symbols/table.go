package symbols

import (
	"fmt"

	"fortio.org/safecast"
)

// Table is the arena of front-end symbols of one program. Index 0 is reserved.
type Table struct {
	data   []Symbol
	byName map[string]SymbolID // full name -> type symbol
	// implicit instance constructors per type, in declaration order
	implicit map[SymbolID][]SymbolID
}

// NewTable creates an empty symbol table with a capacity hint.
func NewTable(capHint uint) *Table {
	if capHint == 0 {
		capHint = 64
	}
	return &Table{
		data:     make([]Symbol, 1, capHint+1),
		byName:   make(map[string]SymbolID, capHint),
		implicit: make(map[SymbolID][]SymbolID),
	}
}

// Add stores sym and returns its id. Type symbols are indexed by FullName.
func (t *Table) Add(sym Symbol) SymbolID {
	n, err := safecast.Conv[uint32](len(t.data))
	if err != nil {
		panic(fmt.Errorf("symbol table overflow: %w", err))
	}
	id := SymbolID(n)
	sym.ID = id
	if sym.FullName == "" {
		sym.FullName = sym.Name
	}
	t.data = append(t.data, sym)
	if sym.Kind == SymbolType {
		t.byName[sym.FullName] = id
	}
	return id
}

// AddMember stores sym as a member of owner. Implicit constructors are indexed
// separately so that default constructor synthesis can find them.
func (t *Table) AddMember(owner SymbolID, sym Symbol) SymbolID {
	sym.Owner = owner
	if sym.FullName == "" {
		if o := t.Get(owner); o != nil {
			sym.FullName = o.FullName + "." + sym.Name
		}
	}
	id := t.Add(sym)
	if o := t.Get(owner); o != nil {
		o.Members = append(o.Members, id)
		if sym.Kind == SymbolConstructor && sym.Flags&FlagImplicit != 0 && sym.Flags&FlagStatic == 0 {
			t.implicit[owner] = append(t.implicit[owner], id)
		}
	}
	return id
}

// Get returns the symbol for id, or nil for NoSymbolID and out-of-range ids.
func (t *Table) Get(id SymbolID) *Symbol {
	if t == nil || !id.IsValid() || int(id) >= len(t.data) {
		return nil
	}
	return &t.data[id]
}

// Lookup finds a type symbol by its full name.
func (t *Table) Lookup(fullName string) (SymbolID, bool) {
	id, ok := t.byName[fullName]
	return id, ok
}

// Len reports the number of allocated symbols.
func (t *Table) Len() int {
	return len(t.data) - 1
}

// Constructors returns the instance constructors of typ, declared and implicit.
func (t *Table) Constructors(typ SymbolID) []SymbolID {
	sym := t.Get(typ)
	if sym == nil {
		return nil
	}
	var out []SymbolID
	for _, m := range sym.Members {
		if ms := t.Get(m); ms != nil && ms.Kind == SymbolConstructor && !ms.IsStatic() {
			out = append(out, m)
		}
	}
	return out
}

// ImplicitConstructors returns the constructors the language adds to typ.
func (t *Table) ImplicitConstructors(typ SymbolID) []SymbolID {
	return t.implicit[typ]
}

// AllBaseTypes returns the base types of typ transitively, each once, nearest first.
// Bases referring to unknown symbols are returned but not expanded.
func (t *Table) AllBaseTypes(typ SymbolID) []TypeRef {
	sym := t.Get(typ)
	if sym == nil {
		return nil
	}
	var out []TypeRef
	seen := map[string]struct{}{}
	queue := append([]TypeRef(nil), sym.Bases...)
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		key := ref.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, ref)
		if base := t.Get(ref.Type); base != nil && base.ID != typ {
			queue = append(queue, base.Bases...)
		}
	}
	return out
}

// IsValueType reports whether ref names a struct or an enum.
func (t *Table) IsValueType(ref TypeRef) bool {
	sym := t.Get(ref.Type)
	if sym == nil {
		return false
	}
	return sym.TypeKind == TypeStruct || sym.TypeKind == TypeEnum
}

// IsMutableValueType reports whether ref names a struct flagged as mutable.
func (t *Table) IsMutableValueType(ref TypeRef) bool {
	sym := t.Get(ref.Type)
	return sym != nil && sym.TypeKind == TypeStruct && sym.Flags&FlagMutable != 0
}

// Types returns all type symbols in allocation order.
func (t *Table) Types() []SymbolID {
	out := make([]SymbolID, 0, len(t.byName))
	for i := 1; i < len(t.data); i++ {
		if t.data[i].Kind == SymbolType {
			out = append(out, t.data[i].ID)
		}
	}
	return out
}
