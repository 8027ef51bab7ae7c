package program

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"scriptc/internal/ast"
	"scriptc/internal/symbols"
)

const partialExport = `
name: demo
externals:
  - kind: class
    name: Object
    full_name: System.Object
    attrs: {Imported: ""}
units:
  - path: a.cs
    text: "partial class C { int x = 1; }"
    decls:
      - kind: class
        name: C
        full_name: N.C
        modifiers: [partial]
        bases: [System.Object]
        at: [0, 30]
        members:
          - kind: field
            name: x
            type: int
            vars: [{name: x, init: "1"}]
          - kind: property
            name: P
            type: string
            get: {}
            set: {}
  - path: b.cs
    decls:
      - kind: class
        name: C
        full_name: N.C
        modifiers: [partial]
        members:
          - kind: constructor
            name: C
            params: [{name: v, type: int}]
            chain: {kind: base}
            body: ["this.x = v;"]
          - kind: method
            name: M
            type: "List<C>"
            body: []
          - kind: method
            name: Lost
            unresolved: true
            body: []
      - kind: struct
        name: S
        full_name: N.S
        attrs: {MutableValueType: ""}
`

func TestBuildMergesPartialTypes(t *testing.T) {
	exp, err := ParseExport([]byte(partialExport), "demo.prog.yaml")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	prog, err := Build(exp, "")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if prog.Name != "demo" || len(prog.Units) != 2 {
		t.Fatalf("unexpected program %q with %d units", prog.Name, len(prog.Units))
	}

	cid, ok := prog.Symbols.Lookup("N.C")
	if !ok {
		t.Fatal("N.C not registered")
	}
	a, b := prog.Units[0], prog.Units[1]
	if got := a.Resolver.Resolve(a.Tree.Roots[0]); got != cid {
		t.Fatalf("unit a resolves C to %d, want %d", got, cid)
	}
	if got := b.Resolver.Resolve(b.Tree.Roots[0]); got != cid {
		t.Fatalf("unit b resolves C to %d, want %d", got, cid)
	}

	c := prog.Symbols.Get(cid)
	if len(c.Bases) != 1 || c.Bases[0].Name != "System.Object" || !c.Bases[0].Type.IsValid() {
		t.Fatalf("bases not resolved: %+v", c.Bases)
	}
	if c.Span.File != a.File || c.Span.End != 30 {
		t.Fatalf("type span must come from the first declaration, got %v", c.Span)
	}
	if impl := prog.Symbols.ImplicitConstructors(cid); len(impl) != 0 {
		t.Fatalf("class with a written constructor has implicit ones: %v", impl)
	}

	sid, _ := prog.Symbols.Lookup("N.S")
	if len(prog.Symbols.ImplicitConstructors(sid)) != 1 {
		t.Fatal("struct must get an implicit constructor")
	}
	if !prog.Symbols.IsMutableValueType(symbols.TypeRef{Type: sid}) {
		t.Fatal("MutableValueType attribute must mark the struct mutable")
	}
}

func TestBuildUnitTrees(t *testing.T) {
	exp, err := ParseExport([]byte(partialExport), "demo.prog.yaml")
	if err != nil {
		t.Fatal(err)
	}
	prog, err := Build(exp, "")
	if err != nil {
		t.Fatal(err)
	}

	a := prog.Units[0]
	class := a.Tree.Get(a.Tree.Roots[0])
	field := a.Tree.Get(class.Members[0])
	if field.Kind != ast.DeclField || len(field.Vars) != 1 {
		t.Fatalf("unexpected field decl %+v", field)
	}
	x := a.Tree.Get(field.Vars[0])
	if x.Init == nil || x.Init.Text != "1" {
		t.Fatalf("initializer lost: %+v", x)
	}
	xsym := prog.Symbols.Get(a.Resolver.Resolve(field.Vars[0]))
	if xsym == nil || xsym.Kind != symbols.SymbolField || xsym.Type.Name != "int" {
		t.Fatalf("field symbol: %+v", xsym)
	}
	prop := a.Tree.Get(class.Members[1])
	if !prop.IsAutoProperty() {
		t.Fatal("property with empty accessors must be auto")
	}
	psym := prog.Symbols.Get(a.Resolver.Resolve(class.Members[1]))
	if psym.Getter == symbols.NoSymbolID || psym.Setter == symbols.NoSymbolID {
		t.Fatal("property accessors not allocated")
	}
	if got := prog.Symbols.Get(psym.Getter).Name; got != "get_P" {
		t.Fatalf("getter name %q", got)
	}

	b := prog.Units[1]
	class = b.Tree.Get(b.Tree.Roots[0])
	ctor := b.Tree.Get(class.Members[0])
	if ctor.Chain == nil || ctor.Chain.Kind != ast.InitBase || len(ctor.Body.Stmts) != 1 {
		t.Fatalf("constructor decl: %+v", ctor)
	}
	m := b.Tree.Get(class.Members[1])
	if !m.HasBody() || len(m.Body.Stmts) != 0 {
		t.Fatal("empty body must be present")
	}
	msym := prog.Symbols.Get(b.Resolver.Resolve(class.Members[1]))
	if msym.Type.String() != "List<C>" || msym.Type.Args[0].Name != "C" || !msym.Type.Args[0].Type.IsValid() {
		t.Fatalf("return type: %+v", msym.Type)
	}
	if got := b.Resolver.Resolve(class.Members[2]); got != symbols.NoSymbolID {
		t.Fatalf("unresolved declaration bound to %d", got)
	}
}

func TestParseExportErrors(t *testing.T) {
	cases := []struct {
		name, src, want string
	}{
		{"top-level member", "units: [{path: a, decls: [{kind: method, name: M}]}]", "must be a type"},
		{"unknown kind", "units: [{path: a, decls: [{kind: record, name: R}]}]", "unknown declaration kind"},
		{"unknown modifier", "units: [{path: a, decls: [{kind: class, name: C, modifiers: [sealed]}]}]", "unknown modifier"},
		{"duplicate unit", "units: [{path: a, decls: []}, {path: a, decls: []}]", "already used"},
		{"bad chain", "units: [{path: a, decls: [{kind: class, name: C, members: [{kind: constructor, name: C, chain: {kind: super}}]}]}]", "chain kind"},
		{"bad span", "units: [{path: a, decls: [{kind: class, name: C, at: [5, 1]}]}]", "after end"},
		{"property without accessors", "units: [{path: a, decls: [{kind: class, name: C, members: [{kind: property, name: P}]}]}]", "no accessors"},
		{"nested in enum", "units: [{path: a, decls: [{kind: enum, name: E, members: [{kind: class, name: C}]}]}]", "cannot be nested"},
		{"bad yaml", "units: [", "parsing"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseExport([]byte(tc.src), "x.prog.yaml")
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("want error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestBuildRejectsConflictingPartialKinds(t *testing.T) {
	src := `
units:
  - path: a
    decls: [{kind: class, name: C}]
  - path: b
    decls: [{kind: struct, name: C}]
`
	exp, err := ParseExport([]byte(src), "x.prog.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(exp, ""); err == nil {
		t.Fatal("expected conflict error")
	}
}

func TestBuildRejectsSpanOutsideUnit(t *testing.T) {
	src := `
units:
  - path: a
    text: "class C {}"
    decls: [{kind: class, name: C, at: [0, 99]}]
`
	exp, err := ParseExport([]byte(src), "x.prog.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Build(exp, ""); err == nil || !strings.Contains(err.Error(), "outside") {
		t.Fatalf("expected span error, got %v", err)
	}
}

func TestLoadReadsUnitsFromDisk(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.cs"), []byte("class A {}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	exp := "units:\n  - path: a.cs\n    decls: [{kind: class, name: A, at: [0, 10]}]\n"
	path := filepath.Join(dir, "app"+ExportExt)
	if err := os.WriteFile(path, []byte(exp), 0o600); err != nil {
		t.Fatal(err)
	}

	prog, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if prog.Name != "app" || prog.Path != path {
		t.Fatalf("unexpected name/path %q %q", prog.Name, prog.Path)
	}
	f := prog.Files.Get(prog.Units[0].File)
	if string(f.Content) != "class A {}\n" {
		t.Fatalf("unit content %q", f.Content)
	}

	found, err := FindExports(dir)
	if err != nil || len(found) != 1 || found[0] != path {
		t.Fatalf("FindExports: %v %v", found, err)
	}
}

func TestParseTypeExpr(t *testing.T) {
	cases := []struct {
		src  string
		want string
		ok   bool
	}{
		{"int", "int", true},
		{"List<int>", "List(int)", true},
		{"Dictionary< string , List<Foo> >", "Dictionary(string,List(Foo))", true},
		{"List<", "", false},
		{"List<int>>", "", false},
		{"<int>", "", false},
	}
	for _, tc := range cases {
		te, err := parseTypeExpr(tc.src)
		if (err == nil) != tc.ok {
			t.Fatalf("%q: unexpected error state %v", tc.src, err)
		}
		if tc.ok && flatten(te) != tc.want {
			t.Fatalf("%q: got %s, want %s", tc.src, flatten(te), tc.want)
		}
	}
}

func flatten(te typeExpr) string {
	if len(te.args) == 0 {
		return te.name
	}
	parts := make([]string, len(te.args))
	for i, a := range te.args {
		parts[i] = flatten(a)
	}
	return te.name + "(" + strings.Join(parts, ",") + ")"
}
