package bodyc

import (
	"strings"
	"testing"

	"github.com/cockroachdb/errors"

	"scriptc/internal/ast"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

func texts(stmts []model.Stmt) string {
	parts := make([]string, len(stmts))
	for i, s := range stmts {
		parts[i] = s.Text
	}
	return strings.Join(parts, " | ")
}

func newCompiler(t *testing.T) (MethodCompiler, *symbols.Table, symbols.SymbolID) {
	t.Helper()
	tbl := symbols.NewTable(0)
	typ := tbl.Add(symbols.Symbol{Kind: symbols.SymbolType, Name: "C", TypeKind: symbols.TypeClass})
	mc := Textual{}.NewMethodCompiler(Env{Symbols: tbl, Policy: policy.NewDefault(tbl, policy.DefaultOptions())})
	return mc, tbl, typ
}

func TestCompileMethod(t *testing.T) {
	mc, tbl, typ := newCompiler(t)
	m := tbl.AddMember(typ, symbols.Symbol{Kind: symbols.SymbolMethod, Name: "M",
		Params: []symbols.Param{{Name: "a"}, {Name: "b"}}})
	body := &ast.Block{Stmts: []ast.Stmt{{Text: "return a + b;"}}}

	fn, err := mc.CompileMethod(body, m, policy.NormalMethod("M"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(fn.Params, ",") != "a,b" || texts(fn.Body) != "return a + b;" {
		t.Fatalf("unexpected function %+v", fn)
	}

	sem := policy.NormalMethod("M")
	sem.Kind = policy.MethodStaticWithThisAsFirstArgument
	fn, err = mc.CompileMethod(body, m, sem)
	if err != nil {
		t.Fatal(err)
	}
	if fn.Params[0] != "$this" {
		t.Fatalf("static-with-this must get $this first, got %v", fn.Params)
	}
}

func TestFaultInjection(t *testing.T) {
	mc, tbl, typ := newCompiler(t)
	m := tbl.AddMember(typ, symbols.Symbol{Kind: symbols.SymbolMethod, Name: "M"})
	_, err := mc.CompileMethod(&ast.Block{Stmts: []ast.Stmt{{Text: FaultStmt}}}, m, policy.NormalMethod("M"))
	if !errors.Is(err, ErrInjectedFault) {
		t.Fatalf("expected injected fault, got %v", err)
	}
	_, err = mc.CompileFieldInitializer(source.Span{}, Target{}, "x", &ast.Expr{Text: FaultStmt})
	if !errors.Is(err, ErrInjectedFault) {
		t.Fatalf("expected injected fault from initializer, got %v", err)
	}
}

func TestCompileConstructorSplicesInit(t *testing.T) {
	mc, tbl, typ := newCompiler(t)
	ctor := tbl.AddMember(typ, symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor"})
	init := []model.Stmt{{Text: "this.x = 0;"}}
	unnamed := policy.ConstructorSemantics{Kind: policy.CtorUnnamed, GenerateCode: true}

	cases := []struct {
		name string
		decl *ast.Decl
		want string
	}{
		{"no chain", &ast.Decl{Body: &ast.Block{Stmts: []ast.Stmt{{Text: "f();"}}}},
			"this.x = 0; | f();"},
		{"base chain", &ast.Decl{Chain: &ast.CtorInitializer{Kind: ast.InitBase, Args: []ast.Expr{{Text: "1"}}},
			Body: &ast.Block{}}, "base(1); | this.x = 0;"},
		{"this chain", &ast.Decl{Chain: &ast.CtorInitializer{Kind: ast.InitThis}, Body: &ast.Block{Stmts: []ast.Stmt{{Text: "g();"}}}},
			"this(); | g();"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fn, err := mc.CompileConstructor(tc.decl, ctor, init, unnamed)
			if err != nil {
				t.Fatal(err)
			}
			if got := texts(fn.Body); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestDefaultConstructorAndFactory(t *testing.T) {
	mc, tbl, typ := newCompiler(t)
	ctor := tbl.AddMember(typ, symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor", Flags: symbols.FlagImplicit})
	init := []model.Stmt{{Text: "this.x = 0;"}}

	fn, err := mc.CompileDefaultConstructor(ctor, init, policy.ConstructorSemantics{Kind: policy.CtorUnnamed, GenerateCode: true})
	if err != nil || texts(fn.Body) != "this.x = 0;" {
		t.Fatalf("default ctor: %v %+v", err, fn)
	}
	fn, err = mc.CompileDefaultConstructor(ctor, init, policy.ConstructorSemantics{Kind: policy.CtorStaticMethod, Name: "create", GenerateCode: true})
	if err != nil || texts(fn.Body) != "var $this = {}; | $this.x = 0; | return $this;" {
		t.Fatalf("factory ctor: %v %+v", err, fn)
	}
	if _, err := mc.CompileDefaultConstructor(ctor, init, policy.ConstructorSemantics{Kind: policy.CtorJson}); err == nil {
		t.Fatal("json constructors have no body")
	}
}

func TestDefaultFieldInitializerZeroValues(t *testing.T) {
	mc, tbl, _ := newCompiler(t)
	s := tbl.Add(symbols.Symbol{Kind: symbols.SymbolType, Name: "Point", TypeKind: symbols.TypeStruct})
	e := tbl.Add(symbols.Symbol{Kind: symbols.SymbolType, Name: "Color", TypeKind: symbols.TypeEnum})
	k := tbl.Add(symbols.Symbol{Kind: symbols.SymbolType, Name: "K", TypeKind: symbols.TypeClass})

	cases := []struct {
		typ    symbols.TypeRef
		target Target
		want   string
	}{
		{symbols.TypeRef{Name: "int"}, Target{}, "this.f = 0;"},
		{symbols.TypeRef{Name: "bool"}, Target{}, "this.f = false;"},
		{symbols.TypeRef{Name: "string"}, Target{}, "this.f = null;"},
		{symbols.TypeRef{Type: s, Name: "Point"}, Target{}, "this.f = new Point();"},
		{symbols.TypeRef{Type: e, Name: "Color"}, Target{}, "this.f = 0;"},
		{symbols.TypeRef{Type: k, Name: "K"}, Target{Static: true, Type: "C"}, "C.f = null;"},
	}
	for _, tc := range cases {
		got, err := mc.CompileDefaultFieldInitializer(source.Span{}, tc.target, "f", tc.typ)
		if err != nil {
			t.Fatal(err)
		}
		if texts(got) != tc.want {
			t.Errorf("%s: got %q, want %q", tc.typ, texts(got), tc.want)
		}
	}
}

func TestAutoAccessors(t *testing.T) {
	mc, _, _ := newCompiler(t)
	sem := policy.NormalMethod("get_P")
	get, _ := mc.CompileAutoPropertyGetter(0, Target{}, sem, "$p")
	set, _ := mc.CompileAutoPropertySetter(0, Target{Static: true, Type: "C"}, sem, "$p")
	add, _ := mc.CompileAutoEventAdder(0, Target{}, sem, "$e")
	remove, _ := mc.CompileAutoEventRemover(0, Target{}, sem, "$e")

	checks := []struct {
		fn   *model.Function
		want string
	}{
		{get, "return this.$p;"},
		{set, "C.$p = value;"},
		{add, "this.$e = $delegate.combine(this.$e, value);"},
		{remove, "this.$e = $delegate.remove(this.$e, value);"},
	}
	for _, c := range checks {
		if texts(c.fn.Body) != c.want {
			t.Errorf("got %q, want %q", texts(c.fn.Body), c.want)
		}
	}
}
