package policy

import (
	"testing"

	"scriptc/internal/symbols"
)

type fixture struct {
	tbl *symbols.Table
	typ symbols.SymbolID
}

func newFixture(attrs map[string]string) *fixture {
	tbl := symbols.NewTable(0)
	typ := tbl.Add(symbols.Symbol{Kind: symbols.SymbolType, Name: "C", TypeKind: symbols.TypeClass, Attrs: attrs})
	return &fixture{tbl: tbl, typ: typ}
}

func (f *fixture) member(sym symbols.Symbol) symbols.SymbolID {
	return f.tbl.AddMember(f.typ, sym)
}

func TestTypeSemantics(t *testing.T) {
	cases := []struct {
		name    string
		attrs   map[string]string
		flags   symbols.SymbolFlags
		emitted bool
		usable  bool
		tsName  string
	}{
		{"plain", nil, 0, true, true, "C"},
		{"non scriptable", map[string]string{AttrNonScriptable: ""}, 0, false, false, ""},
		{"imported", map[string]string{AttrImported: ""}, 0, false, true, "C"},
		{"external", nil, symbols.FlagExternal, false, true, "C"},
		{"renamed", map[string]string{AttrScriptName: "Renamed"}, 0, true, true, "Renamed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(tc.attrs)
			f.tbl.Get(f.typ).Flags |= tc.flags
			s := NewDefault(f.tbl, DefaultOptions()).TypeSemantics(f.typ)
			if s.Emitted() != tc.emitted || s.Usable() != tc.usable || s.Name != tc.tsName {
				t.Fatalf("got %+v", s)
			}
		})
	}
}

func TestNestedTypeName(t *testing.T) {
	f := newFixture(nil)
	inner := f.member(symbols.Symbol{Kind: symbols.SymbolType, Name: "Inner", TypeKind: symbols.TypeClass})
	if got := NewDefault(f.tbl, DefaultOptions()).TypeSemantics(inner).Name; got != "C$Inner" {
		t.Fatalf("got %q", got)
	}
}

func TestOverloadNames(t *testing.T) {
	f := newFixture(nil)
	m1 := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "Run"})
	named := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "Run", Attrs: map[string]string{AttrScriptName: "runAll"}})
	m2 := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "Run"})
	m3 := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "Run"})
	other := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "Stop"})

	p := NewDefault(f.tbl, DefaultOptions())
	want := map[symbols.SymbolID]string{m1: "Run", named: "runAll", m2: "Run$2", m3: "Run$3", other: "Stop"}
	for id, name := range want {
		s := p.MethodSemantics(id)
		if s.Name != name || s.Kind != MethodNormal || !s.Generated() {
			t.Errorf("method %d: got %+v, want name %q", id, s, name)
		}
	}
}

func TestMethodKinds(t *testing.T) {
	f := newFixture(nil)
	inline := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "I", Attrs: map[string]string{AttrInlineCode: "{this}.x"}})
	hidden := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "H", Attrs: map[string]string{AttrNonScriptable: ""}})
	ext := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "E", Attrs: map[string]string{AttrStaticWithThis: ""}})
	getter := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "get_Value", Flags: symbols.FlagAccessor})

	p := NewDefault(f.tbl, Options{LowerCamelCase: true})
	if s := p.MethodSemantics(inline); s.Kind != MethodInlineCode || s.InlineCode != "{this}.x" || s.Generated() {
		t.Errorf("inline: %+v", s)
	}
	if s := p.MethodSemantics(hidden); s.Kind != MethodNotUsableFromScript || s.Generated() {
		t.Errorf("hidden: %+v", s)
	}
	if s := p.MethodSemantics(ext); s.Kind != MethodStaticWithThisAsFirstArgument || s.Name != "e" {
		t.Errorf("static with this: %+v", s)
	}
	if s := p.MethodSemantics(getter); s.Kind != MethodNormal || s.Name != "get_Value" {
		t.Errorf("getter: %+v", s)
	}

	native := NewDefault(f.tbl, Options{NativeAccessors: true, LowerCamelCase: true})
	if s := native.MethodSemantics(getter); s.Kind != MethodNativeAccessor || s.Name != "value" {
		t.Errorf("native getter: %+v", s)
	}
}

func TestConstructorAssignment(t *testing.T) {
	f := newFixture(nil)
	withArgs := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor",
		Params: []symbols.Param{{Name: "x", Type: symbols.TypeRef{Name: "int"}}}})
	noArgs := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor"})
	factory := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor",
		Attrs: map[string]string{AttrStaticFactory: "", AttrScriptName: "make"}})
	json := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor", Attrs: map[string]string{AttrJson: ""}})
	last := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor",
		Params: []symbols.Param{{Name: "s", Type: symbols.TypeRef{Name: "string"}}}})
	static := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".cctor", Flags: symbols.FlagStatic})

	p := NewDefault(f.tbl, DefaultOptions())
	cases := []struct {
		id   symbols.SymbolID
		kind ConstructorKind
		name string
		gen  bool
	}{
		{withArgs, CtorNamed, "$ctor1", true},
		{noArgs, CtorUnnamed, "", true},
		{factory, CtorStaticMethod, "make", true},
		{json, CtorJson, "", false},
		{last, CtorNamed, "$ctor2", true},
		{static, CtorUnnamed, "", true},
	}
	for _, tc := range cases {
		s := p.ConstructorSemantics(tc.id)
		if s.Kind != tc.kind || s.Name != tc.name || s.GenerateCode != tc.gen {
			t.Errorf("ctor %d: got %v %+v", tc.id, s.Kind, s)
		}
	}
}

func TestScriptNameForcesUnnamedConstructor(t *testing.T) {
	f := newFixture(nil)
	a := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor"})
	b := f.member(symbols.Symbol{Kind: symbols.SymbolConstructor, Name: ".ctor",
		Params: []symbols.Param{{Name: "x"}}, Attrs: map[string]string{AttrScriptName: ""}})
	p := NewDefault(f.tbl, DefaultOptions())
	// both end up unnamed; the lowering stage reports the duplicate
	if p.ConstructorSemantics(a).Kind != CtorUnnamed || p.ConstructorSemantics(b).Kind != CtorUnnamed {
		t.Fatal("expected two unnamed constructors")
	}
}

func TestPropertyAndFieldSemantics(t *testing.T) {
	f := newFixture(nil)
	get := f.member(symbols.Symbol{Kind: symbols.SymbolMethod, Name: "get_P", Flags: symbols.FlagAccessor})
	prop := f.member(symbols.Symbol{Kind: symbols.SymbolProperty, Name: "P", Getter: get})
	intrinsic := f.member(symbols.Symbol{Kind: symbols.SymbolProperty, Name: "Q", Attrs: map[string]string{AttrIntrinsicProperty: ""}})
	hidden := f.member(symbols.Symbol{Kind: symbols.SymbolProperty, Name: "R", Attrs: map[string]string{AttrNonScriptable: ""}})
	noField := f.member(symbols.Symbol{Kind: symbols.SymbolProperty, Name: "S", Attrs: map[string]string{AttrNoBackingField: ""}})
	field := f.member(symbols.Symbol{Kind: symbols.SymbolField, Name: "Count"})
	constant := f.member(symbols.Symbol{Kind: symbols.SymbolField, Name: "Max", Flags: symbols.FlagConst, Value: "10"})
	nullConst := f.member(symbols.Symbol{Kind: symbols.SymbolField, Name: "None", Flags: symbols.FlagConst, Value: "null"})

	p := NewDefault(f.tbl, Options{GenerateBackingFields: true, LowerCamelCase: true})
	if s := p.PropertySemantics(prop); s.Kind != PropertyGetAndSetMethods || s.Getter.Name != "get_P" || s.Setter.Generated() {
		t.Errorf("property: %+v", s)
	}
	if s := p.PropertySemantics(intrinsic); s.Kind != PropertyField || s.FieldName != "q" || s.GenerateAccessors {
		t.Errorf("intrinsic: %+v", s)
	}
	if s := p.PropertySemantics(hidden); s.Kind != PropertyNotUsableFromScript {
		t.Errorf("hidden: %+v", s)
	}
	if got := p.AutoPropertyBackingFieldName(prop); got != "$p" {
		t.Errorf("backing field name %q", got)
	}
	if !p.ShouldGenerateAutoPropertyBackingField(prop) || p.ShouldGenerateAutoPropertyBackingField(noField) {
		t.Error("backing field generation")
	}
	if s := p.FieldSemantics(field); s.Kind != FieldNormal || s.Name != "count" || !s.GenerateCode {
		t.Errorf("field: %+v", s)
	}
	if s := p.FieldSemantics(constant); s.Kind != FieldConstant || s.Value != "10" || s.GenerateCode {
		t.Errorf("constant: %+v", s)
	}
	if s := p.FieldSemantics(nullConst); s.Kind != FieldNullConstant {
		t.Errorf("null constant: %+v", s)
	}

	off := NewDefault(f.tbl, Options{})
	if off.ShouldGenerateAutoEventBackingField(prop) {
		t.Error("backing fields disabled by options")
	}
}

func TestLowerFirst(t *testing.T) {
	cases := map[string]string{
		"Name":      "name",
		"XMLParser": "xmlParser",
		"URL":       "url",
		"x":         "x",
		"AB1":       "ab1",
		"Éclair":    "éclair",
	}
	for in, want := range cases {
		if got := lowerFirst(in); got != want {
			t.Errorf("lowerFirst(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNameComposes(t *testing.T) {
	decomposed := "Cafe\u0301"
	if got := normalizeName(decomposed, false); got != "Caf\u00e9" {
		t.Fatalf("got %q", got)
	}
}
