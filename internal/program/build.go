package program

import (
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"fortio.org/safecast"
	"github.com/cockroachdb/errors"

	"scriptc/internal/ast"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

// Load reads a program export and builds the program it describes.
func Load(path string) (*Program, error) {
	exp, err := LoadExport(path)
	if err != nil {
		return nil, err
	}
	prog, err := Build(exp, filepath.Dir(path))
	if err != nil {
		return nil, errors.Wrapf(err, "building %s", path)
	}
	prog.Path = path
	return prog, nil
}

type builder struct {
	baseDir string
	files   *source.FileSet
	table   *symbols.Table

	simple       map[string][]symbols.SymbolID // simple name -> types
	rawBases     map[symbols.SymbolID][]string
	declared     map[symbols.SymbolID]bool // declared by a unit, not external
	ctorDeclared map[symbols.SymbolID]bool // has a written instance constructor
}

// Build turns a parsed export into a program. Partial types declared in
// several places share one type symbol. The implicit constructors the
// language provides are added to the symbol table.
func Build(exp *Export, baseDir string) (*Program, error) {
	b := &builder{
		baseDir:      baseDir,
		files:        source.NewFileSetWithBase(baseDir),
		table:        symbols.NewTable(0),
		simple:       make(map[string][]symbols.SymbolID),
		rawBases:     make(map[symbols.SymbolID][]string),
		declared:     make(map[symbols.SymbolID]bool),
		ctorDeclared: make(map[symbols.SymbolID]bool),
	}
	prog := &Program{Name: exp.Name, Files: b.files, Symbols: b.table}

	// types first: member signatures and bases may reference any of them
	for i := range exp.Externals {
		if err := b.declareType(&exp.Externals[i], symbols.NoSymbolID, "", true); err != nil {
			return nil, err
		}
	}
	for i := range exp.Units {
		for j := range exp.Units[i].Decls {
			if err := b.declareType(&exp.Units[i].Decls[j], symbols.NoSymbolID, "", false); err != nil {
				return nil, err
			}
		}
	}
	if err := b.resolveBases(); err != nil {
		return nil, err
	}

	for i := range exp.Units {
		u, err := b.buildUnit(&exp.Units[i])
		if err != nil {
			return nil, err
		}
		prog.Units = append(prog.Units, u)
	}
	b.addImplicitConstructors()
	return prog, nil
}

func (b *builder) declareType(d *DeclSpec, owner symbols.SymbolID, ownerFull string, external bool) error {
	kind, _ := ast.ParseDeclKind(d.Kind)
	if !kind.IsType() {
		return nil
	}
	if d.FullName == "" {
		d.FullName = d.Name
		if ownerFull != "" {
			d.FullName = ownerFull + "." + d.Name
		}
	}
	tk, _ := symbols.ParseTypeKind(d.Kind)

	id, ok := b.table.Lookup(d.FullName)
	if !ok {
		sym := symbols.Symbol{
			Kind:       symbols.SymbolType,
			Name:       d.Name,
			FullName:   d.FullName,
			TypeKind:   tk,
			TypeParams: slices.Clone(d.TypeParams),
		}
		if owner.IsValid() {
			id = b.table.AddMember(owner, sym)
		} else {
			id = b.table.Add(sym)
		}
		b.simple[d.Name] = append(b.simple[d.Name], id)
	}

	sym := b.table.Get(id)
	if sym.TypeKind != tk {
		return errors.Newf("type %s declared both as %s and %s", d.FullName, sym.TypeKind, tk)
	}
	if len(sym.TypeParams) == 0 {
		sym.TypeParams = slices.Clone(d.TypeParams)
	}
	sym.Flags |= modifierFlags(d.Modifiers)
	if len(d.Attrs) > 0 {
		if sym.Attrs == nil {
			sym.Attrs = make(map[string]string, len(d.Attrs))
		}
		maps.Copy(sym.Attrs, d.Attrs)
	}
	if _, ok := sym.Attrs["MutableValueType"]; ok && tk == symbols.TypeStruct {
		sym.Flags |= symbols.FlagMutable
	}
	if external {
		sym.Flags |= symbols.FlagExternal
	} else {
		b.declared[id] = true
	}
	b.rawBases[id] = append(b.rawBases[id], d.Bases...)

	for i := range d.Members {
		if err := b.declareType(&d.Members[i], id, d.FullName, external); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) resolveBases() error {
	for _, id := range b.table.Types() {
		var bases []symbols.TypeRef
		seen := make(map[string]struct{})
		for _, raw := range b.rawBases[id] {
			ref, err := b.ref(raw, id, nil)
			if err != nil {
				return errors.Wrapf(err, "base of %s", b.table.Get(id).FullName)
			}
			key := ref.String()
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			bases = append(bases, ref)
		}
		b.table.Get(id).Bases = bases
	}
	return nil
}

// ref resolves a type spelling in the scope of ctx. Type parameters and
// unknown names (builtins) stay unresolved.
func (b *builder) ref(text string, ctx symbols.SymbolID, typeParams []string) (symbols.TypeRef, error) {
	if strings.TrimSpace(text) == "" {
		return symbols.TypeRef{}, nil
	}
	te, err := parseTypeExpr(text)
	if err != nil {
		return symbols.TypeRef{}, err
	}
	return b.resolveExpr(te, ctx, typeParams), nil
}

func (b *builder) resolveExpr(te typeExpr, ctx symbols.SymbolID, typeParams []string) symbols.TypeRef {
	ref := symbols.TypeRef{Name: te.name}
	for _, a := range te.args {
		ref.Args = append(ref.Args, b.resolveExpr(a, ctx, typeParams))
	}
	if slices.Contains(typeParams, te.name) || b.isTypeParam(te.name, ctx) {
		return ref
	}
	ref.Type = b.lookupType(te.name, ctx)
	return ref
}

func (b *builder) isTypeParam(name string, ctx symbols.SymbolID) bool {
	for s := b.table.Get(ctx); s != nil; s = b.table.Get(s.Owner) {
		if slices.Contains(s.TypeParams, name) {
			return true
		}
	}
	return false
}

func (b *builder) lookupType(name string, ctx symbols.SymbolID) symbols.SymbolID {
	if id, ok := b.table.Lookup(name); ok {
		return id
	}
	// enclosing scopes, innermost first
	if s := b.table.Get(ctx); s != nil {
		scope := s.FullName
		for scope != "" {
			if id, ok := b.table.Lookup(scope + "." + name); ok {
				return id
			}
			i := strings.LastIndexByte(scope, '.')
			if i < 0 {
				break
			}
			scope = scope[:i]
		}
	}
	if ids := b.simple[name]; len(ids) == 1 {
		return ids[0]
	}
	return symbols.NoSymbolID
}

// unit is the per-unit state of the second pass.
type unit struct {
	b    *builder
	file *source.File
	tree *ast.Tree
	res  *MapResolver
}

func (b *builder) buildUnit(spec *UnitSpec) (*Unit, error) {
	fid, err := b.addFile(spec)
	if err != nil {
		return nil, err
	}
	u := &unit{
		b:    b,
		file: b.files.Get(fid),
		tree: ast.NewTree(fid, 0),
		res:  NewMapResolver(b.table),
	}
	for i := range spec.Decls {
		if err := u.decl(ast.NoDeclID, &spec.Decls[i], symbols.NoSymbolID); err != nil {
			return nil, errors.Wrapf(err, "unit %s", spec.Path)
		}
	}
	return &Unit{Path: spec.Path, File: fid, Tree: u.tree, Resolver: u.res}, nil
}

func (b *builder) addFile(spec *UnitSpec) (source.FileID, error) {
	if spec.Text != nil {
		return b.files.AddVirtual(spec.Path, []byte(*spec.Text)), nil
	}
	path := spec.Path
	if !filepath.IsAbs(path) && b.baseDir != "" {
		path = filepath.Join(b.baseDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return b.files.AddVirtual(spec.Path, nil), nil
	}
	fid, err := b.files.Load(path)
	if err != nil {
		return 0, errors.Wrapf(err, "loading unit %s", spec.Path)
	}
	return fid, nil
}

func (u *unit) span(at []uint32) (source.Span, error) {
	if len(at) == 0 {
		return source.Span{File: u.file.ID}, nil
	}
	size, err := safecast.Conv[uint32](len(u.file.Content))
	if err != nil {
		return source.Span{}, err
	}
	if at[1] > size {
		return source.Span{}, errors.Newf("span %v is outside of %s (%d bytes)", at, u.file.Path, size)
	}
	return source.Span{File: u.file.ID, Start: at[0], End: at[1]}, nil
}

func (u *unit) add(parent ast.DeclID, d ast.Decl) ast.DeclID {
	if parent.IsValid() {
		return u.tree.AddMember(parent, d)
	}
	return u.tree.AddRoot(d)
}

func (u *unit) bind(decl ast.DeclID, sym symbols.SymbolID, unresolved bool) {
	if !unresolved {
		u.res.Bind(decl, sym)
	}
}

func (u *unit) decl(parent ast.DeclID, d *DeclSpec, owner symbols.SymbolID) error {
	kind, _ := ast.ParseDeclKind(d.Kind)
	span, err := u.span(d.At)
	if err != nil {
		return errors.Wrapf(err, "%s %s", d.Kind, d.Name)
	}
	decl := ast.Decl{Kind: kind, Name: d.Name, Span: span}
	table := u.b.table

	switch kind {
	case ast.DeclClass, ast.DeclStruct, ast.DeclInterface, ast.DeclEnum, ast.DeclDelegate:
		id, _ := table.Lookup(d.FullName)
		if sym := table.Get(id); sym != nil && sym.Span == source.NoSpan {
			sym.Span = span
		}
		declID := u.add(parent, decl)
		u.bind(declID, id, d.Unresolved)
		for i := range d.Members {
			if err := u.decl(declID, &d.Members[i], id); err != nil {
				return err
			}
		}
		return nil

	case ast.DeclMethod, ast.DeclOperator, ast.DeclConversion:
		decl.Body = block(d.Body, span)
		sym, err := u.member(d, owner, span)
		if err != nil {
			return err
		}
		if kind != ast.DeclMethod {
			sym.Kind = symbols.SymbolOperator
		}
		u.bind(u.add(parent, decl), table.AddMember(owner, sym), d.Unresolved)

	case ast.DeclConstructor:
		decl.Body = block(d.Body, span)
		if d.Chain != nil {
			decl.Chain = &ast.CtorInitializer{Kind: ast.InitBase, Span: span}
			if d.Chain.Kind == "this" {
				decl.Chain.Kind = ast.InitThis
			}
			for _, a := range d.Chain.Args {
				decl.Chain.Args = append(decl.Chain.Args, ast.Expr{Span: span, Text: a})
			}
		}
		sym, err := u.member(d, owner, span)
		if err != nil {
			return err
		}
		sym.Kind = symbols.SymbolConstructor
		sym.Name = ".ctor"
		if sym.IsStatic() {
			sym.Name = ".cctor"
		} else {
			u.b.ctorDeclared[owner] = true
		}
		u.bind(u.add(parent, decl), table.AddMember(owner, sym), d.Unresolved)

	case ast.DeclProperty, ast.DeclIndexer:
		if decl.Getter, err = u.accessor(d.Get, span); err != nil {
			return err
		}
		if decl.Setter, err = u.accessor(d.Set, span); err != nil {
			return err
		}
		sym, err := u.member(d, owner, span)
		if err != nil {
			return err
		}
		sym.Kind = symbols.SymbolProperty
		if kind == ast.DeclIndexer {
			sym.Flags |= symbols.FlagIndexer
		}
		pid := table.AddMember(owner, sym)
		get := u.accessorSymbol(owner, sym, "get_", d.Get, decl.Getter)
		set := u.accessorSymbol(owner, sym, "set_", d.Set, decl.Setter)
		table.Get(pid).Getter, table.Get(pid).Setter = get, set
		u.bind(u.add(parent, decl), pid, d.Unresolved)

	case ast.DeclCustomEvent:
		if decl.Adder, err = u.accessor(d.Add, span); err != nil {
			return err
		}
		if decl.Remover, err = u.accessor(d.Remove, span); err != nil {
			return err
		}
		sym, err := u.member(d, owner, span)
		if err != nil {
			return err
		}
		sym.Kind = symbols.SymbolEvent
		eid := table.AddMember(owner, sym)
		add := u.accessorSymbol(owner, sym, "add_", d.Add, decl.Adder)
		remove := u.accessorSymbol(owner, sym, "remove_", d.Remove, decl.Remover)
		table.Get(eid).Getter, table.Get(eid).Setter = add, remove
		u.bind(u.add(parent, decl), eid, d.Unresolved)

	case ast.DeclEvent, ast.DeclField:
		declID := u.add(parent, decl)
		for i := range d.Vars {
			if err := u.variable(declID, kind, d, &d.Vars[i], owner); err != nil {
				return err
			}
		}
	}
	return nil
}

// member builds the symbol shared by every member kind.
func (u *unit) member(d *DeclSpec, owner symbols.SymbolID, span source.Span) (symbols.Symbol, error) {
	sym := symbols.Symbol{
		Kind:       symbols.SymbolMethod,
		Name:       d.Name,
		Flags:      modifierFlags(d.Modifiers),
		Span:       span,
		Attrs:      maps.Clone(d.Attrs),
		TypeParams: slices.Clone(d.TypeParams),
		Value:      d.Value,
	}
	var err error
	if sym.Type, err = u.b.ref(d.Type, owner, d.TypeParams); err != nil {
		return sym, errors.Wrapf(err, "%s %s", d.Kind, d.Name)
	}
	for _, p := range d.Params {
		ref, err := u.b.ref(p.Type, owner, d.TypeParams)
		if err != nil {
			return sym, errors.Wrapf(err, "parameter %s of %s", p.Name, d.Name)
		}
		sym.Params = append(sym.Params, symbols.Param{Name: p.Name, Type: ref})
	}
	return sym, nil
}

func (u *unit) accessor(spec *AccessorSpec, declSpan source.Span) (*ast.Accessor, error) {
	if spec == nil {
		return nil, nil
	}
	span := declSpan
	if len(spec.At) > 0 {
		var err error
		if span, err = u.span(spec.At); err != nil {
			return nil, err
		}
	}
	return &ast.Accessor{Span: span, Body: block(spec.Body, span)}, nil
}

// accessorSymbol adds the accessor method symbol of a property or event.
func (u *unit) accessorSymbol(owner symbols.SymbolID, prop symbols.Symbol, prefix string, spec *AccessorSpec, acc *ast.Accessor) symbols.SymbolID {
	if spec == nil {
		return symbols.NoSymbolID
	}
	sym := symbols.Symbol{
		Kind:  symbols.SymbolMethod,
		Name:  prefix + prop.Name,
		Flags: prop.Flags&(symbols.FlagStatic|symbols.FlagAbstract) | symbols.FlagAccessor,
		Span:  acc.Span,
		Attrs: maps.Clone(spec.Attrs),
		Type:  prop.Type,
	}
	return u.b.table.AddMember(owner, sym)
}

func (u *unit) variable(parent ast.DeclID, kind ast.DeclKind, d *DeclSpec, v *VarSpec, owner symbols.SymbolID) error {
	span, err := u.span(v.At)
	if err != nil {
		return errors.Wrapf(err, "variable %s", v.Name)
	}
	if len(v.At) == 0 {
		span = u.tree.Get(parent).Span
	}
	vd := ast.Decl{Name: v.Name, Span: span}
	if v.Init != nil {
		vd.Init = &ast.Expr{Span: span, Text: *v.Init}
	}
	declID := u.tree.AddVar(parent, vd)

	sym := symbols.Symbol{
		Kind:  symbols.SymbolField,
		Name:  v.Name,
		Flags: modifierFlags(d.Modifiers),
		Span:  span,
		Attrs: maps.Clone(d.Attrs),
	}
	if len(v.Attrs) > 0 {
		if sym.Attrs == nil {
			sym.Attrs = make(map[string]string, len(v.Attrs))
		}
		maps.Copy(sym.Attrs, v.Attrs)
	}
	if sym.Type, err = u.b.ref(d.Type, owner, nil); err != nil {
		return errors.Wrapf(err, "variable %s", v.Name)
	}
	if sym.Has(symbols.FlagConst) {
		sym.Value = d.Value
		if v.Init != nil {
			sym.Value = *v.Init
		}
	}

	table := u.b.table
	if kind == ast.DeclEvent {
		sym.Kind = symbols.SymbolEvent
		eid := table.AddMember(owner, sym)
		acc := &ast.Accessor{Span: span}
		add := u.accessorSymbol(owner, sym, "add_", &AccessorSpec{}, acc)
		remove := u.accessorSymbol(owner, sym, "remove_", &AccessorSpec{}, acc)
		table.Get(eid).Getter, table.Get(eid).Setter = add, remove
		u.bind(declID, eid, v.Unresolved || d.Unresolved)
		return nil
	}
	u.bind(declID, table.AddMember(owner, sym), v.Unresolved || d.Unresolved)
	return nil
}

// addImplicitConstructors gives every struct and every non-static class
// without a written instance constructor a parameterless constructor.
func (b *builder) addImplicitConstructors() {
	for _, id := range b.table.Types() {
		if !b.declared[id] {
			continue
		}
		sym := b.table.Get(id)
		switch {
		case sym.TypeKind == symbols.TypeStruct:
		case sym.TypeKind == symbols.TypeClass && !sym.IsStatic() && !b.ctorDeclared[id]:
		default:
			continue
		}
		b.table.AddMember(id, symbols.Symbol{
			Kind:  symbols.SymbolConstructor,
			Name:  ".ctor",
			Flags: symbols.FlagImplicit,
			Span:  sym.Span,
		})
	}
}

func modifierFlags(mods []string) symbols.SymbolFlags {
	var f symbols.SymbolFlags
	for _, m := range mods {
		switch m {
		case "static":
			f |= symbols.FlagStatic
		case "abstract":
			f |= symbols.FlagAbstract
		case "partial":
			f |= symbols.FlagPartial
		case "mutable":
			f |= symbols.FlagMutable
		case "const":
			f |= symbols.FlagConst
		}
	}
	return f
}

func block(body *[]string, span source.Span) *ast.Block {
	if body == nil {
		return nil
	}
	b := &ast.Block{Span: span, Stmts: make([]ast.Stmt, 0, len(*body))}
	for _, text := range *body {
		b.Stmts = append(b.Stmts, ast.Stmt{Span: span, Text: text})
	}
	return b
}
