package bodyc

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"

	"scriptc/internal/ast"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

// FaultStmt makes Textual fail on the body containing it.
const FaultStmt = "!fault"

// ErrInjectedFault is returned for bodies containing FaultStmt.
var ErrInjectedFault = errors.New("injected fault")

// Textual copies statement text into the target model.
type Textual struct{}

func (Textual) NewMethodCompiler(env Env) MethodCompiler {
	return &textual{env: env}
}

type textual struct {
	env Env
}

func (c *textual) params(sym symbols.SymbolID) []string {
	s := c.env.Symbols.Get(sym)
	if s == nil {
		return nil
	}
	out := make([]string, 0, len(s.Params))
	for _, p := range s.Params {
		out = append(out, p.Name)
	}
	return out
}

func (c *textual) name(sym symbols.SymbolID) string {
	if s := c.env.Symbols.Get(sym); s != nil {
		return s.FullName
	}
	return fmt.Sprintf("#%d", sym)
}

func stmts(block *ast.Block, where string) ([]model.Stmt, error) {
	if block == nil {
		return nil, nil
	}
	out := make([]model.Stmt, 0, len(block.Stmts))
	for _, s := range block.Stmts {
		if strings.TrimSpace(s.Text) == FaultStmt {
			return nil, errors.Wrapf(ErrInjectedFault, "compiling %s", where)
		}
		out = append(out, model.Stmt{Text: s.Text, Span: s.Span})
	}
	return out, nil
}

func (c *textual) CompileMethod(body *ast.Block, method symbols.SymbolID, sem policy.MethodSemantics) (*model.Function, error) {
	code, err := stmts(body, c.name(method))
	if err != nil {
		return nil, err
	}
	params := c.params(method)
	if sem.Kind == policy.MethodStaticWithThisAsFirstArgument {
		params = append([]string{"$this"}, params...)
	}
	return &model.Function{Params: params, Body: code}, nil
}

func (c *textual) CompileConstructor(decl *ast.Decl, ctor symbols.SymbolID, init []model.Stmt, sem policy.ConstructorSemantics) (*model.Function, error) {
	if decl == nil {
		return nil, errors.AssertionFailedf("constructor %s compiled without a declaration", c.name(ctor))
	}
	code, err := stmts(decl.Body, c.name(ctor))
	if err != nil {
		return nil, err
	}
	var body []model.Stmt
	chainedToThis := false
	if ch := decl.Chain; ch != nil {
		args := make([]string, 0, len(ch.Args))
		for _, a := range ch.Args {
			if strings.TrimSpace(a.Text) == FaultStmt {
				return nil, errors.Wrapf(ErrInjectedFault, "compiling initializer of %s", c.name(ctor))
			}
			args = append(args, a.Text)
		}
		callee := "base"
		if ch.Kind == ast.InitThis {
			callee = "this"
			chainedToThis = true
		}
		body = append(body, model.Stmt{Text: fmt.Sprintf("%s(%s);", callee, strings.Join(args, ", ")), Span: ch.Span})
	}
	if !chainedToThis {
		body = append(body, init...)
	}
	body = append(body, code...)
	return c.wrap(ctor, body, sem)
}

func (c *textual) CompileDefaultConstructor(ctor symbols.SymbolID, init []model.Stmt, sem policy.ConstructorSemantics) (*model.Function, error) {
	return c.wrap(ctor, append([]model.Stmt(nil), init...), sem)
}

// wrap turns a constructor body into a factory body for CtorStaticMethod.
func (c *textual) wrap(ctor symbols.SymbolID, body []model.Stmt, sem policy.ConstructorSemantics) (*model.Function, error) {
	params := c.params(ctor)
	switch sem.Kind {
	case policy.CtorUnnamed, policy.CtorNamed:
		return &model.Function{Params: params, Body: body}, nil
	case policy.CtorStaticMethod:
		out := make([]model.Stmt, 0, len(body)+2)
		out = append(out, model.Stmt{Text: "var $this = {};"})
		for _, s := range body {
			s.Text = strings.ReplaceAll(s.Text, "this.", "$this.")
			out = append(out, s)
		}
		out = append(out, model.Stmt{Text: "return $this;"})
		return &model.Function{Params: params, Body: out}, nil
	default:
		return nil, errors.Newf("constructor %s with %s semantics has no body", c.name(ctor), sem.Kind)
	}
}

func (c *textual) CompileDefaultFieldInitializer(loc source.Span, target Target, field string, typ symbols.TypeRef) ([]model.Stmt, error) {
	return []model.Stmt{{Text: fmt.Sprintf("%s = %s;", storage(target, field), c.zeroValue(typ)), Span: loc}}, nil
}

func (c *textual) CompileFieldInitializer(loc source.Span, target Target, field string, init *ast.Expr) ([]model.Stmt, error) {
	if init == nil {
		return nil, errors.AssertionFailedf("field %s has no initializer", field)
	}
	if strings.TrimSpace(init.Text) == FaultStmt {
		return nil, errors.Wrapf(ErrInjectedFault, "compiling initializer of %s", field)
	}
	return []model.Stmt{{Text: fmt.Sprintf("%s = %s;", storage(target, field), init.Text), Span: loc}}, nil
}

func (c *textual) CompileAutoPropertyGetter(_ symbols.SymbolID, target Target, _ policy.MethodSemantics, backingField string) (*model.Function, error) {
	return &model.Function{Body: []model.Stmt{{Text: fmt.Sprintf("return %s;", storage(target, backingField))}}}, nil
}

func (c *textual) CompileAutoPropertySetter(_ symbols.SymbolID, target Target, _ policy.MethodSemantics, backingField string) (*model.Function, error) {
	return &model.Function{
		Params: []string{"value"},
		Body:   []model.Stmt{{Text: fmt.Sprintf("%s = value;", storage(target, backingField))}},
	}, nil
}

func (c *textual) CompileAutoEventAdder(_ symbols.SymbolID, target Target, _ policy.MethodSemantics, backingField string) (*model.Function, error) {
	return c.delegateOp(target, backingField, "combine"), nil
}

func (c *textual) CompileAutoEventRemover(_ symbols.SymbolID, target Target, _ policy.MethodSemantics, backingField string) (*model.Function, error) {
	return c.delegateOp(target, backingField, "remove"), nil
}

func (c *textual) delegateOp(target Target, backingField, op string) *model.Function {
	field := storage(target, backingField)
	return &model.Function{
		Params: []string{"value"},
		Body:   []model.Stmt{{Text: fmt.Sprintf("%s = $delegate.%s(%s, value);", field, op, field)}},
	}
}

func storage(target Target, field string) string {
	if target.Static {
		return target.Type + "." + field
	}
	return "this." + field
}

var zeroes = map[string]string{
	"bool":    "false",
	"char":    "0",
	"byte":    "0",
	"sbyte":   "0",
	"short":   "0",
	"ushort":  "0",
	"int":     "0",
	"uint":    "0",
	"long":    "0",
	"ulong":   "0",
	"float":   "0",
	"double":  "0",
	"decimal": "0",
}

// zeroValue is the default value of a field of type typ.
func (c *textual) zeroValue(typ symbols.TypeRef) string {
	if z, ok := zeroes[typ.Name]; ok && len(typ.Args) == 0 {
		return z
	}
	sym := c.env.Symbols.Get(typ.Type)
	switch {
	case sym == nil:
		return "null"
	case sym.TypeKind == symbols.TypeEnum:
		return "0"
	case sym.TypeKind == symbols.TypeStruct:
		name := typ.String()
		if c.env.Policy != nil {
			if ts := c.env.Policy.TypeSemantics(sym.ID); ts.Name != "" {
				name = ts.Name
			}
		}
		return "new " + name + "()"
	}
	return "null"
}
