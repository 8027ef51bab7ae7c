// Package bodyc defines the per-body compiler the lowering stage delegates
// statement and expression lowering to, plus Textual, a reference
// implementation that treats statements as opaque text.
package bodyc

import (
	"scriptc/internal/ast"
	"scriptc/internal/diag"
	"scriptc/internal/model"
	"scriptc/internal/policy"
	"scriptc/internal/source"
	"scriptc/internal/symbols"
)

// Env is what a method compiler may use besides its arguments.
type Env struct {
	Symbols  *symbols.Table
	Policy   policy.Policy
	Reporter diag.Reporter
}

// Target names the storage a field initializer writes to.
type Target struct {
	Static bool
	Type   string // target type name, used for static storage
}

// Factory creates one MethodCompiler per compiled body.
type Factory interface {
	NewMethodCompiler(env Env) MethodCompiler
}

// FactoryFunc adapts a function to Factory.
type FactoryFunc func(env Env) MethodCompiler

func (f FactoryFunc) NewMethodCompiler(env Env) MethodCompiler { return f(env) }

// MethodCompiler lowers one body. Every method may fail with an error and may
// report diagnostics through Env.Reporter.
type MethodCompiler interface {
	CompileMethod(body *ast.Block, method symbols.SymbolID, sem policy.MethodSemantics) (*model.Function, error)
	// CompileConstructor decides where init is spliced relative to the
	// constructor chain and the written body.
	CompileConstructor(decl *ast.Decl, ctor symbols.SymbolID, init []model.Stmt, sem policy.ConstructorSemantics) (*model.Function, error)
	CompileDefaultConstructor(ctor symbols.SymbolID, init []model.Stmt, sem policy.ConstructorSemantics) (*model.Function, error)

	CompileDefaultFieldInitializer(loc source.Span, target Target, field string, typ symbols.TypeRef) ([]model.Stmt, error)
	CompileFieldInitializer(loc source.Span, target Target, field string, init *ast.Expr) ([]model.Stmt, error)

	CompileAutoPropertyGetter(prop symbols.SymbolID, target Target, sem policy.MethodSemantics, backingField string) (*model.Function, error)
	CompileAutoPropertySetter(prop symbols.SymbolID, target Target, sem policy.MethodSemantics, backingField string) (*model.Function, error)
	CompileAutoEventAdder(evt symbols.SymbolID, target Target, sem policy.MethodSemantics, backingField string) (*model.Function, error)
	CompileAutoEventRemover(evt symbols.SymbolID, target Target, sem policy.MethodSemantics, backingField string) (*model.Function, error)
}
