package model

import (
	"fmt"
	"io"
	"strings"
)

// Printer dumps a forest in a stable human readable form.
type Printer struct {
	w   io.Writer
	err error
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Dump writes the forest to w.
func Dump(w io.Writer, f *Forest) error {
	return NewPrinter(w).PrintForest(f)
}

func (p *Printer) PrintForest(f *Forest) error {
	if f == nil {
		return nil
	}
	for _, c := range f.Classes {
		p.printClass(c)
	}
	for _, e := range f.Enums {
		p.printf("enum %s (sym=%d)\n", e.Name, e.Symbol)
	}
	for _, i := range f.Interfaces {
		p.printf("interface %s (sym=%d)\n", i.Name, i.Symbol)
	}
	return p.err
}

func (p *Printer) printClass(c *Class) {
	p.printf("%s %s%s (sym=%d)\n", c.Kind(), c.Name(), typeParams(c.data.typeParams), c.TypeSymbol())
	if len(c.data.staticInit) > 0 {
		p.printf("  static init\n")
		p.printStmts(c.data.staticInit, "    ")
	}
	if len(c.data.instanceInit) > 0 {
		p.printf("  instance init\n")
		p.printStmts(c.data.instanceInit, "    ")
	}
	if c.data.unnamed != nil {
		p.printf("  ctor\n")
		p.printFunc(c.data.unnamed)
	}
	for _, n := range c.data.named {
		p.printf("  ctor %s\n", n.Name)
		p.printFunc(n.Func)
	}
	for _, m := range c.data.static {
		p.printMethod("static ", m)
	}
	for _, m := range c.data.instance {
		p.printMethod("", m)
	}
	p.printf("\n")
}

func (p *Printer) printMethod(prefix string, m Method) {
	p.printf("  %s%s %s%s\n", prefix, m.Kind, m.Name, typeParams(m.TypeParams))
	p.printFunc(m.Func)
}

func (p *Printer) printFunc(fn *Function) {
	if fn == nil {
		p.printf("    <nil>\n")
		return
	}
	if len(fn.Params) > 0 {
		p.printf("    (%s)\n", strings.Join(fn.Params, ", "))
	}
	p.printStmts(fn.Body, "    ")
}

func (p *Printer) printStmts(stmts []Stmt, indent string) {
	for _, s := range stmts {
		p.printf("%s%s\n", indent, s.Text)
	}
}

func (p *Printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func typeParams(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return "<" + strings.Join(names, ", ") + ">"
}
