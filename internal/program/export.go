package program

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"scriptc/internal/ast"
)

// ExportExt is the file suffix of resolved program exports.
const ExportExt = ".prog.yaml"

// Export is the on-disk form of a resolved program as written by the front end.
type Export struct {
	Name string `yaml:"name,omitempty"`

	// Externals are types the program references but does not declare.
	Externals []DeclSpec `yaml:"externals,omitempty"`

	Units []UnitSpec `yaml:"units"`
}

type UnitSpec struct {
	Path string `yaml:"path"`

	// Text is the unit source. When omitted the loader reads Path relative to
	// the export file, if it exists.
	Text *string `yaml:"text,omitempty"`

	Decls []DeclSpec `yaml:"decls"`
}

// DeclSpec is one declaration. Which fields apply depends on Kind.
type DeclSpec struct {
	Kind       string            `yaml:"kind"`
	Name       string            `yaml:"name"`
	FullName   string            `yaml:"full_name,omitempty"`
	Modifiers  []string          `yaml:"modifiers,omitempty"`
	Attrs      map[string]string `yaml:"attrs,omitempty"`
	TypeParams []string          `yaml:"type_params,omitempty"`
	Bases      []string          `yaml:"bases,omitempty"`
	Members    []DeclSpec        `yaml:"members,omitempty"`

	Type   string      `yaml:"type,omitempty"`
	Params []ParamSpec `yaml:"params,omitempty"`
	// Body lists statement texts. A missing key means no body; an empty list
	// is an empty body.
	Body  *[]string  `yaml:"body,omitempty"`
	Chain *ChainSpec `yaml:"chain,omitempty"`
	Value string     `yaml:"value,omitempty"`

	Get    *AccessorSpec `yaml:"get,omitempty"`
	Set    *AccessorSpec `yaml:"set,omitempty"`
	Add    *AccessorSpec `yaml:"add,omitempty"`
	Remove *AccessorSpec `yaml:"remove,omitempty"`

	Vars []VarSpec `yaml:"vars,omitempty"`

	At []uint32 `yaml:"at,omitempty"`
	// Unresolved leaves the declaration without a symbol binding.
	Unresolved bool `yaml:"unresolved,omitempty"`
}

type ParamSpec struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// AccessorSpec without a body is an auto accessor.
type AccessorSpec struct {
	Body  *[]string         `yaml:"body,omitempty"`
	Attrs map[string]string `yaml:"attrs,omitempty"`
	At    []uint32          `yaml:"at,omitempty"`
}

type VarSpec struct {
	Name       string            `yaml:"name"`
	Init       *string           `yaml:"init,omitempty"`
	Attrs      map[string]string `yaml:"attrs,omitempty"`
	At         []uint32          `yaml:"at,omitempty"`
	Unresolved bool              `yaml:"unresolved,omitempty"`
}

type ChainSpec struct {
	Kind string   `yaml:"kind"` // base | this
	Args []string `yaml:"args,omitempty"`
}

var knownModifiers = map[string]struct{}{
	"static":   {},
	"abstract": {},
	"partial":  {},
	"mutable":  {},
	"const":    {},
}

// LoadExport reads and parses a program export.
func LoadExport(path string) (*Export, error) {
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading program %s", path)
	}
	return ParseExport(data, path)
}

// ParseExport parses export content. The path is used for error messages and
// the default program name.
func ParseExport(data []byte, path string) (*Export, error) {
	var exp Export
	if err := yaml.Unmarshal(data, &exp); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", path)
	}
	exp.setDefaults(path)
	if err := exp.validate(path); err != nil {
		return nil, err
	}
	return &exp, nil
}

// FindExports lists the program exports directly inside dir, sorted by name.
func FindExports(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+ExportExt))
	if err != nil {
		return nil, errors.Wrapf(err, "scanning %s", dir)
	}
	return matches, nil
}

func (e *Export) setDefaults(path string) {
	if e.Name == "" {
		e.Name = strings.TrimSuffix(filepath.Base(path), ExportExt)
	}
	for i := range e.Units {
		u := &e.Units[i]
		if u.Path == "" {
			u.Path = fmt.Sprintf("unit%d", i+1)
		}
		for j := range u.Decls {
			u.Decls[j].setDefaults()
		}
	}
	for i := range e.Externals {
		e.Externals[i].setDefaults()
	}
}

func (d *DeclSpec) setDefaults() {
	d.Kind = strings.ToLower(strings.TrimSpace(d.Kind))
	if d.Kind == "field" && len(d.Vars) == 0 {
		d.Vars = []VarSpec{{Name: d.Name}}
	}
	if d.Kind == "event" && len(d.Vars) == 0 {
		d.Vars = []VarSpec{{Name: d.Name}}
	}
	for i := range d.Members {
		d.Members[i].setDefaults()
	}
}

func (e *Export) validate(path string) error {
	seen := make(map[string]int, len(e.Units))
	for i, u := range e.Units {
		if prev, dup := seen[u.Path]; dup {
			return errors.Newf("%s: units[%d]: path %q already used by units[%d]", path, i, u.Path, prev)
		}
		seen[u.Path] = i
		for j := range u.Decls {
			where := fmt.Sprintf("%s: units[%d].decls[%d]", path, i, j)
			if err := u.Decls[j].validate(where, ast.DeclInvalid); err != nil {
				return err
			}
		}
	}
	for i, ext := range e.Externals {
		where := fmt.Sprintf("%s: externals[%d]", path, i)
		kind, ok := ast.ParseDeclKind(ext.Kind)
		if !ok || !kind.IsType() {
			return errors.Newf("%s: external %q must be a type, got kind %q", where, ext.Name, ext.Kind)
		}
		if len(ext.Members) > 0 {
			return errors.Newf("%s: external %q cannot declare members", where, ext.Name)
		}
	}
	return nil
}

func (d *DeclSpec) validate(where string, parent ast.DeclKind) error {
	kind, ok := ast.ParseDeclKind(d.Kind)
	if !ok || kind == ast.DeclVariable {
		return errors.Newf("%s: unknown declaration kind %q", where, d.Kind)
	}
	if d.Name == "" {
		return errors.Newf("%s: %s declaration without a name", where, d.Kind)
	}
	if parent == ast.DeclInvalid && !kind.IsType() {
		return errors.Newf("%s: top-level %s %q must be a type", where, d.Kind, d.Name)
	}
	if parent != ast.DeclInvalid && !isContainer(parent) && kind.IsType() {
		return errors.Newf("%s: %s %q cannot be nested", where, d.Kind, d.Name)
	}
	for _, m := range d.Modifiers {
		if _, ok := knownModifiers[m]; !ok {
			return errors.Newf("%s: unknown modifier %q on %s", where, m, d.Name)
		}
	}
	if err := checkAt(where, d.At); err != nil {
		return err
	}
	if d.Chain != nil {
		if kind != ast.DeclConstructor {
			return errors.Newf("%s: only constructors may chain, %s %q does", where, d.Kind, d.Name)
		}
		if d.Chain.Kind != "base" && d.Chain.Kind != "this" {
			return errors.Newf("%s: chain kind must be base or this, got %q", where, d.Chain.Kind)
		}
	}
	switch kind {
	case ast.DeclProperty, ast.DeclIndexer:
		if d.Get == nil && d.Set == nil {
			return errors.Newf("%s: property %q has no accessors", where, d.Name)
		}
	case ast.DeclCustomEvent:
		if d.Add == nil || d.Remove == nil {
			return errors.Newf("%s: event %q needs both add and remove", where, d.Name)
		}
	}
	for _, acc := range []*AccessorSpec{d.Get, d.Set, d.Add, d.Remove} {
		if acc != nil {
			if err := checkAt(where, acc.At); err != nil {
				return err
			}
		}
	}
	for i, v := range d.Vars {
		if v.Name == "" {
			return errors.Newf("%s: vars[%d] of %s without a name", where, i, d.Name)
		}
		if err := checkAt(where, v.At); err != nil {
			return err
		}
	}
	for i := range d.Members {
		if err := d.Members[i].validate(fmt.Sprintf("%s.members[%d]", where, i), kind); err != nil {
			return err
		}
	}
	return nil
}

func isContainer(k ast.DeclKind) bool {
	return k == ast.DeclClass || k == ast.DeclStruct || k == ast.DeclInterface
}

func checkAt(where string, at []uint32) error {
	switch {
	case len(at) == 0:
		return nil
	case len(at) != 2:
		return errors.Newf("%s: at must be [start, end], got %v", where, at)
	case at[0] > at[1]:
		return errors.Newf("%s: at start %d is after end %d", where, at[0], at[1])
	}
	return nil
}
