// Package fixture reads modules of hand-written control flow graphs from
// YAML.
//
// A fixture file has two sections:
//
//	types:
//	  Color: {enum: [Red, Green, {Rgb: [Int, Int, Int]}]}
//	  Point: {struct: {x: Int, y: Int}}
//	functions:
//	  - name: add
//	    ret: Int
//	    args: [Int, Int]
//	    places: [Int]
//	    blocks:
//	      - stmts:
//	          - {let: 3, call: add, args: [1, 2]}
//	        return: 3
//
// Registers are numbered as in the rendered form: _0 is the return slot,
// the arguments follow, and places lists the types of the remaining
// registers in order.
package fixture

import (
	"bytes"
	"io"
	"os"

	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/you-not-fish/rcfg/internal/ast"
	"github.com/you-not-fish/rcfg/internal/cfg"
)

// Module is a decoded fixture file.
type Module struct {
	// AST holds the type definitions and one body-less ast.Function per
	// graph carrying its signature.
	AST *ast.Module

	// Funcs holds the graphs in file order.
	Funcs []*cfg.Cfg
}

// Func returns the graph with the given name, or nil.
func (m *Module) Func(name string) *cfg.Cfg {
	for _, c := range m.Funcs {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// file is the top-level document.
type file struct {
	Types     yaml.Node `yaml:"types"`
	Functions []funcDoc `yaml:"functions"`
}

type funcDoc struct {
	Name   string     `yaml:"name"`
	Ret    string     `yaml:"ret"`
	Args   []string   `yaml:"args"`
	Places []string   `yaml:"places"`
	Blocks []blockDoc `yaml:"blocks"`
}

type blockDoc struct {
	Phi    []phiDoc  `yaml:"phi"`
	Stmts  []stmtDoc `yaml:"stmts"`
	Goto   *int      `yaml:"goto"`
	Return *uint32   `yaml:"return"`
	If     *ifDoc    `yaml:"if"`
}

type ifDoc struct {
	Cond uint32   `yaml:"cond"`
	Then blockDoc `yaml:"then"`
	Else blockDoc `yaml:"else"`
}

type phiDoc struct {
	Place uint32   `yaml:"place"`
	Opts  []optDoc `yaml:"opts"`
}

type optDoc struct {
	Label string `yaml:"label"`
	Src   uint32 `yaml:"src"`
}

// Load reads and decodes the fixture file at path.
func Load(path string) (*Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture")
	}
	m, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "%s", path)
	}
	return m, nil
}

// Decode reads a fixture from r.
func Decode(r io.Reader) (*Module, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture")
	}
	return Parse(data)
}

// Parse decodes a fixture document. Unknown fields are rejected.
func Parse(data []byte) (*Module, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parse yaml")
	}

	tydefs, err := decodeTypes(&f.Types)
	if err != nil {
		return nil, errors.Wrap(err, "types")
	}

	m := &Module{AST: &ast.Module{TyDefs: tydefs.defs}}
	ctors := m.AST.EnumConstructors()
	seen := make(map[string]bool)
	for i, fd := range f.Functions {
		if fd.Name == "" {
			return nil, errors.New("function %d: missing name", i)
		}
		name := string(ast.NewIdent(fd.Name))
		if seen[name] {
			return nil, errors.New("function %s: defined twice", name)
		}
		seen[name] = true

		c, fn, err := decodeFunc(tydefs, ctors, name, &f.Functions[i])
		if err != nil {
			return nil, errors.Wrap(err, "function %s", name)
		}
		m.Funcs = append(m.Funcs, c)
		m.AST.Fns = append(m.AST.Fns, fn)
	}
	return m, nil
}
