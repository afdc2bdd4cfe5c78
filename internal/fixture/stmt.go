package fixture

import (
	"gopkg.in/yaml.v3"
	"tlog.app/go/errors"

	"github.com/you-not-fish/rcfg/internal/ast"
	"github.com/you-not-fish/rcfg/internal/cfg"
)

// stmtDoc is one entry of a block's stmts list:
//
//	nop
//	{let: P, place: Q}
//	{let: P, call: F, args: [A, B], allocate: true}
//	{deallocate: P}
//	{dup: P, count: N}
//	{drop: P, count: N}
//
// count defaults to one.
type stmtDoc struct {
	stmt cfg.Stmt
}

type stmtFields struct {
	Let        *uint32  `yaml:"let"`
	Place      *uint32  `yaml:"place"`
	Call       *string  `yaml:"call"`
	Args       []uint32 `yaml:"args"`
	Allocate   bool     `yaml:"allocate"`
	Deallocate *uint32  `yaml:"deallocate"`
	Dup        *uint32  `yaml:"dup"`
	Drop       *uint32  `yaml:"drop"`
	Count      *uint32  `yaml:"count"`
}

var stmtKeys = map[string]bool{
	"let": true, "place": true, "call": true, "args": true, "allocate": true,
	"deallocate": true, "dup": true, "drop": true, "count": true,
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *stmtDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		if node.Value != "nop" {
			return errors.New("line %d: unknown statement %q", node.Line, node.Value)
		}
		d.stmt = &cfg.Nop{}
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return errors.New("line %d: malformed statement", node.Line)
	}
	for i := 0; i < len(node.Content); i += 2 {
		if k := node.Content[i]; !stmtKeys[k.Value] {
			return errors.New("line %d: unknown statement field %q", k.Line, k.Value)
		}
	}

	var f stmtFields
	if err := node.Decode(&f); err != nil {
		return err
	}

	forms := 0
	for _, set := range []bool{f.Let != nil, f.Deallocate != nil, f.Dup != nil, f.Drop != nil} {
		if set {
			forms++
		}
	}
	if forms != 1 {
		return errors.New("line %d: want exactly one of let, deallocate, dup and drop", node.Line)
	}

	count := uint32(1)
	if f.Count != nil {
		count = *f.Count
	}

	switch {
	case f.Let != nil:
		a := &cfg.Assign{Place: cfg.Place(*f.Let), Allocate: f.Allocate}
		switch {
		case f.Place != nil && f.Call == nil && f.Args == nil:
			a.Value = cfg.Place(*f.Place)
		case f.Call != nil && f.Place == nil:
			args := make([]cfg.Place, len(f.Args))
			for i, p := range f.Args {
				args[i] = cfg.Place(p)
			}
			a.Value = &cfg.Call{Func: ast.NewIdent(*f.Call), Args: args}
		default:
			return errors.New("line %d: let wants either place or call", node.Line)
		}
		if f.Count != nil {
			return errors.New("line %d: count only applies to dup and drop", node.Line)
		}
		d.stmt = a
	case f.Deallocate != nil:
		d.stmt = &cfg.Deallocate{Place: cfg.Place(*f.Deallocate)}
	case f.Dup != nil:
		d.stmt = &cfg.Dup{Place: cfg.Place(*f.Dup), Count: count}
	case f.Drop != nil:
		d.stmt = &cfg.Drop{Place: cfg.Place(*f.Drop), Count: count}
	}
	if f.Let == nil && (f.Place != nil || f.Call != nil || f.Args != nil || f.Allocate) {
		return errors.New("line %d: place, call, args and allocate only apply to let", node.Line)
	}
	return nil
}
