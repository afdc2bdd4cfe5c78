package cfg

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/rcfg/internal/types"
)

// ViolationKind classifies a broken invariant.
type ViolationKind int

const (
	BadStructure  ViolationKind = iota // missing, nil or shared blocks
	BadEntry                           // entry block is a dead end
	BadPlace                           // register out of range or untyped
	BadTarget                          // goto target out of range
	BadPhi                             // phi options disagree with predecessors
	TypeMismatch                       // operand types disagree
	BadRefCount                        // dup/drop/deallocate misuse
	Redefined                          // register defined more than once
	Undominated                        // use not dominated by its definition
)

var violationKindNames = [...]string{
	BadStructure: "structure",
	BadEntry:     "entry",
	BadPlace:     "place",
	BadTarget:    "target",
	BadPhi:       "phi",
	TypeMismatch: "type",
	BadRefCount:  "refcount",
	Redefined:    "redefined",
	Undominated:  "dominance",
}

// String returns the string representation of the violation kind.
func (k ViolationKind) String() string {
	if int(k) < len(violationKindNames) {
		return violationKindNames[k]
	}
	return "unknown"
}

// Violation is one broken invariant.
type Violation struct {
	Kind  ViolationKind
	Where string // node label, or "" for function-wide problems
	Msg   string
}

// String formats the violation as "where: [kind] msg".
func (v Violation) String() string {
	if v.Where == "" {
		return fmt.Sprintf("[%s] %s", v.Kind, v.Msg)
	}
	return fmt.Sprintf("%s: [%s] %s", v.Where, v.Kind, v.Msg)
}

// VerifyError lists every violation found in one function.
type VerifyError struct {
	Func       string
	Violations []Violation
}

// Error implements the error interface.
func (e *VerifyError) Error() string {
	lines := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		lines[i] = v.String()
	}
	return fmt.Sprintf("cfg verification failed for %s:\n  %s", e.Func, strings.Join(lines, "\n  "))
}

// Has reports whether any violation has the given kind.
func (e *VerifyError) Has(kind ViolationKind) bool {
	for _, v := range e.Violations {
		if v.Kind == kind {
			return true
		}
	}
	return false
}

// verifier accumulates violations for one graph.
type verifier struct {
	c    *Cfg
	errs []Violation
}

func (v *verifier) add(kind ViolationKind, where string, format string, args ...interface{}) {
	v.errs = append(v.errs, Violation{Kind: kind, Where: where, Msg: fmt.Sprintf(format, args...)})
}

func (v *verifier) result() error {
	if len(v.errs) == 0 {
		return nil
	}
	return &VerifyError{Func: v.c.Name, Violations: v.errs}
}

// checkPlace reports p if it does not name a register.
func (v *verifier) checkPlace(where string, p Place, role string) bool {
	if int(p) >= len(v.c.PlaceTys) {
		v.add(BadPlace, where, "%s %s out of range (%d places)", role, p, len(v.c.PlaceTys))
		return false
	}
	return true
}

// Verify checks the structural integrity of c.
// It returns a *VerifyError describing all violations found, or nil if valid.
// Verify never mutates c.
func Verify(c *Cfg) error {
	v := &verifier{c: c}

	// 1. There is an entry block and it can leave.
	if len(c.Blocks) == 0 {
		v.add(BadStructure, "", "no blocks")
		return v.result()
	}
	if c.Blocks[0] != nil && c.Blocks[0].Term == nil {
		v.add(BadEntry, BlockLabel(0), "entry block is a dead end")
	}

	// 2. Register table covers the return slot and the arguments, and every
	// register is typed.
	if c.ArgCount < 0 || c.ArgCount >= len(c.PlaceTys) {
		v.add(BadPlace, "", "arg count %d needs %d places, have %d",
			c.ArgCount, c.ArgCount+1, len(c.PlaceTys))
	}
	for p, ty := range c.PlaceTys {
		if ty == nil {
			v.add(BadPlace, "", "%s has no type", Place(p))
		}
	}

	// 3. Blocks form a tree of owned arms: no nil blocks, nothing shared.
	v.checkOwnership()

	g := BuildGraph(c)

	// 4. Per-block checks.
	defs := make(map[Place]string)
	for _, n := range g.Nodes {
		if n.Block == nil {
			continue
		}
		v.checkPhis(n, defs)
		v.checkStmts(n, defs)
		v.checkTerm(n)
	}

	return v.result()
}

// checkOwnership reports nil blocks and blocks reachable through more than
// one owner.
func (v *verifier) checkOwnership() {
	owner := make(map[*BasicBlock]string)
	var walk func(b *BasicBlock, label string)
	walk = func(b *BasicBlock, label string) {
		if prev, ok := owner[b]; ok {
			v.add(BadStructure, label, "block is shared with %s", prev)
			return
		}
		owner[b] = label
		if t, ok := b.Term.(*IfElse); ok {
			if t.Then == nil {
				v.add(BadStructure, label, "if/else has no then arm")
			} else {
				walk(t.Then, label+".then")
			}
			if t.Else == nil {
				v.add(BadStructure, label, "if/else has no else arm")
			} else {
				walk(t.Else, label+".else")
			}
		}
	}
	for i, b := range v.c.Blocks {
		if b == nil {
			v.add(BadStructure, BlockLabel(BlockID(i)), "block is nil")
			continue
		}
		walk(b, BlockLabel(BlockID(i)))
	}
}

// define records a definition of p at where and reports redefinitions and
// writes to the argument or return places.
func (v *verifier) define(defs map[Place]string, where string, p Place) {
	if p == ReturnPlace {
		v.add(Redefined, where, "assigns the return slot %s", p)
		return
	}
	if v.c.IsArg(p) {
		v.add(Redefined, where, "assigns argument %s", p)
		return
	}
	if prev, ok := defs[p]; ok {
		v.add(Redefined, where, "%s already defined in %s", p, prev)
		return
	}
	defs[p] = where
}

func (v *verifier) checkPhis(n *Node, defs map[Place]string) {
	preds := make(map[string]bool, len(n.Preds))
	for _, p := range n.Preds {
		preds[p.Label] = true
	}

	for _, phi := range n.Block.Phis {
		if !v.checkPlace(n.Label, phi.Place, "phi") {
			continue
		}
		v.define(defs, n.Label, phi.Place)
		want := v.c.TypeOf(phi.Place)

		seen := make(map[string]bool, len(phi.Opts))
		for _, o := range phi.Opts {
			switch {
			case seen[o.Label]:
				v.add(BadPhi, n.Label, "phi %s lists predecessor %q twice", phi.Place, o.Label)
			case !preds[o.Label]:
				v.add(BadPhi, n.Label, "phi %s names %q, which is not a predecessor", phi.Place, o.Label)
			}
			seen[o.Label] = true

			if !v.checkPlace(n.Label, o.Src, "phi source") {
				continue
			}
			if got := v.c.TypeOf(o.Src); want != nil && got != nil && !types.Identical(got, want) {
				v.add(TypeMismatch, n.Label, "phi %s of type %s has source %s of type %s",
					phi.Place, want, o.Src, got)
			}
		}
		for _, p := range n.Preds {
			if !seen[p.Label] {
				v.add(BadPhi, n.Label, "phi %s has no option for predecessor %q", phi.Place, p.Label)
			}
		}
	}
}

func (v *verifier) checkStmts(n *Node, defs map[Place]string) {
	for i, s := range n.Block.Stmts {
		where := fmt.Sprintf("%s[%d]", n.Label, i)
		switch s := s.(type) {
		case *Assign:
			ok := v.checkPlace(where, s.Place, "destination")
			for _, u := range valueUses(nil, s.Value) {
				v.checkPlace(where, u, "operand")
			}
			if !ok {
				continue
			}
			v.define(defs, where, s.Place)
			if src, isPlace := s.Value.(Place); isPlace && int(src) < len(v.c.PlaceTys) {
				dst, got := v.c.TypeOf(s.Place), v.c.TypeOf(src)
				if dst != nil && got != nil && !types.Identical(dst, got) {
					v.add(TypeMismatch, where, "%s of type %s assigned from %s of type %s",
						s.Place, dst, src, got)
				}
			}
			if s.Value == nil {
				v.add(BadStructure, where, "assignment to %s has no value", s.Place)
			}
			if s.Allocate && !v.c.IsManaged(s.Place) {
				v.add(BadRefCount, where, "allocates %s of unmanaged type %s", s.Place, typeString(v.c.TypeOf(s.Place)))
			}
		case *Deallocate:
			v.checkManaged(where, s.Place, "deallocate")
		case *Dup:
			v.checkManaged(where, s.Place, "dup")
			if s.Count == 0 {
				v.add(BadRefCount, where, "dup of %s by zero", s.Place)
			}
		case *Drop:
			v.checkManaged(where, s.Place, "drop")
			if s.Count == 0 {
				v.add(BadRefCount, where, "drop of %s by zero", s.Place)
			}
		case *Nop:
		case nil:
			v.add(BadStructure, where, "nil statement")
		}
	}
}

func (v *verifier) checkManaged(where string, p Place, op string) {
	if !v.checkPlace(where, p, op+" target") {
		return
	}
	if ty := v.c.TypeOf(p); ty != nil && !types.IsManaged(ty) {
		v.add(BadRefCount, where, "%s of %s of unmanaged type %s", op, p, ty)
	}
}

func (v *verifier) checkTerm(n *Node) {
	switch t := n.Block.Term.(type) {
	case *Goto:
		if int(t.Target) < 0 || int(t.Target) >= len(v.c.Blocks) {
			v.add(BadTarget, n.Label, "goto %d out of range (%d blocks)", t.Target, len(v.c.Blocks))
		}
	case *Return:
		if !v.checkPlace(n.Label, t.Place, "return value") {
			return
		}
		got, want := v.c.TypeOf(t.Place), v.c.TypeOf(ReturnPlace)
		if got != nil && want != nil && !types.Identical(got, want) {
			v.add(TypeMismatch, n.Label, "returns %s of type %s, function returns %s", t.Place, got, want)
		}
	case *IfElse:
		if !v.checkPlace(n.Label, t.Cond, "condition") {
			return
		}
		if ty := v.c.TypeOf(t.Cond); ty != nil && !types.IsBool(ty) {
			v.add(TypeMismatch, n.Label, "condition %s has type %s, want Bool", t.Cond, ty)
		}
	}
}

// VerifyDom checks that every use of a register is dominated by its
// definition. It calls Verify first and returns its error if c is not
// structurally valid. Only nodes reachable from the entry are checked.
func VerifyDom(c *Cfg) error {
	if err := Verify(c); err != nil {
		return err
	}

	g := BuildGraph(c)
	g.ComputeDom()
	reachable := g.Reachable()

	// def records where a register is defined: the node and the position
	// within it. Phis sit at position -1, before every statement.
	type def struct {
		node *Node
		pos  int
	}
	defs := make(map[Place]def)
	for _, n := range g.Nodes {
		for _, phi := range n.Block.Phis {
			defs[phi.Place] = def{n, -1}
		}
		for i, s := range n.Block.Stmts {
			if a, ok := s.(*Assign); ok {
				defs[a.Place] = def{n, i}
			}
		}
	}

	v := &verifier{c: c}

	// dominated reports whether a use of p at (n, pos) sees a definition.
	dominated := func(p Place, n *Node, pos int) (def, bool) {
		if p == ReturnPlace || c.IsArg(p) {
			return def{}, true
		}
		d, ok := defs[p]
		if !ok {
			return def{}, false
		}
		if d.node == n {
			return d, d.pos < pos
		}
		return d, Dominates(d.node, n)
	}

	report := func(where string, p Place, d def) {
		if d.node == nil {
			v.add(Undominated, where, "%s is used but never defined", p)
			return
		}
		v.add(Undominated, where, "%s defined in %s does not dominate its use", p, d.node)
	}

	for _, n := range g.Nodes {
		if !reachable[n] {
			continue
		}

		// Phi sources must be available at the end of the predecessor.
		for _, phi := range n.Block.Phis {
			for _, o := range phi.Opts {
				pred := g.Lookup(o.Label)
				if pred == nil {
					continue
				}
				if d, ok := dominated(o.Src, pred, len(pred.Block.Stmts)); !ok {
					report(n.Label, o.Src, d)
				}
			}
		}

		for i, s := range n.Block.Stmts {
			for _, u := range stmtUses(nil, s) {
				if d, ok := dominated(u, n, i); !ok {
					report(fmt.Sprintf("%s[%d]", n.Label, i), u, d)
				}
			}
		}

		for _, u := range termUses(nil, n.Block.Term) {
			if d, ok := dominated(u, n, len(n.Block.Stmts)); !ok {
				report(n.Label, u, d)
			}
		}
	}

	return v.result()
}
