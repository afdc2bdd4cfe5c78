package cfg

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/you-not-fish/rcfg/internal/types"
)

// Fprint writes the canonical rendering of c to w.
//
// Format:
//
//	Cfg(_1, _2):
//	_0: Int, _1: Int, _2: Int, _3: Int,
//	0: {
//		let _3 = add(_1, _2);
//		return _3
//	}
//
// The output depends only on the structure of c. No newline follows the
// last block.
func Fprint(w io.Writer, c *Cfg) {
	// Header
	io.WriteString(w, "Cfg")
	writePlaceList(w, c.Args())
	io.WriteString(w, ":\n")

	// Register types
	for p, ty := range c.PlaceTys {
		fmt.Fprintf(w, "_%d: %s, ", p, typeString(ty))
	}
	io.WriteString(w, "\n")

	// Blocks
	for i, b := range c.Blocks {
		fmt.Fprintf(w, "%d: ", i)
		writeBlock(w, b)
		if i+1 != len(c.Blocks) {
			io.WriteString(w, "\n")
		}
	}
}

// Sprint returns the canonical rendering of c as a string.
func Sprint(c *Cfg) string {
	var sb strings.Builder
	Fprint(&sb, c)
	return sb.String()
}

// Print writes the canonical rendering of c to stdout.
func Print(c *Cfg) {
	Fprint(os.Stdout, c)
}

// String implements fmt.Stringer with the canonical rendering.
func (c *Cfg) String() string {
	return Sprint(c)
}

// writeBlock writes b with one tab before each body line. IfElse arms use
// the same grammar wherever they appear, so a block renders to the same
// bytes on its own and inside its owner. A nil block renders as an empty
// dead end.
func writeBlock(w io.Writer, b *BasicBlock) {
	io.WriteString(w, "{\n")
	if b == nil {
		b = &BasicBlock{}
	}

	for _, phi := range b.Phis {
		io.WriteString(w, "\t")
		writePhi(w, phi)
		io.WriteString(w, ";\n")
	}

	for _, s := range b.Stmts {
		io.WriteString(w, "\t")
		writeStmt(w, s)
		io.WriteString(w, ";\n")
	}

	io.WriteString(w, "\t")
	if b.Term != nil {
		writeTerm(w, b.Term)
	} else {
		io.WriteString(w, "deadend")
	}
	io.WriteString(w, "\n}")
}

// writePhi writes "let _p = ϕ("label": _s, ...)".
func writePhi(w io.Writer, phi *Phi) {
	if phi == nil {
		io.WriteString(w, "???")
		return
	}
	fmt.Fprintf(w, "let %s = ϕ(", phi.Place)
	for i, o := range phi.Opts {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		fmt.Fprintf(w, "%s: %s", strconv.Quote(norm.NFC.String(o.Label)), o.Src)
	}
	io.WriteString(w, ")")
}

// writeStmt writes a statement without the trailing semicolon. Unknown
// variants and nil pointers render as "???".
func writeStmt(w io.Writer, s Stmt) {
	switch s := s.(type) {
	case *Assign:
		if s == nil {
			break
		}
		prefix := ""
		if s.Allocate {
			prefix = "allocate "
		}
		fmt.Fprintf(w, "let %s = %s", s.Place, prefix)
		writeValue(w, s.Value)
		return
	case *Nop:
		io.WriteString(w, "nop")
		return
	case *Deallocate:
		if s != nil {
			fmt.Fprintf(w, "deallocate %s", s.Place)
			return
		}
	case *Dup:
		if s != nil {
			fmt.Fprintf(w, "dup+%d %s", s.Count, s.Place)
			return
		}
	case *Drop:
		if s != nil {
			fmt.Fprintf(w, "drop-%d %s", s.Count, s.Place)
			return
		}
	}
	io.WriteString(w, "???")
}

// writeValue writes an operand: "_p" or "name(_a, _b)".
func writeValue(w io.Writer, v Value) {
	switch v := v.(type) {
	case Place:
		io.WriteString(w, v.String())
		return
	case *Call:
		if v != nil {
			io.WriteString(w, norm.NFC.String(string(v.Func)))
			writePlaceList(w, v.Args)
			return
		}
	}
	io.WriteString(w, "???")
}

// writeTerm writes a terminator. IfElse arms are written with the block
// grammar, unindented.
func writeTerm(w io.Writer, t Terminator) {
	switch t := t.(type) {
	case *Goto:
		if t != nil {
			fmt.Fprintf(w, "goto -> %d", t.Target)
			return
		}
	case *Return:
		if t != nil {
			fmt.Fprintf(w, "return %s", t.Place)
			return
		}
	case *IfElse:
		if t != nil {
			fmt.Fprintf(w, "goto -> if %s { ", t.Cond)
			writeBlock(w, t.Then)
			io.WriteString(w, " } else { ")
			writeBlock(w, t.Else)
			io.WriteString(w, " }")
			return
		}
	}
	io.WriteString(w, "???")
}

// writePlaceList writes "(_a, _b, ...)".
func writePlaceList(w io.Writer, places []Place) {
	io.WriteString(w, "(")
	for i, p := range places {
		if i > 0 {
			io.WriteString(w, ", ")
		}
		io.WriteString(w, p.String())
	}
	io.WriteString(w, ")")
}

func typeString(t types.Type) string {
	if t == nil {
		return "invalid"
	}
	return t.String()
}

func stmtString(s Stmt) string {
	var sb strings.Builder
	writeStmt(&sb, s)
	return sb.String()
}

func termString(t Terminator) string {
	var sb strings.Builder
	writeTerm(&sb, t)
	return sb.String()
}

func phiString(p *Phi) string {
	var sb strings.Builder
	writePhi(&sb, p)
	return sb.String()
}

func blockString(b *BasicBlock) string {
	var sb strings.Builder
	writeBlock(&sb, b)
	return sb.String()
}
