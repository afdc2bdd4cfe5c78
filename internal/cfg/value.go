package cfg

import (
	"fmt"
	"strings"

	"github.com/you-not-fish/rcfg/internal/ast"
)

// Place is a virtual register: an index into Cfg.PlaceTys.
//
// Place 0 is the return slot (ReturnPlace). Places 1 through Cfg.ArgCount
// hold the function arguments in declaration order. Every other place is
// defined by exactly one Assign or Phi.
type Place uint32

// ReturnPlace is the register reserved for the function result. Its type
// is the function's result type. It is bound on entry and never assigned.
const ReturnPlace Place = 0

// String returns the canonical spelling of the place (e.g., "_3").
func (p Place) String() string {
	return fmt.Sprintf("_%d", uint32(p))
}

func (Place) aValue() {}

// Value is an operand form usable on the right-hand side of an Assign.
// The set of values is closed: Place (a use of a register) and Call.
type Value interface {
	String() string
	aValue()
}

// Call is an invocation of a named function with positional register
// operands.
type Call struct {
	Func ast.Ident
	Args []Place
}

func (*Call) aValue() {}

// String returns the canonical rendering of the call (e.g., "add(_1, _2)").
func (c *Call) String() string {
	var sb strings.Builder
	writeValue(&sb, c)
	return sb.String()
}

// valueUses appends the places read by v to dst.
func valueUses(dst []Place, v Value) []Place {
	switch v := v.(type) {
	case Place:
		dst = append(dst, v)
	case *Call:
		dst = append(dst, v.Args...)
	}
	return dst
}
