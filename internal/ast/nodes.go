// Package ast defines the front-end syntax tree handed to the CFG lowering.
// The tree is produced by a parser and annotated by a type checker that live
// outside this module; only the shapes they agree on are declared here.
package ast

import (
	"golang.org/x/text/unicode/norm"

	"github.com/you-not-fish/rcfg/internal/types"
)

// ----------------------------------------------------------------------------
// Interfaces

// Node is the interface implemented by all AST nodes.
type Node interface {
	aNode() // marker method to restrict implementations to this package
}

// Expr is the interface for all expression nodes.
type Expr interface {
	Node
	aExpr()
}

// ----------------------------------------------------------------------------
// Identifiers

// Ident is a source identifier. Identifiers built with NewIdent are in
// Unicode normal form C, so that equal names compare and print identically.
type Ident string

// NewIdent returns the NFC-normalized identifier for s.
func NewIdent(s string) Ident {
	return Ident(norm.NFC.String(s))
}

// String returns the identifier text.
func (id Ident) String() string { return string(id) }

func (Ident) aNode() {}
func (Ident) aExpr() {}

// ----------------------------------------------------------------------------
// Module and declarations

// Module is a compilation unit: its type definitions and its functions.
type Module struct {
	TyDefs map[string]types.Type // type name -> definition
	Fns    []*Function
}

// Function is a function declaration with a typed signature and a body.
type Function struct {
	Name  Ident
	Args  []Arg
	RetTy types.Type
	Body  *Block
}

// Arg is a formal parameter.
type Arg struct {
	Name Ident
	Ty   types.Type
}

// Statement binds the value of an expression to a name: let Ident = Value.
type Statement struct {
	Ident Ident
	Value Expr
}

func (*Module) aNode()    {}
func (*Function) aNode()  {}
func (*Statement) aNode() {}

// ----------------------------------------------------------------------------
// Expressions

// Block is a sequence of statements followed by a result expression.
type Block struct {
	Stmts []*Statement
	Ret   Expr
}

// Call represents a call of a named function: Ident(Args...)
type Call struct {
	Ident Ident
	Args  []Expr
}

// IfElse represents a two-way conditional expression.
// Both branches are required and each yields a value.
type IfElse struct {
	Cond Expr
	Then *Block
	Else *Block
}

func (*Block) aNode()  {}
func (*Block) aExpr()  {}
func (*Call) aNode()   {}
func (*Call) aExpr()   {}
func (*IfElse) aNode() {}
func (*IfElse) aExpr() {}

// ----------------------------------------------------------------------------
// Projections

// EnumConstructors returns the subset of TyDefs whose type is an enum.
// The result is a fresh map; the module is not modified.
func (m *Module) EnumConstructors() map[string]types.Type {
	ctors := make(map[string]types.Type)
	for name, ty := range m.TyDefs {
		if types.IsEnum(ty) {
			ctors[name] = ty
		}
	}
	return ctors
}

// LookupFunc returns the function with the given name, or nil.
func (m *Module) LookupFunc(name Ident) *Function {
	for _, fn := range m.Fns {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}
