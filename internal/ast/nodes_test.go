package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/you-not-fish/rcfg/internal/types"
)

func TestEnumConstructors(t *testing.T) {
	color := types.NewNamed("Color", types.NewEnum(
		types.Variant{Name: "Red"},
		types.Variant{Name: "Green"},
	))
	point := types.NewNamed("Point", types.NewStruct(
		types.Field{Name: "x", Type: types.Typ[types.Int]},
		types.Field{Name: "y", Type: types.Typ[types.Int]},
	))

	m := &Module{TyDefs: map[string]types.Type{
		"Color": color,
		"Point": point,
	}}

	got := m.EnumConstructors()
	assert.Equal(t, map[string]types.Type{"Color": color}, got)

	// The projection is recomputed, not cached, and leaves TyDefs alone.
	again := m.EnumConstructors()
	assert.Equal(t, got, again)
	assert.Len(t, m.TyDefs, 2)

	delete(got, "Color")
	assert.Contains(t, m.EnumConstructors(), "Color")
}

func TestEnumConstructorsEmpty(t *testing.T) {
	m := &Module{TyDefs: map[string]types.Type{
		"Id": types.NewNamed("Id", types.Typ[types.Int]),
	}}
	got := m.EnumConstructors()
	require.NotNil(t, got)
	assert.Empty(t, got)

	assert.Empty(t, (&Module{}).EnumConstructors())
}

func TestNewIdentNormalizes(t *testing.T) {
	// "é" as e + combining acute accent vs the precomposed code point.
	decomposed := NewIdent("cafe\u0301")
	composed := NewIdent("caf\u00e9")
	assert.Equal(t, composed, decomposed)
	assert.Equal(t, "caf\u00e9", decomposed.String())
}

func TestLookupFunc(t *testing.T) {
	add := &Function{Name: "add"}
	m := &Module{Fns: []*Function{{Name: "main"}, add}}
	assert.Same(t, add, m.LookupFunc("add"))
	assert.Nil(t, m.LookupFunc("sub"))
}

func TestWalk(t *testing.T) {
	// fn f(c) = { let x = g(c); if c { x } else { h(x) } }
	body := &Block{
		Stmts: []*Statement{
			{Ident: "x", Value: &Call{Ident: "g", Args: []Expr{Ident("c")}}},
		},
		Ret: &IfElse{
			Cond: Ident("c"),
			Then: &Block{Ret: Ident("x")},
			Else: &Block{Ret: &Call{Ident: "h", Args: []Expr{Ident("x")}}},
		},
	}
	m := &Module{Fns: []*Function{{Name: "f", Body: body}}}

	var seen []string
	Walk(m, func(n Node) bool {
		switch n := n.(type) {
		case Ident:
			seen = append(seen, string(n))
		case *Call:
			seen = append(seen, "call "+string(n.Ident))
		case *IfElse:
			seen = append(seen, "if")
		}
		return true
	})

	want := []string{"call g", "c", "if", "c", "x", "call h", "x"}
	assert.Equal(t, want, seen)
}

func TestWalkPrune(t *testing.T) {
	body := &Block{Ret: &IfElse{
		Cond: Ident("c"),
		Then: &Block{Ret: Ident("a")},
		Else: &Block{Ret: Ident("b")},
	}}

	count := 0
	Walk(body, func(n Node) bool {
		count++
		_, isIf := n.(*IfElse)
		return !isIf
	})
	// Block and IfElse only; the IfElse children are skipped.
	assert.Equal(t, 2, count)
}
