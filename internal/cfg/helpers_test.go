package cfg

import (
	"github.com/you-not-fish/rcfg/internal/types"
)

var (
	tInt  = types.Typ[types.Int]
	tBool = types.Typ[types.Bool]
	tUnit = types.Typ[types.Unit]
	tList = types.NewNamed("List", types.NewEnum(
		types.Variant{Name: "Nil"},
		types.Variant{Name: "Cons", Fields: []types.Type{types.Typ[types.Int]}},
	))
)

// makeAddCfg builds: fn add(a: Int, b: Int) -> Int { add(a, b) }
func makeAddCfg() *Cfg {
	c := NewCfg("add", tInt, tInt, tInt)
	sum := c.NewPlace(tInt)

	_, entry := c.NewBlock()
	entry.Add(&Assign{Place: sum, Value: &Call{Func: "add", Args: []Place{1, 2}}})
	entry.Term = &Return{Place: sum}
	return c
}

// makeMaxCfg builds a diamond whose arms are nested in the entry's IfElse:
//
//	fn max(a: Int, b: Int) -> Int { if lt(a, b) { b } else { a } }
func makeMaxCfg() *Cfg {
	c := NewCfg("max", tInt, tInt, tInt)
	cond := c.NewPlace(tBool)
	res := c.NewPlace(tInt)

	_, entry := c.NewBlock()
	join, merge := c.NewBlock()

	entry.Add(&Assign{Place: cond, Value: &Call{Func: "lt", Args: []Place{1, 2}}})
	entry.Term = &IfElse{
		Cond: cond,
		Then: &BasicBlock{Term: &Goto{Target: join}},
		Else: &BasicBlock{Term: &Goto{Target: join}},
	}

	merge.AddPhi(res, PhiOpt{"bb0.then", 2}, PhiOpt{"bb0.else", 1})
	merge.Term = &Return{Place: res}
	return c
}

// makeLoopCfg builds a counting loop:
//
//	bb0 -> bb1 <-> bb2, bb1 -> bb1.else (return)
func makeLoopCfg() *Cfg {
	c := NewCfg("count", tInt, tInt)
	zero := c.NewPlace(tInt)
	i := c.NewPlace(tInt)
	cond := c.NewPlace(tBool)
	next := c.NewPlace(tInt)

	_, b0 := c.NewBlock()
	_, b1 := c.NewBlock()
	_, b2 := c.NewBlock()

	b0.Add(&Assign{Place: zero, Value: &Call{Func: "zero"}})
	b0.Term = &Goto{Target: 1}

	b1.AddPhi(i, PhiOpt{"bb0", zero}, PhiOpt{"bb2", next})
	b1.Add(&Assign{Place: cond, Value: &Call{Func: "lt", Args: []Place{i, 1}}})
	b1.Term = &IfElse{
		Cond: cond,
		Then: &BasicBlock{Term: &Goto{Target: 2}},
		Else: &BasicBlock{Term: &Return{Place: i}},
	}

	b2.Add(&Assign{Place: next, Value: &Call{Func: "inc", Args: []Place{i}}})
	b2.Term = &Goto{Target: 1}
	return c
}
