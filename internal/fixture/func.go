package fixture

import (
	"fmt"

	"tlog.app/go/errors"

	"github.com/you-not-fish/rcfg/internal/ast"
	"github.com/you-not-fish/rcfg/internal/cfg"
	"github.com/you-not-fish/rcfg/internal/types"
)

// funcDecoder turns one function document into a graph.
type funcDecoder struct {
	c     *cfg.Cfg
	ctors map[string]types.Type // enum type definitions, by name
}

func decodeFunc(tt *typeTable, ctors map[string]types.Type, name string, fd *funcDoc) (*cfg.Cfg, *ast.Function, error) {
	ret := types.Type(types.Typ[types.Unit])
	if fd.Ret != "" {
		var err error
		if ret, err = tt.lookup(fd.Ret); err != nil {
			return nil, nil, errors.Wrap(err, "ret")
		}
	}

	fn := &ast.Function{Name: ast.NewIdent(name), RetTy: ret}
	args := make([]types.Type, len(fd.Args))
	for i, a := range fd.Args {
		ty, err := tt.lookup(a)
		if err != nil {
			return nil, nil, errors.Wrap(err, "arg %d", i+1)
		}
		args[i] = ty
		fn.Args = append(fn.Args, ast.Arg{Name: ast.NewIdent(fmt.Sprintf("_%d", i+1)), Ty: ty})
	}

	c := cfg.NewCfg(name, ret, args...)
	for _, p := range fd.Places {
		ty, err := tt.lookup(p)
		if err != nil {
			return nil, nil, errors.Wrap(err, "place _%d", c.NumPlaces())
		}
		c.NewPlace(ty)
	}

	d := &funcDecoder{c: c, ctors: ctors}
	for i := range fd.Blocks {
		b, err := d.block(&fd.Blocks[i])
		if err != nil {
			return nil, nil, errors.Wrap(err, "block %d", i)
		}
		c.Blocks = append(c.Blocks, b)
	}
	return c, fn, nil
}

func (d *funcDecoder) block(bd *blockDoc) (*cfg.BasicBlock, error) {
	b := &cfg.BasicBlock{}

	for _, pd := range bd.Phi {
		opts := make([]cfg.PhiOpt, len(pd.Opts))
		for i, o := range pd.Opts {
			opts[i] = cfg.PhiOpt{Label: o.Label, Src: cfg.Place(o.Src)}
		}
		b.AddPhi(cfg.Place(pd.Place), opts...)
	}

	for i := range bd.Stmts {
		s := bd.Stmts[i].stmt
		if err := d.checkCtor(s); err != nil {
			return nil, errors.Wrap(err, "stmt %d", i)
		}
		b.Add(s)
	}

	terms := 0
	if bd.Goto != nil {
		terms++
		b.Term = &cfg.Goto{Target: cfg.BlockID(*bd.Goto)}
	}
	if bd.Return != nil {
		terms++
		b.Term = &cfg.Return{Place: cfg.Place(*bd.Return)}
	}
	if bd.If != nil {
		terms++
		then, err := d.block(&bd.If.Then)
		if err != nil {
			return nil, errors.Wrap(err, "then")
		}
		els, err := d.block(&bd.If.Else)
		if err != nil {
			return nil, errors.Wrap(err, "else")
		}
		b.Term = &cfg.IfElse{Cond: cfg.Place(bd.If.Cond), Then: then, Else: els}
	}
	if terms > 1 {
		return nil, errors.New("more than one of goto, return and if")
	}
	return b, nil
}

// checkCtor rejects an allocating call of an enum variant into a register
// of some other type.
func (d *funcDecoder) checkCtor(s cfg.Stmt) error {
	a, ok := s.(*cfg.Assign)
	if !ok || !a.Allocate {
		return nil
	}
	call, ok := a.Value.(*cfg.Call)
	if !ok {
		return nil
	}
	dst := d.c.TypeOf(a.Place)
	if dst == nil {
		return nil
	}

	var owner types.Type
	for _, ty := range d.ctors {
		e := ty.Underlying().(*types.Enum)
		if e.LookupVariant(string(call.Func)) < 0 {
			continue
		}
		if types.Identical(ty, dst) {
			return nil
		}
		owner = ty
	}
	if owner != nil {
		return errors.New("%s builds %s, but %s has type %s", call.Func, owner, a.Place, dst)
	}
	return nil
}
