package passes

import (
	"math"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// FuseRefCounts merges runs of adjacent Dup and Drop statements on the same
// place into a single statement, or removes the run when the counts cancel.
//
// A Dup never joins a run that already holds a net Drop: the drop may
// release the referent before the dup would have run. A run is also cut
// where its net count would no longer fit in a single statement.
func FuseRefCounts(c *cfg.Cfg) {
	eachBlock(c, func(b *cfg.BasicBlock) {
		b.Stmts = fuse(b.Stmts)
	})
}

func fuse(stmts []cfg.Stmt) []cfg.Stmt {
	out := stmts[:0:0]

	var (
		open  bool
		place cfg.Place
		net   int64
	)
	flush := func() {
		if !open {
			return
		}
		switch {
		case net > 0:
			out = append(out, &cfg.Dup{Place: place, Count: uint32(net)})
		case net < 0:
			out = append(out, &cfg.Drop{Place: place, Count: uint32(-net)})
		}
		open = false
		net = 0
	}

	for _, s := range stmts {
		switch s := s.(type) {
		case *cfg.Dup:
			if !open || s.Place != place || net < 0 || net+int64(s.Count) > math.MaxUint32 {
				flush()
				open, place = true, s.Place
			}
			net += int64(s.Count)
		case *cfg.Drop:
			if !open || s.Place != place || net-int64(s.Count) < -math.MaxUint32 {
				flush()
				open, place = true, s.Place
			}
			net -= int64(s.Count)
		default:
			flush()
			out = append(out, s)
		}
	}
	flush()
	return out
}

// StripNops removes Nop statements.
func StripNops(c *cfg.Cfg) {
	eachBlock(c, func(b *cfg.BasicBlock) {
		out := b.Stmts[:0]
		for _, s := range b.Stmts {
			if _, ok := s.(*cfg.Nop); !ok {
				out = append(out, s)
			}
		}
		b.Stmts = out
	})
}

// eachBlock calls fn for every block of c, nested arms included.
func eachBlock(c *cfg.Cfg, fn func(*cfg.BasicBlock)) {
	var walk func(b *cfg.BasicBlock)
	walk = func(b *cfg.BasicBlock) {
		if b == nil {
			return
		}
		fn(b)
		if t, ok := b.Term.(*cfg.IfElse); ok {
			walk(t.Then)
			walk(t.Else)
		}
	}
	for _, b := range c.Blocks {
		walk(b)
	}
}
