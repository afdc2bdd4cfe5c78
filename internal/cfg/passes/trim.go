package passes

import (
	"strconv"
	"strings"

	"github.com/you-not-fish/rcfg/internal/cfg"
)

// TrimUnreachable removes top-level blocks that cannot be reached from the
// entry. Goto targets and phi labels, nested arms included, are renumbered
// to match, and phi options naming a removed predecessor are dropped.
func TrimUnreachable(c *cfg.Cfg) {
	g := cfg.BuildGraph(c)
	if g.Entry == nil {
		return
	}
	reach := g.Reachable()

	remap := make([]cfg.BlockID, len(c.Blocks))
	kept := c.Blocks[:0]
	for i, b := range c.Blocks {
		if !reach[g.Top(cfg.BlockID(i))] {
			remap[i] = -1
			continue
		}
		remap[i] = cfg.BlockID(len(kept))
		kept = append(kept, b)
	}
	if len(kept) == len(c.Blocks) {
		return
	}
	for i := len(kept); i < len(c.Blocks); i++ {
		c.Blocks[i] = nil
	}
	c.Blocks = kept

	for _, b := range c.Blocks {
		retarget(b, remap)
	}
	eachBlock(c, func(b *cfg.BasicBlock) {
		for _, phi := range b.Phis {
			opts := phi.Opts[:0]
			for _, o := range phi.Opts {
				label, ok := relabel(o.Label, remap)
				if !ok {
					continue
				}
				o.Label = label
				opts = append(opts, o)
			}
			phi.Opts = opts
		}
	})
}

// retarget rewrites the Goto targets of b and its nested arms.
func retarget(b *cfg.BasicBlock, remap []cfg.BlockID) {
	if b == nil {
		return
	}
	switch t := b.Term.(type) {
	case *cfg.Goto:
		if int(t.Target) >= 0 && int(t.Target) < len(remap) {
			t.Target = remap[t.Target]
		}
	case *cfg.IfElse:
		retarget(t.Then, remap)
		retarget(t.Else, remap)
	}
}

// relabel renumbers the top-level block in a node label such as "bb3" or
// "bb3.then.else". It reports false if that block was removed. Labels of
// any other shape are returned unchanged.
func relabel(label string, remap []cfg.BlockID) (string, bool) {
	rest, ok := strings.CutPrefix(label, "bb")
	if !ok {
		return label, true
	}
	num, suffix, _ := strings.Cut(rest, ".")
	id, err := strconv.Atoi(num)
	if err != nil || id < 0 || id >= len(remap) {
		return label, true
	}
	if remap[id] < 0 {
		return "", false
	}
	label = cfg.BlockLabel(remap[id])
	if suffix != "" {
		label += "." + suffix
	}
	return label, true
}
