// Package cfg implements the control-flow-graph intermediate representation
// of a single function: basic blocks of typed virtual registers carrying
// explicit reference-counting instructions, and its canonical text form.
package cfg

import (
	"github.com/you-not-fish/rcfg/internal/types"
)

// Cfg is the control flow graph of one function.
//
// PlaceTys records the type of every register; its length is the number of
// registers. Blocks[0] is the entry block. IfElse arms are owned by their
// terminator and do not appear in Blocks.
type Cfg struct {
	// Name is the function name. It is used in diagnostics and is not part
	// of the canonical rendering.
	Name string

	// ArgCount is the number of formal arguments, held in places
	// 1..ArgCount.
	ArgCount int

	// PlaceTys maps each register to its type.
	PlaceTys []types.Type

	// Blocks is the ordered list of top-level basic blocks.
	Blocks []*BasicBlock
}

// NewCfg creates a graph for a function with the given result type and
// argument types. The return slot and the argument places are allocated;
// no blocks are created.
func NewCfg(name string, ret types.Type, args ...types.Type) *Cfg {
	c := &Cfg{
		Name:     name,
		ArgCount: len(args),
		PlaceTys: make([]types.Type, 0, len(args)+1),
	}
	c.PlaceTys = append(c.PlaceTys, ret)
	c.PlaceTys = append(c.PlaceTys, args...)
	return c
}

// NewPlace allocates a register of type ty.
func (c *Cfg) NewPlace(ty types.Type) Place {
	c.PlaceTys = append(c.PlaceTys, ty)
	return Place(len(c.PlaceTys) - 1)
}

// NewBlock appends an empty top-level block and returns it with its index.
func (c *Cfg) NewBlock() (BlockID, *BasicBlock) {
	b := &BasicBlock{}
	c.Blocks = append(c.Blocks, b)
	return BlockID(len(c.Blocks) - 1), b
}

// Entry returns the entry block, or nil if the graph has no blocks.
func (c *Cfg) Entry() *BasicBlock {
	if len(c.Blocks) == 0 {
		return nil
	}
	return c.Blocks[0]
}

// Block returns the top-level block with the given index, or nil if the
// index is out of range.
func (c *Cfg) Block(id BlockID) *BasicBlock {
	if id < 0 || int(id) >= len(c.Blocks) {
		return nil
	}
	return c.Blocks[id]
}

// Args returns the argument places in declaration order.
func (c *Cfg) Args() []Place {
	args := make([]Place, c.ArgCount)
	for i := range args {
		args[i] = Place(i + 1)
	}
	return args
}

// IsArg reports whether p holds a formal argument.
func (c *Cfg) IsArg(p Place) bool {
	return p >= 1 && int(p) <= c.ArgCount
}

// NumPlaces returns the number of registers.
func (c *Cfg) NumPlaces() int { return len(c.PlaceTys) }

// NumBlocks returns the number of top-level blocks.
func (c *Cfg) NumBlocks() int { return len(c.Blocks) }

// TypeOf returns the type of p, or nil if p is out of range.
func (c *Cfg) TypeOf(p Place) types.Type {
	if int(p) >= len(c.PlaceTys) {
		return nil
	}
	return c.PlaceTys[p]
}

// IsManaged reports whether p holds a reference-counted value.
func (c *Cfg) IsManaged(p Place) bool {
	return types.IsManaged(c.TypeOf(p))
}

// NumStmts returns the total number of statements, including those in
// nested IfElse arms.
func (c *Cfg) NumStmts() int {
	n := 0
	for _, b := range c.Blocks {
		forEachBlock(b, func(b *BasicBlock) { n += len(b.Stmts) })
	}
	return n
}

// forEachBlock calls fn for b and then for every block nested in its
// IfElse arms, in pre-order (then before else). Each block is visited once.
func forEachBlock(b *BasicBlock, fn func(*BasicBlock)) {
	seen := make(map[*BasicBlock]bool)
	var walk func(b *BasicBlock)
	walk = func(b *BasicBlock) {
		if b == nil || seen[b] {
			return
		}
		seen[b] = true
		fn(b)
		if t, ok := b.Term.(*IfElse); ok {
			walk(t.Then)
			walk(t.Else)
		}
	}
	walk(b)
}
