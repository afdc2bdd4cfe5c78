package cfg

import "fmt"

// Node is a basic block in the flattened view of a Cfg. Top-level blocks
// and nested IfElse arms each get a node; IfElse becomes a pair of edges
// to the arm nodes.
type Node struct {
	// ID is the index of the node in Graph.Nodes.
	ID int

	// Label names the node and doubles as its predecessor label in phi
	// options: "bb2" for Blocks[2], "bb2.then" and "bb2.else" for its
	// arms, "bb2.then.else" one level deeper, and so on.
	Label string

	// Block is the block this node stands for.
	Block *BasicBlock

	// Top is the top-level block that owns Block (Block itself when the
	// node is top-level).
	Top BlockID

	// Parent is the node whose IfElse owns Block; nil for top-level nodes.
	Parent *Node

	// Succs and Preds are the flow edges.
	Succs []*Node
	Preds []*Node

	// Dominance tree fields (populated by ComputeDom).
	Idom     *Node   // immediate dominator
	Dominees []*Node // nodes immediately dominated by this node
}

// String returns the node label.
func (n *Node) String() string {
	return n.Label
}

// Graph is a flat, edge-labelled view of a Cfg. It is derived from the
// Cfg and never written back; rebuild it after the Cfg changes.
type Graph struct {
	Cfg *Cfg

	// Nodes lists all nodes. Nodes[i] is Cfg.Blocks[i] for every top-level
	// index i; arm nodes follow in pre-order.
	Nodes []*Node

	// Entry is Nodes[0], or nil for a graph without blocks.
	Entry *Node

	byBlock map[*BasicBlock]*Node
}

// BlockLabel returns the predecessor label of the top-level block id.
func BlockLabel(id BlockID) string {
	return fmt.Sprintf("bb%d", id)
}

// BuildGraph flattens c into a Graph. Goto targets outside Cfg.Blocks and
// nil arms produce no edge; Verify reports them.
func BuildGraph(c *Cfg) *Graph {
	g := &Graph{
		Cfg:     c,
		byBlock: make(map[*BasicBlock]*Node),
	}

	for i, b := range c.Blocks {
		g.newNode(BlockLabel(BlockID(i)), b, BlockID(i), nil)
	}
	if len(g.Nodes) > 0 {
		g.Entry = g.Nodes[0]
	}

	onPath := make(map[*BasicBlock]bool)
	for i := 0; i < len(c.Blocks); i++ {
		g.expandArms(g.Nodes[i], onPath)
	}

	for _, n := range g.Nodes {
		if n.Block == nil {
			continue
		}
		switch t := n.Block.Term.(type) {
		case *Goto:
			if int(t.Target) >= 0 && int(t.Target) < len(c.Blocks) {
				addEdge(n, g.Nodes[t.Target])
			}
		case *IfElse:
			for _, arm := range g.arms(n) {
				addEdge(n, arm)
			}
		}
	}

	return g
}

func (g *Graph) newNode(label string, b *BasicBlock, top BlockID, parent *Node) *Node {
	n := &Node{
		ID:     len(g.Nodes),
		Label:  label,
		Block:  b,
		Top:    top,
		Parent: parent,
	}
	g.Nodes = append(g.Nodes, n)
	if _, ok := g.byBlock[b]; !ok && b != nil {
		g.byBlock[b] = n
	}
	return n
}

// expandArms creates nodes for the IfElse arms nested under n.
// onPath guards against an arm that (illegally) contains its own owner.
func (g *Graph) expandArms(n *Node, onPath map[*BasicBlock]bool) {
	if n.Block == nil || onPath[n.Block] {
		return
	}
	t, ok := n.Block.Term.(*IfElse)
	if !ok {
		return
	}
	onPath[n.Block] = true
	defer delete(onPath, n.Block)

	if t.Then != nil && !onPath[t.Then] {
		g.expandArms(g.newNode(n.Label+".then", t.Then, n.Top, n), onPath)
	}
	if t.Else != nil && !onPath[t.Else] {
		g.expandArms(g.newNode(n.Label+".else", t.Else, n.Top, n), onPath)
	}
}

// arms returns the arm nodes whose parent is n, then before else.
func (g *Graph) arms(n *Node) []*Node {
	var arms []*Node
	for _, m := range g.Nodes[n.ID+1:] {
		if m.Parent == n {
			arms = append(arms, m)
		}
	}
	return arms
}

func addEdge(from, to *Node) {
	from.Succs = append(from.Succs, to)
	to.Preds = append(to.Preds, from)
}

// NodeOf returns the node standing for b, or nil if b is not part of the
// graph.
func (g *Graph) NodeOf(b *BasicBlock) *Node {
	return g.byBlock[b]
}

// Top returns the node of the top-level block id, or nil.
func (g *Graph) Top(id BlockID) *Node {
	if id < 0 || int(id) >= len(g.Cfg.Blocks) {
		return nil
	}
	return g.Nodes[id]
}

// Lookup returns the node with the given label, or nil.
func (g *Graph) Lookup(label string) *Node {
	for _, n := range g.Nodes {
		if n.Label == label {
			return n
		}
	}
	return nil
}

// Reachable returns the set of nodes reachable from the entry.
func (g *Graph) Reachable() map[*Node]bool {
	reachable := make(map[*Node]bool, len(g.Nodes))
	var walk func(n *Node)
	walk = func(n *Node) {
		if reachable[n] {
			return
		}
		reachable[n] = true
		for _, s := range n.Succs {
			walk(s)
		}
	}
	if g.Entry != nil {
		walk(g.Entry)
	}
	return reachable
}
