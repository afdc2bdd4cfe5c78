package cfg

import (
	"testing"
)

// branch returns an IfElse on cond whose arms both jump to the given
// targets.
func branch(cond Place, then, els BlockID) *IfElse {
	return &IfElse{
		Cond: cond,
		Then: &BasicBlock{Term: &Goto{Target: then}},
		Else: &BasicBlock{Term: &Goto{Target: els}},
	}
}

// chainCfg returns a graph with n top-level blocks and a Bool argument
// (_1) to branch on. Every block is a dead end until the caller sets its
// terminator.
func chainCfg(n int) *Cfg {
	c := NewCfg("f", tUnit, tBool)
	for i := 0; i < n; i++ {
		c.NewBlock()
	}
	return c
}

// node fetches a node by label and fails the test if it does not exist.
func node(t *testing.T, g *Graph, label string) *Node {
	t.Helper()
	n := g.Lookup(label)
	if n == nil {
		t.Fatalf("no node %q", label)
	}
	return n
}

// TestDomSingleBlock verifies that a single-block function has Idom=nil.
func TestDomSingleBlock(t *testing.T) {
	c := chainCfg(1)
	c.Blocks[0].Term = &Return{Place: ReturnPlace}

	g := BuildGraph(c)
	g.ComputeDom()

	if g.Entry.Idom != nil {
		t.Errorf("entry Idom = %v, want nil", g.Entry.Idom)
	}
	if len(g.Entry.Dominees) != 0 {
		t.Errorf("entry Dominees = %d, want 0", len(g.Entry.Dominees))
	}
}

// TestDomLinearChain verifies: bb0 → bb1 → bb2
func TestDomLinearChain(t *testing.T) {
	c := chainCfg(3)
	c.Blocks[0].Term = &Goto{Target: 1}
	c.Blocks[1].Term = &Goto{Target: 2}
	c.Blocks[2].Term = &Return{Place: ReturnPlace}

	g := BuildGraph(c)
	g.ComputeDom()
	b0, b1, b2 := g.Top(0), g.Top(1), g.Top(2)

	if b0.Idom != nil {
		t.Errorf("bb0.Idom = %v, want nil", b0.Idom)
	}
	if b1.Idom != b0 {
		t.Errorf("bb1.Idom = %v, want %v", b1.Idom, b0)
	}
	if b2.Idom != b1 {
		t.Errorf("bb2.Idom = %v, want %v", b2.Idom, b1)
	}
	if !Dominates(b0, b2) || Dominates(b2, b0) {
		t.Errorf("Dominates disagrees with the chain")
	}
}

// TestDomDiamond verifies:
//
//	bb0
//	├→ bb0.then ─┐
//	└→ bb0.else ─┘
//	   bb1
func TestDomDiamond(t *testing.T) {
	g := BuildGraph(makeMaxCfg())
	g.ComputeDom()

	b0 := node(t, g, "bb0")
	then := node(t, g, "bb0.then")
	els := node(t, g, "bb0.else")
	b1 := node(t, g, "bb1")

	if b0.Idom != nil {
		t.Errorf("bb0.Idom = %v, want nil", b0.Idom)
	}
	for _, n := range []*Node{then, els, b1} {
		if n.Idom != b0 {
			t.Errorf("%v.Idom = %v, want %v", n, n.Idom, b0)
		}
	}
	if len(b0.Dominees) != 3 {
		t.Errorf("bb0 Dominees = %v, want 3 nodes", b0.Dominees)
	}
	if Dominates(then, b1) {
		t.Errorf("bb0.then should not dominate bb1")
	}

	df := g.DomFrontier()
	assertDF(t, df, then, []*Node{b1})
	assertDF(t, df, els, []*Node{b1})
	assertDF(t, df, b0, nil)
}

// TestDomLoop verifies:
//
//	bb0 → bb1 → bb1.then → bb2 → bb1 (back edge)
//	      bb1 → bb1.else (return)
func TestDomLoop(t *testing.T) {
	g := BuildGraph(makeLoopCfg())
	g.ComputeDom()

	b0 := node(t, g, "bb0")
	b1 := node(t, g, "bb1")
	b2 := node(t, g, "bb2")
	then := node(t, g, "bb1.then")
	els := node(t, g, "bb1.else")

	if b1.Idom != b0 {
		t.Errorf("bb1.Idom = %v, want %v", b1.Idom, b0)
	}
	if then.Idom != b1 || els.Idom != b1 {
		t.Errorf("arm Idoms = %v, %v, want %v", then.Idom, els.Idom, b1)
	}
	if b2.Idom != then {
		t.Errorf("bb2.Idom = %v, want %v", b2.Idom, then)
	}

	df := g.DomFrontier()
	assertDF(t, df, b2, []*Node{b1})
	assertDF(t, df, then, []*Node{b1})
	assertDF(t, df, b1, []*Node{b1})
}

// TestRPOOrdering verifies that RPO visits nodes in correct order.
func TestRPOOrdering(t *testing.T) {
	g := BuildGraph(makeMaxCfg())
	rpo := g.ReversePostOrder()

	if len(rpo) != 4 {
		t.Fatalf("RPO len = %d, want 4", len(rpo))
	}
	if rpo[0] != g.Entry {
		t.Errorf("RPO[0] = %v, want %v", rpo[0], g.Entry)
	}
	// The join must come last since both arms reach it.
	if rpo[3] != g.Top(1) {
		t.Errorf("RPO[3] = %v, want %v", rpo[3], g.Top(1))
	}
}

// TestDomComplex verifies two diamonds in sequence:
//
//	bb0 ─┬→ bb0.then ─┬→ bb1 ─┬→ bb1.then ─┬→ bb2
//	     └→ bb0.else ─┘       └→ bb1.else ─┘
func TestDomComplex(t *testing.T) {
	c := chainCfg(3)
	c.Blocks[0].Term = branch(1, 1, 1)
	c.Blocks[1].Term = branch(1, 2, 2)
	c.Blocks[2].Term = &Return{Place: ReturnPlace}

	g := BuildGraph(c)
	g.ComputeDom()

	b0, b1, b2 := g.Top(0), g.Top(1), g.Top(2)
	want := map[string]*Node{
		"bb0.then": b0,
		"bb0.else": b0,
		"bb1":      b0,
		"bb1.then": b1,
		"bb1.else": b1,
		"bb2":      b1,
	}
	for label, idom := range want {
		if n := node(t, g, label); n.Idom != idom {
			t.Errorf("%s.Idom = %v, want %v", label, n.Idom, idom)
		}
	}

	df := g.DomFrontier()
	assertDF(t, df, node(t, g, "bb0.then"), []*Node{b1})
	assertDF(t, df, node(t, g, "bb0.else"), []*Node{b1})
	assertDF(t, df, node(t, g, "bb1.then"), []*Node{b2})
	assertDF(t, df, node(t, g, "bb1.else"), []*Node{b2})
}

// TestDomNestedArms verifies arms nested inside arms:
//
//	bb0 → bb0.then → {bb0.then.then, bb0.then.else} → bb1
//	bb0 → bb0.else → bb1
func TestDomNestedArms(t *testing.T) {
	c := chainCfg(2)
	c.Blocks[0].Term = &IfElse{
		Cond: 1,
		Then: &BasicBlock{Term: branch(1, 1, 1)},
		Else: &BasicBlock{Term: &Goto{Target: 1}},
	}
	c.Blocks[1].Term = &Return{Place: ReturnPlace}

	g := BuildGraph(c)
	g.ComputeDom()

	wantLabels := []string{"bb0", "bb1", "bb0.then", "bb0.then.then", "bb0.then.else", "bb0.else"}
	if len(g.Nodes) != len(wantLabels) {
		t.Fatalf("got %d nodes, want %d", len(g.Nodes), len(wantLabels))
	}
	for i, label := range wantLabels {
		if g.Nodes[i].Label != label {
			t.Errorf("Nodes[%d] = %s, want %s", i, g.Nodes[i].Label, label)
		}
	}

	inner := node(t, g, "bb0.then")
	if n := node(t, g, "bb0.then.else"); n.Idom != inner || n.Parent != inner || n.Top != 0 {
		t.Errorf("bb0.then.else: Idom=%v Parent=%v Top=%d", n.Idom, n.Parent, n.Top)
	}
	if b1 := g.Top(1); b1.Idom != g.Entry || len(b1.Preds) != 3 {
		t.Errorf("bb1: Idom=%v Preds=%v", b1.Idom, b1.Preds)
	}
}

// TestDomUnreachable verifies that unreachable nodes get no Idom.
func TestDomUnreachable(t *testing.T) {
	c := chainCfg(3)
	c.Blocks[0].Term = &Return{Place: ReturnPlace}
	c.Blocks[1].Term = &Goto{Target: 2}
	c.Blocks[2].Term = &Return{Place: ReturnPlace}

	g := BuildGraph(c)
	g.ComputeDom()

	if g.Entry.Idom != nil {
		t.Errorf("bb0.Idom = %v, want nil", g.Entry.Idom)
	}
	if g.Top(2).Idom != nil {
		t.Errorf("unreachable bb2.Idom = %v, want nil", g.Top(2).Idom)
	}
	if rpo := g.ReversePostOrder(); len(rpo) != 1 {
		t.Errorf("RPO = %v, want only the entry", rpo)
	}
	reach := g.Reachable()
	if !reach[g.Entry] || reach[g.Top(1)] || reach[g.Top(2)] {
		t.Errorf("Reachable = %v", reach)
	}
}

// TestDomRecompute verifies that a second ComputeDom does not duplicate
// dominee lists.
func TestDomRecompute(t *testing.T) {
	g := BuildGraph(makeMaxCfg())
	g.ComputeDom()
	g.ComputeDom()

	if n := len(g.Entry.Dominees); n != 3 {
		t.Errorf("entry Dominees = %d after recompute, want 3", n)
	}
}

func TestGraphEdges(t *testing.T) {
	c := chainCfg(2)
	c.Blocks[0].Term = &Goto{Target: 7} // out of range: no edge
	c.Blocks[1].Term = &Goto{Target: 0}

	g := BuildGraph(c)
	if len(g.Entry.Succs) != 0 {
		t.Errorf("bb0 Succs = %v, want none", g.Entry.Succs)
	}
	if preds := g.Entry.Preds; len(preds) != 1 || preds[0] != g.Top(1) {
		t.Errorf("bb0 Preds = %v, want [bb1]", preds)
	}
	if g.Top(-1) != nil || g.Top(2) != nil {
		t.Errorf("Top out of range should be nil")
	}
	if g.NodeOf(c.Blocks[1]) != g.Top(1) {
		t.Errorf("NodeOf(bb1) = %v", g.NodeOf(c.Blocks[1]))
	}
}

func TestGraphEmpty(t *testing.T) {
	g := BuildGraph(NewCfg("f", tUnit))
	if g.Entry != nil || len(g.Nodes) != 0 {
		t.Errorf("empty graph: Entry=%v Nodes=%v", g.Entry, g.Nodes)
	}
	if rpo := g.ReversePostOrder(); rpo != nil {
		t.Errorf("RPO = %v, want nil", rpo)
	}
	g.ComputeDom()
}

func TestBlockSuccs(t *testing.T) {
	c := makeMaxCfg()
	if got := c.Blocks[0].Succs(); len(got) != 1 || got[0] != 1 {
		t.Errorf("bb0.Succs() = %v, want [1]", got)
	}

	b := &BasicBlock{Term: branch(1, 3, 2)}
	if got := b.Succs(); len(got) != 2 || got[0] != 3 || got[1] != 2 {
		t.Errorf("Succs() = %v, want [3 2]", got)
	}
	if got := (&BasicBlock{Term: &Return{}}).Succs(); len(got) != 0 {
		t.Errorf("return block Succs() = %v, want none", got)
	}
}

// assertDF checks that the dominance frontier of n equals the expected set.
func assertDF(t *testing.T, df map[*Node][]*Node, n *Node, want []*Node) {
	t.Helper()
	got := df[n]
	if len(got) != len(want) {
		t.Errorf("DF(%v) = %v (len %d), want %v (len %d)", n, got, len(got), want, len(want))
		return
	}
	for _, w := range want {
		found := false
		for _, g := range got {
			if g == w {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("DF(%v) missing %v, got %v", n, w, got)
		}
	}
}
