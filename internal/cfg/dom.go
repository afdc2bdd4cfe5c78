package cfg

// ReversePostOrder returns the nodes of g in reverse post-order,
// starting from g.Entry. Unreachable nodes, including the arms of
// unreachable blocks, are excluded.
func (g *Graph) ReversePostOrder() []*Node {
	if g.Entry == nil {
		return nil
	}
	visited := make(map[*Node]bool, len(g.Nodes))
	var order []*Node

	var dfs func(n *Node)
	dfs = func(n *Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, s := range n.Succs {
			dfs(s)
		}
		order = append(order, n)
	}
	dfs(g.Entry)

	// Reverse the post-order to get RPO.
	for i, j := 0, len(order)-1; i < j; i, j = i+1, j-1 {
		order[i], order[j] = order[j], order[i]
	}
	return order
}

// ComputeDom computes the immediate dominator tree for g using
// Cooper, Harvey, and Kennedy's "A Simple, Fast Dominance Algorithm".
// It populates Node.Idom and Node.Dominees for all reachable nodes.
//
// IfElse arms are nodes of their own, so an arm is always immediately
// dominated by the node that owns it, and a join block reached from both
// arms is dominated by that owner. Dominance between positions inside one
// arm is left to callers; see VerifyDom.
func (g *Graph) ComputeDom() {
	rpo := g.ReversePostOrder()
	if len(rpo) == 0 {
		return
	}

	// Assign RPO numbers.
	rpoNum := make(map[*Node]int, len(rpo))
	for i, n := range rpo {
		rpoNum[n] = i
	}

	// intersect finds the closest common dominator.
	intersect := func(b1, b2 *Node) *Node {
		for b1 != b2 {
			for rpoNum[b1] > rpoNum[b2] {
				b1 = b1.Idom
			}
			for rpoNum[b2] > rpoNum[b1] {
				b2 = b2.Idom
			}
		}
		return b1
	}

	// Initialize: entry dominates itself (sentinel).
	entry := rpo[0]
	entry.Idom = entry

	// Clear old domtree data.
	for _, n := range g.Nodes {
		if n != entry {
			n.Idom = nil
		}
		n.Dominees = nil
	}

	// Iterate until convergence.
	changed := true
	for changed {
		changed = false
		for _, n := range rpo[1:] { // skip entry
			// Find first predecessor with Idom already computed.
			var newIdom *Node
			for _, p := range n.Preds {
				if p.Idom != nil {
					newIdom = p
					break
				}
			}
			if newIdom == nil {
				continue
			}

			// Intersect with remaining processed predecessors.
			for _, p := range n.Preds {
				if p == newIdom {
					continue
				}
				if p.Idom != nil {
					newIdom = intersect(p, newIdom)
				}
			}

			if n.Idom != newIdom {
				n.Idom = newIdom
				changed = true
			}
		}
	}

	// Fix entry: Idom = nil (was sentinel).
	entry.Idom = nil

	// Build Dominees lists from Idom relationships.
	for _, n := range rpo {
		if n.Idom != nil {
			n.Idom.Dominees = append(n.Idom.Dominees, n)
		}
	}
}

// Dominates reports whether a dominates b, that is, a lies on b's
// Idom chain or a == b. ComputeDom must have been called first.
func Dominates(a, b *Node) bool {
	for b != nil {
		if b == a {
			return true
		}
		b = b.Idom
	}
	return false
}

// DomFrontier computes the dominance frontier for each node in g.
// ComputeDom must have been called first.
func (g *Graph) DomFrontier() map[*Node][]*Node {
	df := make(map[*Node][]*Node)

	for _, n := range g.Nodes {
		if len(n.Preds) < 2 {
			continue
		}
		for _, p := range n.Preds {
			runner := p
			for runner != nil && runner != n.Idom {
				df[runner] = appendUnique(df[runner], n)
				runner = runner.Idom
			}
		}
	}

	return df
}

// appendUnique appends n to list if not already present.
func appendUnique(list []*Node, n *Node) []*Node {
	for _, x := range list {
		if x == n {
			return list
		}
	}
	return append(list, n)
}
