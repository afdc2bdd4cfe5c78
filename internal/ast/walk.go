package ast

// Visitor is called for each node during Walk.
// If it returns false, the children of the node are not visited.
type Visitor func(node Node) bool

// Walk traverses an AST in depth-first order.
// If visitor returns false, children are not visited.
func Walk(node Node, v Visitor) {
	if node == nil || !v(node) {
		return
	}

	switch n := node.(type) {
	case *Module:
		for _, fn := range n.Fns {
			Walk(fn, v)
		}

	case *Function:
		if n.Body != nil {
			Walk(n.Body, v)
		}

	case *Statement:
		if n.Value != nil {
			Walk(n.Value, v)
		}

	case *Block:
		for _, s := range n.Stmts {
			Walk(s, v)
		}
		if n.Ret != nil {
			Walk(n.Ret, v)
		}

	case *Call:
		for _, arg := range n.Args {
			Walk(arg, v)
		}

	case *IfElse:
		Walk(n.Cond, v)
		if n.Then != nil {
			Walk(n.Then, v)
		}
		if n.Else != nil {
			Walk(n.Else, v)
		}

	case Ident:
		// leaf
	}
}
