package syntax

// Children returns the direct sub-nodes of n in source order.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Call:
		out := make([]Node, 0, len(n.args)+1)
		if n.receiver != nil {
			out = append(out, n.receiver)
		}
		return append(out, n.args...)
	case *Constant:
		if n.scope != nil {
			return []Node{n.scope}
		}
		return nil
	case *KeywordArgs:
		out := make([]Node, 0, 2*len(n.pairs))
		for _, p := range n.pairs {
			if p.Key != nil {
				out = append(out, p.Key)
			}
			if p.Value != nil {
				out = append(out, p.Value)
			}
		}
		return out
	case *Other:
		return n.children
	case *Identifier, *Symbol:
		return nil
	}
	return nil
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// Calls collects every Call under root in pre-order, so an outer call comes
// before the calls nested in its receiver or arguments.
func Calls(root Node) []*Call {
	var out []*Call
	Walk(root, func(n Node) bool {
		if c, ok := n.(*Call); ok {
			out = append(out, c)
		}
		return true
	})
	return out
}
