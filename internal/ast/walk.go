package ast

// Rewrite walks the tree post-order: children are rewritten before fn sees
// their parent, so fn always observes already updated children. When fn
// returns a different node it takes the old node's place in the parent.
func Rewrite(n Node, fn func(Node) Node) Node {
	if n == nil {
		return nil
	}
	if r, ok := n.(Replacer); ok {
		for i, c := range n.Children() {
			if c == nil {
				continue
			}
			if nc := Rewrite(c, fn); nc != c {
				r.ReplaceChild(i, nc)
			}
		}
	} else {
		for _, c := range n.Children() {
			Rewrite(c, fn)
		}
	}
	return fn(n)
}

// Inspect calls fn for n and its descendants in pre-order while fn returns true.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}
