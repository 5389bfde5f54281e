package tree

// Label returns the text or title view of n, whichever it exposes.
func Label(n Node) string {
	switch v := n.(type) {
	case TextView:
		return v.Text()
	case TitleView:
		return v.Title()
	}
	return ""
}

// Walk visits the tree depth-first, pre-order. Returning false from fn stops
// the walk. Raw payloads are never descended into.
func Walk(root Node, fn func(Node) bool) bool {
	if root == nil {
		return true
	}
	if !fn(root) {
		return false
	}
	for _, c := range root.Children() {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// FindFunc returns the first node in pre-order for which match is true.
func FindFunc(root Node, match func(Node) bool) Node {
	var found Node
	Walk(root, func(n Node) bool {
		if match(n) {
			found = n
			return false
		}
		return true
	})
	return found
}

// Find returns the first node in pre-order whose text or title equals name.
// Empty labels never match.
func Find(root Node, name string) Node {
	if name == "" {
		return nil
	}
	return FindFunc(root, func(n Node) bool {
		return matches(n, name)
	})
}

// FindAll returns every node whose text or title equals name, in pre-order.
func FindAll(root Node, name string) []Node {
	var out []Node
	if name == "" {
		return out
	}
	Walk(root, func(n Node) bool {
		if matches(n, name) {
			out = append(out, n)
		}
		return true
	})
	return out
}

func matches(n Node, name string) bool {
	if v, ok := n.(TextView); ok && v.Text() == name {
		return true
	}
	if v, ok := n.(TitleView); ok && v.Title() == name {
		return true
	}
	return false
}
