package tree

import "github.com/mwantia/projtree/data"

// Node is a single item of a Graph.
type Node struct {
	id   int64
	name string
	kind data.Kind

	parent   *Node
	children []*Node
}

func (n *Node) ID() int64 {
	return n.id
}

func (n *Node) Name() string {
	return n.name
}

func (n *Node) Kind() data.Kind {
	return n.kind
}

// Parent returns nil for the root node.
func (n *Node) Parent() data.Item {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

func (n *Node) String() string {
	return data.GetPath(n)
}

// isAncestorOf reports whether n is other or one of its ancestors.
func (n *Node) isAncestorOf(other *Node) bool {
	for current := other; current != nil; current = current.parent {
		if current == n {
			return true
		}
	}
	return false
}

func (n *Node) removeChild(child *Node) {
	for i, c := range n.children {
		if c == child {
			n.children = append(n.children[:i], n.children[i+1:]...)
			return
		}
	}
}
