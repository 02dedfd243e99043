package tree

import "github.com/mwantia/projtree/data"

// unsafeNode resolves item to a live node of this graph.
// Caller must hold the lock.
func (g *Graph) unsafeNode(item data.Item) (*Node, bool) {
	if item == nil {
		return nil, false
	}
	if item.ID() == RootID {
		return g.root, true
	}
	return g.nodes.Get(item.ID())
}

// unsafeDeleteSubtree drops node and its descendants from the id index.
// Caller must hold the lock.
func (g *Graph) unsafeDeleteSubtree(node *Node) {
	for _, child := range node.children {
		g.unsafeDeleteSubtree(child)
	}
	g.nodes.Delete(node.id)
}

// unsafeBumpID keeps nextID ahead of every stored id.
// Caller must hold the lock.
func (g *Graph) unsafeBumpID(id int64) {
	if id > g.nextID {
		g.nextID = id
	}
}
