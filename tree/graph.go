package tree

import (
	"context"
	"sync"

	"github.com/mwantia/projtree/data"
	"github.com/tidwall/btree"
)

// RootID is the id of the root node of every graph.
const RootID int64 = 0

// Graph is an in-memory project tree.
//
// Nodes are indexed by id in a B-tree so that Items lists them in creation
// order and lookups stay O(log n). Child order is insertion order; a moved
// item becomes the last child of its new parent.
type Graph struct {
	mu sync.RWMutex

	root  *Node
	nodes *btree.Map[int64, *Node]

	// Counter for generating unique item ids
	nextID int64
}

// Record is the flat form of a node used to load a graph from storage.
type Record struct {
	ID       int64     `json:"id"`
	ParentID int64     `json:"parent_id"`
	Name     string    `json:"name"`
	Kind     data.Kind `json:"kind"`
	// Position orders records relative to their siblings.
	Position int64 `json:"position"`
}

// NewGraph creates an empty graph that only holds the root folder.
func NewGraph() *Graph {
	return &Graph{
		root:  &Node{id: RootID, name: "Root", kind: data.KindFolder},
		nodes: btree.NewMap[int64, *Node](0),
	}
}

func (g *Graph) Root() data.Item {
	return g.root
}

func (g *Graph) Children(container data.Item) []data.Item {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.unsafeNode(container)
	if !ok {
		return nil
	}

	items := make([]data.Item, 0, len(node.children))
	for _, child := range node.children {
		items = append(items, child)
	}
	return items
}

func (g *Graph) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.nodes.Len()
}

// Get returns the live item with the given id.
func (g *Graph) Get(id int64) (data.Item, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if id == RootID {
		return g.root, true
	}

	node, ok := g.nodes.Get(id)
	if !ok {
		return nil, false
	}
	return node, true
}

// Items returns every item except the root ordered by id.
func (g *Graph) Items() []data.Item {
	g.mu.RLock()
	defer g.mu.RUnlock()

	items := make([]data.Item, 0, g.nodes.Len())
	g.nodes.Scan(func(_ int64, node *Node) bool {
		items = append(items, node)
		return true
	})
	return items
}

// NextID reserves a fresh item id.
func (g *Graph) NextID() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	return g.nextID
}

func (g *Graph) Create(ctx context.Context, parent data.Item, name string, kind data.Kind) (data.Item, error) {
	return g.Insert(ctx, g.NextID(), parent, name, kind)
}

// Insert adds a node with a caller chosen id as the last child of parent.
func (g *Graph) Insert(ctx context.Context, id int64, parent data.Item, name string, kind data.Kind) (data.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if parent == nil {
		parent = g.root
	}

	parentNode, ok := g.unsafeNode(parent)
	if !ok {
		return nil, data.NotFound("parent %d", parent.ID())
	}
	if !parentNode.kind.IsContainer() {
		return nil, data.NotContainer(parentNode)
	}

	if id == RootID {
		return nil, data.ErrRootItem
	}
	if _, exists := g.nodes.Get(id); exists {
		return nil, data.Exists(id)
	}

	node := &Node{id: id, name: name, kind: kind, parent: parentNode}
	parentNode.children = append(parentNode.children, node)
	g.nodes.Set(id, node)

	g.unsafeBumpID(id)
	return node, nil
}

// Load replaces the graph content with records. Records are linked in the
// given order, so each parent's children keep the relative record order.
func (g *Graph) Load(records []Record) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nodes.Clear()
	g.root.children = nil
	g.nextID = 0

	for _, record := range records {
		if record.ID == RootID {
			return data.ErrRootItem
		}
		g.nodes.Set(record.ID, &Node{id: record.ID, name: record.Name, kind: record.Kind})
		g.unsafeBumpID(record.ID)
	}

	for _, record := range records {
		node, _ := g.nodes.Get(record.ID)

		parent := g.root
		if record.ParentID != RootID {
			p, ok := g.nodes.Get(record.ParentID)
			if !ok {
				return data.NotFound("parent %d of %d", record.ParentID, record.ID)
			}
			parent = p
		}

		node.parent = parent
		parent.children = append(parent.children, node)
	}

	return nil
}

func (g *Graph) Move(ctx context.Context, item, parent data.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.unsafeNode(item)
	if !ok {
		return data.NotFound("item %d", item.ID())
	}
	if node == g.root {
		return data.ErrRootItem
	}

	parentNode, ok := g.unsafeNode(parent)
	if !ok {
		return data.NotFound("parent %d", parent.ID())
	}
	if !parentNode.kind.IsContainer() {
		return data.NotContainer(parentNode)
	}
	if node.isAncestorOf(parentNode) {
		return data.ErrCycle
	}

	node.parent.removeChild(node)
	node.parent = parentNode
	parentNode.children = append(parentNode.children, node)
	return nil
}

func (g *Graph) Rename(ctx context.Context, item data.Item, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.unsafeNode(item)
	if !ok {
		return data.NotFound("item %d", item.ID())
	}
	if node == g.root {
		return data.ErrRootItem
	}

	node.name = name
	return nil
}

func (g *Graph) Delete(ctx context.Context, item data.Item) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.unsafeNode(item)
	if !ok {
		return data.NotFound("item %d", item.ID())
	}
	if node == g.root {
		return data.ErrRootItem
	}

	node.parent.removeChild(node)
	g.unsafeDeleteSubtree(node)
	return nil
}

// Subtree returns the ids of item and every descendant, parents first.
func (g *Graph) Subtree(item data.Item) []int64 {
	g.mu.RLock()
	defer g.mu.RUnlock()

	node, ok := g.unsafeNode(item)
	if !ok {
		return nil
	}

	var ids []int64
	var walk func(n *Node)
	walk = func(n *Node) {
		ids = append(ids, n.id)
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(node)
	return ids
}
