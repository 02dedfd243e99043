package data

import "context"

// Item is a single node of an externally owned project tree.
// The tree may rename or reparent an item at any time; only ID is stable.
type Item interface {
	ID() int64
	Name() string
	// Parent returns nil for the tree root.
	Parent() Item
	Kind() Kind
}

// Tree is the read side of a project tree.
type Tree interface {
	Root() Item
	// Children returns the direct children of a container in stable order.
	Children(container Item) []Item
	// Count returns the number of live items, excluding the root.
	Count() int
}

// MutableTree is a tree the caller can change.
type MutableTree interface {
	Tree

	Create(ctx context.Context, parent Item, name string, kind Kind) (Item, error)
	Move(ctx context.Context, item, parent Item) error
	Rename(ctx context.Context, item Item, name string) error
	// Delete removes the item together with its whole subtree.
	Delete(ctx context.Context, item Item) error
}

// IsRoot reports whether item is the root of its tree.
func IsRoot(item Item) bool {
	return item != nil && item.Parent() == nil
}

// Walk visits every descendant of container depth-first in child order.
// Returning false from fn skips the children of the visited item.
func Walk(tree Tree, container Item, fn func(item Item) bool) {
	for _, child := range tree.Children(container) {
		if fn(child) && child.Kind().IsContainer() {
			Walk(tree, child, fn)
		}
	}
}

// CountSubtree returns the number of items in the subtree of item, including item itself.
func CountSubtree(tree Tree, item Item) int {
	n := 1
	if item.Kind().IsContainer() {
		Walk(tree, item, func(Item) bool {
			n++
			return true
		})
	}
	return n
}
