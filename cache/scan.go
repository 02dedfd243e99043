package cache

import "github.com/mwantia/projtree/data"

// index adds item to the all-items store and every matching category.
func (m *Manager) index(item data.Item, path string) {
	m.all.Add(item, path)
	for _, category := range data.Categories() {
		if category.Contains(item.Kind()) {
			m.stores[category].Add(item, path)
		}
	}
}

// scan indexes every descendant of container and returns their number.
func (m *Manager) scan(container data.Item, path string) int {
	count := 0
	for _, child := range m.tree.Children(container) {
		childPath := data.ChildPath(path, child.Name())
		m.index(child, childPath)
		count++

		if child.Kind().IsContainer() {
			count += m.scan(child, childPath)
		}
	}
	return count
}

// indexSolids adds item to the solids store if it is a solid, and
// recurses into containers. Other items only have their path recorded.
func (m *Manager) indexSolids(item data.Item, path string) {
	if item.Kind() == data.KindSolid {
		m.stores[data.CategorySolids].Add(item, path)
		return
	}
	if !m.isSolidsFolder(item) {
		m.unstored[item.ID()] = path
	}

	if item.Kind().IsContainer() {
		for _, child := range m.tree.Children(item) {
			m.indexSolids(child, data.ChildPath(path, child.Name()))
		}
	}
}

func (m *Manager) reset() {
	m.all.Clear()
	for _, store := range m.stores {
		store.Clear()
	}
	clear(m.unstored)
	m.solidsScanned = false
}

// isSolidsFolder reports whether item is the reserved top-level folder.
func (m *Manager) isSolidsFolder(item data.Item) bool {
	if !item.Kind().IsContainer() || item.Name() != m.options.SolidsFolder {
		return false
	}
	parent := item.Parent()
	return parent != nil && data.IsRoot(parent)
}

// insideSolidsFolder reports whether one of the ancestors of item is the
// reserved top-level folder.
func (m *Manager) insideSolidsFolder(item data.Item) bool {
	for current := item.Parent(); current != nil; current = current.Parent() {
		if m.isSolidsFolder(current) {
			return true
		}
	}
	return false
}

func (m *Manager) solidsFolders() []data.Item {
	var folders []data.Item
	for _, child := range m.tree.Children(m.tree.Root()) {
		if m.isSolidsFolder(child) {
			folders = append(folders, child)
		}
	}
	return folders
}
