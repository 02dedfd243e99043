package cache

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/log"
)

// Manager keeps one Store for all items and one per category in sync with a
// project tree. Stores are filled lazily by the first accessor call.
//
// Mutations of the tree do not reach the manager on their own. Callers must
// call Add right after inserting an item, Remove right before deleting one,
// Update after reparenting or renaming one.
type Manager struct {
	id      string
	tree    data.Tree
	options *Options
	logger  *log.Logger

	all    *Store
	stores map[data.Category]*Store

	// Paths of the non-solid items inside the solids folder. No store
	// holds them, but cascades and removals still need their paths.
	unstored map[int64]string

	initialized   bool
	solidsScanned bool
	lastCount     int
}

func NewManager(tree data.Tree, opts ...Option) (*Manager, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, err
	}

	m := &Manager{
		id:      id.String(),
		tree:    tree,
		options: options,
		logger:  options.Logger.Named(id.String()),

		stores:   make(map[data.Category]*Store),
		unstored: make(map[int64]string),
	}

	m.all = newStore(data.CategoryAll, options)
	for _, category := range data.Categories() {
		m.stores[category] = newStore(category, options)
	}

	return m, nil
}

func (m *Manager) ID() string {
	return m.id
}

func (m *Manager) Tree() data.Tree {
	return m.tree
}

func (m *Manager) Initialized() bool {
	return m.initialized
}

// Init scans the tree if it was never scanned, if force is set, or if the
// item count of the tree differs from the count recorded by the last scan.
// A pure reparent keeps the count and goes unnoticed.
func (m *Manager) Init(force bool) {
	switch {
	case !m.initialized:
		m.logger.Debug("initial scan")
	case force:
		m.logger.Debug("forced rescan")
	default:
		count := m.tree.Count()
		if count == m.lastCount {
			return
		}
		m.logger.Info("tree holds %d items, cache expected %d, rescanning", count, m.lastCount)
	}

	m.Scan()
}

// Scan rebuilds every store from the tree. The contents of the reserved
// solids folder are skipped, see ScanSolids.
func (m *Manager) Scan() {
	m.reset()

	root := m.tree.Root()
	for _, child := range m.tree.Children(root) {
		path := data.ChildPath("", child.Name())
		m.index(child, path)

		if m.isSolidsFolder(child) {
			continue
		}
		if child.Kind().IsContainer() {
			m.scan(child, path)
		}
	}

	m.initialized = true
	m.lastCount = m.tree.Count()

	m.logger.Debug("scanned %d items (%d indexed)", m.lastCount, m.all.Len())
}

// ScanSolids indexes the solid footage inside the reserved solids folder
// into the solids store. It runs once per scan.
func (m *Manager) ScanSolids() {
	m.Init(false)
	if m.solidsScanned {
		return
	}
	m.solidsScanned = true

	solids := m.stores[data.CategorySolids]
	before := solids.Len()

	for _, folder := range m.solidsFolders() {
		m.indexSolids(folder, data.ChildPath("", folder.Name()))
	}

	m.logger.Debug("indexed %d solids", solids.Len()-before)
}

// Add indexes item, and for a container its whole subtree.
// An uninitialized manager scans instead.
func (m *Manager) Add(item data.Item) {
	if item == nil || data.IsRoot(item) {
		return
	}
	if !m.initialized {
		m.Init(false)
		return
	}
	if _, exists := m.all.GetByID(item.ID()); exists {
		return
	}

	path := data.GetPath(item)
	switch {
	case m.insideSolidsFolder(item):
		m.indexSolids(item, path)
	case m.isSolidsFolder(item):
		m.index(item, path)
		m.solidsScanned = false
	default:
		m.index(item, path)
		if item.Kind().IsContainer() {
			m.scan(item, path)
		}
	}

	m.lastCount += data.CountSubtree(m.tree, item)
}

// Remove drops item from every store. For a container every cached
// descendant is dropped as well. Must be called before the item is deleted
// from the tree. Items the manager does not hold are ignored.
func (m *Manager) Remove(item data.Item) {
	if item == nil || !m.initialized {
		return
	}
	if !m.solidsScanned && (m.isSolidsFolder(item) || m.insideSolidsFolder(item)) {
		// Everything below the folder must be known to count it.
		m.ScanSolids()
	}

	path, exists := m.cachedPath(item.ID())
	if !exists {
		return
	}

	dropped := make(map[int64]struct{})
	dropped[item.ID()] = struct{}{}

	container := item.Kind().IsContainer()
	for _, store := range m.allStores() {
		store.Remove(item)
		if container {
			for _, slot := range store.unsafeScanPrefix(childPrefix(path)) {
				for _, id := range slot.ids {
					dropped[id] = struct{}{}
				}
			}
			store.RemovePathPrefix(childPrefix(path))
		}
	}

	delete(m.unstored, item.ID())
	if container {
		for id, p := range m.unstored {
			if strings.HasPrefix(p, childPrefix(path)) {
				delete(m.unstored, id)
				dropped[id] = struct{}{}
			}
		}
	}

	m.lastCount = max(m.lastCount-len(dropped), 0)
}

// Update refreshes the cached name and path of every item. Containers
// cascade a changed path prefix to every cached descendant.
func (m *Manager) Update(items ...data.Item) {
	if !m.initialized {
		return
	}

	for _, item := range items {
		if item == nil {
			continue
		}

		stores := m.allStores()
		newPath := data.GetPath(item)

		oldPath, exists := m.cachedPath(item.ID())
		if !exists {
			continue
		}
		m.updateUnstored(item, oldPath, newPath)

		for _, store := range stores {
			store.Rename(item)
			if oldPath == newPath {
				continue
			}

			store.Update(item, newPath)
			if item.Kind().IsContainer() {
				n := store.RenamePathPrefix(childPrefix(oldPath), childPrefix(newPath))
				if n > 0 {
					m.logger.Debug("moved %d cached %s paths below '%s' to '%s'", n, store.Category(), oldPath, newPath)
				}
			}
		}
	}
}

// Rename is Update for a single renamed item.
func (m *Manager) Rename(item data.Item) {
	m.Update(item)
}

// Clear drops every index and returns the manager to its uninitialized state.
func (m *Manager) Clear() {
	m.reset()
	m.initialized = false
	m.lastCount = 0
}

// Store returns the store of category after making sure it is current.
func (m *Manager) Store(category data.Category) *Store {
	m.Init(false)
	if category == data.CategorySolids {
		m.ScanSolids()
	}
	return m.store(category)
}

func (m *Manager) GetByID(category data.Category, id int64) (data.Item, bool) {
	return m.Store(category).GetByID(id)
}

func (m *Manager) GetByName(category data.Category, name string) []data.Item {
	return m.Store(category).GetByName(name)
}

func (m *Manager) GetByPath(category data.Category, path string) (data.Item, bool) {
	return m.Store(category).GetByPath(path)
}

func (m *Manager) GetByRegExp(category data.Category, re *regexp.Regexp) []data.Item {
	return m.Store(category).GetByRegExp(re)
}

func (m *Manager) GetByFuzzy(category data.Category, term string) []data.Item {
	return m.Store(category).GetByFuzzy(term)
}

func (m *Manager) GetAll(category data.Category) []data.Item {
	return m.Store(category).GetAll()
}

func (m *Manager) store(category data.Category) *Store {
	if category == data.CategoryAll {
		return m.all
	}
	if store, exists := m.stores[category]; exists {
		return store
	}
	return m.all
}

// cachedPath returns the path item was last indexed with. Descendants live in
// stores that may not hold the container itself, so every store is asked.
func (m *Manager) cachedPath(id int64) (string, bool) {
	for _, store := range m.allStores() {
		if path, exists := store.PathOf(id); exists {
			return path, true
		}
	}
	path, exists := m.unstored[id]
	return path, exists
}

func (m *Manager) updateUnstored(item data.Item, oldPath, newPath string) {
	if oldPath == newPath {
		return
	}
	if _, exists := m.unstored[item.ID()]; exists {
		m.unstored[item.ID()] = newPath
	}
	if !item.Kind().IsContainer() {
		return
	}

	oldPrefix, newPrefix := childPrefix(oldPath), childPrefix(newPath)
	for id, path := range m.unstored {
		if strings.HasPrefix(path, oldPrefix) {
			m.unstored[id] = newPrefix + strings.TrimPrefix(path, oldPrefix)
		}
	}
}

func (m *Manager) allStores() []*Store {
	stores := []*Store{m.all}
	for _, category := range data.Categories() {
		stores = append(stores, m.stores[category])
	}
	return stores
}
