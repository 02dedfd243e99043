package cache

import (
	"regexp"
	"strings"

	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/log"
	"github.com/sahilm/fuzzy"
	"github.com/tidwall/btree"
)

// Store is an indexed collection of items of a single category.
//
// Every entry is held in four places:
//
//   - items:  insertion ordered list, the order of GetAll and GetByName
//   - ids:    id → entry, remembering the name and path it was indexed with
//   - names:  name → items sharing that name, mirrored by the name blob
//   - paths:  B-tree path → ids, enabling ordered prefix scans
//
// Store does not lock. It is owned by a single Manager.
type Store struct {
	category data.Category
	logger   *log.Logger
	limit    int

	items []data.Item
	ids   map[int64]*entry
	names map[string][]data.Item
	paths *btree.Map[string, []int64]
	blob  *nameBlob
}

type entry struct {
	item data.Item
	name string
	path string
}

func NewStore(category data.Category, opts ...Option) (*Store, error) {
	options, err := applyOptions(opts)
	if err != nil {
		return nil, err
	}

	return newStore(category, options), nil
}

func newStore(category data.Category, options *Options) *Store {
	return &Store{
		category: category,
		logger:   options.Logger,
		limit:    options.RegexLimit,

		ids:   make(map[int64]*entry),
		names: make(map[string][]data.Item),
		paths: btree.NewMap[string, []int64](0),
		blob:  newNameBlob(),
	}
}

func (s *Store) Category() data.Category {
	return s.category
}

func (s *Store) Len() int {
	return len(s.items)
}

// Add indexes item under knownPath, computing the path when knownPath is
// empty. Adding an id that is already present does nothing.
func (s *Store) Add(item data.Item, knownPath string) {
	if item == nil {
		return
	}
	if _, exists := s.ids[item.ID()]; exists {
		return
	}

	path := knownPath
	if path == "" {
		path = data.GetPath(item)
	}

	e := &entry{item: item, name: item.Name(), path: path}

	s.items = append(s.items, item)
	s.ids[item.ID()] = e
	s.unsafeAddName(e)
	s.unsafeAddPath(path, item.ID())
}

// Remove drops item from every index. Unknown items are ignored.
func (s *Store) Remove(item data.Item) {
	if item == nil {
		return
	}

	e, exists := s.ids[item.ID()]
	if !exists {
		return
	}

	s.unsafeRemoveItem(e)
	delete(s.ids, item.ID())
	s.unsafeRemoveName(e)
	s.unsafeRemovePath(e.path, item.ID())
}

// Update moves the path slot of item to newPath, computing the path when
// newPath is empty. The name index is left untouched.
func (s *Store) Update(item data.Item, newPath string) bool {
	if item == nil {
		return false
	}

	e, exists := s.ids[item.ID()]
	if !exists {
		return false
	}

	if newPath == "" {
		newPath = data.GetPath(item)
	}
	if e.path == newPath {
		return false
	}

	s.unsafeRemovePath(e.path, item.ID())
	e.path = newPath
	s.unsafeAddPath(newPath, item.ID())
	return true
}

// Rename moves item from the bucket of the name it was indexed with to the
// bucket of its current name.
func (s *Store) Rename(item data.Item) bool {
	if item == nil {
		return false
	}

	e, exists := s.ids[item.ID()]
	if !exists || e.name == item.Name() {
		return false
	}

	s.unsafeRemoveName(e)
	e.name = item.Name()
	s.unsafeAddName(e)
	return true
}

// RenamePathPrefix rewrites every stored path starting with oldPrefix to
// start with newPrefix instead. It returns the number of rewritten entries.
func (s *Store) RenamePathPrefix(oldPrefix, newPrefix string) int {
	if oldPrefix == "" || oldPrefix == newPrefix {
		return 0
	}

	affected := s.unsafeScanPrefix(oldPrefix)
	for _, slot := range affected {
		s.paths.Delete(slot.path)
	}

	count := 0
	for _, slot := range affected {
		path := newPrefix + strings.TrimPrefix(slot.path, oldPrefix)
		for _, id := range slot.ids {
			if e, exists := s.ids[id]; exists {
				e.path = path
			}
			s.unsafeAddPath(path, id)
			count++
		}
	}

	return count
}

// RemovePathPrefix drops every entry whose path starts with prefix.
func (s *Store) RemovePathPrefix(prefix string) int {
	if prefix == "" {
		return 0
	}

	count := 0
	for _, slot := range s.unsafeScanPrefix(prefix) {
		for _, id := range slot.ids {
			if e, exists := s.ids[id]; exists {
				s.Remove(e.item)
				count++
			}
		}
	}

	return count
}

func (s *Store) GetByID(id int64) (data.Item, bool) {
	e, exists := s.ids[id]
	if !exists {
		return nil, false
	}
	return e.item, true
}

// GetByName returns every item indexed under name in insertion order.
func (s *Store) GetByName(name string) []data.Item {
	bucket := s.names[name]
	if len(bucket) == 0 {
		return nil
	}
	return append([]data.Item(nil), bucket...)
}

// GetByPath returns the item stored at path. When siblings share a name the
// first indexed one owns the path.
func (s *Store) GetByPath(path string) (data.Item, bool) {
	ids, exists := s.paths.Get(path)
	if !exists || len(ids) == 0 {
		return nil, false
	}
	return s.GetByID(ids[0])
}

// PathOf returns the path item was last indexed with.
func (s *Store) PathOf(id int64) (string, bool) {
	e, exists := s.ids[id]
	if !exists {
		return "", false
	}
	return e.path, true
}

// NameOf returns the name item was last indexed with.
func (s *Store) NameOf(id int64) (string, bool) {
	e, exists := s.ids[id]
	if !exists {
		return "", false
	}
	return e.name, true
}

func (s *Store) GetAll() []data.Item {
	return append([]data.Item(nil), s.items...)
}

// Names returns every distinct indexed name in order of first appearance.
func (s *Store) Names() []string {
	return s.blob.names()
}

// GetByRegExp returns every item whose indexed name matches re.
// Items are grouped by name in order of the name's first appearance.
func (s *Store) GetByRegExp(re *regexp.Regexp) []data.Item {
	if re == nil {
		return nil
	}

	names, truncated := s.blob.match(re, s.limit)
	if truncated {
		s.logger.Warn("regex '%s' over %s hit the iteration limit %d, result truncated",
			re.String(), s.category, s.limit)
	}

	var result []data.Item
	for _, name := range names {
		result = append(result, s.names[name]...)
	}
	return result
}

// GetByFuzzy returns the items whose indexed name fuzzy matches term, best
// matching names first.
func (s *Store) GetByFuzzy(term string) []data.Item {
	if term == "" {
		return nil
	}

	var result []data.Item
	for _, match := range fuzzy.FindFrom(term, nameSource(s.Names())) {
		result = append(result, s.names[match.Str]...)
	}
	return result
}

func (s *Store) Clear() {
	s.items = nil
	s.ids = make(map[int64]*entry)
	s.names = make(map[string][]data.Item)
	s.paths.Clear()
	s.blob = newNameBlob()
}

// nameSource exposes distinct names to the fuzzy matcher.
type nameSource []string

func (n nameSource) String(i int) string {
	return n[i]
}

func (n nameSource) Len() int {
	return len(n)
}
