package cache

import (
	"strings"

	"github.com/mwantia/projtree/data"
)

type pathSlot struct {
	path string
	ids  []int64
}

func (s *Store) unsafeAddName(e *entry) {
	bucket, exists := s.names[e.name]
	if !exists {
		s.blob.add(e.name)
	}
	s.names[e.name] = append(bucket, e.item)
}

func (s *Store) unsafeRemoveName(e *entry) {
	bucket := s.names[e.name]
	for i, item := range bucket {
		if item.ID() == e.item.ID() {
			bucket = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}

	if len(bucket) == 0 {
		delete(s.names, e.name)
		s.blob.remove(e.name)
		return
	}
	s.names[e.name] = bucket
}

func (s *Store) unsafeAddPath(path string, id int64) {
	ids, _ := s.paths.Get(path)
	s.paths.Set(path, append(ids, id))
}

func (s *Store) unsafeRemovePath(path string, id int64) {
	ids, exists := s.paths.Get(path)
	if !exists {
		return
	}

	for i, other := range ids {
		if other == id {
			ids = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}

	if len(ids) == 0 {
		s.paths.Delete(path)
		return
	}
	s.paths.Set(path, ids)
}

func (s *Store) unsafeRemoveItem(e *entry) {
	for i, item := range s.items {
		if item.ID() == e.item.ID() {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return
		}
	}
}

// unsafeScanPrefix collects the path slots starting with prefix in key order.
// The B-tree must not be modified while it is scanned, so callers mutate the
// returned slots afterwards.
func (s *Store) unsafeScanPrefix(prefix string) []pathSlot {
	var slots []pathSlot
	s.paths.Ascend(prefix, func(path string, ids []int64) bool {
		if !strings.HasPrefix(path, prefix) {
			return false
		}
		slots = append(slots, pathSlot{path: path, ids: append([]int64(nil), ids...)})
		return true
	})
	return slots
}

// childPrefix returns the prefix shared by all descendants of path.
func childPrefix(path string) string {
	if path == data.Separator {
		return path
	}
	return path + data.Separator
}
