package data

import (
	"errors"
	"fmt"
	"sync"
)

// Standard errors returned by trees, caches and queries.
var (
	// Lookup errors
	ErrNotFound     = errors.New("projtree: item not found")
	ErrExists       = errors.New("projtree: item already exists")
	ErrInvalidPath  = errors.New("projtree: invalid path detected")
	ErrNotContainer = errors.New("projtree: item is not a container")

	// Query errors
	ErrInvalidQuery = errors.New("projtree: invalid query")

	// Tree errors
	ErrRootItem = errors.New("projtree: operation not permitted on the root item")
	ErrCycle    = errors.New("projtree: item cannot be moved into its own subtree")
	ErrClosed   = errors.New("projtree: tree already closed")
)

func InvalidQuery(q any) error {
	return newError(ErrInvalidQuery, "unsupported query type %T", q)
}

func InvalidPath(path string) error {
	return newError(ErrInvalidPath, "'%s'", path)
}

func NotFound(format string, args ...any) error {
	return newError(ErrNotFound, format, args...)
}

func Exists(id int64) error {
	return newError(ErrExists, "id %d", id)
}

func NotContainer(item Item) error {
	return newError(ErrNotContainer, "'%s' (%d) is a %s", item.Name(), item.ID(), item.Kind())
}

func newError(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s", err, fmt.Sprintf(format, args...))
}

// Errors collects errors from batch operations.
type Errors struct {
	mu     sync.RWMutex
	errors []error
}

func (e *Errors) Add(err error) {
	if err == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.errors = append(e.errors, err)
}

func (e *Errors) Errors() error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if len(e.errors) == 0 {
		return nil
	}

	return errors.Join(e.errors...)
}
