package tree

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mwantia/projtree/data"
)

// Storage persists the records of a project tree.
type Storage interface {
	Name() string

	// Load returns every stored record.
	Load(ctx context.Context) ([]Record, error)
	Insert(ctx context.Context, record Record) error
	Move(ctx context.Context, id, parentID, position int64) error
	Rename(ctx context.Context, id int64, name string) error
	// Delete removes the records with the given ids.
	Delete(ctx context.Context, ids []int64) error

	Close(ctx context.Context) error
}

// Persistent is a project tree with two layers:
//
// Layer 1: an in-memory Graph answering every read
// Layer 2: a Storage receiving every mutation before it is applied to the graph
//
// A mutation that fails in storage leaves the graph untouched.
type Persistent struct {
	mu      sync.Mutex
	graph   *Graph
	storage Storage

	position int64
	closed   bool
}

// Open loads the records of storage into a new graph.
func Open(ctx context.Context, storage Storage) (*Persistent, error) {
	records, err := storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s tree: %w", storage.Name(), err)
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Position < records[j].Position
	})

	p := &Persistent{
		graph:   NewGraph(),
		storage: storage,
	}

	if err := p.graph.Load(records); err != nil {
		return nil, fmt.Errorf("failed to load %s tree: %w", storage.Name(), err)
	}

	for _, record := range records {
		if record.Position > p.position {
			p.position = record.Position
		}
	}

	return p, nil
}

func (p *Persistent) Root() data.Item {
	return p.graph.Root()
}

func (p *Persistent) Children(container data.Item) []data.Item {
	return p.graph.Children(container)
}

func (p *Persistent) Count() int {
	return p.graph.Count()
}

func (p *Persistent) Get(id int64) (data.Item, bool) {
	return p.graph.Get(id)
}

func (p *Persistent) Create(ctx context.Context, parent data.Item, name string, kind data.Kind) (data.Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil, data.ErrClosed
	}

	if parent == nil {
		parent = p.graph.Root()
	}
	if err := p.checkContainer(parent); err != nil {
		return nil, err
	}

	record := Record{
		ID:       p.graph.NextID(),
		ParentID: parent.ID(),
		Name:     name,
		Kind:     kind,
		Position: p.position + 1,
	}

	if err := p.storage.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to insert '%s': %w", name, err)
	}
	p.position = record.Position

	return p.graph.Insert(ctx, record.ID, parent, name, kind)
}

func (p *Persistent) Move(ctx context.Context, item, parent data.Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return data.ErrClosed
	}
	if err := p.checkMove(item, parent); err != nil {
		return err
	}

	position := p.position + 1
	if err := p.storage.Move(ctx, item.ID(), parent.ID(), position); err != nil {
		return fmt.Errorf("failed to move %d: %w", item.ID(), err)
	}
	p.position = position

	return p.graph.Move(ctx, item, parent)
}

func (p *Persistent) Rename(ctx context.Context, item data.Item, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return data.ErrClosed
	}
	if _, ok := p.graph.Get(item.ID()); !ok || item.ID() == RootID {
		return data.NotFound("item %d", item.ID())
	}

	if err := p.storage.Rename(ctx, item.ID(), name); err != nil {
		return fmt.Errorf("failed to rename %d: %w", item.ID(), err)
	}

	return p.graph.Rename(ctx, item, name)
}

func (p *Persistent) Delete(ctx context.Context, item data.Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return data.ErrClosed
	}
	if item.ID() == RootID {
		return data.ErrRootItem
	}

	ids := p.graph.Subtree(item)
	if len(ids) == 0 {
		return data.NotFound("item %d", item.ID())
	}

	if err := p.storage.Delete(ctx, ids); err != nil {
		return fmt.Errorf("failed to delete %d: %w", item.ID(), err)
	}

	return p.graph.Delete(ctx, item)
}

func (p *Persistent) Close(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true

	return p.storage.Close(ctx)
}

func (p *Persistent) checkContainer(item data.Item) error {
	live, ok := p.graph.Get(item.ID())
	if !ok {
		return data.NotFound("item %d", item.ID())
	}
	if !live.Kind().IsContainer() {
		return data.NotContainer(live)
	}
	return nil
}

func (p *Persistent) checkMove(item, parent data.Item) error {
	if item.ID() == RootID {
		return data.ErrRootItem
	}
	if _, ok := p.graph.Get(item.ID()); !ok {
		return data.NotFound("item %d", item.ID())
	}
	if err := p.checkContainer(parent); err != nil {
		return err
	}

	live, _ := p.graph.Get(parent.ID())
	for current := live; current != nil; current = current.Parent() {
		if current.ID() == item.ID() {
			return data.ErrCycle
		}
	}
	return nil
}
