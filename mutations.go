package projtree

import (
	"context"

	"github.com/mwantia/projtree/data"
)

// DuplicateSuffix is appended to the name of a duplicated item.
const DuplicateSuffix = " copy"

// Create adds a new item below parent, or below the root for a nil parent,
// and indexes it.
func (p *Project) Create(ctx context.Context, parent data.Item, name string, kind data.Kind) (data.Item, error) {
	item, err := p.tree.Create(ctx, parent, name, kind)
	if err != nil {
		return nil, err
	}

	p.cache.Add(item)
	return item, nil
}

func (p *Project) CreateFolder(ctx context.Context, parent data.Item, name string) (data.Item, error) {
	return p.Create(ctx, parent, name, data.KindFolder)
}

func (p *Project) CreateComposition(ctx context.Context, parent data.Item, name string) (data.Item, error) {
	return p.Create(ctx, parent, name, data.KindComposition)
}

// Move reparents every item into dest. Items that fail to move are
// reported together; the others are moved regardless.
func (p *Project) Move(ctx context.Context, dest data.Item, items ...data.Item) error {
	if dest == nil {
		dest = p.tree.Root()
	}
	if !dest.Kind().IsContainer() {
		return data.NotContainer(dest)
	}

	var errs data.Errors
	for _, item := range items {
		if item == nil {
			continue
		}
		if err := p.tree.Move(ctx, item, dest); err != nil {
			errs.Add(err)
			continue
		}
		p.cache.Update(item)
	}

	return errs.Errors()
}

// MovePath moves the item at src into the container at dest.
func (p *Project) MovePath(ctx context.Context, src, dest string) error {
	item := p.Resolve(src)
	if item == nil {
		return data.NotFound("path '%s'", src)
	}

	target := p.tree.Root()
	if len(data.Parse(dest)) > 0 {
		target = p.Resolve(dest)
		if target == nil {
			return data.NotFound("path '%s'", dest)
		}
	}

	return p.Move(ctx, target, item)
}

// Rename changes the name of item and every cached path below it.
func (p *Project) Rename(ctx context.Context, item data.Item, name string) error {
	if err := p.tree.Rename(ctx, item, name); err != nil {
		return err
	}

	p.cache.Rename(item)
	return nil
}

// Remove deletes every item belonging to category together with its
// subtree. Items outside of category are skipped.
func (p *Project) Remove(ctx context.Context, category data.Category, items ...data.Item) error {
	var errs data.Errors
	for _, item := range items {
		if item == nil || data.IsRoot(item) || !category.Contains(item.Kind()) {
			continue
		}

		p.cache.Remove(item)
		if err := p.tree.Delete(ctx, item); err != nil {
			errs.Add(err)
		}
	}

	if err := errs.Errors(); err != nil {
		// The cache may have dropped items the tree kept.
		p.cache.Init(true)
		return err
	}
	return nil
}

// RemovePath deletes the item at path.
func (p *Project) RemovePath(ctx context.Context, category data.Category, path string) error {
	item := p.Resolve(path)
	if item == nil {
		return data.NotFound("path '%s'", path)
	}
	return p.Remove(ctx, category, item)
}

// Duplicate creates a copy of every item at the root of the project, named
// after the original with DuplicateSuffix. Folders are copied without their
// contents.
func (p *Project) Duplicate(ctx context.Context, items ...data.Item) ([]data.Item, error) {
	var errs data.Errors
	var copies []data.Item

	for _, item := range items {
		if item == nil || data.IsRoot(item) {
			continue
		}

		dup, err := p.Create(ctx, nil, item.Name()+DuplicateSuffix, item.Kind())
		if err != nil {
			errs.Add(err)
			continue
		}
		copies = append(copies, dup)
	}

	return copies, errs.Errors()
}
