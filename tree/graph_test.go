package tree

import (
	"errors"
	"testing"

	"github.com/mwantia/projtree/data"
)

func TestGraph_NewGraph(t *testing.T) {
	g := NewGraph()

	root := g.Root()
	if root == nil {
		t.Fatal("root not created")
	}
	if root.Parent() != nil {
		t.Error("root must not have a parent")
	}
	if !root.Kind().IsContainer() {
		t.Error("root is not a container")
	}
	if g.Count() != 0 {
		t.Errorf("expected empty graph, got %d items", g.Count())
	}
}

func TestGraph_Create(t *testing.T) {
	g := NewGraph()
	ctx := t.Context()

	folder, err := g.Create(ctx, nil, "Shots", data.KindFolder)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	comp, err := g.Create(ctx, folder, "Comp", data.KindComposition)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if g.Count() != 2 {
		t.Errorf("expected 2 items, got %d", g.Count())
	}
	if comp.Parent().ID() != folder.ID() {
		t.Errorf("expected parent %d, got %d", folder.ID(), comp.Parent().ID())
	}
	if folder.ID() == comp.ID() || folder.ID() == RootID {
		t.Errorf("ids not unique: %d, %d", folder.ID(), comp.ID())
	}

	if _, err := g.Create(ctx, comp, "Nested", data.KindFolder); !errors.Is(err, data.ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}

	got, ok := g.Get(comp.ID())
	if !ok || got != comp {
		t.Errorf("Get(%d) = %v, %v", comp.ID(), got, ok)
	}
}

func TestGraph_ChildrenOrder(t *testing.T) {
	g := NewGraph()
	ctx := t.Context()

	names := []string{"C", "A", "B"}
	for _, name := range names {
		if _, err := g.Create(ctx, nil, name, data.KindComposition); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	children := g.Children(g.Root())
	if len(children) != len(names) {
		t.Fatalf("expected %d children, got %d", len(names), len(children))
	}
	for i, child := range children {
		if child.Name() != names[i] {
			t.Errorf("child %d: expected %q, got %q", i, names[i], child.Name())
		}
	}
}

func TestGraph_Move(t *testing.T) {
	g := NewGraph()
	ctx := t.Context()

	a, _ := g.Create(ctx, nil, "A", data.KindFolder)
	b, _ := g.Create(ctx, a, "B", data.KindFolder)
	comp, _ := g.Create(ctx, nil, "Comp", data.KindComposition)

	if err := g.Move(ctx, comp, b); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if got := data.GetPath(comp); got != "//A//B//Comp" {
		t.Errorf("expected moved path, got %q", got)
	}
	if len(g.Children(g.Root())) != 1 {
		t.Errorf("expected comp to leave the root")
	}

	if err := g.Move(ctx, a, b); !errors.Is(err, data.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := g.Move(ctx, a, a); !errors.Is(err, data.ErrCycle) {
		t.Errorf("expected ErrCycle for self move, got %v", err)
	}
	if err := g.Move(ctx, b, comp); !errors.Is(err, data.ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
	if err := g.Move(ctx, g.Root(), a); !errors.Is(err, data.ErrRootItem) {
		t.Errorf("expected ErrRootItem, got %v", err)
	}
}

func TestGraph_RenameAndDelete(t *testing.T) {
	g := NewGraph()
	ctx := t.Context()

	a, _ := g.Create(ctx, nil, "A", data.KindFolder)
	b, _ := g.Create(ctx, a, "B", data.KindFolder)
	g.Create(ctx, b, "Comp", data.KindComposition)
	other, _ := g.Create(ctx, nil, "Other", data.KindComposition)

	if err := g.Rename(ctx, a, "Renamed"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if got := data.GetPath(b); got != "//Renamed//B" {
		t.Errorf("expected renamed path, got %q", got)
	}

	if got := g.Subtree(a); len(got) != 3 {
		t.Errorf("expected subtree of 3, got %v", got)
	}
	if got := data.CountSubtree(g, a); got != 3 {
		t.Errorf("expected CountSubtree 3, got %d", got)
	}

	if err := g.Delete(ctx, a); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if g.Count() != 1 {
		t.Errorf("expected 1 item left, got %d", g.Count())
	}
	if _, ok := g.Get(b.ID()); ok {
		t.Error("descendant still present after delete")
	}
	if err := g.Delete(ctx, a); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	items := g.Items()
	if len(items) != 1 || items[0] != other {
		t.Errorf("unexpected items %v", items)
	}
}

func TestGraph_Load(t *testing.T) {
	g := NewGraph()

	records := []Record{
		{ID: 1, ParentID: RootID, Name: "Shots", Kind: data.KindFolder, Position: 1},
		{ID: 3, ParentID: 1, Name: "Comp", Kind: data.KindComposition, Position: 2},
		{ID: 2, ParentID: RootID, Name: "Main", Kind: data.KindComposition, Position: 3},
	}
	if err := g.Load(records); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if g.Count() != 3 {
		t.Errorf("expected 3 items, got %d", g.Count())
	}

	comp, ok := g.Get(3)
	if !ok || data.GetPath(comp) != "//Shots//Comp" {
		t.Errorf("unexpected comp %v", comp)
	}

	// New ids continue after the highest loaded id.
	item, err := g.Create(t.Context(), nil, "Next", data.KindFolder)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if item.ID() != 4 {
		t.Errorf("expected id 4, got %d", item.ID())
	}

	bad := []Record{{ID: 5, ParentID: 99, Name: "Orphan", Kind: data.KindFolder}}
	if err := g.Load(bad); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("expected ErrNotFound for orphan, got %v", err)
	}
}
