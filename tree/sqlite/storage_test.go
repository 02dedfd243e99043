package sqlite

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mwantia/projtree/data"
)

func TestSQLiteTree_Reopen(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "project.db")

	tr, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	shots, err := tr.Create(ctx, nil, "Shots", data.KindFolder)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	shot010, _ := tr.Create(ctx, shots, "Shot010", data.KindFolder)
	comp, _ := tr.Create(ctx, shot010, "Comp", data.KindComposition)
	tr.Create(ctx, nil, "Main", data.KindComposition)
	plate, _ := tr.Create(ctx, nil, "plate.mov", data.KindVideo)

	if err := tr.Move(ctx, plate, shot010); err != nil {
		t.Fatalf("Move failed: %v", err)
	}
	if err := tr.Rename(ctx, shot010, "Shot020"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if err := tr.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := tr.Create(ctx, nil, "Late", data.KindFolder); !errors.Is(err, data.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	if reopened.Count() != 5 {
		t.Errorf("expected 5 items, got %d", reopened.Count())
	}

	got, ok := reopened.Get(comp.ID())
	if !ok || data.GetPath(got) != "//Shots//Shot020//Comp" {
		t.Errorf("unexpected comp after reopen: %v", got)
	}

	movedPlate, ok := reopened.Get(plate.ID())
	if !ok || data.GetPath(movedPlate) != "//Shots//Shot020//plate.mov" {
		t.Errorf("unexpected plate after reopen: %v", movedPlate)
	}
	if movedPlate.Kind() != data.KindVideo {
		t.Errorf("expected video kind, got %s", movedPlate.Kind())
	}

	// The moved item stays the last child of its new parent.
	parent, _ := reopened.Get(shot010.ID())
	children := reopened.Children(parent)
	if len(children) != 2 || children[0].Name() != "Comp" || children[1].Name() != "plate.mov" {
		t.Errorf("unexpected child order %v", children)
	}
}

func TestSQLiteTree_DeleteSubtree(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "project.db")

	tr, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	shots, _ := tr.Create(ctx, nil, "Shots", data.KindFolder)
	shot010, _ := tr.Create(ctx, shots, "Shot010", data.KindFolder)
	tr.Create(ctx, shot010, "Comp", data.KindComposition)
	keep, _ := tr.Create(ctx, nil, "Keep", data.KindComposition)

	if err := tr.Delete(ctx, shots); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if tr.Count() != 1 {
		t.Errorf("expected 1 item, got %d", tr.Count())
	}
	tr.Close(ctx)

	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	if reopened.Count() != 1 {
		t.Errorf("expected 1 item after reopen, got %d", reopened.Count())
	}
	if _, ok := reopened.Get(keep.ID()); !ok {
		t.Error("kept item missing after reopen")
	}

	// Ids are not reused after reopening.
	next, err := reopened.Create(ctx, nil, "Next", data.KindFolder)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if next.ID() <= keep.ID() {
		t.Errorf("expected id above %d, got %d", keep.ID(), next.ID())
	}
}

func TestSQLiteTree_Validation(t *testing.T) {
	ctx := t.Context()

	tr, err := Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer tr.Close(ctx)

	comp, _ := tr.Create(ctx, nil, "Comp", data.KindComposition)
	folder, _ := tr.Create(ctx, nil, "Folder", data.KindFolder)

	if _, err := tr.Create(ctx, comp, "Child", data.KindFolder); !errors.Is(err, data.ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
	if err := tr.Move(ctx, folder, folder); !errors.Is(err, data.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := tr.Delete(ctx, tr.Root()); !errors.Is(err, data.ErrRootItem) {
		t.Errorf("expected ErrRootItem, got %v", err)
	}
	if tr.Count() != 2 {
		t.Errorf("expected 2 items, got %d", tr.Count())
	}
}
