package projtree

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mwantia/projtree/config"
	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/query"
	"github.com/mwantia/projtree/tree"
)

func newTestProject(t *testing.T) *Project {
	t.Helper()

	p, err := NewProject(tree.NewGraph())
	if err != nil {
		t.Fatalf("NewProject failed: %v", err)
	}
	return p
}

func names(items []data.Item) []string {
	result := make([]string, 0, len(items))
	for _, item := range items {
		result = append(result, item.Name())
	}
	return result
}

func first(t *testing.T, items []data.Item, err error) data.Item {
	t.Helper()

	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) == 0 {
		return nil
	}
	return items[0]
}

func TestProject_ShotsScenario(t *testing.T) {
	ctx := t.Context()
	p := newTestProject(t)

	shots, err := p.CreateFolder(ctx, nil, "Shots")
	if err != nil {
		t.Fatalf("CreateFolder failed: %v", err)
	}
	shot010, err := p.CreateComposition(ctx, shots, "Shot010")
	if err != nil {
		t.Fatalf("CreateComposition failed: %v", err)
	}

	if got := data.GetPath(shot010); got != "//Shots//Shot010" {
		t.Errorf("GetPath = %q", got)
	}
	if got := p.Resolve("//Shots//Shot010"); got != shot010 {
		t.Errorf("Resolve = %v", got)
	}
	if got, ok := p.Cache().GetByPath(data.CategoryCompositions, "//Shots//Shot010"); !ok || got != shot010 {
		t.Errorf("expected cached path, got %v", got)
	}

	if err := p.Rename(ctx, shots, "Shots_OLD"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	if _, ok := p.Cache().GetByPath(data.CategoryAll, "//Shots//Shot010"); ok {
		t.Error("old path still cached")
	}
	if got, ok := p.Cache().GetByPath(data.CategoryAll, "//Shots_OLD//Shot010"); !ok || got != shot010 {
		t.Errorf("expected renamed path, got %v", got)
	}

	items, err := p.Compositions("//Shots_OLD//Shot010")
	if got := first(t, items, err); got != shot010 {
		t.Errorf("expected query by new path to find Shot010, got %v", got)
	}
	items, err = p.Folders("Shots")
	if got := first(t, items, err); got != nil {
		t.Errorf("expected old folder name to be gone, got %v", got)
	}
}

func TestProject_Move(t *testing.T) {
	ctx := t.Context()
	p := newTestProject(t)

	shots, _ := p.CreateFolder(ctx, nil, "Shots")
	shot010, _ := p.CreateFolder(ctx, shots, "Shot010")
	comp, _ := p.CreateComposition(ctx, shot010, "Comp")
	archive, _ := p.CreateFolder(ctx, nil, "Archive")

	if err := p.MovePath(ctx, "//Shots//Shot010", "//Archive"); err != nil {
		t.Fatalf("MovePath failed: %v", err)
	}

	items, err := p.Compositions("//Archive//Shot010//Comp")
	if got := first(t, items, err); got != comp {
		t.Errorf("expected comp below Archive, got %v", got)
	}
	items, err = p.Items(query.Options{Root: archive})
	if got := names(mustItems(t, items, err)); !slices.Equal(got, []string{"Shot010"}) {
		t.Errorf("unexpected children of Archive %v", got)
	}

	if err := p.Move(ctx, nil, comp); err != nil {
		t.Fatalf("Move to root failed: %v", err)
	}
	items, err = p.Compositions("//Comp")
	if got := first(t, items, err); got != comp {
		t.Errorf("expected comp at the root, got %v", got)
	}

	if err := p.Move(ctx, comp, archive); !errors.Is(err, data.ErrNotContainer) {
		t.Errorf("expected ErrNotContainer, got %v", err)
	}
	if err := p.Move(ctx, shot010, archive); !errors.Is(err, data.ErrCycle) {
		t.Errorf("expected ErrCycle, got %v", err)
	}
	if err := p.MovePath(ctx, "//Missing", "//Archive"); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("expected ErrNotFound for source, got %v", err)
	}
	if err := p.MovePath(ctx, "//Comp", "//Missing"); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("expected ErrNotFound for destination, got %v", err)
	}
}

func TestProject_Remove(t *testing.T) {
	ctx := t.Context()
	p := newTestProject(t)

	shots, _ := p.CreateFolder(ctx, nil, "Shots")
	p.CreateComposition(ctx, shots, "Comp")
	main, _ := p.CreateComposition(ctx, nil, "Main")
	plate, _ := p.Create(ctx, nil, "plate.mov", data.KindVideo)

	// Items outside the category are skipped.
	if err := p.Remove(ctx, data.CategoryFolders, main); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if p.Resolve("//Main") == nil {
		t.Error("composition removed through the folders category")
	}

	if err := p.RemovePath(ctx, data.CategoryFolders, "//Shots"); err != nil {
		t.Fatalf("RemovePath failed: %v", err)
	}
	items, err := p.Compositions(nil)
	if got := names(mustItems(t, items, err)); !slices.Equal(got, []string{"Main"}) {
		t.Errorf("unexpected compositions %v", got)
	}

	if err := p.Remove(ctx, data.CategoryFootage, plate); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	items, err = p.Videos(nil)
	if got := mustItems(t, items, err); len(got) != 0 {
		t.Errorf("expected no videos, got %v", names(got))
	}

	if err := p.RemovePath(ctx, data.CategoryAll, "//Shots"); !errors.Is(err, data.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if p.Tree().Count() != 1 {
		t.Errorf("expected only Main to remain, got %d items", p.Tree().Count())
	}
}

func TestProject_Duplicate(t *testing.T) {
	ctx := t.Context()
	p := newTestProject(t)

	shots, _ := p.CreateFolder(ctx, nil, "Shots")
	comp, _ := p.CreateComposition(ctx, shots, "Comp")

	copies, err := p.Duplicate(ctx, comp, shots)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if got := names(copies); !slices.Equal(got, []string{"Comp copy", "Shots copy"}) {
		t.Errorf("unexpected copies %v", got)
	}
	if copies[0].Kind() != data.KindComposition || copies[1].Kind() != data.KindFolder {
		t.Errorf("copies must keep their kind")
	}
	if len(p.Tree().Children(copies[1])) != 0 {
		t.Error("expected folder to be copied empty")
	}

	items, err := p.Compositions("Comp copy")
	if got := first(t, items, err); got != copies[0] {
		t.Errorf("expected copy to be indexed, got %v", got)
	}
}

func TestProject_Open(t *testing.T) {
	ctx := t.Context()

	tests := map[string]func(cfg *config.Config){
		"memory": func(cfg *config.Config) {},
		"sqlite": func(cfg *config.Config) {
			cfg.Tree.Driver = config.DriverSQLite
			cfg.Tree.DSN = filepath.Join(t.TempDir(), "project.db")
		},
		"sqlite memory": func(cfg *config.Config) {
			cfg.Tree.Driver = config.DriverSQLite
		},
	}

	for name, configure := range tests {
		t.Run(name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Log.Level = "OFF"
			configure(cfg)

			p, err := Open(ctx, cfg)
			if err != nil {
				t.Fatalf("Open failed: %v", err)
			}
			defer p.Close(ctx)

			folder, err := p.CreateFolder(ctx, nil, "Shots")
			if err != nil {
				t.Fatalf("CreateFolder failed: %v", err)
			}
			if _, err := p.CreateComposition(ctx, folder, "Comp"); err != nil {
				t.Fatalf("CreateComposition failed: %v", err)
			}

			items, err := p.Compositions("//Shots//Comp")
			if got := first(t, items, err); got == nil || got.Name() != "Comp" {
				t.Errorf("expected Comp, got %v", got)
			}
		})
	}

	cfg := config.DefaultConfig()
	cfg.Tree.Driver = "bolt"
	if _, err := Open(ctx, cfg); err == nil {
		t.Error("expected error for unknown driver")
	}
}

func TestProject_SQLiteReopen(t *testing.T) {
	ctx := t.Context()

	cfg := config.DefaultConfig()
	cfg.Log.Level = "OFF"
	cfg.Tree.Driver = config.DriverSQLite
	cfg.Tree.DSN = filepath.Join(t.TempDir(), "project.db")

	p, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	shots, _ := p.CreateFolder(ctx, nil, "Shots")
	comp, _ := p.CreateComposition(ctx, shots, "Comp")
	if err := p.Rename(ctx, shots, "Plates"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if err := p.Close(ctx); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(ctx, cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	items, err := reopened.Compositions("//Plates//Comp")
	if got := first(t, items, err); got == nil || got.ID() != comp.ID() {
		t.Errorf("expected Comp after reopen, got %v", got)
	}
}

func mustItems(t *testing.T, items []data.Item, err error) []data.Item {
	t.Helper()

	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	return items
}
