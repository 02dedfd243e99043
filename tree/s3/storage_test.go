package s3

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/mwantia/projtree/data"
	"github.com/mwantia/projtree/tree"
)

func TestSnapshotKey(t *testing.T) {
	tests := map[string]string{
		"":                "tree.json",
		"/":               "tree.json",
		"projects/ep101/": "projects/ep101/tree.json",
	}
	for prefix, want := range tests {
		if got := snapshotKey(prefix); got != want {
			t.Errorf("snapshotKey(%q) = %q, want %q", prefix, got, want)
		}
	}
}

func TestNew_RequiresBucket(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Error("expected error for nil config")
	}
	if _, err := New(&Config{Endpoint: "localhost:9000"}); err == nil {
		t.Error("expected error without bucket")
	}
}

func TestEncode_OrdersByPosition(t *testing.T) {
	records := map[int64]tree.Record{
		3: {ID: 3, ParentID: 1, Name: "Comp", Kind: data.KindComposition, Position: 5},
		1: {ID: 1, Name: "Shots", Kind: data.KindFolder, Position: 1},
		2: {ID: 2, Name: "plate.mov", Kind: data.KindVideo, Position: 2},
	}

	value, err := encode(records)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}

	var snap snapshot
	if err := json.Unmarshal(value, &snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}

	if len(snap.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(snap.Records))
	}
	for i, id := range []int64{1, 2, 3} {
		if snap.Records[i].ID != id {
			t.Errorf("record %d: expected id %d, got %d", i, id, snap.Records[i].ID)
		}
	}
	if snap.Records[1].Kind != data.KindVideo {
		t.Errorf("kind not preserved: %v", snap.Records[1].Kind)
	}
}

// Requires a reachable bucket, e.g. a local MinIO with
// PROJTREE_S3_ENDPOINT=localhost:9000 PROJTREE_S3_BUCKET=projtree
// PROJTREE_S3_ACCESS_KEY=minioadmin PROJTREE_S3_SECRET_KEY=minioadmin
func TestS3Tree_Reopen(t *testing.T) {
	endpoint := os.Getenv("PROJTREE_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("PROJTREE_S3_ENDPOINT not set")
	}

	ctx := t.Context()
	config := &Config{
		Endpoint:  endpoint,
		Bucket:    os.Getenv("PROJTREE_S3_BUCKET"),
		AccessKey: os.Getenv("PROJTREE_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("PROJTREE_S3_SECRET_KEY"),
		Prefix:    t.Name(),
	}

	s, err := New(config)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	tr, err := tree.Open(ctx, s)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, child := range tr.Children(tr.Root()) {
		if err := tr.Delete(ctx, child); err != nil {
			t.Fatalf("cleanup failed: %v", err)
		}
	}

	shots, _ := tr.Create(ctx, nil, "Shots", data.KindFolder)
	comp, _ := tr.Create(ctx, shots, "Comp", data.KindComposition)
	if err := tr.Rename(ctx, shots, "Plates"); err != nil {
		t.Fatalf("Rename failed: %v", err)
	}

	reopened, err := Open(ctx, config)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close(ctx)

	got, ok := reopened.Get(comp.ID())
	if !ok || data.GetPath(got) != "//Plates//Comp" {
		t.Errorf("unexpected comp after reopen: %v", got)
	}
}
