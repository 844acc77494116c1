package storage

import (
	"path/filepath"
	"testing"

	"github.com/perspectr/perspectr/internal/network"
)

// setupTestDB opens a fresh database in a temp dir.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := OpenDB(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testNodes() []network.Node {
	return []network.Node{
		{ID: "u1", X: 0, Y: 0, Name: "Me", Email: "me@x.com", Instagram: "https://www.instagram.com/me", Discord: "me#1"},
		{ID: "u2", X: 3, Y: 4, Name: network.NameLookupFailed, Degraded: true},
		{ID: "u0", X: -1.5, Y: 2.25, Name: "Zero"},
	}
}

func TestOpenDB_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")

	db, err := OpenDB(path)
	if err != nil {
		t.Fatalf("OpenDB failed: %v", err)
	}
	if _, err := db.SaveSnapshot("u1", 1, testNodes()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	db.Close()

	db, err = OpenDB(path)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	defer db.Close()

	snap, err := db.LatestSnapshot("u1")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap == nil || snap.NodeCount != 3 {
		t.Fatalf("LatestSnapshot() = %+v, want 3 nodes", snap)
	}
}

func TestSaveSnapshot_PreservesOrder(t *testing.T) {
	db := setupTestDB(t)
	nodes := testNodes()

	id, err := db.SaveSnapshot("u1", 2, nodes)
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	snap, err := db.LatestSnapshot("u1")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap.ID != id {
		t.Errorf("ID = %d, want %d", snap.ID, id)
	}
	if snap.Epoch != 2 {
		t.Errorf("Epoch = %d, want 2", snap.Epoch)
	}
	if len(snap.Nodes) != len(nodes) {
		t.Fatalf("got %d nodes, want %d", len(snap.Nodes), len(nodes))
	}
	for i := range nodes {
		if snap.Nodes[i] != nodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, snap.Nodes[i], nodes[i])
		}
	}
}

func TestLatestSnapshot_None(t *testing.T) {
	db := setupTestDB(t)

	snap, err := db.LatestSnapshot("nobody")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap != nil {
		t.Errorf("LatestSnapshot() = %+v, want nil", snap)
	}
}

func TestLatestSnapshot_EmptyNetwork(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.SaveSnapshot("u1", 1, nil); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	snap, err := db.LatestSnapshot("u1")
	if err != nil {
		t.Fatalf("LatestSnapshot failed: %v", err)
	}
	if snap == nil || len(snap.Nodes) != 0 || snap.NodeCount != 0 {
		t.Errorf("LatestSnapshot() = %+v, want empty snapshot", snap)
	}
}

func TestListSnapshots(t *testing.T) {
	db := setupTestDB(t)

	for epoch := 1; epoch <= 3; epoch++ {
		if _, err := db.SaveSnapshot("u1", epoch, testNodes()[:epoch]); err != nil {
			t.Fatalf("SaveSnapshot failed: %v", err)
		}
	}
	if _, err := db.SaveSnapshot("other", 1, testNodes()); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	tests := []struct {
		name       string
		limit      int
		wantEpochs []int
	}{
		{"all", 0, []int{3, 2, 1}},
		{"limited", 2, []int{3, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.ListSnapshots("u1", tt.limit)
			if err != nil {
				t.Fatalf("ListSnapshots failed: %v", err)
			}
			if len(got) != len(tt.wantEpochs) {
				t.Fatalf("got %d snapshots, want %d", len(got), len(tt.wantEpochs))
			}
			for i, s := range got {
				if s.Epoch != tt.wantEpochs[i] {
					t.Errorf("snapshot %d epoch = %d, want %d", i, s.Epoch, tt.wantEpochs[i])
				}
				if s.NodeCount != s.Epoch {
					t.Errorf("snapshot %d node_count = %d, want %d", i, s.NodeCount, s.Epoch)
				}
				if s.Nodes != nil {
					t.Errorf("list should not load nodes")
				}
			}
		})
	}
}

func TestGetSnapshot(t *testing.T) {
	db := setupTestDB(t)

	id, err := db.SaveSnapshot("u1", 4, testNodes())
	if err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	snap, err := db.GetSnapshot(id)
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if snap == nil || snap.Epoch != 4 || len(snap.Nodes) != 3 {
		t.Fatalf("GetSnapshot(%d) = %+v", id, snap)
	}

	missing, err := db.GetSnapshot(id + 100)
	if err != nil {
		t.Fatalf("GetSnapshot(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("GetSnapshot(missing) = %+v, want nil", missing)
	}
}
