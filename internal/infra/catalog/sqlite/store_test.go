package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"assemblycore/pkg/record"
)

func TestStoreSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog", "state.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.Path() != path {
		t.Fatalf("path wrong: %s", store.Path())
	}
	ctx := context.Background()
	if err := store.PutEntry(ctx, record.Entry{ID: "1abc", Source: "1abc.cif", Frames: 2}); err != nil {
		t.Fatalf("put entry: %v", err)
	}
	if err := store.AppendBuild(ctx, record.BuildRecord{ID: "b1", EntryID: "1abc", AssemblyID: "1", ModelIndex: 0, Units: 10, Operators: 2}); err != nil {
		t.Fatalf("append build: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopen hydrates from the snapshot.
	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	entries, err := reopened.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "1abc" || entries[0].Frames != 2 {
		t.Fatalf("entries lost: %+v", entries)
	}
	builds, err := reopened.Builds(ctx)
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	if len(builds) != 1 || builds[0].Units != 10 || builds[0].Operators != 2 {
		t.Fatalf("builds lost: %+v", builds)
	}
}

func TestStoreDefaultPath(t *testing.T) {
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(oldwd) })
	store, err := NewStore("")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	if store.Path() != "assemblycore.db" {
		t.Fatalf("default path wrong: %s", store.Path())
	}
	if store.DB() == nil {
		t.Fatalf("expected db handle")
	}
}

func TestStoreRejectsEmptyIDsWithoutPersisting(t *testing.T) {
	store, err := NewStore(filepath.Join(t.TempDir(), "s.db"))
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	defer func() { _ = store.Close() }()
	ctx := context.Background()
	if err := store.PutEntry(ctx, record.Entry{}); err == nil {
		t.Fatalf("expected entry id error")
	}
	if err := store.AppendBuild(ctx, record.BuildRecord{}); err == nil {
		t.Fatalf("expected build id error")
	}
	var count int
	if err := store.DB().QueryRow(`SELECT COUNT(*) FROM state`).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("rejected writes persisted: %d buckets", count)
	}
}
