package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"assemblycore/internal/infra/catalog/memory"
	"assemblycore/internal/infra/catalog/sqlite"
)

func TestOpenMemory(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_CATALOG_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenSQLiteDefault(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_CATALOG_DRIVER", "")
	t.Setenv("ASSEMBLYCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "c.db"))
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = store.Close() }()
	if _, ok := store.(*sqlite.Store); !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_CATALOG_DRIVER", "bogus")
	if _, err := Open(context.Background()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestNewBuildRecordStampsCreation(t *testing.T) {
	r := NewBuildRecord(BuildRecord{ID: "b"})
	if r.CreatedAt.IsZero() {
		t.Fatalf("expected creation timestamp")
	}
	again := NewBuildRecord(r)
	if !again.CreatedAt.Equal(r.CreatedAt) {
		t.Fatalf("existing timestamp overwritten")
	}
}
