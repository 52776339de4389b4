package memory

import (
	"context"
	"testing"
	"time"

	"assemblycore/pkg/record"
)

func TestStoreEntriesUpsertOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.PutEntry(ctx, record.Entry{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if err := s.PutEntry(ctx, record.Entry{ID: "1abc", Source: "a.cif", Frames: 2}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.PutEntry(ctx, record.Entry{ID: "2def", Source: "b.cif", Frames: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}
	// Upsert keeps insertion order.
	if err := s.PutEntry(ctx, record.Entry{ID: "1abc", Source: "a2.cif", Frames: 3}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	entries, err := s.Entries(ctx)
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if len(entries) != 2 || entries[0].ID != "1abc" || entries[0].Source != "a2.cif" || entries[1].ID != "2def" {
		t.Fatalf("entries wrong: %+v", entries)
	}
}

func TestStoreBuildsAppend(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	if err := s.AppendBuild(ctx, record.BuildRecord{}); err == nil {
		t.Fatalf("expected error for empty id")
	}
	for i := 0; i < 3; i++ {
		b := record.BuildRecord{ID: string(rune('a' + i)), EntryID: "1abc", AssemblyID: "1", Units: i, CreatedAt: time.Now().UTC()}
		if err := s.AppendBuild(ctx, b); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	builds, err := s.Builds(ctx)
	if err != nil {
		t.Fatalf("builds: %v", err)
	}
	if len(builds) != 3 || builds[0].ID != "a" || builds[2].Units != 2 {
		t.Fatalf("builds wrong: %+v", builds)
	}
	// Returned slice is a copy.
	builds[0].ID = "mutated"
	again, _ := s.Builds(ctx)
	if again[0].ID != "a" {
		t.Fatalf("internal state aliased by caller")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
}

func TestStoreExportImportRoundTrip(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.PutEntry(ctx, record.Entry{ID: "e1", Frames: 4})
	_ = s.AppendBuild(ctx, record.BuildRecord{ID: "b1", EntryID: "e1"})

	snap := s.ExportState()
	other := NewStore()
	other.ImportState(snap)
	entries, _ := other.Entries(ctx)
	builds, _ := other.Builds(ctx)
	if len(entries) != 1 || entries[0].ID != "e1" || len(builds) != 1 || builds[0].ID != "b1" {
		t.Fatalf("round trip lost state: %+v %+v", entries, builds)
	}
}
