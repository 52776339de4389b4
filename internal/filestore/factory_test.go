package filestore

import (
	"context"
	"strings"
	"testing"
)

func TestOpenMemoryDriver(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "memory")
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenDefaultsToFilesystem(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "")
	t.Setenv("ASSEMBLYCORE_FILESTORE_FS_ROOT", t.TempDir())
	store, err := Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver = %s", store.Driver())
	}
}

func TestOpenS3RequiresBucket(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "s3")
	t.Setenv("ASSEMBLYCORE_FILESTORE_S3_BUCKET", "")
	if _, err := Open(context.Background()); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "tape")
	_, err := Open(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unknown filestore driver") {
		t.Fatalf("err = %v", err)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"pdb/1abc.cif":   "chemical/x-mmcif",
		"1ABC.MMCIF":     "chemical/x-mmcif",
		"pdb1abc.ent":    "chemical/x-pdb",
		"model.pdb":      "chemical/x-pdb",
		"notes.txt":      "application/octet-stream",
		"no-extension":   "application/octet-stream",
		"dir.cif/x.blob": "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Errorf("ContentTypeForKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestMockS3RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMockS3ForTests()
	if _, err := store.Put(ctx, "1abc.cif", strings.NewReader("data_1ABC\n"), PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	info, err := store.Head(ctx, "1abc.cif")
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	if info.Size != int64(len("data_1ABC\n")) {
		t.Fatalf("size = %d", info.Size)
	}
}
