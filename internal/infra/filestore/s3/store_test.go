package s3

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"assemblycore/internal/infra/filestore/core"
)

func TestNewRequiresBucket(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing bucket")
	}
}

func TestOpenFromEnvRequiresBucket(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_S3_BUCKET", "")
	if _, err := OpenFromEnv(context.Background()); err == nil {
		t.Fatal("expected error for missing bucket env")
	}
}

func TestMockLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if s.Driver() != core.DriverS3 {
		t.Fatalf("driver = %s", s.Driver())
	}

	info, err := s.Put(ctx, "pdb/1abc.cif", strings.NewReader("data_1ABC\n"), core.PutOptions{})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != int64(len("data_1ABC\n")) {
		t.Fatalf("size = %d", info.Size)
	}
	if info.ContentType != "chemical/x-mmcif" {
		t.Fatalf("content type = %q", info.ContentType)
	}

	got, rc, err := s.Get(ctx, "pdb/1abc.cif")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(body) != "data_1ABC\n" {
		t.Fatalf("body = %q", body)
	}
	if got.Checksum == "" {
		t.Fatal("expected checksum from etag")
	}

	ok, err := s.Delete(ctx, "pdb/1abc.cif")
	if err != nil || !ok {
		t.Fatalf("delete = %v, %v", ok, err)
	}
	ok, err = s.Delete(ctx, "pdb/1abc.cif")
	if err != nil || ok {
		t.Fatalf("second delete = %v, %v", ok, err)
	}
}

func TestMockMissingKey(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	if _, err := s.Head(ctx, "nope.cif"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("head err = %v", err)
	}
	if _, _, err := s.Get(ctx, "nope.cif"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("get err = %v", err)
	}
}

func TestMockList(t *testing.T) {
	ctx := context.Background()
	s := NewMockForTests()
	for _, key := range []string{"pdb/2xyz.cif", "pdb/1abc.cif", "emdb/M-1.cif"} {
		if _, err := s.Put(ctx, key, strings.NewReader("x"), core.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := s.List(ctx, "pdb/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "pdb/1abc.cif" || infos[1].Key != "pdb/2xyz.cif" {
		t.Fatalf("list = %+v", infos)
	}
}

func TestDecodeAWSChunked(t *testing.T) {
	payload := "5\r\nhello\r\n0\r\n\r\n"
	dec, ok := decodeAWSChunked([]byte(payload))
	if !ok || string(dec) != "hello" {
		t.Fatalf("decode = %q, %v", dec, ok)
	}
	if _, ok := decodeAWSChunked([]byte("plain body")); ok {
		t.Fatal("plain body should not decode")
	}
}
