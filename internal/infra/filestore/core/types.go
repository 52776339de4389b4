// Package core defines the abstractions shared by the structure file
// storage backends.
package core

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// Driver identifies a concrete structure file storage backend.
type Driver string

const (
	// DriverFilesystem stores entry files under a local directory root.
	DriverFilesystem Driver = "fs" // local filesystem (default, dev)
	// DriverS3 stores entry files in an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
	// DriverMemory keeps entry files in process memory, for tests.
	DriverMemory Driver = "memory"
)

// PutOptions carries optional parameters for a deposit.
type PutOptions struct {
	ContentType string            // MIME type; derived from the key extension when empty
	Metadata    map[string]string // flat user metadata, e.g. deposition source
}

// Info describes a stored entry file.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Checksum     string            `json:"checksum,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the minimal surface the assembly pipeline needs from entry
// file storage. Put replaces any existing file under the same key, so a
// re-deposited entry supersedes the previous revision.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	Head(ctx context.Context, key string) (Info, error)
	Delete(ctx context.Context, key string) (bool, error)
	List(ctx context.Context, prefix string) ([]Info, error)
	Driver() Driver
}

// ErrNotFound is returned when no entry file exists under the requested key.
var ErrNotFound = errors.New("filestore: entry file not found")

// ContentTypeForKey maps an entry file key to a MIME type by extension.
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".cif", ".mmcif":
		return "chemical/x-mmcif"
	case ".pdb", ".ent":
		return "chemical/x-pdb"
	default:
		return "application/octet-stream"
	}
}
