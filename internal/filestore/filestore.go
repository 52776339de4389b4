// Package filestore exposes structure entry file storage behind a
// stable interface. Other packages depend on filestore.Store; the
// backend implementations live under internal/infra/filestore and are
// wrapped only here.
package filestore

import (
	"context"

	"assemblycore/internal/infra/filestore/core"
	"assemblycore/internal/infra/filestore/fs"
	"assemblycore/internal/infra/filestore/memory"
	s3store "assemblycore/internal/infra/filestore/s3"
)

type (
	// Driver identifies a storage backend.
	Driver = core.Driver
	// PutOptions configures a deposit.
	PutOptions = core.PutOptions
	// Info describes a stored entry file.
	Info = core.Info
	// Store is the interface over entry file storage backends.
	Store = core.Store
)

const (
	// DriverFilesystem is the local filesystem backend.
	DriverFilesystem = core.DriverFilesystem
	// DriverS3 is the S3 / MinIO compatible backend.
	DriverS3 = core.DriverS3
	// DriverMemory is the in-memory test backend.
	DriverMemory = core.DriverMemory
)

// ErrNotFound indicates no entry file exists under the requested key.
var ErrNotFound = core.ErrNotFound

// ContentTypeForKey maps an entry file key to a MIME type by extension.
func ContentTypeForKey(key string) string { return core.ContentTypeForKey(key) }

// NewFilesystem returns a filesystem-backed Store rooted at path.
func NewFilesystem(root string) (Store, error) { return fs.New(root) }

// NewMemory returns an in-memory Store for tests.
func NewMemory() Store { return memory.New() }

// S3Config configures an S3-backed Store.
type S3Config = s3store.Config

// NewS3 returns an S3-backed Store from explicit configuration.
func NewS3(ctx context.Context, cfg S3Config) (Store, error) { return s3store.New(ctx, cfg) }

// NewMockS3ForTests returns the in-memory S3 mock for cross-package tests.
func NewMockS3ForTests() Store { return s3store.NewMockForTests() }
