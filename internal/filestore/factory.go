package filestore

import (
	"context"
	"fmt"
	"os"

	s3store "assemblycore/internal/infra/filestore/s3"
)

// Open selects a Store implementation from environment variables.
//
//	ASSEMBLYCORE_FILESTORE_DRIVER: fs|s3|memory (default fs)
//	ASSEMBLYCORE_FILESTORE_FS_ROOT: directory root when driver=fs (default ./structdata)
//	(S3 specific variables are documented in the s3 backend.)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ASSEMBLYCORE_FILESTORE_DRIVER")
	if driver == "" {
		driver = string(DriverFilesystem)
	}
	switch Driver(driver) {
	case DriverFilesystem:
		return NewFilesystem(os.Getenv("ASSEMBLYCORE_FILESTORE_FS_ROOT"))
	case DriverS3:
		return s3store.OpenFromEnv(ctx)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown filestore driver %s", driver)
	}
}
