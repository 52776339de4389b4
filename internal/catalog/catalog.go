// Package catalog records loaded trajectory entries and completed assembly
// builds for audit. Backends live under internal/infra/catalog; selection is
// environment driven.
package catalog

import (
	"context"
	"fmt"
	"os"
	"time"

	"assemblycore/internal/infra/catalog/memory"
	"assemblycore/internal/infra/catalog/postgres"
	"assemblycore/internal/infra/catalog/sqlite"
	"assemblycore/pkg/record"
)

type (
	Entry       = record.Entry
	BuildRecord = record.BuildRecord
	Snapshot    = record.Snapshot
)

// Store persists catalog state. Writes are append/upsert only; there is no
// mutation of recorded builds.
type Store = record.Store

// Driver identifies a concrete catalog backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
)

// Open selects a catalog backend using environment variables.
// Defaults to sqlite when unset.
//
//	ASSEMBLYCORE_CATALOG_DRIVER: memory|sqlite|postgres (default sqlite)
//	ASSEMBLYCORE_SQLITE_PATH: path to sqlite file (default ./assemblycore.db)
//	ASSEMBLYCORE_POSTGRES_DSN: postgres DSN when driver=postgres
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("ASSEMBLYCORE_CATALOG_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return memory.NewStore(), nil
	case DriverSQLite:
		return sqlite.NewStore(os.Getenv("ASSEMBLYCORE_SQLITE_PATH"))
	case DriverPostgres:
		return postgres.NewStore(ctx, os.Getenv("ASSEMBLYCORE_POSTGRES_DSN"))
	default:
		return nil, fmt.Errorf("unknown catalog driver %s", driver)
	}
}

// NewBuildRecord stamps a build record with creation time when unset.
func NewBuildRecord(r BuildRecord) BuildRecord {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}
