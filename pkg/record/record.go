// Package record defines the persistence contracts for the build catalog:
// trajectory entries, completed-build records, and the store interface the
// catalog backends implement.
package record

import (
	"context"
	"time"
)

// Entry describes a source trajectory known to the catalog.
type Entry struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Frames    int       `json:"frames"`
	CreatedAt time.Time `json:"created_at"`
}

// BuildRecord captures one completed assembly build.
type BuildRecord struct {
	ID         string        `json:"id"`
	EntryID    string        `json:"entry_id"`
	AssemblyID string        `json:"assembly_id"`
	ModelIndex int           `json:"model_index"`
	Units      int           `json:"units"`
	Operators  int           `json:"operators"`
	Duration   time.Duration `json:"duration_ns"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Snapshot is the full catalog state, used by snapshotting backends.
type Snapshot struct {
	Entries []Entry       `json:"entries"`
	Builds  []BuildRecord `json:"builds"`
}

// Store persists catalog state. PutEntry upserts by entry id; AppendBuild is
// append-only. Read methods return copies in insertion order.
type Store interface {
	PutEntry(ctx context.Context, entry Entry) error
	Entries(ctx context.Context) ([]Entry, error)
	AppendBuild(ctx context.Context, build BuildRecord) error
	Builds(ctx context.Context) ([]BuildRecord, error)
	Close() error
}
