// Package memory implements the catalog store in process memory. It is the
// authoritative state holder the snapshotting backends embed.
package memory

import (
	"context"
	"fmt"
	"sync"

	"assemblycore/pkg/record"
)

// Compile-time contract assertion.
var _ record.Store = (*Store)(nil)

// Store keeps catalog state in memory. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]record.Entry
	builds  []record.BuildRecord
}

// NewStore returns an empty in-memory catalog store.
func NewStore() *Store {
	return &Store{entries: make(map[string]record.Entry)}
}

// PutEntry upserts a trajectory entry by id.
func (s *Store) PutEntry(_ context.Context, entry record.Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("entry id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		s.order = append(s.order, entry.ID)
	}
	s.entries[entry.ID] = entry
	return nil
}

// Entries returns known entries in insertion order.
func (s *Store) Entries(context.Context) ([]record.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]record.Entry, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.entries[id])
	}
	return out, nil
}

// AppendBuild appends a completed-build record.
func (s *Store) AppendBuild(_ context.Context, build record.BuildRecord) error {
	if build.ID == "" {
		return fmt.Errorf("build id required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds = append(s.builds, build)
	return nil
}

// Builds returns recorded builds in append order.
func (s *Store) Builds(context.Context) ([]record.BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]record.BuildRecord(nil), s.builds...), nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error { return nil }

// ExportState snapshots the full catalog state.
func (s *Store) ExportState() record.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := record.Snapshot{
		Entries: make([]record.Entry, 0, len(s.order)),
		Builds:  append([]record.BuildRecord(nil), s.builds...),
	}
	for _, id := range s.order {
		snap.Entries = append(snap.Entries, s.entries[id])
	}
	return snap
}

// ImportState replaces the catalog state with the snapshot.
func (s *Store) ImportState(snap record.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = s.order[:0]
	s.entries = make(map[string]record.Entry, len(snap.Entries))
	for _, e := range snap.Entries {
		s.order = append(s.order, e.ID)
		s.entries[e.ID] = e
	}
	s.builds = append([]record.BuildRecord(nil), snap.Builds...)
}
