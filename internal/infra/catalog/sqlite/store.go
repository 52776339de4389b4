// Package sqlite persists the catalog to a single SQLite table as JSON
// snapshots, mirroring the in-memory semantics: every successful write
// re-snapshots the full state.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"assemblycore/internal/infra/catalog/memory"
	"assemblycore/pkg/record"
)

var _ record.Store = (*Store)(nil)

// Store snapshots the in-memory catalog state to SQLite after every write.
type Store struct {
	*memory.Store
	db   *sql.DB
	mu   sync.Mutex
	path string
}

var sqliteBuckets = []string{"entries", "builds"}

// NewStore constructs a snapshotting SQLite-backed catalog store.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "assemblycore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS state (
		bucket TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create state table: %w", err)
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("select state: %w", err)
	}
	defer func() { _ = rows.Close() }()
	snapshot := record.Snapshot{}
	var loaded bool
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan: %w", err)
		}
		switch bucket {
		case "entries":
			if err := json.Unmarshal(payload, &snapshot.Entries); err != nil {
				return fmt.Errorf("decode entries: %w", err)
			}
		case "builds":
			if err := json.Unmarshal(payload, &snapshot.Builds); err != nil {
				return fmt.Errorf("decode builds: %w", err)
			}
		}
		loaded = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state: %w", err)
	}
	if loaded {
		s.ImportState(snapshot)
	}
	return nil
}

func (s *Store) persist() (retErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.ExportState()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	for _, bucket := range sqliteBuckets {
		var data []byte
		switch bucket {
		case "entries":
			data, err = json.Marshal(snapshot.Entries)
		case "builds":
			data, err = json.Marshal(snapshot.Builds)
		}
		if err != nil {
			retErr = err
			return retErr
		}
		if _, err = tx.Exec(`INSERT INTO state(bucket,payload) VALUES(?,?) ON CONFLICT(bucket) DO UPDATE SET payload=excluded.payload`, bucket, data); err != nil {
			retErr = fmt.Errorf("upsert %s: %w", bucket, err)
			return retErr
		}
	}
	return tx.Commit()
}

// PutEntry upserts the entry and snapshots to SQLite.
func (s *Store) PutEntry(ctx context.Context, entry record.Entry) error {
	if err := s.Store.PutEntry(ctx, entry); err != nil {
		return err
	}
	return s.persist()
}

// AppendBuild appends the record and snapshots to SQLite.
func (s *Store) AppendBuild(ctx context.Context, build record.BuildRecord) error {
	if err := s.Store.AppendBuild(ctx, build); err != nil {
		return err
	}
	return s.persist()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
