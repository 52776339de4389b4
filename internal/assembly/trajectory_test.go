package assembly

import (
	"context"
	"fmt"
	"sync"

	"assemblycore/pkg/record"
	"assemblycore/pkg/structure"
)

// fakeTrajectory is an in-memory trajectory for tests. blocking makes Frame
// wait for context cancellation; frameErr makes Frame fail.
type fakeTrajectory struct {
	id       string
	tables   *structure.Tables
	frames   []*structure.Model
	frameErr error
	blocking bool
}

func (f *fakeTrajectory) ID() string                { return f.id }
func (f *fakeTrajectory) FrameCount() int           { return len(f.frames) }
func (f *fakeTrajectory) Tables() *structure.Tables { return f.tables }

func (f *fakeTrajectory) Frame(ctx context.Context, i int) (*structure.Model, error) {
	if f.blocking {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.frameErr != nil {
		return nil, f.frameErr
	}
	if i < 0 || i >= len(f.frames) {
		return nil, fmt.Errorf("frame %d out of range", i)
	}
	return f.frames[i], nil
}

// capturingStore is a record.Store that retains appended state in memory.
type capturingStore struct {
	mu      sync.Mutex
	entries []record.Entry
	builds  []record.BuildRecord
}

func (s *capturingStore) PutEntry(_ context.Context, e record.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, e)
	return nil
}

func (s *capturingStore) Entries(context.Context) ([]record.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.Entry(nil), s.entries...), nil
}

func (s *capturingStore) AppendBuild(_ context.Context, b record.BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.builds = append(s.builds, b)
	return nil
}

func (s *capturingStore) Builds(context.Context) ([]record.BuildRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]record.BuildRecord(nil), s.builds...), nil
}

func (s *capturingStore) Close() error { return nil }

// fiveUnitModel builds a model with five units all sharing unit id prefix
// letters A..E and one entity.
func fiveUnitModel(num int, label string) *structure.Model {
	units := make([]structure.Unit, 0, 5)
	for i, id := range []string{"A", "B", "C", "D", "E"} {
		units = append(units, structure.Unit{
			ID:          id,
			ChainID:     id,
			EntityIndex: 0,
			Atoms:       []structure.Atom{{Name: "CA", X: float64(i), Y: 1, Z: 2}},
		})
	}
	return &structure.Model{
		Num:      num,
		Label:    label,
		Entities: []structure.Entity{{ID: "1"}},
		Units:    units,
	}
}
