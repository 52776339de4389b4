package cif

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"assemblycore/pkg/structure"
)

// Trajectory is the in-memory multi-model view of one mmCIF data block.
// Atom sites stay in raw string form until a frame is first requested;
// materialized models are retained for later requests.
type Trajectory struct {
	id       string
	label    string
	tables   *structure.Tables
	entities []structure.Entity
	frames   []frame

	mu     sync.Mutex
	models map[int]*structure.Model
}

var _ structure.Trajectory = (*Trajectory)(nil)

// ID identifies this trajectory instance. Distinct reads of the same
// file yield distinct ids.
func (t *Trajectory) ID() string { return t.id }

// Label returns the data block name.
func (t *Trajectory) Label() string { return t.label }

// FrameCount returns the number of models in the block.
func (t *Trajectory) FrameCount() int { return len(t.frames) }

// Tables returns the assembly-generation metadata shared by all frames.
func (t *Trajectory) Tables() *structure.Tables { return t.tables }

// Frame materializes the model at index i.
func (t *Trajectory) Frame(ctx context.Context, i int) (*structure.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i < 0 || i >= len(t.frames) {
		return nil, fmt.Errorf("cif: frame %d out of range [0,%d)", i, len(t.frames))
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if m, ok := t.models[i]; ok {
		return m, nil
	}
	m, err := t.materialize(i)
	if err != nil {
		return nil, err
	}
	if t.models == nil {
		t.models = make(map[int]*structure.Model)
	}
	t.models[i] = m
	return m, nil
}

func (t *Trajectory) materialize(i int) (*structure.Model, error) {
	f := t.frames[i]
	entityIndex := make(map[string]int, len(t.entities))
	for idx, e := range t.entities {
		entityIndex[e.ID] = idx
	}
	m := &structure.Model{
		Num:      f.num,
		Label:    t.label,
		Entities: append([]structure.Entity(nil), t.entities...),
		Tables:   t.tables,
	}
	unitIndex := make(map[string]int)
	for ri, row := range f.rows {
		x, err := strconv.ParseFloat(row.x, 64)
		if err != nil {
			return nil, fmt.Errorf("cif: model %d atom %d: bad coordinate %q", f.num, ri, row.x)
		}
		y, err := strconv.ParseFloat(row.y, 64)
		if err != nil {
			return nil, fmt.Errorf("cif: model %d atom %d: bad coordinate %q", f.num, ri, row.y)
		}
		z, err := strconv.ParseFloat(row.z, 64)
		if err != nil {
			return nil, fmt.Errorf("cif: model %d atom %d: bad coordinate %q", f.num, ri, row.z)
		}
		ui, ok := unitIndex[row.asymID]
		if !ok {
			ui = len(m.Units)
			unitIndex[row.asymID] = ui
			ei := -1
			if idx, known := entityIndex[row.entity]; known {
				ei = idx
			}
			m.Units = append(m.Units, structure.Unit{
				ID:          row.asymID,
				ChainID:     row.asymID,
				EntityIndex: ei,
			})
		}
		m.Units[ui].Atoms = append(m.Units[ui].Atoms, structure.Atom{Name: row.name, X: x, Y: y, Z: z})
	}
	return m, nil
}
