// Package structure defines the core value types for multi-model atomic
// structures and their assembly-generation metadata: models, structural
// units, operator records, and the typed tables shared by every frame of a
// trajectory.
package structure

import "context"

// OperatorID names a single geometric symmetry operator.
type OperatorID string

// Mat4 is a row-major 4x4 homogeneous transform.
type Mat4 [16]float64

// Identity returns the identity transform.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m*n. When a tuple of operators composes left-to-right, the
// rightmost operator's transform applies first, so the composed matrix is
// built by multiplying in textual order: m1.Mul(m2).Mul(m3)... applied to a
// point runs m3 first.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			var sum float64
			for k := 0; k < 4; k++ {
				sum += m[r*4+k] * n[k*4+c]
			}
			out[r*4+c] = sum
		}
	}
	return out
}

// TransformPoint applies the transform to the point (x, y, z, 1).
func (m Mat4) TransformPoint(x, y, z float64) (float64, float64, float64) {
	tx := m[0]*x + m[1]*y + m[2]*z + m[3]
	ty := m[4]*x + m[5]*y + m[6]*z + m[7]
	tz := m[8]*x + m[9]*y + m[10]*z + m[11]
	return tx, ty, tz
}

// IsIdentity reports whether the transform equals the identity matrix exactly.
func (m Mat4) IsIdentity() bool {
	return m == Identity()
}

// Atom is one atomic position within a unit.
type Atom struct {
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// Entity describes a molecular entity referenced by one or more units.
type Entity struct {
	ID          string `json:"id"`
	Description string `json:"description,omitempty"`
}

// Unit is a structural sub-part (typically a chain) that can be duplicated
// independently under an operator. Operator is empty on base units and holds
// the composed operator tuple tag on duplicated instances.
type Unit struct {
	ID          string `json:"id"`
	ChainID     string `json:"chain_id"`
	EntityIndex int    `json:"entity_index"`
	Atoms       []Atom `json:"atoms"`
	Operator    string `json:"operator,omitempty"`
}

// Model is one frame of a trajectory: a full atomic configuration plus the
// static metadata tables it was sourced from. A resolved model is immutable;
// the entity-description patch applied during assembly works on a copy of
// the entity list, never on shared storage.
type Model struct {
	Num      int      `json:"num"`
	Label    string   `json:"label"`
	Entities []Entity `json:"entities"`
	Units    []Unit   `json:"units"`
	Tables   *Tables  `json:"-"`
}

// Structure is an assembled output: one unit instance per original unit and
// applied operator tuple. The caller owns it; each build produces a fresh one.
type Structure struct {
	Units []Unit `json:"units"`
}

// Trajectory is an ordered sequence of models sharing static
// assembly-generation metadata. Frame resolution is lazy and may block on
// deferred decoding; implementations honor context cancellation.
type Trajectory interface {
	// ID identifies the trajectory instance. Computed per-trajectory state
	// (such as resolved assembly definitions) is keyed by this value.
	ID() string
	// FrameCount returns the number of models.
	FrameCount() int
	// Tables returns the assembly-generation metadata shared by all frames.
	Tables() *Tables
	// Frame resolves the model at index i in [0, FrameCount).
	Frame(ctx context.Context, i int) (*Model, error)
}
