// Package assembly builds fully replicated structures by applying symmetry
// operators to the structural units of a model. It resolves
// operator-selection expressions into concrete operator groups, memoizes the
// per-trajectory resolution, and replicates units under the composed
// transforms.
package assembly

import (
	"fmt"

	"assemblycore/pkg/structure"
)

// MatrixTable maps operator ids to their 4x4 transforms.
type MatrixTable map[structure.OperatorID]structure.Mat4

// BuildMatrixTable constructs the operator lookup from the operator table.
// Pure construction: the input rows are not retained or mutated. Empty and
// duplicate ids fail wrapping structure.ErrMalformedOperatorRecord.
func BuildMatrixTable(rows []structure.OperatorRow) (MatrixTable, error) {
	table := make(MatrixTable, len(rows))
	for i, row := range rows {
		if row.ID == "" {
			return nil, fmt.Errorf("%w: row %d has empty id", structure.ErrMalformedOperatorRecord, i)
		}
		id := structure.OperatorID(row.ID)
		if _, ok := table[id]; ok {
			return nil, fmt.Errorf("%w: duplicate id %q", structure.ErrMalformedOperatorRecord, row.ID)
		}
		table[id] = row.Matrix
	}
	return table, nil
}

// Compose multiplies the matrices of an operator tuple in textual order so
// that the rightmost operator's transform applies first. Every id must be
// present in the table; absent ids return structure.UnknownOperatorError.
func (t MatrixTable) Compose(tuple []structure.OperatorID) (structure.Mat4, error) {
	out := structure.Identity()
	for _, id := range tuple {
		m, ok := t[id]
		if !ok {
			return structure.Mat4{}, structure.UnknownOperatorError{ID: id}
		}
		out = out.Mul(m)
	}
	return out, nil
}
