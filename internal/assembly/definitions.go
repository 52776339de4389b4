package assembly

import (
	"fmt"

	"assemblycore/pkg/structure"
)

// GeneratorOps is the resolved contribution of one generator row: the
// operator-id tuples its expression expanded to, and the ids of the units
// those operators duplicate.
type GeneratorOps struct {
	Tuples  [][]structure.OperatorID
	UnitIDs []string
}

// Definition is a named assembly with its operator groups resolved per model
// number.
type Definition struct {
	ID      string
	Details string
	// Groups holds, per source model number, the resolved generator
	// contributions in row order.
	Groups map[int][]GeneratorOps
}

// ModelsAssembly pairs a Definition with the model numbers of the generator
// rows it was built from, in row order. len(ModelNums) equals the number of
// generator rows contributing to the assembly.
type ModelsAssembly struct {
	Definition
	ModelNums []int
}

// GroupFor returns the generator contributions applicable to the given model
// number. A model with no contributions yields (nil, false): no operators
// apply, which callers treat as "nothing to build", not a fault.
func (m ModelsAssembly) GroupFor(modelNum int) ([]GeneratorOps, bool) {
	ops, ok := m.Groups[modelNum]
	return ops, ok
}

// OperatorCount returns the number of operator tuples applicable to the
// given model number across all of its generator contributions.
func (m ModelsAssembly) OperatorCount(modelNum int) int {
	var n int
	for _, g := range m.Groups[modelNum] {
		n += len(g.Tuples)
	}
	return n
}

// BuildDefinitions resolves every assembly of the metadata tables into
// per-model operator groups.
//
// Assemblies are emitted in assembly-table row order; assemblies with zero
// generator rows are omitted. An empty assembly table yields an empty slice
// and no error. Any expression that fails to parse, or that references an
// operator id absent from the matrix table, aborts the whole build; there is
// no partial-assembly fallback.
func BuildDefinitions(tables *structure.Tables, matrices MatrixTable) ([]ModelsAssembly, error) {
	if tables == nil || len(tables.Assemblies) == 0 {
		return nil, nil
	}
	out := make([]ModelsAssembly, 0, len(tables.Assemblies))
	for _, row := range tables.Assemblies {
		def := Definition{ID: row.ID, Details: row.Details, Groups: make(map[int][]GeneratorOps)}
		var modelNums []int
		for _, gen := range tables.Generators {
			if gen.AssemblyID != row.ID {
				continue
			}
			tuples, err := ParseExpression(gen.Expression)
			if err != nil {
				return nil, fmt.Errorf("assembly %q: %w", row.ID, err)
			}
			for _, tuple := range tuples {
				for _, id := range tuple {
					if _, ok := matrices[id]; !ok {
						return nil, fmt.Errorf("assembly %q: %w", row.ID, structure.UnknownOperatorError{ID: id})
					}
				}
			}
			unitIDs := make([]string, len(gen.UnitIDs))
			copy(unitIDs, gen.UnitIDs)
			def.Groups[gen.ModelNum] = append(def.Groups[gen.ModelNum], GeneratorOps{Tuples: tuples, UnitIDs: unitIDs})
			modelNums = append(modelNums, gen.ModelNum)
		}
		if len(modelNums) == 0 {
			continue
		}
		out = append(out, ModelsAssembly{Definition: def, ModelNums: modelNums})
	}
	return out, nil
}
