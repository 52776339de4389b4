package structure

import "fmt"

// AssemblyRow is one row of the assembly table: a named logical grouping of
// structural units plus the operators that replicate them.
type AssemblyRow struct {
	ID      string `json:"id"`
	Details string `json:"details,omitempty"`
}

// GeneratorRow is one row of the assembly-generator table. It selects, via
// Expression, which operators apply to the units named in UnitIDs, for the
// assembly AssemblyID, originating from model number ModelNum.
type GeneratorRow struct {
	AssemblyID string   `json:"assembly_id"`
	Expression string   `json:"expression"`
	UnitIDs    []string `json:"unit_ids"`
	ModelNum   int      `json:"model_num"`
}

// OperatorRow is one row of the operator table: a named 4x4 transform.
type OperatorRow struct {
	ID     string `json:"id"`
	Matrix Mat4   `json:"matrix"`
}

// Tables holds the static assembly-generation metadata shared by every frame
// of a trajectory. Rows are validated once at load time; downstream logic
// relies on the shapes being correct and never re-validates.
type Tables struct {
	Assemblies []AssemblyRow  `json:"assemblies"`
	Generators []GeneratorRow `json:"generators"`
	Operators  []OperatorRow  `json:"operators"`
}

// Validate checks referential shape: generator rows must name a known
// assembly id and carry a non-empty expression and unit list.
func (t *Tables) Validate() error {
	known := make(map[string]struct{}, len(t.Assemblies))
	for _, a := range t.Assemblies {
		known[a.ID] = struct{}{}
	}
	for i, g := range t.Generators {
		if g.AssemblyID == "" {
			return fmt.Errorf("generator row %d: empty assembly id", i)
		}
		if _, ok := known[g.AssemblyID]; !ok {
			return fmt.Errorf("generator row %d: unknown assembly id %q", i, g.AssemblyID)
		}
		if g.Expression == "" {
			return fmt.Errorf("generator row %d: empty operator expression", i)
		}
		if len(g.UnitIDs) == 0 {
			return fmt.Errorf("generator row %d: empty unit id list", i)
		}
	}
	return nil
}
