package assembly

import (
	"errors"
	"testing"

	"assemblycore/pkg/structure"
)

func TestBuildMatrixTable(t *testing.T) {
	rows := []structure.OperatorRow{
		{ID: "1", Matrix: structure.Identity()},
		{ID: "X0", Matrix: translationX(4)},
	}
	table, err := BuildMatrixTable(rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(table) != 2 {
		t.Fatalf("expected 2 operators, got %d", len(table))
	}
	if !table["1"].IsIdentity() {
		t.Fatalf("operator 1 should be identity")
	}
}

func TestBuildMatrixTableMalformed(t *testing.T) {
	cases := []struct {
		name string
		rows []structure.OperatorRow
	}{
		{"empty id", []structure.OperatorRow{{ID: ""}}},
		{"duplicate id", []structure.OperatorRow{{ID: "1"}, {ID: "1"}}},
	}
	for _, tc := range cases {
		if _, err := BuildMatrixTable(tc.rows); !errors.Is(err, structure.ErrMalformedOperatorRecord) {
			t.Fatalf("%s: expected ErrMalformedOperatorRecord, got %v", tc.name, err)
		}
	}
}

func TestMatrixTableCompose(t *testing.T) {
	table := MatrixTable{
		"t": translationX(10),
		"s": scaleUniform(2),
	}

	// Empty tuple composes to identity.
	m, err := table.Compose(nil)
	if err != nil {
		t.Fatalf("compose empty: %v", err)
	}
	if !m.IsIdentity() {
		t.Fatalf("expected identity")
	}

	// Textual order (t, s): s applies first.
	m, err = table.Compose(ids("t", "s"))
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	x, _, _ := m.TransformPoint(1, 0, 0)
	if x != 12 {
		t.Fatalf("expected x=12 (scale then translate), got %v", x)
	}

	if _, err := table.Compose(ids("t", "missing")); err == nil {
		t.Fatalf("expected unknown operator error")
	} else if !errors.Is(err, structure.ErrInvalidExpression) {
		t.Fatalf("expected invalid-expression classification, got %v", err)
	}
}

func translationX(d float64) structure.Mat4 {
	m := structure.Identity()
	m[3] = d
	return m
}

func scaleUniform(f float64) structure.Mat4 {
	m := structure.Identity()
	m[0], m[5], m[10] = f, f, f
	return m
}
