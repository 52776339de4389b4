package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"assemblycore/internal/filestore"
	"assemblycore/pkg/structure"
)

const testBlock = `data_TEST
loop_
_entity.id
_entity.pdbx_description
1 'test entity'
#
_pdbx_struct_assembly.id 1
_pdbx_struct_assembly.details 'dimer of dimers'
#
_pdbx_struct_assembly_gen.assembly_id 1
_pdbx_struct_assembly_gen.oper_expression '1,2'
_pdbx_struct_assembly_gen.asym_id_list A,B
#
loop_
_pdbx_struct_oper_list.id
_pdbx_struct_oper_list.matrix[1][1]
_pdbx_struct_oper_list.matrix[1][2]
_pdbx_struct_oper_list.matrix[1][3]
_pdbx_struct_oper_list.vector[1]
_pdbx_struct_oper_list.matrix[2][1]
_pdbx_struct_oper_list.matrix[2][2]
_pdbx_struct_oper_list.matrix[2][3]
_pdbx_struct_oper_list.vector[2]
_pdbx_struct_oper_list.matrix[3][1]
_pdbx_struct_oper_list.matrix[3][2]
_pdbx_struct_oper_list.matrix[3][3]
_pdbx_struct_oper_list.vector[3]
1 1 0 0 0 0 1 0 0 0 0 1 0
2 1 0 0 10 0 1 0 0 0 0 1 0
#
loop_
_atom_site.label_atom_id
_atom_site.label_asym_id
_atom_site.label_entity_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
CA A 1 1.0 0.0 0.0
CA B 1 2.0 0.0 0.0
`

func writeTestFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.cif")
	if err := os.WriteFile(path, []byte(testBlock), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := cli(args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestBuildSummary(t *testing.T) {
	path := writeTestFile(t)
	code, out, errOut := runCLI(t, "-file", path, "-assembly", "1", "-model", "0")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "block TEST assembly 1 model 0: 4 units") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "operator 2: 2 units") {
		t.Fatalf("output = %q", out)
	}
}

func TestBuildJSON(t *testing.T) {
	path := writeTestFile(t)
	code, out, errOut := runCLI(t, "-file", path, "-json")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, errOut)
	}
	var result structure.Structure
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(result.Units) != 4 {
		t.Fatalf("units = %d", len(result.Units))
	}
}

func TestListDefinitions(t *testing.T) {
	path := writeTestFile(t)
	code, out, errOut := runCLI(t, "-file", path, "-list")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "block TEST: 1 frames, 1 assemblies") {
		t.Fatalf("output = %q", out)
	}
	if !strings.Contains(out, "assembly 1: model 1 (2 tuples) dimer of dimers") {
		t.Fatalf("output = %q", out)
	}
}

func TestUnknownAssembly(t *testing.T) {
	path := writeTestFile(t)
	code, _, errOut := runCLI(t, "-file", path, "-assembly", "9")
	if code != 1 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(errOut, "assembly not found") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestMissingSourceFlag(t *testing.T) {
	code, _, errOut := runCLI(t)
	if code != 2 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(errOut, "one of -file or -entry is required") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestMissingFile(t *testing.T) {
	code, _, _ := runCLI(t, "-file", filepath.Join(t.TempDir(), "absent.cif"))
	if code != 1 {
		t.Fatalf("code = %d", code)
	}
}

func TestUnsupportedFormatInput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notcif.txt")
	if err := os.WriteFile(path, []byte("HEADER  NOT A CIF\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	code, _, errOut := runCLI(t, "-file", path)
	if code != 1 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(errOut, "unsupported source format") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestEntryFromFilestore(t *testing.T) {
	root := t.TempDir()
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "fs")
	t.Setenv("ASSEMBLYCORE_FILESTORE_FS_ROOT", root)
	store, err := filestore.NewFilesystem(root)
	if err != nil {
		t.Fatalf("filestore: %v", err)
	}
	if _, err := store.Put(context.Background(), "test.cif", strings.NewReader(testBlock), filestore.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	code, out, errOut := runCLI(t, "-entry", "test.cif")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "4 units") {
		t.Fatalf("output = %q", out)
	}
}

func TestEntryNotFound(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_FILESTORE_DRIVER", "fs")
	t.Setenv("ASSEMBLYCORE_FILESTORE_FS_ROOT", t.TempDir())
	code, _, errOut := runCLI(t, "-entry", "absent.cif")
	if code != 1 {
		t.Fatalf("code = %d", code)
	}
	if !strings.Contains(errOut, "entry absent.cif") {
		t.Fatalf("stderr = %q", errOut)
	}
}

func TestCatalogRecording(t *testing.T) {
	t.Setenv("ASSEMBLYCORE_CATALOG_DRIVER", "")
	path := writeTestFile(t)
	code, out, errOut := runCLI(t, "-file", path, "-catalog", "memory")
	if code != 0 {
		t.Fatalf("code = %d, stderr = %s", code, errOut)
	}
	if !strings.Contains(out, "4 units") {
		t.Fatalf("output = %q", out)
	}
}
