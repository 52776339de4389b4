// Package cif reads the subset of the mmCIF tabular format needed to
// drive assembly construction: the assembly, generator and operator
// categories plus atom sites and entity descriptions. Unknown
// categories are skipped. A file yields typed tables and a lazy
// multi-model Trajectory.
package cif

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"assemblycore/pkg/structure"
)

// Category and item names recognized by the reader. Everything else in
// the file is ignored.
const (
	catEntity      = "_entity"
	catAssembly    = "_pdbx_struct_assembly"
	catAssemblyGen = "_pdbx_struct_assembly_gen"
	catOperList    = "_pdbx_struct_oper_list"
	catAtomSite    = "_atom_site"
)

// Read parses one data block from r. Input that does not begin with a
// data block is not mmCIF and yields structure.ErrUnsupportedFormat.
func Read(r io.Reader) (*Trajectory, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	tokens, err := tokenize(data)
	if err != nil {
		return nil, err
	}
	block, cats, err := parseBlock(tokens)
	if err != nil {
		return nil, err
	}

	entities, err := buildEntities(cats[catEntity])
	if err != nil {
		return nil, err
	}
	operators, err := buildOperators(cats[catOperList])
	if err != nil {
		return nil, err
	}
	frames, err := buildFrames(cats[catAtomSite], entities)
	if err != nil {
		return nil, err
	}
	tables := &structure.Tables{
		Assemblies: buildAssemblies(cats[catAssembly]),
		Operators:  operators,
	}
	tables.Generators, err = buildGenerators(cats[catAssemblyGen], frames)
	if err != nil {
		return nil, err
	}
	if err := tables.Validate(); err != nil {
		return nil, fmt.Errorf("cif: block %s: %w", block, err)
	}

	return &Trajectory{
		id:       block + "/" + uuid.NewString(),
		label:    block,
		tables:   tables,
		entities: entities,
		frames:   frames,
	}, nil
}

// rawCategory is one parsed category: column item names (lowercased,
// without the category prefix) and string-valued rows.
type rawCategory struct {
	cols []string
	idx  map[string]int
	rows [][]string
}

func (c *rawCategory) get(row int, item string) (string, bool) {
	if c == nil {
		return "", false
	}
	i, ok := c.idx[item]
	if !ok || i >= len(c.rows[row]) {
		return "", false
	}
	return c.rows[row][i], true
}

func (c *rawCategory) len() int {
	if c == nil {
		return 0
	}
	return len(c.rows)
}

// value unwraps the CIF null markers "." and "?" to the empty string.
func value(v string) string {
	if v == "." || v == "?" {
		return ""
	}
	return v
}

// splitTag breaks "_category.item" into its parts.
func splitTag(tag string) (category, item string, ok bool) {
	dot := strings.IndexByte(tag, '.')
	if dot < 0 {
		return "", "", false
	}
	return strings.ToLower(tag[:dot]), strings.ToLower(tag[dot+1:]), true
}

// parseBlock consumes the first data block, collecting categories from
// both loop_ and key-value form. Later blocks are ignored.
func parseBlock(tokens []token) (string, map[string]*rawCategory, error) {
	if len(tokens) == 0 || tokens[0].quoted || !strings.HasPrefix(strings.ToLower(tokens[0].text), "data_") {
		return "", nil, fmt.Errorf("cif: input does not begin with a data block: %w", structure.ErrUnsupportedFormat)
	}
	block := tokens[0].text[len("data_"):]
	cats := make(map[string]*rawCategory)

	category := func(name string, cols []string) *rawCategory {
		c, ok := cats[name]
		if !ok {
			c = &rawCategory{idx: make(map[string]int)}
			cats[name] = c
		}
		for _, col := range cols {
			if _, exists := c.idx[col]; !exists {
				c.idx[col] = len(c.cols)
				c.cols = append(c.cols, col)
			}
		}
		return c
	}

	i := 1
	for i < len(tokens) {
		tok := tokens[i]
		if tok.quoted {
			return "", nil, fmt.Errorf("cif: unexpected value %q outside a category", tok.text)
		}
		lower := strings.ToLower(tok.text)
		switch {
		case strings.HasPrefix(lower, "data_"):
			// Only the first block is read.
			return block, cats, nil
		case lower == "loop_":
			var cat string
			var items []string
			i++
			for i < len(tokens) && !tokens[i].quoted && strings.HasPrefix(tokens[i].text, "_") {
				c, item, ok := splitTag(tokens[i].text)
				if !ok {
					return "", nil, fmt.Errorf("cif: malformed tag %q", tokens[i].text)
				}
				if cat == "" {
					cat = c
				} else if c != cat {
					return "", nil, fmt.Errorf("cif: loop mixes categories %s and %s", cat, c)
				}
				items = append(items, item)
				i++
			}
			if len(items) == 0 {
				return "", nil, fmt.Errorf("cif: loop_ without item tags")
			}
			var values []token
			for i < len(tokens) && (tokens[i].quoted || !isControl(tokens[i].text)) {
				values = append(values, tokens[i])
				i++
			}
			if len(values)%len(items) != 0 {
				return "", nil, fmt.Errorf("cif: loop %s has %d values for %d columns", cat, len(values), len(items))
			}
			c := category(cat, items)
			for r := 0; r < len(values); r += len(items) {
				row := make([]string, len(items))
				for j := range items {
					row[j] = values[r+j].text
				}
				c.rows = append(c.rows, row)
			}
		case strings.HasPrefix(tok.text, "_"):
			cat, item, ok := splitTag(tok.text)
			if !ok {
				return "", nil, fmt.Errorf("cif: malformed tag %q", tok.text)
			}
			if i+1 >= len(tokens) {
				return "", nil, fmt.Errorf("cif: tag %q without value", tok.text)
			}
			c := category(cat, []string{item})
			if len(c.rows) == 0 {
				c.rows = append(c.rows, make([]string, 0, 4))
			}
			for len(c.rows[0]) < c.idx[item] {
				c.rows[0] = append(c.rows[0], "")
			}
			c.rows[0] = append(c.rows[0], tokens[i+1].text)
			i += 2
		default:
			// Unrecognized control token (save frames etc.); skip.
			i++
		}
	}
	return block, cats, nil
}

// isControl reports whether an unquoted token introduces new structure
// rather than a value.
func isControl(text string) bool {
	lower := strings.ToLower(text)
	return strings.HasPrefix(text, "_") ||
		lower == "loop_" || lower == "stop_" ||
		strings.HasPrefix(lower, "data_") || strings.HasPrefix(lower, "save_")
}

func buildEntities(cat *rawCategory) ([]structure.Entity, error) {
	out := make([]structure.Entity, 0, cat.len())
	for r := 0; r < cat.len(); r++ {
		id, ok := cat.get(r, "id")
		if !ok || value(id) == "" {
			return nil, fmt.Errorf("cif: entity row %d missing id", r)
		}
		desc, _ := cat.get(r, "pdbx_description")
		out = append(out, structure.Entity{ID: id, Description: value(desc)})
	}
	return out, nil
}

func buildAssemblies(cat *rawCategory) []structure.AssemblyRow {
	out := make([]structure.AssemblyRow, 0, cat.len())
	for r := 0; r < cat.len(); r++ {
		id, ok := cat.get(r, "id")
		if !ok || value(id) == "" {
			continue
		}
		details, _ := cat.get(r, "details")
		out = append(out, structure.AssemblyRow{ID: id, Details: value(details)})
	}
	return out
}

// buildGenerators reads the generator rows. A row may carry an explicit
// model number; without one it applies to every model in the file, so
// it is expanded to one row per frame.
func buildGenerators(cat *rawCategory, frames []frame) ([]structure.GeneratorRow, error) {
	modelNums := make([]int, 0, len(frames))
	for _, f := range frames {
		modelNums = append(modelNums, f.num)
	}
	if len(modelNums) == 0 {
		modelNums = []int{1}
	}
	var out []structure.GeneratorRow
	for r := 0; r < cat.len(); r++ {
		asm, _ := cat.get(r, "assembly_id")
		expr, _ := cat.get(r, "oper_expression")
		list, _ := cat.get(r, "asym_id_list")
		row := structure.GeneratorRow{
			AssemblyID: value(asm),
			Expression: value(expr),
		}
		for _, id := range strings.Split(value(list), ",") {
			if id = strings.TrimSpace(id); id != "" {
				row.UnitIDs = append(row.UnitIDs, id)
			}
		}
		if num, ok := cat.get(r, "pdbx_pdb_model_num"); ok && value(num) != "" {
			n, err := strconv.Atoi(value(num))
			if err != nil {
				return nil, fmt.Errorf("cif: generator row %d: bad model number %q", r, num)
			}
			row.ModelNum = n
			out = append(out, row)
			continue
		}
		for _, n := range modelNums {
			row.ModelNum = n
			out = append(out, row)
		}
	}
	return out, nil
}

func buildOperators(cat *rawCategory) ([]structure.OperatorRow, error) {
	out := make([]structure.OperatorRow, 0, cat.len())
	for r := 0; r < cat.len(); r++ {
		id, ok := cat.get(r, "id")
		if !ok || value(id) == "" {
			return nil, fmt.Errorf("cif: operator row %d missing id: %w", r, structure.ErrMalformedOperatorRecord)
		}
		m := structure.Identity()
		for i := 1; i <= 3; i++ {
			for j := 1; j <= 3; j++ {
				v, err := operField(cat, r, id, fmt.Sprintf("matrix[%d][%d]", i, j))
				if err != nil {
					return nil, err
				}
				m[(i-1)*4+(j-1)] = v
			}
			v, err := operField(cat, r, id, fmt.Sprintf("vector[%d]", i))
			if err != nil {
				return nil, err
			}
			m[(i-1)*4+3] = v
		}
		out = append(out, structure.OperatorRow{ID: id, Matrix: m})
	}
	return out, nil
}

func operField(cat *rawCategory, row int, id, item string) (float64, error) {
	raw, ok := cat.get(row, item)
	if !ok || value(raw) == "" {
		return 0, fmt.Errorf("cif: operator %s missing %s: %w", id, item, structure.ErrMalformedOperatorRecord)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("cif: operator %s: bad %s %q: %w", id, item, raw, structure.ErrMalformedOperatorRecord)
	}
	return v, nil
}

// atomRow is an atom site kept in string form until its frame is
// materialized.
type atomRow struct {
	name    string
	asymID  string
	entity  string
	x, y, z string
}

// frame is the raw atom content of one model.
type frame struct {
	num  int
	rows []atomRow
}

// buildFrames groups atom sites by model number, preserving file order
// of both models and atoms.
func buildFrames(cat *rawCategory, entities []structure.Entity) ([]frame, error) {
	var frames []frame
	byNum := make(map[int]int)
	for r := 0; r < cat.len(); r++ {
		num := 1
		if raw, ok := cat.get(r, "pdbx_pdb_model_num"); ok && value(raw) != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("cif: atom row %d: bad model number %q", r, raw)
			}
			num = n
		}
		asym, ok := cat.get(r, "label_asym_id")
		if !ok || value(asym) == "" {
			return nil, fmt.Errorf("cif: atom row %d missing label_asym_id", r)
		}
		name, _ := cat.get(r, "label_atom_id")
		entity, _ := cat.get(r, "label_entity_id")
		x, _ := cat.get(r, "cartn_x")
		y, _ := cat.get(r, "cartn_y")
		z, _ := cat.get(r, "cartn_z")
		fi, seen := byNum[num]
		if !seen {
			fi = len(frames)
			byNum[num] = fi
			frames = append(frames, frame{num: num})
		}
		frames[fi].rows = append(frames[fi].rows, atomRow{
			name:   value(name),
			asymID: asym,
			entity: value(entity),
			x:      x, y: y, z: z,
		})
	}
	return frames, nil
}
