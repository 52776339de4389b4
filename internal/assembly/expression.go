package assembly

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"

	"assemblycore/pkg/structure"
)

// expressionParses counts ParseExpression invocations. The cache tests use
// it to prove memoized definitions are served without re-parsing, and the
// prometheus recorder exports it.
var expressionParses atomic.Int64

// ExpressionParses returns the number of expressions parsed so far.
func ExpressionParses() int64 { return expressionParses.Load() }

// ParseExpression parses an operator-selection expression into an ordered
// sequence of operator-id tuples.
//
// A bare list or range ("1,2,3", "1-4") yields arity-1 tuples, one per id,
// in textual order. Juxtaposed parenthesized groups ("(1-60)(61,62)") yield
// the Cartesian product of the groups, left-group-major, each tuple's arity
// equal to the group count; composing a tuple's matrices applies the
// rightmost operator first. Ranges are inclusive and ascending; whitespace
// is insignificant. Operator ids are not checked against the operator table
// here, that happens when definitions are resolved.
//
// Malformed input fails wrapping structure.ErrInvalidExpression and never
// yields a partial result.
func ParseExpression(expr string) ([][]structure.OperatorID, error) {
	expressionParses.Add(1)

	compact := stripSpace(expr)
	if compact == "" {
		return nil, fmt.Errorf("%w: empty expression", structure.ErrInvalidExpression)
	}

	groups, err := splitGroups(compact)
	if err != nil {
		return nil, err
	}

	tuples := [][]structure.OperatorID{{}}
	for _, group := range groups {
		ids, err := parseFlat(group)
		if err != nil {
			return nil, err
		}
		next := make([][]structure.OperatorID, 0, len(tuples)*len(ids))
		for _, prefix := range tuples {
			for _, id := range ids {
				tuple := make([]structure.OperatorID, len(prefix)+1)
				copy(tuple, prefix)
				tuple[len(prefix)] = id
				next = append(next, tuple)
			}
		}
		tuples = next
	}
	return tuples, nil
}

// splitGroups returns the flat bodies of the expression: the single body for
// a bare list, or one body per parenthesized group for a composition.
func splitGroups(expr string) ([]string, error) {
	if !strings.HasPrefix(expr, "(") {
		if strings.ContainsAny(expr, "()") {
			return nil, fmt.Errorf("%w: unexpected parenthesis in %q", structure.ErrInvalidExpression, expr)
		}
		return []string{expr}, nil
	}
	var groups []string
	rest := expr
	for rest != "" {
		if rest[0] != '(' {
			return nil, fmt.Errorf("%w: unexpected %q between groups in %q", structure.ErrInvalidExpression, string(rest[0]), expr)
		}
		close := strings.IndexByte(rest, ')')
		if close < 0 {
			return nil, fmt.Errorf("%w: unmatched parenthesis in %q", structure.ErrInvalidExpression, expr)
		}
		body := rest[1:close]
		if strings.ContainsRune(body, '(') {
			return nil, fmt.Errorf("%w: nested parenthesis in %q", structure.ErrInvalidExpression, expr)
		}
		groups = append(groups, body)
		rest = rest[close+1:]
	}
	return groups, nil
}

// parseFlat expands a comma list of ids and inclusive ranges.
func parseFlat(body string) ([]structure.OperatorID, error) {
	if body == "" {
		return nil, fmt.Errorf("%w: empty group", structure.ErrInvalidExpression)
	}
	var ids []structure.OperatorID
	for _, term := range strings.Split(body, ",") {
		if term == "" {
			return nil, fmt.Errorf("%w: empty term in %q", structure.ErrInvalidExpression, body)
		}
		dash := strings.IndexByte(term, '-')
		if dash <= 0 || dash == len(term)-1 {
			// Plain identifier (a leading or trailing dash is not a range).
			ids = append(ids, structure.OperatorID(term))
			continue
		}
		lo, loErr := strconv.Atoi(term[:dash])
		hi, hiErr := strconv.Atoi(term[dash+1:])
		if loErr != nil || hiErr != nil {
			return nil, fmt.Errorf("%w: malformed range %q", structure.ErrInvalidExpression, term)
		}
		if lo > hi {
			return nil, fmt.Errorf("%w: descending range %q", structure.ErrInvalidExpression, term)
		}
		for n := lo; n <= hi; n++ {
			ids = append(ids, structure.OperatorID(strconv.Itoa(n)))
		}
	}
	return ids, nil
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r':
			return -1
		}
		return r
	}, s)
}
