package structure

import (
	"errors"
	"fmt"
)

// Error taxonomy for assembly construction. Input-malformed and
// lookup-failure conditions are fatal to the current build and never
// silently corrected; callers distinguish classes with errors.Is.
var (
	// ErrMalformedOperatorRecord indicates an operator row with an empty or
	// duplicated id, or a matrix that cannot be read.
	ErrMalformedOperatorRecord = errors.New("malformed operator record")

	// ErrInvalidExpression indicates an operator-selection expression that
	// cannot be parsed: descending or malformed range, unmatched
	// parentheses, or empty term.
	ErrInvalidExpression = errors.New("invalid operator expression")

	// ErrAssemblyNotFound indicates a requested assembly id with no match in
	// the resolved definitions.
	ErrAssemblyNotFound = errors.New("assembly not found")

	// ErrFrameResolution indicates the trajectory frame at the requested
	// index is out of range or failed to decode.
	ErrFrameResolution = errors.New("frame resolution failed")

	// ErrUnsupportedFormat indicates source data in a format this system
	// cannot interpret. Builds treat it as "no usable model" rather than a
	// fault.
	ErrUnsupportedFormat = errors.New("unsupported source format")
)

// UnknownOperatorError reports an expression referencing an operator id that
// is absent from the operator table. The reference is only detectable when
// the expression is resolved against the table, so it surfaces at definition
// build time, not parse time. It matches ErrInvalidExpression under
// errors.Is.
type UnknownOperatorError struct {
	ID OperatorID
}

func (e UnknownOperatorError) Error() string {
	return fmt.Sprintf("unknown operator %q", string(e.ID))
}

// Unwrap classifies the error under the invalid-expression taxonomy.
func (e UnknownOperatorError) Unwrap() error { return ErrInvalidExpression }
