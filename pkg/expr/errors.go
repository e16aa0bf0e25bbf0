package expr

import (
	"errors"
	"fmt"
)

var (
	// ErrSyntax covers malformed expressions and wrong function arity.
	ErrSyntax = errors.New("syntax error")
	// ErrNameNotFound is returned for unbound identifiers, unknown functions
	// and sibling-field lookups that cannot be located.
	ErrNameNotFound = errors.New("name not found")
	// ErrUnsupportedOperator is returned for operators outside the whitelist.
	ErrUnsupportedOperator = errors.New("unsupported operator")
	// ErrUnsupportedNode is returned for grammar constructs the evaluator does not reduce.
	ErrUnsupportedNode = errors.New("unsupported expression node")
	// ErrTypeMismatch is returned when a non-numeric value is used in a numeric position.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrDivisionByZero is returned by /, // and % with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")
	// ErrDomain is returned when a result has no representation (overflow, sqrt(-1), inf).
	ErrDomain = errors.New("math domain error")
	// ErrLinkedValue is returned when a referenced field is wired to another node
	// instead of holding a literal.
	ErrLinkedValue = errors.New("linked value")
)

// Error describes a failed evaluation.
type Error struct {
	Kind error  // One of the Err* sentinels
	Pos  int    // Byte offset in the expression, -1 when unknown
	Msg  string // Human-readable detail
}

func (e *Error) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("%s at offset %d: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, pos int, format string, args ...any) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
