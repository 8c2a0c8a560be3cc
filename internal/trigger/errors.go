package trigger

import "fmt"

// ParseError reports a formula rejected at compile time.
type ParseError struct {
	Formula string
	Pos     int // byte offset into the formula
	Msg     string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %q at position %d: %s", e.Formula, e.Pos, e.Msg)
}

// EvalErrorKind classifies a runtime evaluation failure.
type EvalErrorKind int

const (
	ErrUnknownField EvalErrorKind = iota
	ErrOffsetOutOfRange
	ErrDivisionByZero
	ErrTypeMismatch
	ErrBadArity
)

func (k EvalErrorKind) String() string {
	switch k {
	case ErrUnknownField:
		return "unknown field"
	case ErrOffsetOutOfRange:
		return "offset out of range"
	case ErrDivisionByZero:
		return "division by zero"
	case ErrTypeMismatch:
		return "type mismatch"
	case ErrBadArity:
		return "bad arity"
	default:
		return "evaluation error"
	}
}

// EvalError reports a failure while evaluating a compiled expression
// against a window. Callers that need only a trigger decision should use
// Triggered, which maps any EvalError to false.
type EvalError struct {
	Kind EvalErrorKind
	Msg  string
}

func (e *EvalError) Error() string {
	if e.Msg == "" {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func evalErrf(kind EvalErrorKind, format string, args ...interface{}) *EvalError {
	return &EvalError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
