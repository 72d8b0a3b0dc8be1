package engine

import (
	"errors"
	"fmt"

	"github.com/lexpattern/engine/internal/ir"
)

// RuntimeError represents an error detected by the compiler or the
// state machine (spec §7 error kinds). Errors inside the runtime are
// surfaced to the embedding via this single type; the state machine
// continues to produce no further results until reset (clear()).
type RuntimeError struct {
	Code    RuntimeErrorCode
	Message string
	EventID ir.EventID
	Ordpos  int64
	Details map[string]string
}

// RuntimeErrorCode categorizes runtime and compile-time errors.
type RuntimeErrorCode string

const (
	// ErrCodeOrderViolation: event fed with ordinal position below
	// current (spec §7 kind 1). Fatal for the document, recoverable by
	// clear().
	ErrCodeOrderViolation RuntimeErrorCode = "ORDER_VIOLATION"
	// ErrCodeOverflow: numeric field exceeds 32 bits where required
	// (spec §7 kind 2). Fatal during compile.
	ErrCodeOverflow RuntimeErrorCode = "OVERFLOW"
	// ErrCodeMissingArguments: push_expression(argc=k) with fewer than
	// k nodes on the compiler's stack (spec §7 kind 3). Fatal.
	ErrCodeMissingArguments RuntimeErrorCode = "MISSING_ARGUMENTS"
	// ErrCodeUnresolvedReference: define_pattern never supplied for a
	// referenced name at compile time (spec §7 kind 4). Fatal.
	ErrCodeUnresolvedReference RuntimeErrorCode = "UNRESOLVED_REFERENCE"
	// ErrCodeDoubleVariableAssignment: two attach_variable calls on the
	// same node (spec §7 kind 5). Fatal.
	ErrCodeDoubleVariableAssignment RuntimeErrorCode = "DOUBLE_VARIABLE_ASSIGNMENT"
	// ErrCodeInternalInvariant: e.g. replay producing follow-events,
	// double-free (spec §7 kind 6). Fatal, signals a bug.
	ErrCodeInternalInvariant RuntimeErrorCode = "INTERNAL_INVARIANT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.EventID != ir.NoEvent {
		return fmt.Sprintf("%s: %s (event=%s, ordpos=%d)", e.Code, e.Message, e.EventID, e.Ordpos)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func isCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// IsOrderViolation reports whether err is an order-violation RuntimeError.
func IsOrderViolation(err error) bool { return isCode(err, ErrCodeOrderViolation) }

// IsOverflow reports whether err is an overflow RuntimeError.
func IsOverflow(err error) bool { return isCode(err, ErrCodeOverflow) }

// IsMissingArguments reports whether err is a missing-arguments RuntimeError.
func IsMissingArguments(err error) bool { return isCode(err, ErrCodeMissingArguments) }

// IsUnresolvedReference reports whether err is an unresolved-reference RuntimeError.
func IsUnresolvedReference(err error) bool { return isCode(err, ErrCodeUnresolvedReference) }

// IsDoubleVariableAssignment reports whether err is a double-variable-assignment RuntimeError.
func IsDoubleVariableAssignment(err error) bool { return isCode(err, ErrCodeDoubleVariableAssignment) }

// IsInternalInvariant reports whether err is an internal-invariant RuntimeError.
func IsInternalInvariant(err error) bool { return isCode(err, ErrCodeInternalInvariant) }

// NewOrderViolation builds an order-violation error for advancing the
// clock to pos while it already sits at current.
func NewOrderViolation(pos, current int64) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeOrderViolation,
		Message: fmt.Sprintf("ordinal position %d is below current position %d", pos, current),
		Ordpos:  pos,
	}
}

// NewOverflow builds an overflow error naming the offending construct.
func NewOverflow(message string) *RuntimeError {
	return &RuntimeError{Code: ErrCodeOverflow, Message: message}
}

// NewMissingArguments builds a missing-arguments error for an
// push_expression call that popped fewer than argc nodes.
func NewMissingArguments(op string, want, got int) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeMissingArguments,
		Message: fmt.Sprintf("%s: expected %d arguments on stack, found %d", op, want, got),
	}
}

// NewUnresolvedReference builds an unresolved-reference error for a
// pattern name never supplied to define_pattern.
func NewUnresolvedReference(name string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnresolvedReference,
		Message: fmt.Sprintf("pattern reference %q never resolved by define_pattern", name),
	}
}

// NewDoubleVariableAssignment builds a double-variable-assignment error.
func NewDoubleVariableAssignment(name string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeDoubleVariableAssignment,
		Message: fmt.Sprintf("variable %q already attached to this node", name),
	}
}

// NewInternalInvariant builds an internal-invariant error: a bug signal,
// never an expected outcome of well-formed input (spec §9: replay
// producing follow-events, double-free).
func NewInternalInvariant(eventID ir.EventID, message string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInternalInvariant,
		Message: message,
		EventID: eventID,
	}
}
