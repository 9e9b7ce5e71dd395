package evolution

import (
	"errors"
	"fmt"

	"github.com/goliatone/go-uischema/pkg/schema"
)

// Code classifies evolution failures.
type Code string

const (
	CodeTargetNotFound   Code = "TargetNotFound"
	CodeInvalidReorder   Code = "InvalidReorder"
	CodeDuplicateID      Code = "DuplicateId"
	CodeInvalidOperation Code = "InvalidOperation"
)

// Sentinels matched by errors.Is against an *Error of the same code.
var (
	ErrTargetNotFound   = errors.New("evolution: target not found")
	ErrInvalidReorder   = errors.New("evolution: invalid reorder")
	ErrDuplicateID      = errors.New("evolution: duplicate id")
	ErrInvalidOperation = errors.New("evolution: invalid operation")
)

// Error reports why an operation could not be applied. The input document is
// never modified when an Error is returned.
type Error struct {
	Code    Code
	Op      schema.OperationType
	Target  string
	Message string
	Err     error
}

func (e *Error) Error() string {
	target := e.Target
	if target == "" {
		target = schema.RootTarget
	}
	msg := fmt.Sprintf("evolution: %s %s(%s)", e.Code, e.Op, target)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the code sentinel and any underlying cause.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if sentinel := e.sentinel(); sentinel != nil {
		out = append(out, sentinel)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

func (e *Error) sentinel() error {
	switch e.Code {
	case CodeTargetNotFound:
		return ErrTargetNotFound
	case CodeInvalidReorder:
		return ErrInvalidReorder
	case CodeDuplicateID:
		return ErrDuplicateID
	case CodeInvalidOperation:
		return ErrInvalidOperation
	default:
		return nil
	}
}

func newError(code Code, op schema.Operation, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Op:      op.Type,
		Target:  op.Target,
		Message: fmt.Sprintf(format, args...),
	}
}
