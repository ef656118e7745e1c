package dbdialect

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for dialect operations.
var (
	// ErrInvalidArgument is returned when an operation receives a missing or
	// malformed schema entity.
	ErrInvalidArgument = errors.New("dbdialect: invalid argument")

	// ErrUnrecognizedType is returned when a column's abstract type has no
	// native mapping in the target dialect.
	ErrUnrecognizedType = errors.New("dbdialect: unrecognized data type")
)

// InvalidArgumentError represents a missing or malformed input to a dialect
// operation, such as a nil column or a reference whose local and referenced
// column lists differ in length.
type InvalidArgumentError struct {
	Op     string // Operation (e.g., "addColumn", "createTable")
	Arg    string // Argument name (e.g., "column", "definition")
	Reason string // Human readable reason
}

// Error returns the error string.
func (e *InvalidArgumentError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("dbdialect: %s: invalid %s: %s", e.Op, e.Arg, e.Reason)
	}
	return fmt.Sprintf("dbdialect: %s: invalid %s", e.Op, e.Arg)
}

// Is reports whether the target error matches InvalidArgumentError.
// This allows errors.Is(err, ErrInvalidArgument) to return true.
func (e *InvalidArgumentError) Is(err error) bool {
	return err == ErrInvalidArgument
}

// NewInvalidArgumentError returns a new InvalidArgumentError.
func NewInvalidArgumentError(op, arg, reason string) *InvalidArgumentError {
	return &InvalidArgumentError{Op: op, Arg: arg, Reason: reason}
}

// IsInvalidArgument returns true if the error is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	if err == nil {
		return false
	}
	var e *InvalidArgumentError
	return errors.As(err, &e) || errors.Is(err, ErrInvalidArgument)
}

// UnrecognizedTypeError represents an abstract column type that the dialect
// cannot render.
type UnrecognizedTypeError struct {
	Dialect string // Dialect name (e.g., "postgres")
	Type    string // Abstract or native type that failed to map
	Column  string // Optional: the column being rendered
}

// Error returns the error string.
func (e *UnrecognizedTypeError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("dbdialect: unrecognized %s data type %s (column %q)", e.Dialect, e.Type, e.Column)
	}
	return fmt.Sprintf("dbdialect: unrecognized %s data type %s", e.Dialect, e.Type)
}

// Is reports whether the target error matches UnrecognizedTypeError.
// This allows errors.Is(err, ErrUnrecognizedType) to return true.
func (e *UnrecognizedTypeError) Is(err error) bool {
	return err == ErrUnrecognizedType
}

// NewUnrecognizedTypeError returns a new UnrecognizedTypeError.
func NewUnrecognizedTypeError(dialect, typ, column string) *UnrecognizedTypeError {
	return &UnrecognizedTypeError{Dialect: dialect, Type: typ, Column: column}
}

// IsUnrecognizedType returns true if the error is an UnrecognizedTypeError.
func IsUnrecognizedType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnrecognizedTypeError
	return errors.As(err, &e) || errors.Is(err, ErrUnrecognizedType)
}

// AggregateError represents multiple errors collected during an operation.
type AggregateError struct {
	Errors []error
}

// Error returns the error string.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "dbdialect: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("dbdialect: multiple errors:")
	for i, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  [%d] %v", i+1, err)
	}
	return sb.String()
}

// Unwrap returns the collected errors so errors.Is and errors.As see all of them.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// NewAggregateError returns a new AggregateError if there are errors,
// otherwise returns nil.
func NewAggregateError(errs ...error) error {
	var filtered []error
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &AggregateError{Errors: filtered}
}
